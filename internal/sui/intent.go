package sui

import "encoding/json"

// Operation names the Move entry functions of the academy package. The set is
// closed: the builder constructs intents for these and nothing else.
type Operation string

const (
	OpEnrollStudent    Operation = "enroll_student"
	OpRecordAttendance Operation = "record_attendance"
	OpUpdateFeeStatus  Operation = "update_fee_status"
)

// ArgKind tags a call argument with its declared on-chain parameter type.
// Type mismatches are a build-time contract violation, not a runtime ledger
// error, so arguments are constructed only through the typed helpers below.
type ArgKind string

const (
	ArgPureString  ArgKind = "pure_string"
	ArgPureU64     ArgKind = "pure_u64"
	ArgPureAddress ArgKind = "pure_address"
	ArgObject      ArgKind = "object"
)

// CallArg is one typed argument of a Move call.
type CallArg struct {
	Kind ArgKind `json:"kind"`
	// Value holds the string form for pure_string, pure_address and object
	// arguments.
	Value string `json:"value,omitempty"`
	// U64 holds the value for pure_u64 arguments.
	U64 uint64 `json:"u64,omitempty"`
}

func pureString(v string) CallArg  { return CallArg{Kind: ArgPureString, Value: v} }
func pureU64(v uint64) CallArg     { return CallArg{Kind: ArgPureU64, U64: v} }
func pureAddress(v string) CallArg { return CallArg{Kind: ArgPureAddress, Value: v} }
func objectRef(id string) CallArg  { return CallArg{Kind: ArgObject, Value: id} }

// Intent is an unsigned description of a state change: the fully qualified
// Move call target plus its ordered, typed arguments. Intents are transient:
// built per request, signed, submitted, never persisted. At-most-once
// semantics belong to the ledger, not to this type.
type Intent struct {
	Target    string    `json:"target"`
	Operation Operation `json:"operation"`
	Args      []CallArg `json:"args"`
}

// SigningBytes serializes the intent deterministically. The same bytes are
// signed locally and submitted to the node.
func (i Intent) SigningBytes() ([]byte, error) {
	return json.Marshal(i)
}
