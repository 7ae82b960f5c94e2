package sui

import (
	"strings"

	dErrors "dojoledger/pkg/domain-errors"
)

const moduleName = "academy"

// validRanks are the belt values the Move contract accepts, canonical
// lowercase. Caller input is matched case-insensitively.
var validRanks = []string{"white", "blue", "purple", "brown", "black"}

// Builder assembles typed transaction intents for the academy package. It
// holds the deployed package ID and the two shared objects every privileged or
// time-stamped call references: the admin capability and the ledger clock.
// Callers never supply those references themselves.
type Builder struct {
	packageID  string
	adminCapID string
	clockID    string
}

func NewBuilder(packageID, adminCapID, clockID string) *Builder {
	return &Builder{
		packageID:  packageID,
		adminCapID: adminCapID,
		clockID:    clockID,
	}
}

// EnrollArgs are the caller-supplied arguments for enrolling a student.
type EnrollArgs struct {
	ExternalID string
	Name       string
	Rank       string
	// SignerAddress is the address of the credential that will sign the
	// intent; the contract records it as the enrolling authority.
	SignerAddress string
}

// AttendanceArgs are the caller-supplied arguments for recording attendance.
type AttendanceArgs struct {
	StudentID string
	PhotoRef  string
}

// FeeStatusArgs are the caller-supplied arguments for a fee-status update.
// The admin capability is attached by the builder, never by the caller.
type FeeStatusArgs struct {
	StudentID        string
	AmountMinorUnits uint64
	ValidityDays     uint64
}

func (b *Builder) target(op Operation) string {
	return b.packageID + "::" + moduleName + "::" + string(op)
}

// Enroll builds an enroll_student intent. Rejects before any network call:
// empty external identity, empty name, or a rank outside the contract's belt
// set.
func (b *Builder) Enroll(args EnrollArgs) (Intent, error) {
	if strings.TrimSpace(args.ExternalID) == "" {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "external identity is required")
	}
	if strings.TrimSpace(args.Name) == "" {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "display name is required")
	}
	rank, ok := CanonicalRank(args.Rank)
	if !ok {
		return Intent{}, dErrors.Newf(dErrors.CodeInvalidArgument,
			"invalid rank %q, use one of: %s", args.Rank, strings.Join(validRanks, ", "))
	}
	if args.SignerAddress == "" {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "signer address is required")
	}

	return Intent{
		Target:    b.target(OpEnrollStudent),
		Operation: OpEnrollStudent,
		Args: []CallArg{
			pureString(args.ExternalID),
			pureString(args.Name),
			pureString(rank),
			pureAddress(args.SignerAddress),
			objectRef(b.clockID),
		},
	}, nil
}

// RecordAttendance builds a record_attendance intent.
func (b *Builder) RecordAttendance(args AttendanceArgs) (Intent, error) {
	if args.StudentID == "" {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "student id is required")
	}
	if strings.TrimSpace(args.PhotoRef) == "" {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "photo reference is required")
	}

	return Intent{
		Target:    b.target(OpRecordAttendance),
		Operation: OpRecordAttendance,
		Args: []CallArg{
			objectRef(args.StudentID),
			pureString(args.PhotoRef),
			objectRef(b.clockID),
		},
	}, nil
}

// UpdateFeeStatus builds an update_fee_status intent. The admin capability
// reference is always the first argument; a caller cannot omit or override it.
func (b *Builder) UpdateFeeStatus(args FeeStatusArgs) (Intent, error) {
	if args.StudentID == "" {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "student id is required")
	}
	if args.ValidityDays < 1 {
		return Intent{}, dErrors.New(dErrors.CodeInvalidArgument, "validity period must be at least one day")
	}

	return Intent{
		Target:    b.target(OpUpdateFeeStatus),
		Operation: OpUpdateFeeStatus,
		Args: []CallArg{
			objectRef(b.adminCapID),
			objectRef(args.StudentID),
			pureU64(args.AmountMinorUnits),
			pureU64(args.ValidityDays),
			objectRef(b.clockID),
		},
	}, nil
}

// CanonicalRank lowercases and validates a rank against the contract's belt
// set, returning the canonical form.
func CanonicalRank(rank string) (string, bool) {
	canonical := strings.ToLower(strings.TrimSpace(rank))
	for _, r := range validRanks {
		if canonical == r {
			return canonical, true
		}
	}
	return "", false
}

// StudentTypeTag is the substring identifying the student object type in
// object-change lists.
const StudentTypeTag = "::academy::Student"

// EnrolledEventType returns the fully qualified Move event type emitted on
// enrollment, used by the listing projection.
func (b *Builder) EnrolledEventType() string {
	return b.packageID + "::" + moduleName + "::StudentEnrolled"
}
