package sui

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	dErrors "dojoledger/pkg/domain-errors"
)

const seedSize = 32

// LoadKeystore reads the first signing key from a CLI-format keystore file: a
// JSON array of base64-encoded secret keys. Entries may carry a one-byte
// scheme flag in front of the 32-byte seed; the flag is stripped only when the
// decoded length says it is present. Any other shape means there is no usable
// signing identity, which is fatal at startup.
//
// The raw key material is never logged.
func LoadKeystore(path string) (*Credential, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCredentialUnavailable,
			fmt.Sprintf("read keystore %s", path))
	}

	var entries []string
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCredentialUnavailable, "keystore is not a JSON array")
	}
	if len(entries) == 0 {
		return nil, dErrors.New(dErrors.CodeCredentialUnavailable, "keystore contains no keys")
	}

	decoded, err := base64.StdEncoding.DecodeString(entries[0])
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeCredentialUnavailable, "keystore entry is not valid base64")
	}

	seed, err := extractSeed(decoded)
	if err != nil {
		return nil, err
	}
	return newCredential(seed), nil
}

// extractSeed validates the decoded blob length. A flag byte is detected by
// length, not by a declared field, so the length must match exactly before
// stripping.
func extractSeed(decoded []byte) ([]byte, error) {
	switch len(decoded) {
	case seedSize:
		return decoded, nil
	case seedSize + 1:
		if decoded[0] != SchemeFlagEd25519 {
			return nil, dErrors.Newf(dErrors.CodeCredentialUnavailable,
				"unsupported key scheme flag 0x%02x", decoded[0])
		}
		return decoded[1:], nil
	default:
		return nil, dErrors.Newf(dErrors.CodeCredentialUnavailable,
			"unexpected key length %d", len(decoded))
	}
}
