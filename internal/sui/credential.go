// Package sui is the ledger interaction core: credential loading, transaction
// construction, submission/confirmation, object resolution and event queries
// against a remote Sui-style node. It owns no authoritative state; the ledger
// does. Everything here is a well-behaved client of the node's JSON-RPC
// surface.
package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// SchemeFlagEd25519 prefixes ed25519 material in keystore entries, addresses
// and serialized signatures.
const SchemeFlagEd25519 byte = 0x00

// Credential is the service's signing identity. Exactly one is loaded per
// instance; it is immutable after load and safe for unlimited concurrent
// reads. It is injected explicitly into whatever needs it, never held as
// package state.
type Credential struct {
	priv    ed25519.PrivateKey
	pub     ed25519.PublicKey
	address string
}

func newCredential(seed []byte) *Credential {
	priv := ed25519.NewKeyFromSeed(seed)
	pub := priv.Public().(ed25519.PublicKey)

	// Ledger addresses are blake2b-256 over scheme flag || public key.
	buf := make([]byte, 0, 1+ed25519.PublicKeySize)
	buf = append(buf, SchemeFlagEd25519)
	buf = append(buf, pub...)
	digest := blake2b.Sum256(buf)

	return &Credential{
		priv:    priv,
		pub:     pub,
		address: "0x" + hex.EncodeToString(digest[:]),
	}
}

// Address returns the 0x-prefixed ledger address derived from the public key.
func (c *Credential) Address() string {
	return c.address
}

// Sign produces the serialized signature the node expects:
// base64(flag || signature || public key).
func (c *Credential) Sign(msg []byte) string {
	sig := ed25519.Sign(c.priv, msg)

	buf := make([]byte, 0, 1+len(sig)+len(c.pub))
	buf = append(buf, SchemeFlagEd25519)
	buf = append(buf, sig...)
	buf = append(buf, c.pub...)
	return base64.StdEncoding.EncodeToString(buf)
}

// PublicKey exposes the raw public key for verification in tests.
func (c *Credential) PublicKey() ed25519.PublicKey {
	out := make(ed25519.PublicKey, len(c.pub))
	copy(out, c.pub)
	return out
}
