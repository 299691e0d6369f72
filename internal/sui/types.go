// FilePath: internal/sui/types.go
package sui

import (
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"
)

// ObjectRef points at a piece of ledger-managed state: id, version and
// content digest. The ledger rejects execution against a stale version, which
// is the only concurrency discipline this system relies on.
type ObjectRef struct {
	ObjectID string `json:"objectId"`
	Version  uint64 `json:"version"`
	Digest   string `json:"digest"`
}

// SharedObjectRef references ledger state not owned by one account, such as
// the system clock. The contract only reads the clock, so Mutable stays false.
type SharedObjectRef struct {
	ObjectID             string `json:"objectId"`
	InitialSharedVersion uint64 `json:"initialSharedVersion"`
	Mutable              bool   `json:"mutable"`
}

// AddressBytes parses a hex address or object id into its canonical 32-byte
// form. Short ids like the 0x6 clock are left-padded, matching how the ledger
// normalizes them.
func AddressBytes(addr string) ([32]byte, error) {
	var out [32]byte
	s := strings.TrimPrefix(strings.TrimSpace(addr), "0x")
	if s == "" {
		return out, fmt.Errorf("empty address")
	}
	if len(s) > 64 {
		return out, fmt.Errorf("address %q longer than 32 bytes", addr)
	}
	if len(s)%2 == 1 {
		s = "0" + s
	}
	raw, err := hex.DecodeString(s)
	if err != nil {
		return out, fmt.Errorf("address %q is not hex: %w", addr, err)
	}
	copy(out[32-len(raw):], raw)
	return out, nil
}

// AddressHex renders a canonical 32-byte address as 0x-prefixed hex
func AddressHex(addr [32]byte) string {
	return "0x" + hex.EncodeToString(addr[:])
}

// DigestBytes decodes a base58 object digest into its 32-byte form
func DigestBytes(digest string) ([32]byte, error) {
	var out [32]byte
	raw, err := base58.Decode(strings.TrimSpace(digest))
	if err != nil {
		return out, fmt.Errorf("digest %q is not base58: %w", digest, err)
	}
	if len(raw) != 32 {
		return out, fmt.Errorf("digest %q decodes to %d bytes, want 32", digest, len(raw))
	}
	copy(out[:], raw)
	return out, nil
}

// DigestString renders a 32-byte digest in its base58 wire form
func DigestString(digest [32]byte) string {
	return base58.Encode(digest[:])
}
