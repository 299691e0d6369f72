// FilePath: internal/sui/keys.go
package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil/bech32"
	"golang.org/x/crypto/blake2b"
)

// ErrUnrecognizedKeyFormat is returned when a signing key string matches none
// of the accepted encodings.
var ErrUnrecognizedKeyFormat = errors.New("unrecognized signing key format")

const (
	// ed25519 scheme flag, prefixed to public keys and signatures on the wire
	ed25519Flag = 0x00
	// bech32 human-readable prefix produced by the ledger's keytool export
	privateKeyPrefix = "suiprivkey"
)

// Signer holds the process-local ed25519 key for the direct submission path
type Signer struct {
	priv ed25519.PrivateKey
	pub  ed25519.PublicKey
}

// DecodeSignerKey decodes a private key from one of three accepted encodings,
// tried in a fixed order with no silent fall-through: the structured
// "suiprivkey" bech32 form, then a 64-character hex string (optionally
// 0x-prefixed), then base64. Anything else fails with
// ErrUnrecognizedKeyFormat.
func DecodeSignerKey(raw string) (*Signer, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(raw, privateKeyPrefix):
		return decodeBech32Key(raw)
	case isHexKey(raw):
		seed, err := hex.DecodeString(strings.TrimPrefix(raw, "0x"))
		if err != nil {
			return nil, fmt.Errorf("hex key decode: %w", err)
		}
		return newSigner(seed)
	default:
		seed, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, ErrUnrecognizedKeyFormat
		}
		if len(seed) == ed25519.SeedSize+1 && seed[0] == ed25519Flag {
			seed = seed[1:]
		}
		return newSigner(seed)
	}
}

func isHexKey(raw string) bool {
	if strings.HasPrefix(raw, "0x") {
		return len(raw) == 2+2*ed25519.SeedSize
	}
	return len(raw) == 2*ed25519.SeedSize
}

func decodeBech32Key(raw string) (*Signer, error) {
	hrp, data, err := bech32.Decode(raw)
	if err != nil {
		return nil, fmt.Errorf("bech32 key decode: %w", err)
	}
	if hrp != privateKeyPrefix {
		return nil, fmt.Errorf("bech32 key has prefix %q, want %q", hrp, privateKeyPrefix)
	}
	payload, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return nil, fmt.Errorf("bech32 key payload: %w", err)
	}
	if len(payload) != ed25519.SeedSize+1 {
		return nil, fmt.Errorf("bech32 key payload is %d bytes, want %d", len(payload), ed25519.SeedSize+1)
	}
	if payload[0] != ed25519Flag {
		return nil, fmt.Errorf("unsupported signing scheme flag 0x%02x", payload[0])
	}
	return newSigner(payload[1:])
}

func newSigner(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signing key seed is %d bytes, want %d", len(seed), ed25519.SeedSize)
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return &Signer{
		priv: priv,
		pub:  priv.Public().(ed25519.PublicKey),
	}, nil
}

// Address derives the ledger address controlled by this key: the blake2b-256
// hash of the scheme flag and public key.
func (s *Signer) Address() string {
	payload := make([]byte, 0, 1+len(s.pub))
	payload = append(payload, ed25519Flag)
	payload = append(payload, s.pub...)
	sum := blake2b.Sum256(payload)
	return "0x" + hex.EncodeToString(sum[:])
}

// SignTransaction produces the serialized wallet signature over transaction
// bytes: the intent-prefixed bytes are hashed with blake2b-256, the hash is
// signed, and flag || signature || pubkey is base64-encoded. This is the
// same blob an external wallet or device would submit.
func (s *Signer) SignTransaction(txBytes []byte) string {
	// Intent: scope TransactionData, version 0, app id 0
	intent := make([]byte, 0, 3+len(txBytes))
	intent = append(intent, 0x00, 0x00, 0x00)
	intent = append(intent, txBytes...)
	digest := blake2b.Sum256(intent)

	sig := ed25519.Sign(s.priv, digest[:])

	serialized := make([]byte, 0, 1+len(sig)+len(s.pub))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, sig...)
	serialized = append(serialized, s.pub...)
	return base64.StdEncoding.EncodeToString(serialized)
}
