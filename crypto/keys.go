package crypto

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// SecretSize is the byte length of wallet-generated secrets. Secrets are
// arbitrary byte strings as far as the scheme is concerned; 32 random bytes
// gives them enough entropy to be unpredictable.
const SecretSize = 32

// GenerateSecret returns a fresh random note secret.
func GenerateSecret() ([]byte, error) {
	secret := make([]byte, SecretSize)
	if _, err := rand.Read(secret); err != nil {
		return nil, fmt.Errorf("generating secret: %w", err)
	}
	return secret, nil
}

// GenerateKeyPair generates a new secp256k1 key pair for a mint
// denomination key.
func GenerateKeyPair() (*secp256k1.PrivateKey, *secp256k1.PublicKey, error) {
	priv, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, nil, fmt.Errorf("generating key pair: %w", err)
	}
	return priv, priv.PubKey(), nil
}

// PointToHex serializes a curve point as lowercase hex of its 33-byte
// compressed SEC encoding. This is the wire and storage encoding used
// throughout the protocol.
func PointToHex(p *secp256k1.PublicKey) string {
	return hex.EncodeToString(p.SerializeCompressed())
}

// PointFromHex parses a curve point from its compressed hex encoding.
// The parse enforces the on-curve check; an invalid encoding is reported
// as ErrInvalidPoint.
func PointFromHex(s string) (*secp256k1.PublicKey, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	point, err := secp256k1.ParsePubKey(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPoint, err)
	}
	return point, nil
}

// ScalarToHex serializes a scalar as hex of its 32-byte big-endian form.
func ScalarToHex(s *secp256k1.ModNScalar) string {
	b := s.Bytes()
	return hex.EncodeToString(b[:])
}

// ScalarFromHex parses a scalar from hex, rejecting values outside
// [1, N-1]. Out-of-range values are rejected rather than reduced so that
// the caller's view of the scalar never diverges from the value in use.
func ScalarFromHex(s string) (*secp256k1.ModNScalar, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScalar, err)
	}
	return ScalarFromBytes(raw)
}

// ScalarFromBytes parses a 32-byte big-endian scalar, rejecting zero and
// values that overflow the group order.
func ScalarFromBytes(raw []byte) (*secp256k1.ModNScalar, error) {
	if len(raw) != 32 {
		return nil, fmt.Errorf("%w: scalar must be 32 bytes, got %d", ErrInvalidScalar, len(raw))
	}
	var scalar secp256k1.ModNScalar
	if overflow := scalar.SetByteSlice(raw); overflow || scalar.IsZero() {
		return nil, ErrInvalidScalar
	}
	return &scalar, nil
}

// PrivateKeyFromHex parses a mint private key from a 32-byte hex string
// with the same range checks as ScalarFromBytes.
func PrivateKeyFromHex(s string) (*secp256k1.PrivateKey, error) {
	scalar, err := ScalarFromHex(s)
	if err != nil {
		return nil, err
	}
	return secp256k1.NewPrivateKey(scalar), nil
}
