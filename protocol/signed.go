package protocol

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dmto-xyz/dmto-core/crypto"
)

// Signed wraps a message with a BIP-340 Schnorr signature from the mint's
// keyset-signing key, so wallets can authenticate keyset publications
// without trusting the transport.
type Signed[T any] struct {
	PublicKey string `json:"public_key"`
	Signature string `json:"signature"`
	Object    *T     `json:"object"`
}

// NewSigned creates an authenticated message by signing the serialized
// object bound to the signer's public key.
func NewSigned[T any](priv *secp256k1.PrivateKey, obj *T) (*Signed[T], error) {
	if priv == nil || priv.Key.IsZero() {
		return nil, crypto.ErrInvalidScalar
	}

	pubHex := crypto.PointToHex(priv.PubKey())
	digest, err := signedDigest(obj, pubHex)
	if err != nil {
		return nil, err
	}

	sig, err := schnorr.Sign(priv, digest)
	if err != nil {
		return nil, err
	}

	return &Signed[T]{
		PublicKey: pubHex,
		Signature: hex.EncodeToString(sig.Serialize()),
		Object:    obj,
	}, nil
}

// UnsafeObject returns the wrapped object without verifying the signature.
func (s *Signed[T]) UnsafeObject() *T {
	return s.Object
}

// Recover verifies the signature and returns the authenticated object
// along with the signer's public key.
func (s *Signed[T]) Recover() (*T, *secp256k1.PublicKey, error) {
	pub, err := crypto.PointFromHex(s.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	sigBytes, err := hex.DecodeString(s.Signature)
	if err != nil {
		return nil, nil, err
	}
	sig, err := schnorr.ParseSignature(sigBytes)
	if err != nil {
		return nil, nil, err
	}

	digest, err := signedDigest(s.Object, s.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	if !sig.Verify(digest, pub) {
		return nil, nil, errors.New("signature not valid")
	}

	return s.Object, pub, nil
}

func signedDigest[T any](obj *T, pubHex string) ([]byte, error) {
	serialized, err := SerializeMessage(obj)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(append(serialized, pubHex...))
	return digest[:], nil
}
