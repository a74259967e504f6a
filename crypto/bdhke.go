package crypto

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/binary"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// hashToCurveTag is the domain-separation prefix for HashToCurve digests.
// It is part of the wire-level interoperability contract: changing it
// changes every Y and therefore invalidates every issued note.
const hashToCurveTag = "ecash_hash_to_curve"

// maxHashToCurveAttempts bounds the try-and-increment loop. Roughly half of
// all candidate x-coordinates lie on the curve, so exhausting this many
// attempts indicates a broken curve parameter set rather than bad luck.
const maxHashToCurveAttempts = 1 << 16

var (
	// ErrInvalidPoint indicates a point that is nil, off-curve, or the
	// identity element.
	ErrInvalidPoint = errors.New("crypto: invalid curve point")

	// ErrInvalidScalar indicates a scalar that is zero or outside [1, N-1].
	ErrInvalidScalar = errors.New("crypto: invalid scalar")

	// ErrHashToCurveExhausted indicates no valid point was found within the
	// bounded number of attempts. This is a fatal configuration error and
	// must not be retried.
	ErrHashToCurveExhausted = errors.New("crypto: hash-to-curve exhausted attempts")
)

// HashToCurve deterministically maps an arbitrary secret to a secp256k1
// point of unknown discrete log.
//
// Candidate i is the compressed even-Y encoding
// 0x02 || SHA-256(tag || secret || counter) with a big-endian 32-bit
// counter, incremented until the digest is a valid x-coordinate. The result
// is always on the curve, never the identity, and identical across calls
// for the same secret.
func HashToCurve(secret []byte) (*secp256k1.PublicKey, error) {
	buf := make([]byte, 0, len(hashToCurveTag)+len(secret)+4)
	buf = append(buf, hashToCurveTag...)
	buf = append(buf, secret...)
	buf = append(buf, 0, 0, 0, 0)
	ctrOff := len(buf) - 4

	candidate := make([]byte, 33)
	candidate[0] = secp256k1.PubKeyFormatCompressedEven

	for ctr := uint32(0); ctr < maxHashToCurveAttempts; ctr++ {
		binary.BigEndian.PutUint32(buf[ctrOff:], ctr)
		digest := sha256.Sum256(buf)
		copy(candidate[1:], digest[:])

		if point, err := secp256k1.ParsePubKey(candidate); err == nil {
			return point, nil
		}
	}

	return nil, ErrHashToCurveExhausted
}

// GenerateBlindingFactor samples a fresh, uniformly random, nonzero scalar
// from a cryptographically secure source. The caller must retain it until
// unblinding completes and must never transmit it.
func GenerateBlindingFactor() (*secp256k1.PrivateKey, error) {
	for {
		r, err := secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, err
		}
		if !r.Key.IsZero() {
			return r, nil
		}
	}
}

// BlindMessage computes the blinded point B_ = Y + r*G.
//
// A zero blinding factor trivially deblinds to Y and is rejected with
// ErrInvalidScalar rather than silently reduced or resampled here; sampling
// is the caller's concern (see GenerateBlindingFactor).
func BlindMessage(Y *secp256k1.PublicKey, r *secp256k1.PrivateKey) (*secp256k1.PublicKey, error) {
	if err := validatePoint(Y); err != nil {
		return nil, err
	}
	if r == nil || r.Key.IsZero() {
		return nil, ErrInvalidScalar
	}

	var yj, rg, sum secp256k1.JacobianPoint
	Y.AsJacobian(&yj)
	secp256k1.ScalarBaseMultNonConst(&r.Key, &rg)
	secp256k1.AddNonConst(&yj, &rg, &sum)

	return jacobianToPublicKey(&sum)
}

// SignBlinded computes the blind signature C_ = k*B_.
//
// B_ is validated as a legitimate, non-identity curve point before the
// private key touches it; an invalid point is rejected with
// ErrInvalidPoint. The blinded point is otherwise treated as opaque: the
// mint learns nothing about the underlying Y or blinding factor.
func SignBlinded(k *secp256k1.PrivateKey, B_ *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	if k == nil || k.Key.IsZero() {
		return nil, ErrInvalidScalar
	}
	if err := validatePoint(B_); err != nil {
		return nil, err
	}

	var bj, cj secp256k1.JacobianPoint
	B_.AsJacobian(&bj)
	secp256k1.ScalarMultNonConst(&k.Key, &bj, &cj)

	return jacobianToPublicKey(&cj)
}

// UnblindSignature computes the final signature C = C_ - r*K, where K is
// the mint's public key.
//
// The cancellation C_ - r*K = k*Y + k*r*G - r*k*G = k*Y holds only for the
// r used to produce B_ and the K matching the signing key. A mismatched r
// or K yields an unrelated point; that cannot be detected here and surfaces
// as a verification failure instead.
func UnblindSignature(C_ *secp256k1.PublicKey, r *secp256k1.PrivateKey, K *secp256k1.PublicKey) (*secp256k1.PublicKey, error) {
	if err := validatePoint(C_); err != nil {
		return nil, err
	}
	if err := validatePoint(K); err != nil {
		return nil, err
	}
	if r == nil || r.Key.IsZero() {
		return nil, ErrInvalidScalar
	}

	var kj, rk secp256k1.JacobianPoint
	K.AsJacobian(&kj)
	secp256k1.ScalarMultNonConst(&r.Key, &kj, &rk)
	negateJacobian(&rk)

	var cj, diff secp256k1.JacobianPoint
	C_.AsJacobian(&cj)
	secp256k1.AddNonConst(&cj, &rk, &diff)

	return jacobianToPublicKey(&diff)
}

// VerifySignature reports whether C is a valid signature over secret under
// the private key k, by recomputing k*HashToCurve(secret) and comparing in
// constant time.
//
// A mismatch is an ordinary boolean outcome, never an error; errors are
// reserved for structurally invalid inputs and hash-to-curve exhaustion.
func VerifySignature(k *secp256k1.PrivateKey, secret []byte, C *secp256k1.PublicKey) (bool, error) {
	if k == nil || k.Key.IsZero() {
		return false, ErrInvalidScalar
	}
	if err := validatePoint(C); err != nil {
		return false, err
	}

	Y, err := HashToCurve(secret)
	if err != nil {
		return false, err
	}

	var yj, expected secp256k1.JacobianPoint
	Y.AsJacobian(&yj)
	secp256k1.ScalarMultNonConst(&k.Key, &yj, &expected)

	expectedPub, err := jacobianToPublicKey(&expected)
	if err != nil {
		return false, err
	}

	match := subtle.ConstantTimeCompare(
		expectedPub.SerializeCompressed(),
		C.SerializeCompressed(),
	)
	return match == 1, nil
}

// validatePoint rejects nil, off-curve, and identity points.
func validatePoint(p *secp256k1.PublicKey) error {
	if p == nil || !p.IsOnCurve() {
		return ErrInvalidPoint
	}
	return nil
}

// jacobianToPublicKey normalizes a Jacobian point to affine coordinates,
// rejecting the point at infinity.
func jacobianToPublicKey(p *secp256k1.JacobianPoint) (*secp256k1.PublicKey, error) {
	if (p.X.IsZero() && p.Y.IsZero()) || p.Z.IsZero() {
		return nil, ErrInvalidPoint
	}
	p.ToAffine()
	return secp256k1.NewPublicKey(&p.X, &p.Y), nil
}

// negateJacobian negates a point in place, normalizing to affine first so
// the field magnitudes stay within bounds.
func negateJacobian(p *secp256k1.JacobianPoint) {
	p.ToAffine()
	p.Y.Negate(1)
	p.Y.Normalize()
}
