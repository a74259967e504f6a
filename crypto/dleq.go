package crypto

import (
	"crypto/sha256"
	"crypto/subtle"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// dleqTag domain-separates DLEQ challenge hashes from other uses of
// SHA-256 in the protocol.
const dleqTag = "ecash_dleq_proof"

// DLEQProof is a Chaum-Pedersen proof that the same private key links the
// mint's published public key K = k*G and a blind signature C_ = k*B_.
//
// The mint attaches one to every blind signature so the wallet can check
// the signature against the published keyset without trusting the
// transport, and without the mint revealing k.
type DLEQProof struct {
	E secp256k1.ModNScalar // challenge
	S secp256k1.ModNScalar // response s = p + e*k
}

// ProveDLEQ produces a proof that C_ was computed from B_ with the private
// key k. The nonce is drawn fresh from a cryptographically secure source
// for every proof.
func ProveDLEQ(k *secp256k1.PrivateKey, B_, C_ *secp256k1.PublicKey) (*DLEQProof, error) {
	if k == nil || k.Key.IsZero() {
		return nil, ErrInvalidScalar
	}
	if err := validatePoint(B_); err != nil {
		return nil, err
	}
	if err := validatePoint(C_); err != nil {
		return nil, err
	}

	nonce, err := secp256k1.GeneratePrivateKey()
	if err != nil {
		return nil, err
	}

	// R1 = p*G, R2 = p*B_
	var r1j, bj, r2j secp256k1.JacobianPoint
	secp256k1.ScalarBaseMultNonConst(&nonce.Key, &r1j)
	B_.AsJacobian(&bj)
	secp256k1.ScalarMultNonConst(&nonce.Key, &bj, &r2j)

	r1, err := jacobianToPublicKey(&r1j)
	if err != nil {
		return nil, err
	}
	r2, err := jacobianToPublicKey(&r2j)
	if err != nil {
		return nil, err
	}

	e := dleqChallenge(r1, r2, k.PubKey(), C_)

	// s = p + e*k
	var s secp256k1.ModNScalar
	s.Set(&e).Mul(&k.Key).Add(&nonce.Key)

	proof := &DLEQProof{E: e, S: s}
	return proof, nil
}

// VerifyDLEQ reports whether proof demonstrates that the key behind K
// produced C_ from B_. It recomputes the commitments as
//
//	R1 = s*G - e*K
//	R2 = s*B_ - e*C_
//
// and checks that they hash back to the challenge e.
func VerifyDLEQ(proof *DLEQProof, B_, C_, K *secp256k1.PublicKey) bool {
	if proof == nil || proof.S.IsZero() {
		return false
	}
	if validatePoint(B_) != nil || validatePoint(C_) != nil || validatePoint(K) != nil {
		return false
	}

	r1j, ok := commitment(&proof.S, nil, &proof.E, K)
	if !ok {
		return false
	}
	r2j, ok := commitment(&proof.S, B_, &proof.E, C_)
	if !ok {
		return false
	}

	r1, err := jacobianToPublicKey(r1j)
	if err != nil {
		return false
	}
	r2, err := jacobianToPublicKey(r2j)
	if err != nil {
		return false
	}

	expected := dleqChallenge(r1, r2, K, C_)
	expectedBytes := expected.Bytes()
	gotBytes := proof.E.Bytes()
	return subtle.ConstantTimeCompare(expectedBytes[:], gotBytes[:]) == 1
}

// commitment computes s*P - e*Q, with P = G when base is nil.
func commitment(s *secp256k1.ModNScalar, base *secp256k1.PublicKey, e *secp256k1.ModNScalar, q *secp256k1.PublicKey) (*secp256k1.JacobianPoint, bool) {
	var sp secp256k1.JacobianPoint
	if base == nil {
		secp256k1.ScalarBaseMultNonConst(s, &sp)
	} else {
		var bj secp256k1.JacobianPoint
		base.AsJacobian(&bj)
		secp256k1.ScalarMultNonConst(s, &bj, &sp)
	}

	var qj, eq secp256k1.JacobianPoint
	q.AsJacobian(&qj)
	secp256k1.ScalarMultNonConst(e, &qj, &eq)
	negateJacobian(&eq)

	var result secp256k1.JacobianPoint
	secp256k1.AddNonConst(&sp, &eq, &result)
	if result.Z.IsZero() {
		return nil, false
	}
	return &result, true
}

// dleqChallenge hashes the proof transcript into a challenge scalar.
func dleqChallenge(r1, r2, K, C_ *secp256k1.PublicKey) secp256k1.ModNScalar {
	h := sha256.New()
	h.Write([]byte(dleqTag))
	h.Write(r1.SerializeCompressed())
	h.Write(r2.SerializeCompressed())
	h.Write(K.SerializeCompressed())
	h.Write(C_.SerializeCompressed())

	var e secp256k1.ModNScalar
	e.SetByteSlice(h.Sum(nil))
	return e
}
