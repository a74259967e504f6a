// Package crypto implements the blind Diffie-Hellman key exchange (BDHKE)
// blind-signature scheme over secp256k1.
//
// This package provides the core cryptographic operations of a Chaumian
// ecash system:
//
//   - Deterministic hash-to-curve mapping from secrets to group points
//   - Blinding of a secret's curve point with an ephemeral scalar
//   - Mint-side blind signing of a blinded point
//   - User-side unblinding of a blind signature
//   - Mint-side verification of a final signature
//   - DLEQ (discrete-log equality) proofs binding a blind signature to the
//     mint's published public key
//
// The protocol:
//
//	user: Y  = HashToCurve(secret)
//	user: B_ = Y + r*G              (r fresh random scalar, kept by the user)
//	mint: C_ = k*B_                 (k mint private key, learns nothing of Y)
//	user: C  = C_ - r*K = k*Y       (K = k*G, mint public key)
//	mint: Verify(k, secret, C): C == k*HashToCurve(secret)
//
// All operations are pure and safe for concurrent use. The package is
// agnostic to amounts, keysets, storage, and transport; those live in the
// mint, wallet, and services packages.
//
// Note: point multiplication uses the secp256k1 library's variable-time
// routines, matching the reference mint implementations this follows.
package crypto
