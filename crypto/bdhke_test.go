package crypto

import (
	"testing"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/stretchr/testify/require"
)

const (
	testMintKeyHex = "6f3a51c1f9b582bb2fd7f7dcc3ed0d0c110a1b1e9dc787be9cf02fdae2f79d1b"
	testBlindHex   = "29a1b1d174f2f5cd1e734eafa0a4ec0d6c74e77acc742dbff0b2e4ff276cb1d5"
)

func testMintKey(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	k, err := PrivateKeyFromHex(testMintKeyHex)
	require.NoError(t, err)
	return k
}

func testBlindingFactor(t *testing.T) *secp256k1.PrivateKey {
	t.Helper()
	r, err := PrivateKeyFromHex(testBlindHex)
	require.NoError(t, err)
	return r
}

func TestHashToCurve_Deterministic(t *testing.T) {
	secret := []byte("test-secret-001")

	first, err := HashToCurve(secret)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		again, err := HashToCurve(secret)
		require.NoError(t, err)
		require.True(t, first.IsEqual(again), "hash-to-curve not deterministic")
	}
}

func TestHashToCurve_DistinctSecrets(t *testing.T) {
	seen := make(map[string]string)
	secrets := [][]byte{
		[]byte(""),
		[]byte("a"),
		[]byte("test-secret-001"),
		[]byte("test-secret-002"),
		{0x00}, {0x00, 0x00}, {0xff, 0xff, 0xff, 0xff},
	}

	for _, secret := range secrets {
		point, err := HashToCurve(secret)
		require.NoError(t, err)
		require.True(t, point.IsOnCurve())

		encoded := PointToHex(point)
		prev, dup := seen[encoded]
		require.False(t, dup, "secrets %x and %s map to the same point", secret, prev)
		seen[encoded] = string(secret)
	}
}

func TestBlindSignRoundTrip(t *testing.T) {
	k := testMintKey(t)
	K := k.PubKey()

	for i := 0; i < 25; i++ {
		secret, err := GenerateSecret()
		require.NoError(t, err)

		Y, err := HashToCurve(secret)
		require.NoError(t, err)

		r, err := GenerateBlindingFactor()
		require.NoError(t, err)

		B_, err := BlindMessage(Y, r)
		require.NoError(t, err)

		C_, err := SignBlinded(k, B_)
		require.NoError(t, err)

		C, err := UnblindSignature(C_, r, K)
		require.NoError(t, err)

		// C must equal k*Y directly.
		direct, err := SignBlinded(k, Y)
		require.NoError(t, err)
		require.True(t, C.IsEqual(direct), "unblinded signature != k*Y")

		ok, err := VerifySignature(k, secret, C)
		require.NoError(t, err)
		require.True(t, ok)
	}
}

func TestVerifySignature_RejectsForgery(t *testing.T) {
	k := testMintKey(t)
	secret := []byte("test-secret-001")

	// A random point is not a valid signature for the secret.
	forged, _, err := GenerateKeyPair()
	require.NoError(t, err)

	ok, err := VerifySignature(k, secret, forged.PubKey())
	require.NoError(t, err)
	require.False(t, ok)
}

func TestVerifySignature_RejectsTamperedSecret(t *testing.T) {
	k := testMintKey(t)
	secret := []byte("test-secret-001")

	Y, err := HashToCurve(secret)
	require.NoError(t, err)
	C, err := SignBlinded(k, Y)
	require.NoError(t, err)

	ok, err := VerifySignature(k, secret, C)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = VerifySignature(k, []byte("test-secret-002"), C)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBlindMessage_Hiding(t *testing.T) {
	Y, err := HashToCurve([]byte("test-secret-001"))
	require.NoError(t, err)

	// Across many blinding factors the blinded point must never leak Y and
	// must not repeat.
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		r, err := GenerateBlindingFactor()
		require.NoError(t, err)

		B_, err := BlindMessage(Y, r)
		require.NoError(t, err)
		require.False(t, B_.IsEqual(Y), "blinded point equals Y")

		encoded := PointToHex(B_)
		require.False(t, seen[encoded], "repeated blinded point")
		seen[encoded] = true
	}
}

func TestBlindMessage_RejectsZeroScalar(t *testing.T) {
	Y, err := HashToCurve([]byte("test-secret-001"))
	require.NoError(t, err)

	var zero secp256k1.ModNScalar
	_, err = BlindMessage(Y, secp256k1.NewPrivateKey(&zero))
	require.ErrorIs(t, err, ErrInvalidScalar)

	_, err = BlindMessage(Y, nil)
	require.ErrorIs(t, err, ErrInvalidScalar)
}

func TestSignBlinded_RejectsInvalidPoint(t *testing.T) {
	k := testMintKey(t)

	_, err := SignBlinded(k, nil)
	require.ErrorIs(t, err, ErrInvalidPoint)

	// (0, 0) is not on the curve and stands in for the identity.
	var x, y secp256k1.FieldVal
	_, err = SignBlinded(k, secp256k1.NewPublicKey(&x, &y))
	require.ErrorIs(t, err, ErrInvalidPoint)
}

func TestEndToEndScenario(t *testing.T) {
	secret := []byte("test-secret-001")
	k := testMintKey(t)
	K := k.PubKey()
	r := testBlindingFactor(t)

	Y, err := HashToCurve(secret)
	require.NoError(t, err)

	B_, err := BlindMessage(Y, r)
	require.NoError(t, err)

	C_, err := SignBlinded(k, B_)
	require.NoError(t, err)

	C, err := UnblindSignature(C_, r, K)
	require.NoError(t, err)

	expected, err := SignBlinded(k, Y)
	require.NoError(t, err)
	require.True(t, C.IsEqual(expected))

	ok, err := VerifySignature(k, secret, C)
	require.NoError(t, err)
	require.True(t, ok)

	// Same signature presented against a tampered secret fails.
	ok, err = VerifySignature(k, []byte("test-secret-xxx"), C)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUnblindSignature_WrongFactorFailsVerification(t *testing.T) {
	secret := []byte("test-secret-001")
	k := testMintKey(t)
	K := k.PubKey()

	Y, err := HashToCurve(secret)
	require.NoError(t, err)

	r, err := GenerateBlindingFactor()
	require.NoError(t, err)
	B_, err := BlindMessage(Y, r)
	require.NoError(t, err)
	C_, err := SignBlinded(k, B_)
	require.NoError(t, err)

	wrongR, err := GenerateBlindingFactor()
	require.NoError(t, err)

	// Unblinding with a different factor succeeds structurally but yields a
	// point unrelated to k*Y; only verification can detect it.
	C, err := UnblindSignature(C_, wrongR, K)
	require.NoError(t, err)

	ok, err := VerifySignature(k, secret, C)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestScalarFromBytes_Range(t *testing.T) {
	_, err := ScalarFromBytes(make([]byte, 32))
	require.ErrorIs(t, err, ErrInvalidScalar, "zero scalar accepted")

	_, err = ScalarFromBytes(make([]byte, 16))
	require.ErrorIs(t, err, ErrInvalidScalar, "short scalar accepted")

	// The group order itself overflows and must be rejected, not reduced.
	overflow := make([]byte, 32)
	for i := range overflow {
		overflow[i] = 0xff
	}
	_, err = ScalarFromBytes(overflow)
	require.ErrorIs(t, err, ErrInvalidScalar, "overflowing scalar accepted")

	one := make([]byte, 32)
	one[31] = 0x01
	s, err := ScalarFromBytes(one)
	require.NoError(t, err)
	require.False(t, s.IsZero())
}

func TestPointHexRoundTrip(t *testing.T) {
	_, pub, err := GenerateKeyPair()
	require.NoError(t, err)

	parsed, err := PointFromHex(PointToHex(pub))
	require.NoError(t, err)
	require.True(t, pub.IsEqual(parsed))

	_, err = PointFromHex("not hex")
	require.ErrorIs(t, err, ErrInvalidPoint)

	_, err = PointFromHex("02" + "00" /* truncated */)
	require.ErrorIs(t, err, ErrInvalidPoint)
}
