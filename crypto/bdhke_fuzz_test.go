package crypto

import (
	"testing"
)

func FuzzHashToCurve(f *testing.F) {
	// Seed corpus with boundary-ish secrets
	f.Add([]byte("test-secret-001"))
	f.Add([]byte(""))
	f.Add([]byte{0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, secret []byte) {
		point, err := HashToCurve(secret)
		if err != nil {
			t.Fatalf("hash-to-curve failed: %v", err)
		}

		// Invariant 1: result is a legitimate curve point
		if !point.IsOnCurve() {
			t.Errorf("point for %x is off-curve", secret)
		}

		// Invariant 2: determinism across invocations
		again, err := HashToCurve(secret)
		if err != nil {
			t.Fatalf("second hash-to-curve failed: %v", err)
		}
		if !point.IsEqual(again) {
			t.Errorf("non-deterministic mapping for %x", secret)
		}

		// Invariant 3: appending a byte moves the point (with overwhelming probability)
		extended, err := HashToCurve(append(append([]byte{}, secret...), 0x01))
		if err != nil {
			t.Fatalf("extended hash-to-curve failed: %v", err)
		}
		if point.IsEqual(extended) {
			t.Errorf("extending secret %x did not change the point", secret)
		}
	})
}

func FuzzBlindUnblindRoundTrip(f *testing.F) {
	f.Add([]byte("test-secret-001"), []byte("seed-entropy"))
	f.Add([]byte{0x01}, []byte{0x02})

	f.Fuzz(func(t *testing.T, secret, _ []byte) {
		k, err := PrivateKeyFromHex(testMintKeyHex)
		if err != nil {
			t.Fatal(err)
		}

		Y, err := HashToCurve(secret)
		if err != nil {
			t.Fatalf("hash-to-curve failed: %v", err)
		}

		r, err := GenerateBlindingFactor()
		if err != nil {
			t.Fatalf("blinding factor: %v", err)
		}

		B_, err := BlindMessage(Y, r)
		if err != nil {
			t.Fatalf("blind: %v", err)
		}

		C_, err := SignBlinded(k, B_)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}

		C, err := UnblindSignature(C_, r, k.PubKey())
		if err != nil {
			t.Fatalf("unblind: %v", err)
		}

		ok, err := VerifySignature(k, secret, C)
		if err != nil {
			t.Fatalf("verify: %v", err)
		}
		if !ok {
			t.Errorf("round-trip verification failed for secret %x", secret)
		}
	})
}
