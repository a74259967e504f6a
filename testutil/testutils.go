package testutil

import (
	"crypto/rand"
	"log/slog"
	"testing"

	"github.com/dmto-xyz/dmto-core/crypto"
	"github.com/dmto-xyz/dmto-core/mint"
	"github.com/dmto-xyz/dmto-core/protocol"
	"github.com/dmto-xyz/dmto-core/services"
)

// TestDenominations are the default denominations used by test keysets.
var TestDenominations = []uint64{1, 2, 4, 8}

// GenerateRandomBytes returns n cryptographically random bytes.
func GenerateRandomBytes(t *testing.T, n int) []byte {
	t.Helper()
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		t.Fatalf("generating random bytes: %v", err)
	}
	return buf
}

// NewTestKeyset creates a keyset over TestDenominations.
func NewTestKeyset(t *testing.T) *mint.Keyset {
	t.Helper()
	ks, err := mint.NewKeyset(TestDenominations)
	if err != nil {
		t.Fatalf("creating test keyset: %v", err)
	}
	return ks
}

// NewTestMint creates a mint with an in-memory spent store and a fresh
// keyset-signing key.
func NewTestMint(t *testing.T) *mint.Mint {
	t.Helper()
	return NewTestMintWithKeyset(t, NewTestKeyset(t))
}

// NewTestMintWithKeyset creates a mint around an existing keyset.
func NewTestMintWithKeyset(t *testing.T, ks *mint.Keyset) *mint.Mint {
	t.Helper()

	signingKey, _, err := crypto.GenerateKeyPair()
	if err != nil {
		t.Fatalf("generating signing key: %v", err)
	}

	m, err := mint.New(ks, signingKey, services.NewMemorySpentStore(), slog.Default())
	if err != nil {
		t.Fatalf("creating test mint: %v", err)
	}
	return m
}

// NewTestNote issues a valid note of the given amount directly against the
// keyset, bypassing the blind-signing flow.
func NewTestNote(t *testing.T, ks *mint.Keyset, amount uint64) protocol.Note {
	t.Helper()

	key, ok := ks.PrivateKey(amount)
	if !ok {
		t.Fatalf("keyset has no denomination %d", amount)
	}

	secret := GenerateRandomBytes(t, crypto.SecretSize)
	Y, err := crypto.HashToCurve(secret)
	if err != nil {
		t.Fatalf("hash-to-curve: %v", err)
	}

	C, err := crypto.SignBlinded(key, Y)
	if err != nil {
		t.Fatalf("signing note: %v", err)
	}

	return protocol.Note{
		Amount: amount,
		Secret: secret,
		Y:      crypto.PointToHex(Y),
		C:      crypto.PointToHex(C),
	}
}

// NewTestNotes issues one note per amount.
func NewTestNotes(t *testing.T, ks *mint.Keyset, amounts ...uint64) protocol.Notes {
	t.Helper()
	notes := make(protocol.Notes, 0, len(amounts))
	for _, amount := range amounts {
		notes = append(notes, NewTestNote(t, ks, amount))
	}
	return notes
}
