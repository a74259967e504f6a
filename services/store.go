package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrAlreadySpent is returned by MarkSpent when the secret was spent
// before. Callers treat it as a routine double-spend rejection, not a
// store failure.
var ErrAlreadySpent = errors.New("services: secret already spent")

// SpentStore tracks redeemed note secrets. Implementations must make
// MarkSpent atomic: of N concurrent calls with the same secret exactly one
// succeeds and the rest return ErrAlreadySpent.
type SpentStore interface {
	// MarkSpent records the secret as spent.
	MarkSpent(ctx context.Context, secret []byte) error

	// IsSpent reports whether the secret has been spent.
	IsSpent(ctx context.Context, secret []byte) (bool, error)
}

// secretKey produces the storage key for a secret. Secrets are hashed so
// the ledger never holds them in recoverable form.
func secretKey(secret []byte) string {
	digest := sha256.Sum256(secret)
	return hex.EncodeToString(digest[:])
}

// MemorySpentStore implements SpentStore with a mutex-guarded map.
type MemorySpentStore struct {
	mu    sync.Mutex
	spent map[string]bool
}

// NewMemorySpentStore creates an empty in-memory spent store.
func NewMemorySpentStore() *MemorySpentStore {
	return &MemorySpentStore{spent: make(map[string]bool)}
}

// MarkSpent records the secret, failing if it was recorded before.
func (s *MemorySpentStore) MarkSpent(_ context.Context, secret []byte) error {
	key := secretKey(secret)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.spent[key] {
		return ErrAlreadySpent
	}
	s.spent[key] = true
	return nil
}

// IsSpent reports whether the secret has been recorded.
func (s *MemorySpentStore) IsSpent(_ context.Context, secret []byte) (bool, error) {
	key := secretKey(secret)

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.spent[key], nil
}
