package mint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dmto-xyz/dmto-core/crypto"
)

// Keyset holds the mint's per-denomination private keys. It is built once
// at startup and read-only afterwards.
type Keyset struct {
	id   string
	keys map[uint64]*secp256k1.PrivateKey
}

// NewKeyset generates a fresh key pair for each denomination.
func NewKeyset(denominations []uint64) (*Keyset, error) {
	if len(denominations) == 0 {
		return nil, fmt.Errorf("keyset needs at least one denomination")
	}

	keys := make(map[uint64]*secp256k1.PrivateKey, len(denominations))
	for _, amount := range denominations {
		if amount == 0 {
			return nil, fmt.Errorf("denomination 0 is not allowed")
		}
		if _, dup := keys[amount]; dup {
			return nil, fmt.Errorf("duplicate denomination %d", amount)
		}
		priv, _, err := crypto.GenerateKeyPair()
		if err != nil {
			return nil, fmt.Errorf("generating key for denomination %d: %w", amount, err)
		}
		keys[amount] = priv
	}

	return &Keyset{id: deriveKeysetID(keys), keys: keys}, nil
}

// NewKeysetFromHex builds a keyset from hex-encoded private keys, keyed by
// denomination. Used to restore a mint's keyset across restarts.
func NewKeysetFromHex(keyHex map[uint64]string) (*Keyset, error) {
	if len(keyHex) == 0 {
		return nil, fmt.Errorf("keyset needs at least one denomination")
	}

	keys := make(map[uint64]*secp256k1.PrivateKey, len(keyHex))
	for amount, h := range keyHex {
		if amount == 0 {
			return nil, fmt.Errorf("denomination 0 is not allowed")
		}
		priv, err := crypto.PrivateKeyFromHex(h)
		if err != nil {
			return nil, fmt.Errorf("parsing key for denomination %d: %w", amount, err)
		}
		keys[amount] = priv
	}

	return &Keyset{id: deriveKeysetID(keys), keys: keys}, nil
}

// deriveKeysetID hashes the compressed public keys in denomination order.
// Wallets use the ID to detect keyset changes.
func deriveKeysetID(keys map[uint64]*secp256k1.PrivateKey) string {
	amounts := make([]uint64, 0, len(keys))
	for amount := range keys {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })

	h := sha256.New()
	for _, amount := range amounts {
		h.Write(keys[amount].PubKey().SerializeCompressed())
	}
	return hex.EncodeToString(h.Sum(nil)[:8])
}

// ID returns the keyset identifier.
func (ks *Keyset) ID() string {
	return ks.id
}

// PrivateKey returns the signing key for a denomination.
func (ks *Keyset) PrivateKey(amount uint64) (*secp256k1.PrivateKey, bool) {
	k, ok := ks.keys[amount]
	return k, ok
}

// PublicKey returns the public point for a denomination.
func (ks *Keyset) PublicKey(amount uint64) (*secp256k1.PublicKey, bool) {
	k, ok := ks.keys[amount]
	if !ok {
		return nil, false
	}
	return k.PubKey(), true
}

// PublicKeys returns the denomination to compressed-point-hex map published
// to wallets.
func (ks *Keyset) PublicKeys() map[uint64]string {
	pubs := make(map[uint64]string, len(ks.keys))
	for amount, k := range ks.keys {
		pubs[amount] = crypto.PointToHex(k.PubKey())
	}
	return pubs
}

// Denominations returns the supported amounts in ascending order.
func (ks *Keyset) Denominations() []uint64 {
	amounts := make([]uint64, 0, len(ks.keys))
	for amount := range ks.keys {
		amounts = append(amounts, amount)
	}
	sort.Slice(amounts, func(i, j int) bool { return amounts[i] < amounts[j] })
	return amounts
}
