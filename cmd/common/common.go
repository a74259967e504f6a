// Package common provides shared utilities for the CLI commands.
package common

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/dmto-xyz/dmto-core/crypto"
)

// LoadOrGenerateSigningKey loads a secp256k1 private key from a hex
// string, or generates a new key if hexKey is empty.
func LoadOrGenerateSigningKey(hexKey string) (*secp256k1.PrivateKey, error) {
	if hexKey != "" {
		key, err := crypto.PrivateKeyFromHex(hexKey)
		if err != nil {
			return nil, fmt.Errorf("invalid signing key: %w", err)
		}
		return key, nil
	}
	key, _, err := crypto.GenerateKeyPair()
	return key, err
}
