package protocol

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// MintConfig provides configuration parameters for a mint service.
type MintConfig struct {
	// ListenAddr is the address the mint's HTTP API listens on.
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"`

	// MetricsAddr is the address for the metrics server. Empty disables it.
	MetricsAddr string `yaml:"metrics_addr" json:"metrics_addr"`

	// Denominations are the note amounts the mint issues keys for.
	// Powers of two keep change-making simple for wallets.
	Denominations []uint64 `yaml:"denominations" json:"denominations"`

	// SigningKey is an optional hex-encoded secp256k1 key used to sign
	// keyset publications. Generated at startup when empty.
	SigningKey string `yaml:"signing_key" json:"-"`

	// PostgresDSN selects the postgres-backed spent-secret store when set;
	// otherwise the mint keeps spent secrets in memory.
	PostgresDSN string `yaml:"postgres_dsn" json:"-"`

	// RequestTimeout bounds each HTTP request.
	RequestTimeout time.Duration `yaml:"request_timeout" json:"request_timeout,string"`
}

// DefaultMintConfig returns a config suitable for local development.
func DefaultMintConfig() *MintConfig {
	return &MintConfig{
		ListenAddr:     ":8080",
		Denominations:  []uint64{1, 2, 4, 8},
		RequestTimeout: 30 * time.Second,
	}
}

// LoadMintConfig reads a YAML config file, filling unset fields from the
// defaults.
func LoadMintConfig(path string) (*MintConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultMintConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for internal consistency.
func (c *MintConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen_addr is required")
	}
	if len(c.Denominations) == 0 {
		return errors.New("at least one denomination is required")
	}

	seen := make(map[uint64]bool, len(c.Denominations))
	for _, d := range c.Denominations {
		if d == 0 {
			return errors.New("denomination 0 is not allowed")
		}
		if seen[d] {
			return fmt.Errorf("duplicate denomination %d", d)
		}
		seen[d] = true
	}
	return nil
}
