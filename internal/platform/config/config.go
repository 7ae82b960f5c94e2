// Package config loads service configuration from the environment so main
// stays lean.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the service needs at startup. The ledger section
// mirrors the deployed Move package: the package ID, the admin capability held
// by this service's signing address, and the shared clock object.
type Config struct {
	Addr     string `env:"DOJO_ADDR" envDefault:":8080"`
	LogLevel string `env:"DOJO_LOG_LEVEL" envDefault:"info"`

	// AdminJWTSigningKey signs and validates bearer tokens for privileged
	// operations (fee-status updates).
	AdminJWTSigningKey string `env:"DOJO_ADMIN_JWT_KEY" envDefault:"dev-secret-key-change-in-production"`

	Ledger LedgerConfig `envPrefix:"LEDGER_"`
	Redis  RedisConfig  `envPrefix:"REDIS_"`
}

// LedgerConfig identifies the remote node and the on-chain academy package.
type LedgerConfig struct {
	RPCURL     string `env:"RPC_URL" envDefault:"https://fullnode.testnet.sui.io:443"`
	PackageID  string `env:"PACKAGE_ID"`
	AdminCapID string `env:"ADMIN_CAP_ID"`
	// ClockID is the ledger's shared clock object, referenced by every
	// time-stamped transaction.
	ClockID      string `env:"CLOCK_ID" envDefault:"0x6"`
	KeystorePath string `env:"KEYSTORE_PATH" envDefault:""`

	// SubmitTimeout bounds the submit-and-wait-for-confirmation round trip,
	// the one suspension point of meaningful duration. Read calls use
	// ReadTimeout.
	SubmitTimeout time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"30s"`
	ReadTimeout   time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
}

// RedisConfig configures the optional snapshot cache. An empty URL disables
// caching entirely.
type RedisConfig struct {
	URL          string        `env:"URL" envDefault:""`
	PoolSize     int           `env:"POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"WRITE_TIMEOUT" envDefault:"3s"`
	CacheTTL     time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

// FromEnv builds a Config from environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings without which the service cannot reach the
// ledger at all.
func (c Config) Validate() error {
	if c.Ledger.RPCURL == "" {
		return fmt.Errorf("LEDGER_RPC_URL is required")
	}
	if c.Ledger.PackageID == "" {
		return fmt.Errorf("LEDGER_PACKAGE_ID is required")
	}
	if c.Ledger.AdminCapID == "" {
		return fmt.Errorf("LEDGER_ADMIN_CAP_ID is required")
	}
	if c.Ledger.KeystorePath == "" {
		return fmt.Errorf("LEDGER_KEYSTORE_PATH is required")
	}
	return nil
}
