// Package config loads vaultd's runtime configuration. Values are read from
// the environment first, then a go-flags CLI overlay (grounded on lnd.go's
// loadConfig/flags.Parse composition) lets an operator override any field
// when invoking vaultd directly.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	flags "github.com/btcsuite/go-flags"
)

// Defaults for the tunables named in spec.md §6.5.
const (
	DefaultBalanceCheckInterval  = 30 * time.Second
	DefaultReconciliationInterval = 300 * time.Second
	DefaultLowBalanceThreshold   = 100 // whole tokens
	DefaultPoolMaxConns          = 10
)

// Config holds every value vaultd needs to wire its subsystems. Required
// fields have no default and fail startup when unset; tunables fall back to
// the spec.md §6.5 defaults.
type Config struct {
	ChainRPCURL      string `long:"chain_rpc_url" env:"VAULTD_CHAIN_RPC_URL" description:"Chain JSON-RPC endpoint"`
	ChainWSURL       string `long:"chain_ws_url" env:"VAULTD_CHAIN_WS_URL" description:"Chain WebSocket endpoint"`
	VaultProgramAddr string `long:"vault_program_address" env:"VAULTD_VAULT_PROGRAM_ADDRESS" description:"Vault program address"`
	TokenMint        string `long:"token_mint" env:"VAULTD_TOKEN_MINT" description:"Collateral token mint address"`
	SignerKeyPath    string `long:"signer_key_path" env:"VAULTD_SIGNER_KEY_PATH" description:"Default signer key file path"`
	DatabaseURL      string `long:"database_url" env:"VAULTD_DATABASE_URL" description:"Postgres connection string"`
	HTTPHost         string `long:"http_host" env:"VAULTD_HTTP_HOST" description:"HTTP/WS bind host"`
	HTTPPort         int    `long:"http_port" env:"VAULTD_HTTP_PORT" description:"HTTP/WS bind port"`

	BalanceCheckInterval  time.Duration
	ReconciliationInterval time.Duration
	LowBalanceThreshold   int64
	PoolMaxConns          int

	BalanceCheckIntervalRaw   string `long:"balance_check_interval" env:"VAULTD_BALANCE_CHECK_INTERVAL" description:"Low-balance alert tick period"`
	ReconciliationIntervalRaw string `long:"reconciliation_interval" env:"VAULTD_RECONCILIATION_INTERVAL" description:"Reconciliation tick period"`
	LowBalanceThresholdRaw    string `long:"low_balance_threshold" env:"VAULTD_LOW_BALANCE_THRESHOLD" description:"Low-balance alert threshold, whole tokens"`
	PoolMaxConnsRaw           string `long:"pool_max_conns" env:"VAULTD_POOL_MAX_CONNS" description:"Database connection pool cap"`
}

// Load reads the environment, then overlays any CLI flags passed in args
// (typically os.Args[1:]), validates required fields, and applies defaults
// to unset tunables.
func Load(args []string) (*Config, error) {
	cfg := &Config{
		ChainRPCURL:      os.Getenv("VAULTD_CHAIN_RPC_URL"),
		ChainWSURL:       os.Getenv("VAULTD_CHAIN_WS_URL"),
		VaultProgramAddr: os.Getenv("VAULTD_VAULT_PROGRAM_ADDRESS"),
		TokenMint:        os.Getenv("VAULTD_TOKEN_MINT"),
		SignerKeyPath:    os.Getenv("VAULTD_SIGNER_KEY_PATH"),
		DatabaseURL:      os.Getenv("VAULTD_DATABASE_URL"),
		HTTPHost:         os.Getenv("VAULTD_HTTP_HOST"),

		BalanceCheckIntervalRaw:   os.Getenv("VAULTD_BALANCE_CHECK_INTERVAL"),
		ReconciliationIntervalRaw: os.Getenv("VAULTD_RECONCILIATION_INTERVAL"),
		LowBalanceThresholdRaw:    os.Getenv("VAULTD_LOW_BALANCE_THRESHOLD"),
		PoolMaxConnsRaw:           os.Getenv("VAULTD_POOL_MAX_CONNS"),
	}
	if portStr := os.Getenv("VAULTD_HTTP_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, fmt.Errorf("invalid VAULTD_HTTP_PORT: %w", err)
		}
		cfg.HTTPPort = port
	}

	parser := flags.NewParser(cfg, flags.Default)
	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.applyTunables(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyTunables() error {
	c.BalanceCheckInterval = DefaultBalanceCheckInterval
	if c.BalanceCheckIntervalRaw != "" {
		d, err := time.ParseDuration(c.BalanceCheckIntervalRaw)
		if err != nil {
			return fmt.Errorf("invalid balance_check_interval: %w", err)
		}
		c.BalanceCheckInterval = d
	}

	c.ReconciliationInterval = DefaultReconciliationInterval
	if c.ReconciliationIntervalRaw != "" {
		d, err := time.ParseDuration(c.ReconciliationIntervalRaw)
		if err != nil {
			return fmt.Errorf("invalid reconciliation_interval: %w", err)
		}
		c.ReconciliationInterval = d
	}

	c.LowBalanceThreshold = DefaultLowBalanceThreshold
	if c.LowBalanceThresholdRaw != "" {
		v, err := strconv.ParseInt(c.LowBalanceThresholdRaw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid low_balance_threshold: %w", err)
		}
		c.LowBalanceThreshold = v
	}

	c.PoolMaxConns = DefaultPoolMaxConns
	if c.PoolMaxConnsRaw != "" {
		v, err := strconv.Atoi(c.PoolMaxConnsRaw)
		if err != nil {
			return fmt.Errorf("invalid pool_max_conns: %w", err)
		}
		c.PoolMaxConns = v
	}
	return nil
}

// validate enforces the required-field list of spec.md §6.5. Each missing
// field produces a fatal, descriptive error before any subsystem starts,
// matching lnd's config validation style.
func (c *Config) validate() error {
	required := []struct {
		name, value string
	}{
		{"chain_rpc_url", c.ChainRPCURL},
		{"chain_ws_url", c.ChainWSURL},
		{"vault_program_address", c.VaultProgramAddr},
		{"token_mint", c.TokenMint},
		{"signer_key_path", c.SignerKeyPath},
		{"database_url", c.DatabaseURL},
		{"http_host", c.HTTPHost},
	}
	for _, r := range required {
		if r.value == "" {
			return fmt.Errorf("missing required config value: %s", r.name)
		}
	}
	if c.HTTPPort == 0 {
		return fmt.Errorf("missing required config value: http_port")
	}
	return nil
}

// IsDevnet reports whether the configured chain RPC URL looks like a devnet
// endpoint (contains "devnet", "localhost", or "127.0.0.1"), used to gate
// the mint-usdt faucet route.
func (c *Config) IsDevnet() bool {
	url := c.ChainRPCURL
	return strings.Contains(url, "devnet") ||
		strings.Contains(url, "localhost") ||
		strings.Contains(url, "127.0.0.1")
}
