package config_test

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"VAULTD_CHAIN_RPC_URL", "VAULTD_CHAIN_WS_URL", "VAULTD_VAULT_PROGRAM_ADDRESS",
		"VAULTD_TOKEN_MINT", "VAULTD_SIGNER_KEY_PATH", "VAULTD_DATABASE_URL",
		"VAULTD_HTTP_HOST", "VAULTD_HTTP_PORT", "VAULTD_BALANCE_CHECK_INTERVAL",
		"VAULTD_RECONCILIATION_INTERVAL", "VAULTD_LOW_BALANCE_THRESHOLD", "VAULTD_POOL_MAX_CONNS",
	} {
		require.NoError(t, os.Unsetenv(k))
	}
}

func setRequiredEnv(t *testing.T) {
	t.Helper()
	require.NoError(t, os.Setenv("VAULTD_CHAIN_RPC_URL", "https://rpc.example.org"))
	require.NoError(t, os.Setenv("VAULTD_CHAIN_WS_URL", "wss://rpc.example.org"))
	require.NoError(t, os.Setenv("VAULTD_VAULT_PROGRAM_ADDRESS", "prog1111"))
	require.NoError(t, os.Setenv("VAULTD_TOKEN_MINT", "mint1111"))
	require.NoError(t, os.Setenv("VAULTD_SIGNER_KEY_PATH", "/keys/service.key"))
	require.NoError(t, os.Setenv("VAULTD_DATABASE_URL", "postgres://localhost/vaultd"))
	require.NoError(t, os.Setenv("VAULTD_HTTP_HOST", "0.0.0.0"))
	require.NoError(t, os.Setenv("VAULTD_HTTP_PORT", "8080"))
}

func TestLoadMissingRequiredFieldFails(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)

	_, err := config.Load(nil)
	require.Error(t, err)
}

func TestLoadAppliesTunableDefaults(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	setRequiredEnv(t)

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	require.Equal(t, config.DefaultBalanceCheckInterval, cfg.BalanceCheckInterval)
	require.Equal(t, config.DefaultReconciliationInterval, cfg.ReconciliationInterval)
	require.Equal(t, int64(config.DefaultLowBalanceThreshold), cfg.LowBalanceThreshold)
	require.Equal(t, config.DefaultPoolMaxConns, cfg.PoolMaxConns)
}

func TestLoadOverridesTunableFromEnv(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	setRequiredEnv(t)
	require.NoError(t, os.Setenv("VAULTD_LOW_BALANCE_THRESHOLD", "250"))

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	require.Equal(t, int64(250), cfg.LowBalanceThreshold)
}

func TestIsDevnetDetection(t *testing.T) {
	clearEnv(t)
	defer clearEnv(t)
	setRequiredEnv(t)
	require.NoError(t, os.Setenv("VAULTD_CHAIN_RPC_URL", "https://api.devnet.example.org"))

	cfg, err := config.Load(nil)
	require.NoError(t, err)
	require.True(t, cfg.IsDevnet())
}
