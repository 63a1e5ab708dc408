package vault_test

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/chainaddr"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/txsubmit"
	"github.com/clearvault/vaultd/vault"
)

const testMint = "mint-usdt-devnet"

// writeKeyFile writes a fixed 32-byte hex-encoded scalar to a temp file and
// returns its path, standing in for a signer keypair file.
func writeKeyFile(t *testing.T, seed byte) string {
	t.Helper()
	key := make([]byte, 32)
	key[31] = seed
	path := filepath.Join(t.TempDir(), "key.hex")
	require.NoError(t, os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600))
	return path
}

func newTestManager(t *testing.T) (*vault.Manager, *store.FakeStore, *chain.FakeClient, *notify.Registry) {
	t.Helper()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()
	submitter := txsubmit.NewSubmitter(cl)
	registry := notify.NewRegistry()
	mgr := vault.NewManager(st, cl, submitter, registry, testMint)
	return mgr, st, cl, registry
}

func TestInitializeThenDepositThenBalance(t *testing.T) {
	mgr, _, cl, _ := newTestManager(t)
	ctx := context.Background()
	owner := "user-1"
	userKey := writeKeyFile(t, 1)

	initResult, err := mgr.Initialize(ctx, owner, userKey)
	require.NoError(t, err)
	require.NotEmpty(t, initResult.Signature)

	cl.SetTokenBalance(chainaddr.AssociatedTokenAccount(owner, testMint), 100_000_000)

	depositResult, err := mgr.Deposit(ctx, owner, 100_000_000, userKey)
	require.NoError(t, err)
	require.NotEmpty(t, depositResult.Signature)

	v, err := mgr.ResolveVault(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, int64(100_000_000), v.TotalBalance)
	require.Equal(t, int64(0), v.LockedBalance)
	require.Equal(t, int64(100_000_000), v.AvailableBalance)
}

func TestLockThenUnlockRestoresBalances(t *testing.T) {
	mgr, st, _, _ := newTestManager(t)
	ctx := context.Background()
	owner := "user-2"
	positionManagerKey := writeKeyFile(t, 2)

	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "vault-2", TokenAccount: "token-2",
		TotalBalance: 500_000_000, AvailableBalance: 500_000_000, Status: domain.VaultStatusActive,
	}))

	lockResult, err := mgr.Lock(ctx, owner, 200_000_000, "pos_1", positionManagerKey)
	require.NoError(t, err)
	require.NotEmpty(t, lockResult.Signature)
	require.Equal(t, int64(200_000_000), lockResult.Vault.LockedBalance)
	require.Equal(t, int64(300_000_000), lockResult.Vault.AvailableBalance)

	unlockResult, err := mgr.Unlock(ctx, owner, 200_000_000, "pos_1", positionManagerKey)
	require.NoError(t, err)
	require.Equal(t, int64(0), unlockResult.Vault.LockedBalance)
	require.Equal(t, int64(500_000_000), unlockResult.Vault.AvailableBalance)
	require.Equal(t, int64(500_000_000), unlockResult.Vault.TotalBalance)
}

func TestWithdrawInsufficientBalanceLeavesNoJournal(t *testing.T) {
	mgr, st, _, _ := newTestManager(t)
	ctx := context.Background()
	owner := "user-3"
	userKey := writeKeyFile(t, 3)

	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "vault-3", TokenAccount: "token-3",
		TotalBalance: 1_000_000_000, LockedBalance: 700_000_000, AvailableBalance: 300_000_000,
		Status: domain.VaultStatusActive,
	}))

	_, err := mgr.Withdraw(ctx, owner, 500_000_000, userKey)
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrInsufficientBalance, code)

	entries, err := st.ListJournal(ctx, owner, 10, 0, nil)
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestUnlockInsufficientLocked(t *testing.T) {
	mgr, st, _, _ := newTestManager(t)
	ctx := context.Background()
	owner := "user-4"
	positionManagerKey := writeKeyFile(t, 4)

	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "vault-4", TokenAccount: "token-4",
		TotalBalance: 100, LockedBalance: 10, AvailableBalance: 90, Status: domain.VaultStatusActive,
	}))

	_, err := mgr.Unlock(ctx, owner, 11, "pos_x", positionManagerKey)
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrInsufficientLocked, code)
}

func TestDepositZeroAmountRejected(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	_, err := mgr.Deposit(context.Background(), "user-5", 0, "")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrInvalidAmount, code)
}

func TestLockWithoutSignerRequired(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	_, err := mgr.Lock(context.Background(), "user-6", 10, "pos_1", "")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrSignerRequired, code)
}

func TestTransferCrossesLockedAvailableBoundary(t *testing.T) {
	mgr, st, _, _ := newTestManager(t)
	ctx := context.Background()
	source, dest := "user-source", "user-dest"
	liquidationEngineKey := writeKeyFile(t, 5)

	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: source, VaultAddress: "vault-src", TokenAccount: "token-src",
		TotalBalance: 10_000_000, LockedBalance: 3_000_000, AvailableBalance: 7_000_000,
		Status: domain.VaultStatusActive,
	}))
	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: dest, VaultAddress: "vault-dst", TokenAccount: "token-dst",
		Status: domain.VaultStatusActive,
	}))

	result, err := mgr.Transfer(ctx, source, dest, 6_000_000, domain.ReasonSettlement, liquidationEngineKey)
	require.NoError(t, err)
	require.NotEmpty(t, result.Signature)

	require.Equal(t, int64(4_000_000), result.Source.TotalBalance)
	require.Equal(t, int64(0), result.Source.LockedBalance)
	require.Equal(t, int64(4_000_000), result.Source.AvailableBalance)

	require.Equal(t, int64(6_000_000), result.Destination.TotalBalance)
	require.Equal(t, int64(6_000_000), result.Destination.AvailableBalance)
}

func TestTransferRequiresSigner(t *testing.T) {
	mgr, _, _, _ := newTestManager(t)
	_, err := mgr.Transfer(context.Background(), "a", "b", 1, domain.ReasonSettlement, "")
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrSignerRequired, code)
}

func TestDepositPublishesBalanceUpdate(t *testing.T) {
	mgr, st, cl, registry := newTestManager(t)
	ctx := context.Background()
	owner := "user-notify"
	userKey := writeKeyFile(t, 6)

	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "vault-n", TokenAccount: "token-n", Status: domain.VaultStatusActive,
	}))
	cl.SetTokenBalance("token-n", 1_000_000)

	sub := registry.Register(owner)
	_, err := mgr.Deposit(ctx, owner, 1_000_000, userKey)
	require.NoError(t, err)

	msg := <-sub.Messages()
	require.Contains(t, string(msg), "BalanceUpdate")
}
