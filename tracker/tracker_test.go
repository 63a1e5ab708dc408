package tracker_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/tracker"
)

func TestReconciliationHealsDrift(t *testing.T) {
	ctx := context.Background()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()

	owner := "user-drift"
	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "vault-drift", TokenAccount: "token-drift",
		TotalBalance: 100_000_000, AvailableBalance: 100_000_000, Status: domain.VaultStatusActive,
	}))
	cl.SeedAccount(owner, &domain.VaultAccountData{
		Owner: owner, TokenAccount: "token-drift",
		TotalBalance: 150_000_000, AvailableBalance: 150_000_000,
	})

	tr := tracker.New(st, cl, time.Hour)
	tr.Tick(ctx)

	v, err := st.GetVault(ctx, owner)
	require.NoError(t, err)
	require.Equal(t, int64(150_000_000), v.TotalBalance)
	require.Equal(t, int64(150_000_000), v.AvailableBalance)

	logs := st.ReconciliationLogs()
	require.Len(t, logs, 1)
	require.Equal(t, int64(100_000_000), logs[0].Expected)
	require.Equal(t, int64(150_000_000), logs[0].Actual)
	require.Equal(t, int64(50_000_000), logs[0].Difference)
	require.True(t, logs[0].AutoFixed)
}

func TestReconciliationNoOpWhenNoDrift(t *testing.T) {
	ctx := context.Background()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()

	owner := "user-steady"
	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "vault-steady", TokenAccount: "token-steady",
		TotalBalance: 10, AvailableBalance: 10, Status: domain.VaultStatusActive,
	}))
	cl.SeedAccount(owner, &domain.VaultAccountData{
		Owner: owner, TokenAccount: "token-steady", TotalBalance: 10, AvailableBalance: 10,
	})

	tr := tracker.New(st, cl, time.Hour)
	tr.Tick(ctx)
	tr.Tick(ctx)

	require.Empty(t, st.ReconciliationLogs())
}
