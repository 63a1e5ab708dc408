package monitor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/monitor"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
)

func TestCheckLowBalancesAlertsSubscriber(t *testing.T) {
	ctx := context.Background()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()
	registry := notify.NewRegistry()

	owner := "low-balance-user"
	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: owner, VaultAddress: "v", TokenAccount: "t",
		TotalBalance: 1, AvailableBalance: 1, Status: domain.VaultStatusActive,
	}))

	sub := registry.Register(owner)
	m := monitor.New(st, cl, registry, 0, 100_000_000, "test")
	m.CheckLowBalances(ctx)

	msg := <-sub.Messages()
	require.Contains(t, string(msg), "LowBalanceAlert")
}

func TestCheckHealthBroadcastsHealthUpdate(t *testing.T) {
	ctx := context.Background()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()
	registry := notify.NewRegistry()

	sub := registry.Register("any-user")
	m := monitor.New(st, cl, registry, 0, 100_000_000, "test-version")
	m.CheckHealth(ctx)

	msg := <-sub.Messages()
	require.Contains(t, string(msg), "HealthUpdate")
	require.Contains(t, string(msg), "test-version")
}

func TestRollupTVLPersistsSnapshot(t *testing.T) {
	ctx := context.Background()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()
	registry := notify.NewRegistry()

	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: "tvl-user", VaultAddress: "v", TokenAccount: "t",
		TotalBalance: 500, AvailableBalance: 500, Status: domain.VaultStatusActive,
	}))

	m := monitor.New(st, cl, registry, 0, 100, "test")
	m.RollupTVL(ctx)

	total, _, _, activeCount, err := st.AggregateTVL(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(500), total)
	require.Equal(t, int64(1), activeCount)
}
