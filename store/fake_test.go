package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/store"
)

func newVault(owner string) *domain.Vault {
	return &domain.Vault{
		Owner:            owner,
		VaultAddress:     "vault-" + owner,
		TokenAccount:     "token-" + owner,
		TotalBalance:     1000,
		LockedBalance:    0,
		AvailableBalance: 1000,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
		Status:           domain.VaultStatusActive,
	}
}

func TestFakeStoreUpsertAndGetVaultRoundTrip(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()

	require.NoError(t, s.UpsertVault(ctx, newVault("alice")))

	got, err := s.GetVault(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Equal(t, int64(1000), got.TotalBalance)

	missing, err := s.GetVault(ctx, "nobody")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestFakeStoreUpdateBalancesUnknownOwnerFails(t *testing.T) {
	s := store.NewFakeStore()
	err := s.UpdateBalances(context.Background(), "ghost", 1, 0, 1)
	require.Error(t, err)
	code, ok := domain.CodeOf(err)
	require.True(t, ok)
	require.Equal(t, domain.ErrVaultNotFound, code)
}

func TestFakeStoreUpdateBalancesAppliesNewTriple(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	require.NoError(t, s.UpsertVault(ctx, newVault("alice")))

	require.NoError(t, s.UpdateBalances(ctx, "alice", 900, 200, 700))

	got, err := s.GetVault(ctx, "alice")
	require.NoError(t, err)
	require.Equal(t, int64(900), got.TotalBalance)
	require.Equal(t, int64(200), got.LockedBalance)
	require.Equal(t, int64(700), got.AvailableBalance)
}

func TestFakeStoreListActiveVaultsPaginatesInOwnerOrder(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	for _, owner := range []string{"carol", "alice", "bob"} {
		require.NoError(t, s.UpsertVault(ctx, newVault(owner)))
	}
	paused := newVault("dave")
	paused.Status = domain.VaultStatusPaused
	require.NoError(t, s.UpsertVault(ctx, paused))

	page1, err := s.ListActiveVaults(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, page1, 2)
	require.Equal(t, "alice", page1[0].Owner)
	require.Equal(t, "bob", page1[1].Owner)

	page2, err := s.ListActiveVaults(ctx, 2, 2)
	require.NoError(t, err)
	require.Len(t, page2, 1)
	require.Equal(t, "carol", page2[0].Owner)

	page3, err := s.ListActiveVaults(ctx, 2, 10)
	require.NoError(t, err)
	require.Empty(t, page3)
}

func journalEntry(owner string, txType domain.TransactionType, amount int64) *domain.JournalEntry {
	return &domain.JournalEntry{
		ID:         uuid.NewString(),
		VaultOwner: owner,
		Type:       txType,
		Amount:     amount,
		Status:     domain.TxStatusPending,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func TestFakeStoreCreateAndUpdateJournalStatus(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	e := journalEntry("alice", domain.TxTypeDeposit, 500)
	require.NoError(t, s.CreateJournal(ctx, e))

	sig := "sig-1"
	require.NoError(t, s.UpdateJournalStatus(ctx, e.ID, domain.TxStatusConfirmed, &sig))

	entries, err := s.ListJournal(ctx, "alice", 10, 0, nil)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, domain.TxStatusConfirmed, entries[0].Status)
	require.Equal(t, &sig, entries[0].Signature)
	require.NotNil(t, entries[0].ConfirmedAt)
}

func TestFakeStoreUpdateJournalStatusUnknownIDFails(t *testing.T) {
	s := store.NewFakeStore()
	err := s.UpdateJournalStatus(context.Background(), "missing-id", domain.TxStatusFailed, nil)
	require.Error(t, err)
}

func TestFakeStoreListJournalNewestFirstWithTypeFilter(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	require.NoError(t, s.CreateJournal(ctx, journalEntry("alice", domain.TxTypeDeposit, 100)))
	require.NoError(t, s.CreateJournal(ctx, journalEntry("alice", domain.TxTypeWithdrawal, 40)))
	require.NoError(t, s.CreateJournal(ctx, journalEntry("alice", domain.TxTypeDeposit, 25)))
	require.NoError(t, s.CreateJournal(ctx, journalEntry("bob", domain.TxTypeDeposit, 10)))

	all, err := s.ListJournal(ctx, "alice", 10, 0, nil)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, int64(25), all[0].Amount)

	deposit := domain.TxTypeDeposit
	filtered, err := s.ListJournal(ctx, "alice", 10, 0, &deposit)
	require.NoError(t, err)
	require.Len(t, filtered, 2)
	for _, e := range filtered {
		require.Equal(t, domain.TxTypeDeposit, e.Type)
	}
}

func TestFakeStoreListJournalClampsOversizedLimit(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	for i := 0; i < 150; i++ {
		require.NoError(t, s.CreateJournal(ctx, journalEntry("alice", domain.TxTypeFee, 1)))
	}

	page, err := s.ListJournal(ctx, "alice", 1000, 0, nil)
	require.NoError(t, err)
	require.Len(t, page, 100)
}

func TestFakeStoreAggregateTVLSumsActiveVaultsOnly(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	require.NoError(t, s.UpsertVault(ctx, newVault("alice")))
	require.NoError(t, s.UpsertVault(ctx, newVault("bob")))
	paused := newVault("carol")
	paused.Status = domain.VaultStatusPaused
	require.NoError(t, s.UpsertVault(ctx, paused))

	total, locked, available, activeCount, err := s.AggregateTVL(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(2000), total)
	require.Equal(t, int64(0), locked)
	require.Equal(t, int64(2000), available)
	require.Equal(t, int64(2), activeCount)
}

func TestFakeStoreCreateBalanceSnapshotAssignsID(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	snap := &domain.BalanceSnapshot{VaultOwner: "alice", TotalBalance: 100, SnapshotType: domain.SnapshotPeriodic}
	require.NoError(t, s.CreateBalanceSnapshot(ctx, snap))
	require.NotZero(t, snap.ID)
	require.Len(t, s.BalanceSnapshots(), 1)
}

func TestFakeStoreCreateReconciliationLogRecordsEntry(t *testing.T) {
	s := store.NewFakeStore()
	ctx := context.Background()
	entry := &domain.ReconciliationLogEntry{
		VaultOwner: "alice",
		Expected:   100,
		Actual:     90,
		Difference: 10,
		AutoFixed:  true,
	}
	require.NoError(t, s.CreateReconciliationLog(ctx, entry))
	require.NotZero(t, entry.ID)

	logs := s.ReconciliationLogs()
	require.Len(t, logs, 1)
	require.Equal(t, int64(10), logs[0].Difference)
}
