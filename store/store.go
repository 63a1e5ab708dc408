// Package store is the Cache Store: the relational projection of on-chain
// vault state, the transaction journal, periodic balance snapshots, the
// reconciliation log, and TVL snapshots. The chain remains the source of
// truth (see spec.md §4.2, §9); this package only persists and serves the
// cache.
package store

import (
	"context"
	"time"

	"github.com/clearvault/vaultd/domain"
)

// Store is the contract the Vault Manager, Balance Tracker and Vault
// Monitor depend on. An interface so unit tests can run against an
// in-memory fake instead of a live Postgres instance.
type Store interface {
	// GetVault returns the cached vault for owner, or (nil, nil) if
	// unknown.
	GetVault(ctx context.Context, owner string) (*domain.Vault, error)

	// UpsertVault inserts or replaces the vault row keyed by owner.
	UpsertVault(ctx context.Context, vault *domain.Vault) error

	// UpdateBalances writes the (total, locked, available) triple for
	// owner, returning ErrVaultNotFound if owner is not cached.
	UpdateBalances(ctx context.Context, owner string, total, locked, available int64) error

	// ListActiveVaults returns a page of vaults with status=active,
	// ordered by owner, used by the Balance Tracker and Vault Monitor to
	// walk the full active set in bounded batches.
	ListActiveVaults(ctx context.Context, limit, offset int) ([]*domain.Vault, error)

	// CreateJournal inserts a new pending (or otherwise-stated) journal
	// entry. Callers set entry.ID before calling.
	CreateJournal(ctx context.Context, entry *domain.JournalEntry) error

	// UpdateJournalStatus transitions a journal entry's status, setting
	// confirmed_at only when transitioning to confirmed.
	UpdateJournalStatus(
		ctx context.Context, id string, status domain.TransactionStatus, signature *string,
	) error

	// ListJournal returns up to limit journal entries for owner, newest
	// first, skipping offset rows, optionally filtered by txType.
	ListJournal(
		ctx context.Context, owner string, limit, offset int, txType *domain.TransactionType,
	) ([]*domain.JournalEntry, error)

	// AggregateTVL sums total/locked/available across status=active
	// vaults and reports how many are active.
	AggregateTVL(ctx context.Context) (total, locked, available, activeCount int64, err error)

	// CreateBalanceSnapshot records a point-in-time balance copy.
	CreateBalanceSnapshot(ctx context.Context, snapshot *domain.BalanceSnapshot) error

	// CreateTVLSnapshot persists an aggregate rollup.
	CreateTVLSnapshot(ctx context.Context, snapshot *domain.TvlSnapshot) error

	// CreateReconciliationLog records one divergence found by the
	// Balance Tracker.
	CreateReconciliationLog(ctx context.Context, entry *domain.ReconciliationLogEntry) error

	// Ping verifies connectivity for the health endpoint.
	Ping(ctx context.Context) error

	// Close releases the underlying connection pool.
	Close()
}

// clampLimit applies the "limit capped at 100" / "offset clamped at >= 0"
// rule from spec.md §6.1 uniformly for every caller (store implementations
// and any handler that forgot to).
func clampLimit(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// now exists so tests can observe a fixed notion of "now" without this
// package importing a clock abstraction it doesn't otherwise need.
var now = time.Now
