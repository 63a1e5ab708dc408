// Package tracker implements the Balance Tracker: a periodic reconciliation
// loop that walks every active vault, compares cache against chain, heals
// drift, and snapshots TVL. The chain remains the sole source of truth
// (spec.md §4.6, §9); this is the only component allowed to overwrite the
// cache wholesale. Modeled on the teacher's periodic-sweep goroutines
// (e.g. the breach arbiter's retribution-store walk).
package tracker

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/metrics"
	"github.com/clearvault/vaultd/store"
)

const (
	// DefaultInterval is the reconciliation tick period (spec.md §6.5).
	DefaultInterval = 300 * time.Second

	batchSize  = 100
	batchPause = 100 * time.Millisecond
)

// Tracker runs the reconciliation loop.
type Tracker struct {
	store       store.Store
	chainClient chain.Client
	interval    time.Duration
}

// New builds a Tracker. interval <= 0 falls back to DefaultInterval.
func New(st store.Store, chainClient chain.Client, interval time.Duration) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{store: st, chainClient: chainClient, interval: interval}
}

// Run blocks, ticking every t.interval until ctx is canceled. Background
// loops otherwise run for process lifetime per spec.md §5; ctx-cancellation
// is this module's one deliberate deviation, so the process can shut down
// cleanly instead of being killed mid-tick.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("balance tracker stopping: %v", ctx.Err())
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick performs one full reconciliation pass: walk active vaults in
// batches, heal drift, then snapshot TVL. Exported so tests can drive a
// single pass deterministically instead of waiting on the ticker.
func (t *Tracker) Tick(ctx context.Context) {
	log.Debugf("reconciliation tick starting")

	offset := 0
	for {
		vaults, err := t.store.ListActiveVaults(ctx, batchSize, offset)
		if err != nil {
			log.Warnf("reconciliation: failed to list active vaults at offset=%d: %v", offset, err)
			return
		}
		if len(vaults) == 0 {
			break
		}

		g, gctx := errgroup.WithContext(ctx)
		for _, v := range vaults {
			v := v
			g.Go(func() error {
				t.reconcileOne(gctx, v)
				return nil
			})
		}
		_ = g.Wait()

		if len(vaults) < batchSize {
			break
		}
		offset += batchSize

		select {
		case <-time.After(batchPause):
		case <-ctx.Done():
			return
		}
	}

	t.snapshotTVL(ctx)
	log.Debugf("reconciliation tick complete")
}

// reconcileOne compares v's cached balance against chain and, on any
// divergence, overwrites the cache wholesale and logs the correction.
func (t *Tracker) reconcileOne(ctx context.Context, v *domain.Vault) {
	onChain, err := t.chainClient.GetVaultAccount(ctx, v.Owner)
	if err != nil {
		log.Warnf("reconciliation: chain lookup failed for owner=%s: %v", v.Owner, err)
		return
	}
	if onChain == nil {
		log.Warnf("reconciliation: vault %s has no on-chain account", v.Owner)
		return
	}

	chainTotal := int64(onChain.TotalBalance)
	if chainTotal == v.TotalBalance {
		return
	}

	difference := chainTotal - v.TotalBalance
	if difference < 0 {
		difference = -difference
	}

	expected := v.TotalBalance
	chainLocked := int64(onChain.LockedBalance)
	chainAvailable := int64(onChain.AvailableBalance)

	if err := t.store.UpdateBalances(ctx, v.Owner, chainTotal, chainLocked, chainAvailable); err != nil {
		log.Warnf("reconciliation: failed to correct cache for owner=%s: %v", v.Owner, err)
		return
	}

	entry := &domain.ReconciliationLogEntry{
		VaultOwner: v.Owner,
		Expected:   expected,
		Actual:     chainTotal,
		Difference: difference,
		AutoFixed:  true,
		Notes:      "cache overwritten from chain during periodic reconciliation",
		CreatedAt:  time.Now(),
	}
	if err := t.store.CreateReconciliationLog(ctx, entry); err != nil {
		log.Warnf("reconciliation: failed to log correction for owner=%s: %v", v.Owner, err)
	}

	metrics.ReconciliationDriftTotal.Inc()
	metrics.ReconciliationLastDifference.Set(float64(difference))
	log.Infof("reconciled owner=%s expected=%d actual=%d difference=%d", v.Owner, expected, chainTotal, difference)
}

// snapshotTVL aggregates across active vaults and persists a TvlSnapshot.
func (t *Tracker) snapshotTVL(ctx context.Context) {
	total, locked, available, activeCount, err := t.store.AggregateTVL(ctx)
	if err != nil {
		log.Warnf("reconciliation: failed to aggregate TVL: %v", err)
		return
	}

	snap := &domain.TvlSnapshot{
		TotalValueLocked: total,
		ActiveVaults:     activeCount,
		TotalLocked:      locked,
		TotalAvailable:   available,
		Timestamp:        time.Now(),
	}
	if err := t.store.CreateTVLSnapshot(ctx, snap); err != nil {
		log.Warnf("reconciliation: failed to persist TVL snapshot: %v", err)
	}
}
