// Package monitor implements the Vault Monitor: three independent,
// lower-frequency tickers for low-balance alerting, a redundant TVL
// rollup, and health probing, per spec.md §4.7. Deliberately redundant
// with the Balance Tracker's own TVL snapshot — this loop runs even if
// the tracker is delayed or stalled.
package monitor

import (
	"context"
	"time"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/metrics"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
)

const (
	// DefaultBalanceCheckInterval is the low-balance alert tick period.
	DefaultBalanceCheckInterval = 30 * time.Second
	tvlInterval                 = 300 * time.Second
	healthInterval               = 120 * time.Second

	listBatchSize = 100
)

// Monitor runs the three independent tickers.
type Monitor struct {
	store              store.Store
	chainClient        chain.Client
	registry           *notify.Registry
	balanceCheckInterval time.Duration
	lowBalanceThreshold   int64 // smallest units
	version               string
}

// New builds a Monitor. balanceCheckInterval <= 0 falls back to
// DefaultBalanceCheckInterval. lowBalanceThreshold is in smallest token
// units (whole tokens × 10^6 per spec.md §6.5).
func New(
	st store.Store, chainClient chain.Client, registry *notify.Registry,
	balanceCheckInterval time.Duration, lowBalanceThreshold int64, version string,
) *Monitor {
	if balanceCheckInterval <= 0 {
		balanceCheckInterval = DefaultBalanceCheckInterval
	}
	return &Monitor{
		store: st, chainClient: chainClient, registry: registry,
		balanceCheckInterval: balanceCheckInterval,
		lowBalanceThreshold:  lowBalanceThreshold,
		version:              version,
	}
}

// Run starts all three tickers and blocks until ctx is canceled.
func (m *Monitor) Run(ctx context.Context) {
	balanceTicker := time.NewTicker(m.balanceCheckInterval)
	defer balanceTicker.Stop()
	tvlTicker := time.NewTicker(tvlInterval)
	defer tvlTicker.Stop()
	healthTicker := time.NewTicker(healthInterval)
	defer healthTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Infof("vault monitor stopping: %v", ctx.Err())
			return
		case <-balanceTicker.C:
			m.CheckLowBalances(ctx)
		case <-tvlTicker.C:
			m.RollupTVL(ctx)
		case <-healthTicker.C:
			m.CheckHealth(ctx)
		}
	}
}

// CheckLowBalances walks active vaults and alerts on any whose available
// balance has dropped below the configured threshold. Exported so tests
// can drive a single pass without waiting on the ticker.
func (m *Monitor) CheckLowBalances(ctx context.Context) {
	offset := 0
	for {
		vaults, err := m.store.ListActiveVaults(ctx, listBatchSize, offset)
		if err != nil {
			log.Warnf("low-balance check: failed to list active vaults: %v", err)
			return
		}
		if len(vaults) == 0 {
			return
		}

		for _, v := range vaults {
			if v.AvailableBalance >= m.lowBalanceThreshold {
				continue
			}
			metrics.LowBalanceAlertsTotal.Inc()
			if _, err := m.registry.SendToUser(v.Owner, domain.Event{
				Type: domain.EventLowBalanceAlert,
				Payload: domain.LowBalanceAlertPayload{
					Owner: v.Owner, AvailableBalance: v.AvailableBalance, Threshold: m.lowBalanceThreshold,
				},
			}); err != nil {
				log.Warnf("low-balance check: failed to notify owner=%s: %v", v.Owner, err)
			}
		}

		if len(vaults) < listBatchSize {
			return
		}
		offset += listBatchSize
	}
}

// RollupTVL recomputes the aggregate TVL and both persists a snapshot and
// broadcasts a TvlUpdate event.
func (m *Monitor) RollupTVL(ctx context.Context) {
	total, locked, available, activeCount, err := m.store.AggregateTVL(ctx)
	if err != nil {
		log.Warnf("TVL rollup: failed to aggregate: %v", err)
		return
	}

	snap := &domain.TvlSnapshot{
		TotalValueLocked: total, ActiveVaults: activeCount,
		TotalLocked: locked, TotalAvailable: available, Timestamp: time.Now(),
	}
	if err := m.store.CreateTVLSnapshot(ctx, snap); err != nil {
		log.Warnf("TVL rollup: failed to persist snapshot: %v", err)
	}

	if _, err := m.registry.Broadcast(domain.Event{
		Type: domain.EventTvlUpdate,
		Payload: domain.TvlUpdatePayload{
			TotalValueLocked: total, TotalLocked: locked, TotalAvailable: available, ActiveVaults: activeCount,
		},
	}); err != nil {
		log.Warnf("TVL rollup: failed to broadcast TvlUpdate: %v", err)
	}
}

// CheckHealth probes cache connectivity and chain health, broadcasting a
// HealthUpdate and logging an alert on either failure.
func (m *Monitor) CheckHealth(ctx context.Context) {
	dbErr := m.store.Ping(ctx)
	if dbErr != nil {
		log.Errorf("database_unhealthy: %v", dbErr)
	}

	chainHealthy := m.chainClient.GetHealth(ctx)
	if !chainHealthy {
		log.Errorf("chain_unhealthy")
	}

	if _, err := m.registry.Broadcast(domain.Event{
		Type: domain.EventHealthUpdate,
		Payload: domain.HealthUpdatePayload{
			Database: dbErr == nil, ChainRPC: chainHealthy, Version: m.version,
		},
	}); err != nil {
		log.Warnf("health check: failed to broadcast HealthUpdate: %v", err)
	}
}
