// Package metrics exposes the Prometheus collectors this service's
// background loops and notification fan-out update. Modeled on the
// promauto-registered counters/gauges the teacher wires for channel and
// peer bookkeeping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// JournalEntriesTotal counts every journal entry written, labeled by
	// transaction type.
	JournalEntriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "journal_entries_total",
		Help:      "Total number of transaction journal entries written, by type.",
	}, []string{"type"})

	// ReconciliationDriftTotal counts vaults found to have drifted from
	// chain during a Balance Tracker tick.
	ReconciliationDriftTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "reconciliation_drift_total",
		Help:      "Total number of vaults found drifted from chain during reconciliation.",
	})

	// ReconciliationLastDifference records the magnitude of the most
	// recent single-vault drift observed.
	ReconciliationLastDifference = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vault",
		Name:      "reconciliation_last_difference",
		Help:      "Absolute balance difference of the most recently reconciled vault.",
	})

	// NotifyActiveSubscribers is the current count of live subscribers
	// across every user.
	NotifyActiveSubscribers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vault",
		Name:      "notify_active_subscribers",
		Help:      "Current number of live notification subscribers across all users.",
	})

	// NotifyDeliveriesTotal counts successful event deliveries to
	// subscribers.
	NotifyDeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "notify_deliveries_total",
		Help:      "Total number of events delivered to live subscribers.",
	})

	// NotifyPrunesTotal counts dead subscribers removed from the
	// registry.
	NotifyPrunesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "notify_prunes_total",
		Help:      "Total number of dead subscribers pruned from the registry.",
	})

	// LowBalanceAlertsTotal counts low-balance alerts raised by the
	// Vault Monitor.
	LowBalanceAlertsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vault",
		Name:      "low_balance_alerts_total",
		Help:      "Total number of low-balance alerts raised.",
	})
)
