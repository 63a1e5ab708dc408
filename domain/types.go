// Package domain holds the entities and cross-cutting value types shared by
// every layer of the vault control plane: the relational cache (store), the
// chain wrapper (chain), the instruction encoder (txbuilder), the orchestrator
// (vault), the reconciliation loop (tracker), the alerting loop (monitor) and
// the notification fan-out (notify). None of these types own any I/O; they
// are the nouns the rest of the module operates on.
package domain

import "time"

// VaultStatus is the lifecycle state of a vault. Only VaultStatusActive is
// ever written by this implementation; VaultStatusPaused and
// VaultStatusClosed exist in the model but their transition triggers are an
// open question left unresolved by the specification this module implements
// (see DESIGN.md).
type VaultStatus string

const (
	VaultStatusActive VaultStatus = "active"
	VaultStatusPaused VaultStatus = "paused"
	VaultStatusClosed VaultStatus = "closed"
)

// Vault is the off-chain projection of a single user's on-chain collateral
// account.
type Vault struct {
	Owner            string
	VaultAddress     string
	TokenAccount     string
	TotalBalance     int64
	LockedBalance    int64
	AvailableBalance int64
	TotalDeposited   int64
	TotalWithdrawn   int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Status           VaultStatus
}

// TransactionType enumerates the journal entry kinds.
type TransactionType string

const (
	TxTypeDeposit      TransactionType = "deposit"
	TxTypeWithdrawal   TransactionType = "withdrawal"
	TxTypeLock         TransactionType = "lock"
	TxTypeUnlock       TransactionType = "unlock"
	TxTypeTransferIn   TransactionType = "transfer_in"
	TxTypeTransferOut  TransactionType = "transfer_out"
	TxTypeFee          TransactionType = "fee"
	TxTypeInitialize   TransactionType = "initialize"
)

// TransactionStatus is the journal entry's progress through the
// build-sign-submit-confirm pipeline.
type TransactionStatus string

const (
	TxStatusPending   TransactionStatus = "pending"
	TxStatusSubmitted TransactionStatus = "submitted"
	TxStatusConfirmed TransactionStatus = "confirmed"
	TxStatusFailed    TransactionStatus = "failed"
)

// JournalEntry records one leg of a vault operation. Transfers produce two
// entries (a transfer_out on the source, a transfer_in on the destination);
// every other operation produces exactly one.
type JournalEntry struct {
	ID             string
	VaultOwner     string
	Type           TransactionType
	Amount         int64
	Signature      *string
	Status         TransactionStatus
	BalanceBefore  int64
	BalanceAfter   int64
	Counterparty   *string
	Note           *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ConfirmedAt    *time.Time
}

// BalanceSnapshotType tags why a BalanceSnapshot was taken.
type BalanceSnapshotType string

const (
	SnapshotPeriodic      BalanceSnapshotType = "periodic"
	SnapshotEventTriggered BalanceSnapshotType = "event"
)

// BalanceSnapshot is a point-in-time copy of a vault's balance triple.
type BalanceSnapshot struct {
	ID               int64
	VaultOwner       string
	TotalBalance     int64
	LockedBalance    int64
	AvailableBalance int64
	Timestamp        time.Time
	SnapshotType     BalanceSnapshotType
}

// ReconciliationLogEntry records one divergence found (and, in this
// implementation, always auto-corrected) by the Balance Tracker.
type ReconciliationLogEntry struct {
	ID         int64
	VaultOwner string
	Expected   int64
	Actual     int64
	Difference int64
	AutoFixed  bool
	Notes      string
	CreatedAt  time.Time
}

// TvlSnapshot is an aggregate rollup across every active vault.
type TvlSnapshot struct {
	ID               int64
	TotalValueLocked int64
	ActiveVaults     int64
	TotalLocked      int64
	TotalAvailable   int64
	Timestamp        time.Time
}

// VaultAccountData is the deserialized form of the fixed 121-byte on-chain
// vault account layout (see chain.Client.GetVaultAccount).
type VaultAccountData struct {
	Owner            string
	TokenAccount     string
	TotalBalance     uint64
	LockedBalance    uint64
	AvailableBalance uint64
	TotalDeposited   uint64
	TotalWithdrawn   uint64
	CreatedAt        int64
	Bump             uint8
}

// TransferReason distinguishes why collateral moved between vaults. It does
// not change the locked/available decrement order (see the open question in
// spec.md §9 and DESIGN.md). It is encoded as the reason byte of the
// transfer_collateral instruction; it is not stored in the transfer journal
// entries.
type TransferReason string

const (
	ReasonSettlement  TransferReason = "settlement"
	ReasonLiquidation TransferReason = "liquidation"
	ReasonFee         TransferReason = "fee"
)

// ParseTransferReason maps an arbitrary string to a TransferReason,
// defaulting to settlement for anything unrecognized as required by
// spec.md §6.1.
func ParseTransferReason(s string) TransferReason {
	switch TransferReason(s) {
	case ReasonLiquidation:
		return ReasonLiquidation
	case ReasonFee:
		return ReasonFee
	default:
		return ReasonSettlement
	}
}
