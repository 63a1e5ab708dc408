package domain

// EventType tags the notification envelope so subscribers (and the
// WebSocket JSON encoding) can discriminate without inspecting payload
// shape. Matches the taxonomy in spec.md §6.4.
type EventType string

const (
	EventBalanceUpdate        EventType = "BalanceUpdate"
	EventTransactionConfirmed EventType = "TransactionConfirmed"
	EventCollateralLocked     EventType = "CollateralLocked"
	EventCollateralUnlocked   EventType = "CollateralUnlocked"
	EventTvlUpdate            EventType = "TvlUpdate"
	EventHealthUpdate         EventType = "HealthUpdate"
	EventPing                 EventType = "Ping"

	// EventLowBalanceAlert is raised by the Vault Monitor's balance-check
	// tick when a vault's available balance drops below the configured
	// threshold. Not part of the explicit event table in spec.md §6.4,
	// which names only BalanceUpdate/TransactionConfirmed/
	// CollateralLocked/CollateralUnlocked/TvlUpdate/HealthUpdate, but the
	// component design (§4.7) requires "low_balance alerts" be emitted;
	// this is this deployment's chosen shape for that alert.
	EventLowBalanceAlert EventType = "LowBalanceAlert"
)

// Event is the envelope delivered to every subscriber. Payload is one of
// the Balance/Transaction/Collateral/Tvl/Health structs below, kept as
// `any` so notify.Registry can serialize once per send without a type
// switch on every subscriber.
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// BalanceUpdatePayload is emitted by any write operation.
type BalanceUpdatePayload struct {
	Owner            string `json:"owner"`
	TotalBalance     int64  `json:"total_balance"`
	LockedBalance    int64  `json:"locked_balance"`
	AvailableBalance int64  `json:"available_balance"`
}

// TransactionConfirmedPayload is emitted whenever a write operation
// obtains a chain signature.
type TransactionConfirmedPayload struct {
	TransactionID   string `json:"transaction_id"`
	TransactionType string `json:"transaction_type"`
	Amount          int64  `json:"amount"`
	Signature       string `json:"signature"`
}

// CollateralLockedPayload / CollateralUnlockedPayload are emitted by lock
// and unlock respectively.
type CollateralLockedPayload struct {
	Owner            string `json:"owner"`
	Amount           int64  `json:"amount"`
	PositionID       string `json:"position_id"`
	LockedBalance    int64  `json:"locked_balance"`
	AvailableBalance int64  `json:"available_balance"`
}

type CollateralUnlockedPayload struct {
	Owner            string `json:"owner"`
	Amount           int64  `json:"amount"`
	PositionID       string `json:"position_id"`
	LockedBalance    int64  `json:"locked_balance"`
	AvailableBalance int64  `json:"available_balance"`
}

// TvlUpdatePayload is pushed by the Vault Monitor's periodic TVL rollup.
type TvlUpdatePayload struct {
	TotalValueLocked int64 `json:"total_value_locked"`
	TotalLocked      int64 `json:"total_locked"`
	TotalAvailable   int64 `json:"total_available"`
	ActiveVaults     int64 `json:"active_vaults"`
}

// HealthUpdatePayload is the welcome message sent on WebSocket connect and
// may also be pushed by the Vault Monitor's health probe.
type HealthUpdatePayload struct {
	Database bool   `json:"database"`
	ChainRPC bool   `json:"chain_rpc"`
	Version  string `json:"version"`
}

// PingPayload echoes whatever text frame a client sent, matching the
// "echoed Ping acknowledgement" behavior of spec.md §6.2.
type PingPayload struct {
	Echo string `json:"echo"`
}

// LowBalanceAlertPayload is pushed by the Vault Monitor's balance-check
// tick when a vault's available balance drops below threshold.
type LowBalanceAlertPayload struct {
	Owner            string `json:"owner"`
	AvailableBalance int64  `json:"available_balance"`
	Threshold        int64  `json:"threshold"`
}
