package txbuilder

// Operation names one of the six vault instructions this service can
// build. Exported so callers (vault.Manager) can label journal entries and
// events without re-deriving the operation from the instruction bytes.
type Operation string

const (
	OpInitializeVault     Operation = "initialize_vault"
	OpDeposit             Operation = "deposit"
	OpWithdraw            Operation = "withdraw"
	OpLockCollateral      Operation = "lock_collateral"
	OpUnlockCollateral    Operation = "unlock_collateral"
	OpTransferCollateral  Operation = "transfer_collateral"
)

// discriminators holds the fixed 8-byte instruction-type tags. These values
// are part of the external contract with the chain program (spec.md §9)
// and must never change without a coordinated chain-side upgrade.
//
// initialize_vault's tag is implementation-defined per spec.md §4.3 ("must
// match on-chain program"); the constant below is this deployment's choice
// and is equally fixed once chosen.
var discriminators = map[Operation][8]byte{
	OpInitializeVault:    {175, 175, 109, 31, 13, 152, 155, 237},
	OpDeposit:            {242, 35, 198, 137, 82, 225, 242, 182},
	OpWithdraw:           {183, 18, 70, 156, 148, 109, 161, 34},
	OpLockCollateral:     {161, 216, 135, 122, 12, 104, 211, 101},
	OpUnlockCollateral:   {167, 213, 221, 147, 129, 209, 132, 190},
	OpTransferCollateral: {157, 163, 63, 27, 242, 72, 251, 97},
}

// reasonCode maps a TransferReason to the single byte argument
// transfer_collateral expects.
func reasonCode(reason string) byte {
	switch reason {
	case "liquidation":
		return 1
	case "fee":
		return 2
	default:
		return 0
	}
}
