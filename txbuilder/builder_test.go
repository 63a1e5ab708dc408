package txbuilder

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/domain"
)

func TestBuildDepositEncodesAmountAndAccounts(t *testing.T) {
	tx, err := BuildDeposit("owner1", "mint1", 1_000_000)
	require.NoError(t, err)

	require.Equal(t, OpDeposit, tx.Operation)
	require.Equal(t, discriminators[OpDeposit][:], tx.Instruction[:8])
	require.Equal(t, uint64(1_000_000), binary.LittleEndian.Uint64(tx.Instruction[8:16]))
	require.Len(t, tx.Accounts, 3)
	require.True(t, tx.Accounts[0].IsSigner)
	require.Equal(t, "owner1", tx.FeePayer)
}

func TestBuildLockSignerIsPositionManager(t *testing.T) {
	tx, err := BuildLock("owner1", "pm-pubkey", 500)
	require.NoError(t, err)

	require.Equal(t, "pm-pubkey", tx.FeePayer)
	require.True(t, tx.Accounts[0].IsSigner)
	require.Equal(t, "pm-pubkey", tx.Accounts[0].Pubkey)
}

func TestBuildTransferEncodesReasonByte(t *testing.T) {
	tx, err := BuildTransfer("owner1", "owner2", "liq-pubkey", 250, domain.ReasonLiquidation)
	require.NoError(t, err)

	require.Equal(t, byte(1), tx.Instruction[16])
	require.Len(t, tx.Accounts, 4)
}

func TestEncodeDecodeUnsignedTransactionRoundTrip(t *testing.T) {
	tx, err := BuildWithdraw("owner1", "mint1", 42)
	require.NoError(t, err)

	encoded, err := tx.Encode()
	require.NoError(t, err)

	decoded, err := DecodeUnsignedTransaction(encoded)
	require.NoError(t, err)
	require.Equal(t, tx.Operation, decoded.Operation)
	require.Equal(t, tx.Instruction, decoded.Instruction)
	require.Equal(t, tx.Accounts, decoded.Accounts)
}
