package chain

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

func buildAccountBytes(t *testing.T, total, locked, available, deposited, withdrawn uint64, bump byte) []byte {
	t.Helper()
	raw := make([]byte, vaultAccountLayoutSize)
	off := 8
	off += 32 // owner
	off += 32 // token account
	binary.LittleEndian.PutUint64(raw[off:], total)
	off += 8
	binary.LittleEndian.PutUint64(raw[off:], locked)
	off += 8
	binary.LittleEndian.PutUint64(raw[off:], available)
	off += 8
	binary.LittleEndian.PutUint64(raw[off:], deposited)
	off += 8
	binary.LittleEndian.PutUint64(raw[off:], withdrawn)
	off += 8
	binary.LittleEndian.PutUint64(raw[off:], 1700000000)
	off += 8
	raw[off] = bump
	return raw
}

func TestDeserializeVaultAccountRoundTrip(t *testing.T) {
	raw := buildAccountBytes(t, 1000, 300, 700, 1500, 500, 255)

	account, err := deserializeVaultAccount(raw)
	require.NoError(t, err)
	require.Equal(t, uint64(1000), account.TotalBalance)
	require.Equal(t, uint64(300), account.LockedBalance)
	require.Equal(t, uint64(700), account.AvailableBalance)
	require.Equal(t, uint64(1500), account.TotalDeposited)
	require.Equal(t, uint64(500), account.TotalWithdrawn)
	require.Equal(t, uint8(255), account.Bump)
}

func TestDeserializeVaultAccountRejectsWrongLength(t *testing.T) {
	_, err := deserializeVaultAccount([]byte{1, 2, 3})
	require.Error(t, err)
}
