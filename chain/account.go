package chain

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"

	"github.com/clearvault/vaultd/domain"
)

// vaultAccountLayoutSize is the fixed on-chain account layout per
// spec.md §4.1: 8-byte type tag, then
// owner(32) + token_account(32) + total(8) + locked(8) + available(8) +
// deposited(8) + withdrawn(8) + created_at(8) + bump(1) = 121 bytes.
const vaultAccountLayoutSize = 8 + 32 + 32 + 8 + 8 + 8 + 8 + 8 + 8 + 1

// deserializeVaultAccount decodes the fixed-offset vault account layout.
// Only the fields the engine actually projects (total/locked/available/
// deposited/withdrawn/created_at, plus owner/token_account/bump) are
// populated, matching "fields beyond ... populate the returned structure"
// in spec.md §4.1.
func deserializeVaultAccount(raw []byte) (*domain.VaultAccountData, error) {
	if len(raw) != vaultAccountLayoutSize {
		return nil, fmt.Errorf(
			"vault account layout mismatch: got %d bytes, want %d",
			len(raw), vaultAccountLayoutSize,
		)
	}

	off := 8 // skip the type tag
	owner := raw[off : off+32]
	off += 32
	tokenAccount := raw[off : off+32]
	off += 32
	total := binary.LittleEndian.Uint64(raw[off : off+8])
	off += 8
	locked := binary.LittleEndian.Uint64(raw[off : off+8])
	off += 8
	available := binary.LittleEndian.Uint64(raw[off : off+8])
	off += 8
	deposited := binary.LittleEndian.Uint64(raw[off : off+8])
	off += 8
	withdrawn := binary.LittleEndian.Uint64(raw[off : off+8])
	off += 8
	createdAt := int64(binary.LittleEndian.Uint64(raw[off : off+8]))
	off += 8
	bump := raw[off]

	return &domain.VaultAccountData{
		Owner:            hex.EncodeToString(owner),
		TokenAccount:     hex.EncodeToString(tokenAccount),
		TotalBalance:     total,
		LockedBalance:    locked,
		AvailableBalance: available,
		TotalDeposited:   deposited,
		TotalWithdrawn:   withdrawn,
		CreatedAt:        createdAt,
		Bump:             bump,
	}, nil
}
