// Package txbuilder constructs the unsigned chain instructions for every
// vault operation: initialize, deposit, withdraw, lock, unlock, transfer.
// Each operation is encoded as its fixed 8-byte instruction discriminator
// followed by little-endian arguments, plus the account metadata the
// on-chain program needs to authorize and route the instruction. The
// builder never signs or submits anything — that is txsubmit's job — and
// never validates business preconditions — that is vault.Manager's job at
// step 1 of its operation template.
package txbuilder

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"

	"github.com/clearvault/vaultd/chainaddr"
	"github.com/clearvault/vaultd/domain"
)

// AccountMeta mirrors the account-metadata triple every instruction-based
// chain program needs: the address, whether it must co-sign, and whether
// the program may mutate it.
type AccountMeta struct {
	Pubkey     string `json:"pubkey"`
	IsSigner   bool   `json:"is_signer"`
	IsWritable bool   `json:"is_writable"`
}

// UnsignedTransaction is the builder's output: an instruction plus its
// accounts, not yet bound to a blockhash or signed by anyone. txsubmit.Sign
// consumes this (by way of its base64 encoding) and produces a signed
// transaction bound to a fresh blockhash.
type UnsignedTransaction struct {
	Operation     Operation     `json:"operation"`
	Instruction   []byte        `json:"instruction"`
	Accounts      []AccountMeta `json:"accounts"`
	FeePayer      string        `json:"fee_payer"`
}

// Encode renders the unsigned transaction as the base64 string passed
// across the Vault Manager / Submitter boundary and returned to HTTP
// clients that must resubmit a signed-but-unsubmitted transaction later.
func (tx *UnsignedTransaction) Encode() (string, error) {
	raw, err := json.Marshal(tx)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// DecodeUnsignedTransaction is Encode's inverse, used by txsubmit when it
// re-binds a blockhash before signing.
func DecodeUnsignedTransaction(encoded string) (*UnsignedTransaction, error) {
	raw, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, err
	}
	var tx UnsignedTransaction
	if err := json.Unmarshal(raw, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

func encodeInstruction(op Operation, args ...any) []byte {
	var buf bytes.Buffer
	tag := discriminators[op]
	buf.Write(tag[:])
	for _, arg := range args {
		switch v := arg.(type) {
		case uint64:
			var scratch [8]byte
			binary.LittleEndian.PutUint64(scratch[:], v)
			buf.Write(scratch[:])
		case byte:
			buf.WriteByte(v)
		}
	}
	return buf.Bytes()
}

// BuildInitialize constructs the initialize_vault instruction. The signer
// and fee payer is the user.
func BuildInitialize(owner, mint string) (*UnsignedTransaction, error) {
	vaultAddr := chainaddr.VaultAddress(owner)
	tokenAccount := chainaddr.AssociatedTokenAccount(owner, mint)

	tx := &UnsignedTransaction{
		Operation:   OpInitializeVault,
		Instruction: encodeInstruction(OpInitializeVault),
		Accounts: []AccountMeta{
			{Pubkey: owner, IsSigner: true, IsWritable: true},
			{Pubkey: vaultAddr, IsSigner: false, IsWritable: true},
			{Pubkey: tokenAccount, IsSigner: false, IsWritable: true},
		},
		FeePayer: owner,
	}
	log.Debugf("built initialize_vault for owner=%s vault=%s", owner, vaultAddr)
	return tx, nil
}

// BuildDeposit constructs the deposit instruction. The signer and fee payer
// is the user.
func BuildDeposit(owner, mint string, amount uint64) (*UnsignedTransaction, error) {
	vaultAddr := chainaddr.VaultAddress(owner)
	tokenAccount := chainaddr.AssociatedTokenAccount(owner, mint)

	tx := &UnsignedTransaction{
		Operation:   OpDeposit,
		Instruction: encodeInstruction(OpDeposit, amount),
		Accounts: []AccountMeta{
			{Pubkey: owner, IsSigner: true, IsWritable: true},
			{Pubkey: vaultAddr, IsSigner: false, IsWritable: true},
			{Pubkey: tokenAccount, IsSigner: false, IsWritable: true},
		},
		FeePayer: owner,
	}
	return tx, nil
}

// BuildWithdraw constructs the withdraw instruction. The signer and fee
// payer is the user.
func BuildWithdraw(owner, mint string, amount uint64) (*UnsignedTransaction, error) {
	vaultAddr := chainaddr.VaultAddress(owner)
	tokenAccount := chainaddr.AssociatedTokenAccount(owner, mint)

	tx := &UnsignedTransaction{
		Operation:   OpWithdraw,
		Instruction: encodeInstruction(OpWithdraw, amount),
		Accounts: []AccountMeta{
			{Pubkey: owner, IsSigner: true, IsWritable: true},
			{Pubkey: vaultAddr, IsSigner: false, IsWritable: true},
			{Pubkey: tokenAccount, IsSigner: false, IsWritable: true},
		},
		FeePayer: owner,
	}
	return tx, nil
}

// BuildLock constructs the lock_collateral instruction. The signer and fee
// payer is the position manager, per spec.md §4.3.
func BuildLock(owner, positionManager string, amount uint64) (*UnsignedTransaction, error) {
	vaultAddr := chainaddr.VaultAddress(owner)
	authority := chainaddr.VaultAuthority()

	tx := &UnsignedTransaction{
		Operation:   OpLockCollateral,
		Instruction: encodeInstruction(OpLockCollateral, amount),
		Accounts: []AccountMeta{
			{Pubkey: positionManager, IsSigner: true, IsWritable: false},
			{Pubkey: vaultAddr, IsSigner: false, IsWritable: true},
			{Pubkey: authority, IsSigner: false, IsWritable: false},
		},
		FeePayer: positionManager,
	}
	return tx, nil
}

// BuildUnlock constructs the unlock_collateral instruction. The signer and
// fee payer is the position manager.
func BuildUnlock(owner, positionManager string, amount uint64) (*UnsignedTransaction, error) {
	vaultAddr := chainaddr.VaultAddress(owner)
	authority := chainaddr.VaultAuthority()

	tx := &UnsignedTransaction{
		Operation:   OpUnlockCollateral,
		Instruction: encodeInstruction(OpUnlockCollateral, amount),
		Accounts: []AccountMeta{
			{Pubkey: positionManager, IsSigner: true, IsWritable: false},
			{Pubkey: vaultAddr, IsSigner: false, IsWritable: true},
			{Pubkey: authority, IsSigner: false, IsWritable: false},
		},
		FeePayer: positionManager,
	}
	return tx, nil
}

// BuildTransfer constructs the transfer_collateral instruction. The signer
// and fee payer is the liquidation engine.
func BuildTransfer(
	sourceOwner, destOwner, liquidationEngine string,
	amount uint64, reason domain.TransferReason,
) (*UnsignedTransaction, error) {

	sourceVault := chainaddr.VaultAddress(sourceOwner)
	destVault := chainaddr.VaultAddress(destOwner)
	authority := chainaddr.VaultAuthority()

	tx := &UnsignedTransaction{
		Operation: OpTransferCollateral,
		Instruction: encodeInstruction(
			OpTransferCollateral, amount, reasonCode(string(reason)),
		),
		Accounts: []AccountMeta{
			{Pubkey: liquidationEngine, IsSigner: true, IsWritable: false},
			{Pubkey: sourceVault, IsSigner: false, IsWritable: true},
			{Pubkey: destVault, IsSigner: false, IsWritable: true},
			{Pubkey: authority, IsSigner: false, IsWritable: false},
		},
		FeePayer: liquidationEngine,
	}
	return tx, nil
}
