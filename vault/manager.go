// Package vault implements the Vault Manager: the operation orchestrator
// that validates inputs, resolves vault state through a cache-then-chain
// fall-through, records a pending journal entry, invokes the transaction
// builder and submitter, applies an eager cache mutation, and publishes
// real-time events. It is the busiest component in this module and is
// modeled on the way htlcswitch.Switch threads a single HTLC through
// validation, the circuit map, and forwarding (see
// _examples/backend-engineer1-land/htlcswitch/switch.go).
package vault

import (
	"context"
	"math"
	"time"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/chainaddr"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/metrics"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/txbuilder"
	"github.com/clearvault/vaultd/txsubmit"
	"github.com/google/uuid"
)

// settleDelay is the pause after a deposit/withdraw submission and before
// the balance is read back for the BalanceUpdate event, letting the eager
// write settle across connection-pool hops (spec.md §6.4).
const settleDelay = 100 * time.Millisecond

// Manager is the Vault Manager. It owns no persistent state of its own;
// everything it touches belongs to the Cache Store, Chain Client, or
// Notification Registry it was built with (spec.md §9: inject the
// registry as a collaborator, never a global singleton).
type Manager struct {
	store       store.Store
	chainClient chain.Client
	submitter   *txsubmit.Submitter
	registry    *notify.Registry
	mint        string
}

// NewManager builds a Manager around its collaborators. mint is the token
// mint address used to derive associated token accounts.
func NewManager(
	st store.Store, chainClient chain.Client, submitter *txsubmit.Submitter,
	registry *notify.Registry, mint string,
) *Manager {
	return &Manager{
		store:       st,
		chainClient: chainClient,
		submitter:   submitter,
		registry:    registry,
		mint:        mint,
	}
}

// TxResult is the outward artifact of a single-vault write operation. Its
// fields tell the caller how far the build-sign-submit pipeline got:
// UnsignedTxBase64 is always set once the instruction is built;
// SignedTxBase64 is set once signing succeeded; Signature holds the chain
// signature after a successful submission, or the locally computed signing
// signature when signing succeeded but submission failed. If signing
// failed, only UnsignedTxBase64 is set.
type TxResult struct {
	Vault            *domain.Vault
	JournalID        string
	Signature        string
	SignedTxBase64   string
	UnsignedTxBase64 string
}

// TransferResult is the two-vault analog of TxResult.
type TransferResult struct {
	Source             *domain.Vault
	Destination        *domain.Vault
	SourceJournalID     string
	DestinationJournalID string
	Signature            string
	SignedTxBase64        string
	UnsignedTxBase64      string
}

// ResolveVault implements the cache → chain fall-through read path shared
// by every operation and by the balance-read endpoint: look in cache,
// then in chain (upserting the cache on a hit), and fail with
// VAULT_NOT_FOUND only once both have been checked.
func (m *Manager) ResolveVault(ctx context.Context, owner string) (*domain.Vault, error) {
	v, err := m.store.GetVault(ctx, owner)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return v, nil
	}

	onChain, err := m.chainClient.GetVaultAccount(ctx, owner)
	if err != nil {
		return nil, err
	}
	if onChain == nil {
		return nil, domain.NewVaultError(domain.ErrVaultNotFound, "vault not found for owner "+owner)
	}

	v = vaultFromChain(owner, onChain)
	if err := m.store.UpsertVault(ctx, v); err != nil {
		log.Warnf("failed to cache vault fetched from chain for owner=%s: %v", owner, err)
	}
	return v, nil
}

func vaultFromChain(owner string, a *domain.VaultAccountData) *domain.Vault {
	now := time.Now()
	return &domain.Vault{
		Owner:            owner,
		VaultAddress:     chainaddr.VaultAddress(owner),
		TokenAccount:     a.TokenAccount,
		TotalBalance:     int64(a.TotalBalance),
		LockedBalance:    int64(a.LockedBalance),
		AvailableBalance: int64(a.AvailableBalance),
		TotalDeposited:   int64(a.TotalDeposited),
		TotalWithdrawn:   int64(a.TotalWithdrawn),
		CreatedAt:        now,
		UpdatedAt:        now,
		Status:           domain.VaultStatusActive,
	}
}

func amountToInt64(amount uint64) (int64, error) {
	if amount > math.MaxInt64 {
		return 0, domain.NewInternalError(
			domain.ErrInvalidAmount, "amount overflows a signed 64-bit balance", nil,
		)
	}
	return int64(amount), nil
}

// Initialize creates a vault: the on-chain initialize_vault instruction,
// signed and submitted by the user. There is nothing to resolve from
// cache/chain beforehand — if a vault already exists, initialize is still
// safe to call (the chain program is responsible for idempotence), so this
// method only fetches existing state to return a coherent Vault rather
// than to gate on its absence.
func (m *Manager) Initialize(ctx context.Context, owner, userKeypairPath string) (*TxResult, error) {
	existing, err := m.store.GetVault(ctx, owner)
	if err != nil {
		return nil, err
	}

	v := existing
	if v == nil {
		onChain, err := m.chainClient.GetVaultAccount(ctx, owner)
		if err != nil {
			return nil, err
		}
		if onChain != nil {
			v = vaultFromChain(owner, onChain)
		} else {
			now := time.Now()
			v = &domain.Vault{
				Owner:        owner,
				VaultAddress: chainaddr.VaultAddress(owner),
				TokenAccount: chainaddr.AssociatedTokenAccount(owner, m.mint),
				CreatedAt:    now,
				UpdatedAt:    now,
				Status:       domain.VaultStatusActive,
			}
		}
		if err := m.store.UpsertVault(ctx, v); err != nil {
			return nil, domain.NewInternalError(domain.ErrInitializationFailed, "failed to cache new vault", err)
		}
	}

	entry := &domain.JournalEntry{
		ID:            uuid.NewString(),
		VaultOwner:    owner,
		Type:          domain.TxTypeInitialize,
		Amount:        0,
		Status:        domain.TxStatusPending,
		BalanceBefore: v.TotalBalance,
		BalanceAfter:  v.TotalBalance,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := m.store.CreateJournal(ctx, entry); err != nil {
		return nil, domain.NewInternalError(domain.ErrInitializationFailed, "failed to write journal entry", err)
	}
	metrics.JournalEntriesTotal.WithLabelValues(string(entry.Type)).Inc()

	unsigned, err := txbuilder.BuildInitialize(owner, m.mint)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrInitializationFailed, "failed to build instruction", err)
	}
	unsignedTxBase64, err := unsigned.Encode()
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrInitializationFailed, "failed to encode instruction", err)
	}

	result := &TxResult{Vault: v, JournalID: entry.ID, UnsignedTxBase64: unsignedTxBase64}
	if userKeypairPath == "" {
		return result, nil
	}

	return m.signSubmitAndFinish(ctx, result, entry, v, userKeypairPath, nil)
}

// Deposit moves amount from the user's token account into their vault.
func (m *Manager) Deposit(ctx context.Context, owner string, amount uint64, userKeypairPath string) (*TxResult, error) {
	delta, err := amountToInt64(amount)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.NewVaultError(domain.ErrInvalidAmount, "amount must be greater than zero")
	}

	v, err := m.ResolveVault(ctx, owner)
	if err != nil {
		return nil, err
	}

	if userKeypairPath != "" {
		tokenBalance, err := m.chainClient.GetTokenBalance(ctx, v.TokenAccount)
		if err != nil {
			return nil, domain.NewInternalError(domain.ErrDepositFailed, "failed to check token balance", err)
		}
		if tokenBalance < amount {
			return nil, domain.NewVaultError(
				domain.ErrInsufficientBalance, "source token account balance is less than the deposit amount",
			)
		}
	}

	entry, err := m.journalFor(ctx, owner, domain.TxTypeDeposit, delta, v.TotalBalance, v.TotalBalance+delta, nil)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrDepositFailed, "failed to write journal entry", err)
	}

	unsigned, err := txbuilder.BuildDeposit(owner, m.mint, amount)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrDepositFailed, "failed to build instruction", err)
	}
	unsignedTxBase64, err := unsigned.Encode()
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrDepositFailed, "failed to encode instruction", err)
	}

	result := &TxResult{Vault: v, JournalID: entry.ID, UnsignedTxBase64: unsignedTxBase64}
	if userKeypairPath == "" {
		return result, nil
	}

	mutate := func() {
		v.TotalBalance += delta
		v.AvailableBalance += delta
	}
	return m.signSubmitAndFinish(ctx, result, entry, v, userKeypairPath, mutate)
}

// Withdraw moves amount from the vault back to the user's token account.
func (m *Manager) Withdraw(ctx context.Context, owner string, amount uint64, userKeypairPath string) (*TxResult, error) {
	delta, err := amountToInt64(amount)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.NewVaultError(domain.ErrInvalidAmount, "amount must be greater than zero")
	}

	v, err := m.ResolveVault(ctx, owner)
	if err != nil {
		return nil, err
	}
	if v.AvailableBalance < delta {
		return nil, domain.NewVaultError(domain.ErrInsufficientBalance, "available balance is less than the withdrawal amount")
	}

	entry, err := m.journalFor(ctx, owner, domain.TxTypeWithdrawal, -delta, v.TotalBalance, v.TotalBalance-delta, nil)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrWithdrawFailed, "failed to write journal entry", err)
	}

	unsigned, err := txbuilder.BuildWithdraw(owner, m.mint, amount)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrWithdrawFailed, "failed to build instruction", err)
	}
	unsignedTxBase64, err := unsigned.Encode()
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrWithdrawFailed, "failed to encode instruction", err)
	}

	result := &TxResult{Vault: v, JournalID: entry.ID, UnsignedTxBase64: unsignedTxBase64}
	if userKeypairPath == "" {
		return result, nil
	}

	mutate := func() {
		v.TotalBalance -= delta
		v.AvailableBalance -= delta
	}
	return m.signSubmitAndFinish(ctx, result, entry, v, userKeypairPath, mutate)
}

// Lock reserves amount of a vault's available balance against positionID.
// The signer is the position manager, and its keypair path is mandatory.
func (m *Manager) Lock(ctx context.Context, owner string, amount uint64, positionID, positionManagerKeypairPath string) (*TxResult, error) {
	delta, err := amountToInt64(amount)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.NewVaultError(domain.ErrInvalidAmount, "amount must be greater than zero")
	}
	if positionManagerKeypairPath == "" {
		return nil, domain.NewVaultError(domain.ErrSignerRequired, "position manager keypair path is required")
	}

	v, err := m.ResolveVault(ctx, owner)
	if err != nil {
		return nil, err
	}
	if v.AvailableBalance < delta {
		return nil, domain.NewVaultError(domain.ErrInsufficientBalance, "available balance is less than the lock amount")
	}

	entry, err := m.journalFor(ctx, owner, domain.TxTypeLock, delta, v.AvailableBalance, v.AvailableBalance-delta, &positionID)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrLockFailed, "failed to write journal entry", err)
	}

	positionManagerPubkey, err := txsubmit.PubkeyFromKeyFile(positionManagerKeypairPath)
	if err != nil {
		return nil, domain.NewVaultError(domain.ErrLockFailed, "unable to derive position manager pubkey: "+err.Error())
	}

	unsigned, err := txbuilder.BuildLock(owner, positionManagerPubkey, amount)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrLockFailed, "failed to build instruction", err)
	}
	unsignedTxBase64, err := unsigned.Encode()
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrLockFailed, "failed to encode instruction", err)
	}

	result := &TxResult{Vault: v, JournalID: entry.ID, UnsignedTxBase64: unsignedTxBase64}

	mutate := func() {
		v.LockedBalance += delta
		v.AvailableBalance -= delta
	}
	finished, err := m.signSubmitAndFinish(ctx, result, entry, v, positionManagerKeypairPath, mutate)
	if err != nil || finished.Signature == "" {
		return finished, err
	}

	if _, sendErr := m.registry.SendToUser(owner, domain.Event{
		Type: domain.EventCollateralLocked,
		Payload: domain.CollateralLockedPayload{
			Owner: owner, Amount: delta, PositionID: positionID,
			LockedBalance: v.LockedBalance, AvailableBalance: v.AvailableBalance,
		},
	}); sendErr != nil {
		log.Warnf("failed to publish CollateralLocked for owner=%s: %v", owner, sendErr)
	}
	return finished, nil
}

// Unlock releases amount previously reserved against positionID. The
// signer is the position manager, and its keypair path is mandatory.
func (m *Manager) Unlock(ctx context.Context, owner string, amount uint64, positionID, positionManagerKeypairPath string) (*TxResult, error) {
	delta, err := amountToInt64(amount)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.NewVaultError(domain.ErrInvalidAmount, "amount must be greater than zero")
	}
	if positionManagerKeypairPath == "" {
		return nil, domain.NewVaultError(domain.ErrSignerRequired, "position manager keypair path is required")
	}

	v, err := m.ResolveVault(ctx, owner)
	if err != nil {
		return nil, err
	}
	if v.LockedBalance < delta {
		return nil, domain.NewVaultError(domain.ErrInsufficientLocked, "locked balance is less than the unlock amount")
	}

	entry, err := m.journalFor(ctx, owner, domain.TxTypeUnlock, delta, v.AvailableBalance, v.AvailableBalance+delta, &positionID)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrUnlockFailed, "failed to write journal entry", err)
	}

	positionManagerPubkey, err := txsubmit.PubkeyFromKeyFile(positionManagerKeypairPath)
	if err != nil {
		return nil, domain.NewVaultError(domain.ErrUnlockFailed, "unable to derive position manager pubkey: "+err.Error())
	}

	unsigned, err := txbuilder.BuildUnlock(owner, positionManagerPubkey, amount)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrUnlockFailed, "failed to build instruction", err)
	}
	unsignedTxBase64, err := unsigned.Encode()
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrUnlockFailed, "failed to encode instruction", err)
	}

	result := &TxResult{Vault: v, JournalID: entry.ID, UnsignedTxBase64: unsignedTxBase64}

	mutate := func() {
		v.LockedBalance -= delta
		v.AvailableBalance += delta
	}
	finished, err := m.signSubmitAndFinish(ctx, result, entry, v, positionManagerKeypairPath, mutate)
	if err != nil || finished.Signature == "" {
		return finished, err
	}

	if _, sendErr := m.registry.SendToUser(owner, domain.Event{
		Type: domain.EventCollateralUnlocked,
		Payload: domain.CollateralUnlockedPayload{
			Owner: owner, Amount: delta, PositionID: positionID,
			LockedBalance: v.LockedBalance, AvailableBalance: v.AvailableBalance,
		},
	}); sendErr != nil {
		log.Warnf("failed to publish CollateralUnlocked for owner=%s: %v", owner, sendErr)
	}
	return finished, nil
}

// Transfer moves amount of collateral from one vault to another, signed by
// the liquidation engine. It crosses the locked→available boundary on the
// source side: locked is drawn down first, and any remainder comes out of
// available (spec.md §8 scenario 4; see DESIGN.md for the open-question
// resolution on whether this should vary by reason).
func (m *Manager) Transfer(
	ctx context.Context, fromOwner, toOwner string, amount uint64,
	reason domain.TransferReason, liquidationEngineKeypairPath string,
) (*TransferResult, error) {

	delta, err := amountToInt64(amount)
	if err != nil {
		return nil, err
	}
	if delta == 0 {
		return nil, domain.NewVaultError(domain.ErrInvalidAmount, "amount must be greater than zero")
	}
	if liquidationEngineKeypairPath == "" {
		return nil, domain.NewVaultError(domain.ErrSignerRequired, "liquidation engine keypair path is required")
	}

	source, err := m.ResolveVault(ctx, fromOwner)
	if err != nil {
		return nil, err
	}
	if source.TotalBalance < delta {
		return nil, domain.NewVaultError(domain.ErrInsufficientBalance, "source total balance is less than the transfer amount")
	}
	dest, err := m.ResolveVault(ctx, toOwner)
	if err != nil {
		return nil, err
	}

	sourceEntry, err := m.journalFor(ctx, fromOwner, domain.TxTypeTransferOut, -delta, source.TotalBalance, source.TotalBalance-delta, &toOwner)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrTransferFailed, "failed to write source journal entry", err)
	}
	destEntry, err := m.journalFor(ctx, toOwner, domain.TxTypeTransferIn, delta, dest.TotalBalance, dest.TotalBalance+delta, &fromOwner)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrTransferFailed, "failed to write destination journal entry", err)
	}

	liquidationEnginePubkey, err := txsubmit.PubkeyFromKeyFile(liquidationEngineKeypairPath)
	if err != nil {
		return nil, domain.NewVaultError(domain.ErrTransferFailed, "unable to derive liquidation engine pubkey: "+err.Error())
	}

	unsigned, err := txbuilder.BuildTransfer(fromOwner, toOwner, liquidationEnginePubkey, amount, reason)
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrTransferFailed, "failed to build instruction", err)
	}
	unsignedTxBase64, err := unsigned.Encode()
	if err != nil {
		return nil, domain.NewInternalError(domain.ErrTransferFailed, "failed to encode instruction", err)
	}

	result := &TransferResult{
		Source: source, Destination: dest,
		SourceJournalID: sourceEntry.ID, DestinationJournalID: destEntry.ID,
		UnsignedTxBase64: unsignedTxBase64,
	}

	signedTxBase64, localSig, err := m.submitter.Sign(ctx, unsignedTxBase64, liquidationEngineKeypairPath)
	if err != nil {
		log.Warnf("failed to sign transfer from=%s to=%s: %v", fromOwner, toOwner, err)
		return result, nil
	}
	result.SignedTxBase64 = signedTxBase64

	chainSig, err := m.submitter.Submit(ctx, signedTxBase64)
	if err != nil {
		log.Warnf("failed to submit transfer from=%s to=%s: %v", fromOwner, toOwner, err)
		result.Signature = localSig
		return result, nil
	}
	result.Signature = chainSig

	if err := m.store.UpdateJournalStatus(ctx, sourceEntry.ID, domain.TxStatusSubmitted, &chainSig); err != nil {
		log.Warnf("failed to promote source journal entry %s: %v", sourceEntry.ID, err)
	}
	if err := m.store.UpdateJournalStatus(ctx, destEntry.ID, domain.TxStatusSubmitted, &chainSig); err != nil {
		log.Warnf("failed to promote destination journal entry %s: %v", destEntry.ID, err)
	}

	// Eager mutation: crosses the locked→available boundary on the source.
	if source.LockedBalance >= delta {
		source.LockedBalance -= delta
	} else {
		remainder := delta - source.LockedBalance
		source.LockedBalance = 0
		source.AvailableBalance -= remainder
	}
	source.TotalBalance -= delta
	dest.TotalBalance += delta
	dest.AvailableBalance += delta

	if err := m.store.UpdateBalances(ctx, fromOwner, source.TotalBalance, source.LockedBalance, source.AvailableBalance); err != nil {
		log.Warnf("eager mutation failed for source owner=%s: %v", fromOwner, err)
	}
	if err := m.store.UpdateBalances(ctx, toOwner, dest.TotalBalance, dest.LockedBalance, dest.AvailableBalance); err != nil {
		log.Warnf("eager mutation failed for destination owner=%s: %v", toOwner, err)
	}

	m.publishBalanceAndConfirmation(fromOwner, source, sourceEntry.ID, string(domain.TxTypeTransferOut), delta, chainSig)
	m.publishBalanceAndConfirmation(toOwner, dest, destEntry.ID, string(domain.TxTypeTransferIn), delta, chainSig)

	return result, nil
}

// journalFor writes a pending journal entry with the given projected
// before/after values.
func (m *Manager) journalFor(
	ctx context.Context, owner string, txType domain.TransactionType, amount, before, after int64,
	counterparty *string,
) (*domain.JournalEntry, error) {
	entry := &domain.JournalEntry{
		ID:            uuid.NewString(),
		VaultOwner:    owner,
		Type:          txType,
		Amount:        amount,
		Status:        domain.TxStatusPending,
		BalanceBefore: before,
		BalanceAfter:  after,
		Counterparty:  counterparty,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	if err := m.store.CreateJournal(ctx, entry); err != nil {
		return nil, err
	}
	metrics.JournalEntriesTotal.WithLabelValues(string(entry.Type)).Inc()
	return entry, nil
}

// signSubmitAndFinish runs steps 5-8 of the operation template for a
// single-vault op: sign, submit, promote the journal, apply the eager
// mutation via mutate, and publish BalanceUpdate + TransactionConfirmed.
// mutate is nil for Initialize, which has no balance delta.
func (m *Manager) signSubmitAndFinish(
	ctx context.Context, result *TxResult, entry *domain.JournalEntry, v *domain.Vault,
	keyFilePath string, mutate func(),
) (*TxResult, error) {

	signedTxBase64, localSig, err := m.submitter.Sign(ctx, result.UnsignedTxBase64, keyFilePath)
	if err != nil {
		log.Warnf("failed to sign %s for owner=%s: %v", entry.Type, entry.VaultOwner, err)
		return result, nil
	}
	result.SignedTxBase64 = signedTxBase64

	chainSig, err := m.submitter.Submit(ctx, signedTxBase64)
	if err != nil {
		log.Warnf("failed to submit %s for owner=%s: %v", entry.Type, entry.VaultOwner, err)
		result.Signature = localSig
		return result, nil
	}
	result.Signature = chainSig

	if err := m.store.UpdateJournalStatus(ctx, entry.ID, domain.TxStatusSubmitted, &chainSig); err != nil {
		log.Warnf("failed to promote journal entry %s: %v", entry.ID, err)
	}

	if mutate != nil {
		mutate()
		if err := m.store.UpdateBalances(ctx, v.Owner, v.TotalBalance, v.LockedBalance, v.AvailableBalance); err != nil {
			log.Warnf("eager mutation failed for owner=%s: %v", v.Owner, err)
		}
	}

	if entry.Type == domain.TxTypeDeposit || entry.Type == domain.TxTypeWithdrawal {
		select {
		case <-time.After(settleDelay):
		case <-ctx.Done():
			return result, nil
		}
		if settled, err := m.store.GetVault(ctx, v.Owner); err == nil && settled != nil {
			v = settled
		}
	}

	m.publishBalanceAndConfirmation(v.Owner, v, entry.ID, string(entry.Type), entry.Amount, chainSig)
	result.Vault = v
	return result, nil
}

// publishBalanceAndConfirmation emits the two events common to every write
// operation. Notification failures are logged and never surfaced to the
// caller, per spec.md §7.
func (m *Manager) publishBalanceAndConfirmation(owner string, v *domain.Vault, journalID, txType string, amount int64, signature string) {
	if _, err := m.registry.SendToUser(owner, domain.Event{
		Type: domain.EventBalanceUpdate,
		Payload: domain.BalanceUpdatePayload{
			Owner: owner, TotalBalance: v.TotalBalance,
			LockedBalance: v.LockedBalance, AvailableBalance: v.AvailableBalance,
		},
	}); err != nil {
		log.Warnf("failed to publish BalanceUpdate for owner=%s: %v", owner, err)
	}

	if signature == "" {
		return
	}
	if _, err := m.registry.SendToUser(owner, domain.Event{
		Type: domain.EventTransactionConfirmed,
		Payload: domain.TransactionConfirmedPayload{
			TransactionID: journalID, TransactionType: txType, Amount: amount, Signature: signature,
		},
	}); err != nil {
		log.Warnf("failed to publish TransactionConfirmed for owner=%s: %v", owner, err)
	}
}

// ListTransactions forwards to the Cache Store, whose implementations apply
// the standard limit/offset clamp so every caller gets the same pagination
// behavior described in spec.md §6.1.
func (m *Manager) ListTransactions(
	ctx context.Context, owner string, limit, offset int, txType *domain.TransactionType,
) ([]*domain.JournalEntry, error) {
	return m.store.ListJournal(ctx, owner, limit, offset, txType)
}

// GetTVL forwards to the Cache Store's aggregate query.
func (m *Manager) GetTVL(ctx context.Context) (total, locked, available, activeCount int64, err error) {
	return m.store.AggregateTVL(ctx)
}
