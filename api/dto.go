package api

import (
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/vault"
)

// vaultDTO renders a domain.Vault in the camelCase shape spec.md §6.1
// expects from the balance endpoint, including the human-formatted total.
type vaultDTO struct {
	Owner            string `json:"owner"`
	VaultAddress     string `json:"vaultAddress"`
	TokenAccount     string `json:"tokenAccount"`
	Total            int64  `json:"total"`
	Locked           int64  `json:"locked"`
	Available        int64  `json:"available"`
	TotalDeposited   int64  `json:"totalDeposited"`
	TotalWithdrawn   int64  `json:"totalWithdrawn"`
	FormattedTotal   string `json:"formattedTotal"`
	Status           string `json:"status"`
}

func vaultDTOFrom(v *domain.Vault) vaultDTO {
	return vaultDTO{
		Owner:          v.Owner,
		VaultAddress:   v.VaultAddress,
		TokenAccount:   v.TokenAccount,
		Total:          v.TotalBalance,
		Locked:         v.LockedBalance,
		Available:      v.AvailableBalance,
		TotalDeposited: v.TotalDeposited,
		TotalWithdrawn: v.TotalWithdrawn,
		FormattedTotal: formatAmount(v.TotalBalance),
		Status:         string(v.Status),
	}
}

type txResult struct {
	Vault            vaultDTO `json:"vault"`
	JournalID        string   `json:"transactionId"`
	Signature        string   `json:"signature,omitempty"`
	SignedTxBase64   string   `json:"signedTransaction,omitempty"`
	UnsignedTxBase64 string   `json:"unsignedTransaction,omitempty"`
}

func txResultDTO(r *vault.TxResult) txResult {
	return txResult{
		Vault:            vaultDTOFrom(r.Vault),
		JournalID:        r.JournalID,
		Signature:        r.Signature,
		SignedTxBase64:   r.SignedTxBase64,
		UnsignedTxBase64: r.UnsignedTxBase64,
	}
}

type transferResult struct {
	Source               vaultDTO `json:"source"`
	Destination          vaultDTO `json:"destination"`
	SourceJournalID      string   `json:"sourceTransactionId"`
	DestinationJournalID string   `json:"destinationTransactionId"`
	Signature            string   `json:"signature,omitempty"`
	SignedTxBase64        string   `json:"signedTransaction,omitempty"`
	UnsignedTxBase64       string   `json:"unsignedTransaction,omitempty"`
}

func transferResultDTO(r *vault.TransferResult) transferResult {
	return transferResult{
		Source:               vaultDTOFrom(r.Source),
		Destination:          vaultDTOFrom(r.Destination),
		SourceJournalID:      r.SourceJournalID,
		DestinationJournalID: r.DestinationJournalID,
		Signature:            r.Signature,
		SignedTxBase64:       r.SignedTxBase64,
		UnsignedTxBase64:     r.UnsignedTxBase64,
	}
}

type journalEntryDTO struct {
	ID            string  `json:"id"`
	Type          string  `json:"type"`
	Amount        int64   `json:"amount"`
	Status        string  `json:"status"`
	Signature     *string `json:"signature"`
	BalanceBefore int64   `json:"balanceBefore"`
	BalanceAfter  int64   `json:"balanceAfter"`
	Counterparty  *string `json:"counterparty"`
	CreatedAt     string  `json:"createdAt"`
}

func journalEntryDTOFrom(e *domain.JournalEntry) journalEntryDTO {
	return journalEntryDTO{
		ID:            e.ID,
		Type:          string(e.Type),
		Amount:        e.Amount,
		Status:        string(e.Status),
		Signature:     e.Signature,
		BalanceBefore: e.BalanceBefore,
		BalanceAfter:  e.BalanceAfter,
		Counterparty:  e.Counterparty,
		CreatedAt:     e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}
