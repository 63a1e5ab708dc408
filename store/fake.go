package store

import (
	"context"
	"sort"
	"sync"

	"github.com/clearvault/vaultd/domain"
)

// FakeStore is an in-memory Store for unit tests, grounded on the
// htlcswitch mock-construction idiom: plain maps guarded by one mutex,
// no goroutines, no I/O.
type FakeStore struct {
	mu sync.Mutex

	vaults       map[string]*domain.Vault
	journal      map[string]*domain.JournalEntry
	journalOrder []string
	balanceSnaps []*domain.BalanceSnapshot
	tvlSnaps     []*domain.TvlSnapshot
	reconLogs    []*domain.ReconciliationLogEntry

	nextSnapID int64
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		vaults:  make(map[string]*domain.Vault),
		journal: make(map[string]*domain.JournalEntry),
	}
}

var _ Store = (*FakeStore)(nil)

func (s *FakeStore) GetVault(ctx context.Context, owner string) (*domain.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vaults[owner]
	if !ok {
		return nil, nil
	}
	cp := *v
	return &cp, nil
}

func (s *FakeStore) UpsertVault(ctx context.Context, v *domain.Vault) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *v
	s.vaults[v.Owner] = &cp
	return nil
}

func (s *FakeStore) UpdateBalances(ctx context.Context, owner string, total, locked, available int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.vaults[owner]
	if !ok {
		return domain.NewVaultError(domain.ErrVaultNotFound, "vault not found: "+owner)
	}
	v.TotalBalance = total
	v.LockedBalance = locked
	v.AvailableBalance = available
	v.UpdatedAt = now()
	return nil
}

func (s *FakeStore) ListActiveVaults(ctx context.Context, limit, offset int) ([]*domain.Vault, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owners []string
	for owner, v := range s.vaults {
		if v.Status == domain.VaultStatusActive {
			owners = append(owners, owner)
		}
	}
	sort.Strings(owners)

	limit, offset = clampLimit(limit, offset)
	if offset >= len(owners) {
		return nil, nil
	}
	end := offset + limit
	if end > len(owners) {
		end = len(owners)
	}

	out := make([]*domain.Vault, 0, end-offset)
	for _, owner := range owners[offset:end] {
		cp := *s.vaults[owner]
		out = append(out, &cp)
	}
	return out, nil
}

func (s *FakeStore) CreateJournal(ctx context.Context, e *domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *e
	s.journal[e.ID] = &cp
	s.journalOrder = append(s.journalOrder, e.ID)
	return nil
}

func (s *FakeStore) UpdateJournalStatus(
	ctx context.Context, id string, status domain.TransactionStatus, signature *string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.journal[id]
	if !ok {
		return domain.NewVaultError(domain.ErrTransactionQueryFailed, "journal entry not found: "+id)
	}
	e.Status = status
	if signature != nil {
		e.Signature = signature
	}
	e.UpdatedAt = now()
	if status == domain.TxStatusConfirmed {
		t := now()
		e.ConfirmedAt = &t
	}
	return nil
}

func (s *FakeStore) ListJournal(
	ctx context.Context, owner string, limit, offset int, txType *domain.TransactionType,
) ([]*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matched []*domain.JournalEntry
	for i := len(s.journalOrder) - 1; i >= 0; i-- {
		e := s.journal[s.journalOrder[i]]
		if e.VaultOwner != owner {
			continue
		}
		if txType != nil && e.Type != *txType {
			continue
		}
		matched = append(matched, e)
	}

	limit, offset = clampLimit(limit, offset)
	if offset >= len(matched) {
		return nil, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	out := make([]*domain.JournalEntry, 0, end-offset)
	for _, e := range matched[offset:end] {
		cp := *e
		out = append(out, &cp)
	}
	return out, nil
}

func (s *FakeStore) AggregateTVL(ctx context.Context) (total, locked, available, activeCount int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vaults {
		if v.Status != domain.VaultStatusActive {
			continue
		}
		total += v.TotalBalance
		locked += v.LockedBalance
		available += v.AvailableBalance
		activeCount++
	}
	return
}

func (s *FakeStore) CreateBalanceSnapshot(ctx context.Context, snap *domain.BalanceSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSnapID++
	snap.ID = s.nextSnapID
	cp := *snap
	s.balanceSnaps = append(s.balanceSnaps, &cp)
	return nil
}

func (s *FakeStore) CreateTVLSnapshot(ctx context.Context, snap *domain.TvlSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSnapID++
	snap.ID = s.nextSnapID
	cp := *snap
	s.tvlSnaps = append(s.tvlSnaps, &cp)
	return nil
}

func (s *FakeStore) CreateReconciliationLog(ctx context.Context, e *domain.ReconciliationLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSnapID++
	e.ID = s.nextSnapID
	cp := *e
	s.reconLogs = append(s.reconLogs, &cp)
	return nil
}

func (s *FakeStore) Ping(ctx context.Context) error {
	return nil
}

func (s *FakeStore) Close() {}

// BalanceSnapshots exposes recorded snapshots for test assertions.
func (s *FakeStore) BalanceSnapshots() []*domain.BalanceSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.BalanceSnapshot, len(s.balanceSnaps))
	copy(out, s.balanceSnaps)
	return out
}

// ReconciliationLogs exposes recorded reconciliation entries for test
// assertions.
func (s *FakeStore) ReconciliationLogs() []*domain.ReconciliationLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*domain.ReconciliationLogEntry, len(s.reconLogs))
	copy(out, s.reconLogs)
	return out
}
