package chain

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/clearvault/vaultd/domain"
)

// FakeClient is an in-memory Client used by the vault/tracker/monitor test
// suites in place of a live RPC endpoint, grounded on the teacher's
// mock-construction style in htlcswitch/mock.go.
type FakeClient struct {
	mu sync.Mutex

	accounts  map[string]*domain.VaultAccountData
	balances  map[string]uint64
	confirmed map[string]bool
	healthy   bool

	// SubmitErr, when set, is returned by SubmitTransaction instead of
	// succeeding — used to exercise the Vault Manager's
	// sign-succeeds-submit-fails degradation path.
	SubmitErr error
}

// NewFakeClient returns a healthy FakeClient with no known accounts.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		accounts:  make(map[string]*domain.VaultAccountData),
		balances:  make(map[string]uint64),
		confirmed: make(map[string]bool),
		healthy:   true,
	}
}

var _ Client = (*FakeClient)(nil)

// SeedAccount registers owner's on-chain account data, as if a prior
// initialize had confirmed on chain.
func (f *FakeClient) SeedAccount(owner string, account *domain.VaultAccountData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.accounts[owner] = account
}

// SetHealthy toggles the result of GetHealth.
func (f *FakeClient) SetHealthy(healthy bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.healthy = healthy
}

func (f *FakeClient) GetVaultAccount(_ context.Context, owner string) (*domain.VaultAccountData, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[owner], nil
}

func (f *FakeClient) GetTokenBalance(_ context.Context, tokenAccount string) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.balances[tokenAccount], nil
}

// SetTokenBalance seeds a token account's balance for deposit
// source-balance checks.
func (f *FakeClient) SetTokenBalance(tokenAccount string, amount uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[tokenAccount] = amount
}

func (f *FakeClient) GetRecentBlockhash(context.Context) (string, error) {
	return uuid.NewString(), nil
}

func (f *FakeClient) GetHealth(context.Context) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.healthy
}

func (f *FakeClient) IsConfirmed(_ context.Context, signature string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.confirmed[signature], nil
}

func (f *FakeClient) SubmitTransaction(_ context.Context, signedTxBase64 string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SubmitErr != nil {
		return "", f.SubmitErr
	}
	sig := fmt.Sprintf("sig-%s", uuid.NewString())
	f.confirmed[sig] = true
	return sig, nil
}

func (f *FakeClient) RequestAirdrop(_ context.Context, tokenAccount string, amount uint64) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.balances[tokenAccount] += amount
	return fmt.Sprintf("airdrop-%s", uuid.NewString()), nil
}
