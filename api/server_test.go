package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/clearvault/vaultd/api"
	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/domain"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/txsubmit"
	"github.com/clearvault/vaultd/vault"
)

func newTestServer(t *testing.T, isDevnet bool) (*httptest.Server, store.Store, chain.Client) {
	t.Helper()
	st := store.NewFakeStore()
	cl := chain.NewFakeClient()
	registry := notify.NewRegistry()
	mgr := vault.NewManager(st, cl, txsubmit.NewSubmitter(cl), registry, "usdtmint000000000000000000000000")
	srv := api.NewServer(mgr, registry, cl, st, isDevnet)

	ts := httptest.NewServer(srv.TestHandler())
	t.Cleanup(ts.Close)
	return ts, st, cl
}

func TestHealthEndpointReportsOK(t *testing.T) {
	ts, _, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestBalanceEndpointNotFound(t *testing.T) {
	ts, _, _ := newTestServer(t, false)

	resp, err := http.Get(ts.URL + "/vault/balance/unknown-user")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDepositEndpointRejectsZeroAmount(t *testing.T) {
	ts, st, _ := newTestServer(t, false)
	ctx := context.Background()
	require.NoError(t, st.UpsertVault(ctx, &domain.Vault{
		Owner: "useraaaa", VaultAddress: "v", TokenAccount: "t", Status: domain.VaultStatusActive,
	}))

	body, _ := json.Marshal(map[string]interface{}{"userPubkey": "useraaaa", "amount": 0})
	resp, err := http.Post(ts.URL+"/vault/deposit", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMintUSDTRefusedWhenNotDevnet(t *testing.T) {
	ts, _, _ := newTestServer(t, false)

	body, _ := json.Marshal(map[string]interface{}{"userPubkey": "user-b", "amount": 100})
	resp, err := http.Post(ts.URL+"/vault/mint-usdt", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusConflict, resp.StatusCode)

	var env map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	errObj := env["error"].(map[string]interface{})
	require.Equal(t, "NOT_DEVNET", errObj["code"])
}
