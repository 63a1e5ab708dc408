// Package api exposes the Vault Manager, Notification Registry, and Chain
// Client over the HTTP/JSON and WebSocket surfaces described in spec.md
// §6.1-6.2. It is a thin translation layer: every handler validates
// request shape, delegates to vault.Manager, and renders the
// {success, data?, error?} envelope — none of the engine's business logic
// lives here. Grounded on the teacher's rpcserver.go in spirit (one
// handler per RPC, delegating to the server/wallet layer) even though the
// transport here is plain JSON over net/http rather than gRPC, since
// spec.md calls for a JSON HTTP surface rather than a protobuf service.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/vault"
)

// Version is the build-time service version reported by /health and the
// WebSocket welcome message.
var Version = "dev"

// Server wires the engine's collaborators to HTTP routes.
type Server struct {
	manager     *vault.Manager
	registry    *notify.Registry
	chainClient chain.Client
	store       store.Store
	isDevnet    bool

	httpServer *http.Server
}

// NewServer builds a Server. isDevnet gates the mint-usdt faucet route per
// spec.md §6.1.
func NewServer(
	manager *vault.Manager, registry *notify.Registry, chainClient chain.Client,
	st store.Store, isDevnet bool,
) *Server {
	return &Server{
		manager:     manager,
		registry:    registry,
		chainClient: chainClient,
		store:       st,
		isDevnet:    isDevnet,
	}
}

// TestHandler exposes the routed handler for httptest-based tests without
// requiring a bound listener via Run.
func (s *Server) TestHandler() http.Handler {
	return s.routes()
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/vault/initialize", s.handleInitialize).Methods(http.MethodPost)
	r.HandleFunc("/vault/deposit", s.handleDeposit).Methods(http.MethodPost)
	r.HandleFunc("/vault/withdraw", s.handleWithdraw).Methods(http.MethodPost)
	r.HandleFunc("/vault/lock-collateral", s.handleLock).Methods(http.MethodPost)
	r.HandleFunc("/vault/unlock-collateral", s.handleUnlock).Methods(http.MethodPost)
	r.HandleFunc("/vault/transfer-collateral", s.handleTransfer).Methods(http.MethodPost)
	r.HandleFunc("/vault/balance/{user}", s.handleBalance).Methods(http.MethodGet)
	r.HandleFunc("/vault/transactions/{user}", s.handleTransactions).Methods(http.MethodGet)
	r.HandleFunc("/vault/tvl", s.handleTVL).Methods(http.MethodGet)
	r.HandleFunc("/vault/mint-usdt", s.handleMintUSDT).Methods(http.MethodPost)

	r.HandleFunc("/ws/{user}", s.handleWebSocket)
	return r
}

// Run starts the HTTP server and blocks until ctx is canceled, then
// performs a graceful shutdown — the one place this module accepts a
// shutdown signal rather than running for process lifetime, matching the
// teacher's addInterruptHandler/server.Stop composition in lnd.go.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("http server listening on %s", addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		log.Infof("http server stopping: %v", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.httpServer.Shutdown(shutdownCtx)
	}
}
