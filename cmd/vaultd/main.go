// Command vaultd is the off-chain vault control-plane service: it loads
// configuration, wires the Cache Store, Chain Client, Vault Manager,
// Notification Registry, Balance Tracker, and Vault Monitor, then serves
// the HTTP/WebSocket surface until interrupted. Structured the way the
// teacher's lndMain/main split its true entry point from os.Exit handling,
// so deferred cleanup always runs.
package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/clearvault/vaultd/api"
	"github.com/clearvault/vaultd/chain"
	"github.com/clearvault/vaultd/config"
	vaultlog "github.com/clearvault/vaultd/log"
	"github.com/clearvault/vaultd/monitor"
	"github.com/clearvault/vaultd/notify"
	"github.com/clearvault/vaultd/store"
	"github.com/clearvault/vaultd/tracker"
	"github.com/clearvault/vaultd/txsubmit"
	"github.com/clearvault/vaultd/vault"
)

const version = "0.1.0"

func vaultdMain() error {
	vaultlog.InitSubsystems()
	log := vaultlog.Logger(vaultlog.TagAPI)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Infof("vaultd %s starting", version)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	st, err := store.Open(ctx, cfg.DatabaseURL, cfg.PoolMaxConns)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	transport := chain.NewJSONRPCTransport(cfg.ChainRPCURL, nil)
	chainClient := chain.NewRPCClient(transport)

	submitter := txsubmit.NewSubmitter(chainClient)
	registry := notify.NewRegistry()
	manager := vault.NewManager(st, chainClient, submitter, registry, cfg.TokenMint)

	bal := tracker.New(st, chainClient, cfg.ReconciliationInterval)
	mon := monitor.New(st, chainClient, registry, cfg.BalanceCheckInterval, cfg.LowBalanceThreshold*1_000_000, version)

	api.Version = version
	server := api.NewServer(manager, registry, chainClient, st, cfg.IsDevnet())

	go bal.Run(ctx)
	go mon.Run(ctx)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infof("received signal %v, shutting down", sig)
		cancel()
	}()

	addr := net.JoinHostPort(cfg.HTTPHost, strconv.Itoa(cfg.HTTPPort))
	if err := server.Run(ctx, addr); err != nil {
		return fmt.Errorf("http server stopped with error: %w", err)
	}

	log.Info("vaultd shutdown complete")
	return nil
}

func main() {
	if err := vaultdMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
