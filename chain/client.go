// Package chain wraps the remote chain RPC node behind a typed interface:
// fetch a vault account, fetch a token balance, fetch a blockhash, submit a
// signed transaction, poll for confirmation, and probe liveness. Every call
// goes through a bounded-retry, per-attempt-timeout harness. Every call
// except the GetHealth probe is offloaded to a goroutine, so the caller's
// goroutine does not block on that network I/O.
package chain

import (
	"context"
	"fmt"

	"github.com/clearvault/vaultd/chainaddr"
	"github.com/clearvault/vaultd/domain"
)

// Client is the contract the rest of the engine depends on. It is an
// interface (rather than a concrete *RPCClient type) so the Vault Manager,
// Balance Tracker and Vault Monitor can be tested against an in-memory fake.
type Client interface {
	// GetVaultAccount derives the vault address for owner and fetches +
	// deserializes its on-chain account. Returns (nil, nil) if the
	// account does not exist — "account not found" is a first-class
	// outcome, not an error.
	GetVaultAccount(ctx context.Context, owner string) (*domain.VaultAccountData, error)

	// GetTokenBalance returns the smallest-unit balance of a token
	// account.
	GetTokenBalance(ctx context.Context, tokenAccount string) (uint64, error)

	// GetRecentBlockhash returns a blockhash fresh enough to bind to an
	// outgoing transaction.
	GetRecentBlockhash(ctx context.Context) (string, error)

	// GetHealth succeeds iff a current-slot probe returns within 5s,
	// with up to 2 retries (500ms, 1000ms backoff).
	GetHealth(ctx context.Context) bool

	// IsConfirmed reports whether signature has reached chain
	// confirmation.
	IsConfirmed(ctx context.Context, signature string) (bool, error)

	// SubmitTransaction sends base64-encoded signed transaction bytes
	// and returns the resulting signature.
	SubmitTransaction(ctx context.Context, signedTxBase64 string) (string, error)

	// RequestAirdrop mints amount smallest-units of the devnet test
	// token to tokenAccount. Callers are responsible for the NOT_DEVNET
	// guard (see api package); Client performs no network-identity
	// checks of its own.
	RequestAirdrop(ctx context.Context, tokenAccount string, amount uint64) (string, error)
}

// RPCClient is the production Client, backed by a Transport.
type RPCClient struct {
	transport Transport
}

// NewRPCClient builds a Client around transport.
func NewRPCClient(transport Transport) *RPCClient {
	return &RPCClient{transport: transport}
}

var _ Client = (*RPCClient)(nil)

// call offloads fn to a fresh goroutine and retries it per the standard RPC
// backoff schedule, returning the result over a channel so the caller's own
// goroutine never performs blocking I/O directly.
func call[T any](ctx context.Context, c *RPCClient, label string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	type result struct {
		val T
		err error
	}

	resCh := make(chan result, 1)
	go func() {
		var res result
		err := withRetry(ctx, rpcBackoff, rpcAttemptTimeout, func(attemptCtx context.Context) error {
			v, err := fn(attemptCtx)
			if err != nil {
				log.Warnf("chain RPC %s attempt failed: %v", label, err)
				return err
			}
			res.val = v
			return nil
		})
		res.err = err
		resCh <- res
	}()

	select {
	case res := <-resCh:
		if res.err != nil {
			return zero, fmt.Errorf("chain RPC %s: %w", label, res.err)
		}
		return res.val, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// GetVaultAccount implements Client.
func (c *RPCClient) GetVaultAccount(ctx context.Context, owner string) (*domain.VaultAccountData, error) {
	address := chainaddr.VaultAddress(owner)

	raw, err := call(ctx, c, "getAccountInfo", func(ctx context.Context) ([]byte, error) {
		return c.transport.GetAccountInfo(ctx, address)
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		log.Debugf("vault account not found for owner=%s address=%s", owner, address)
		return nil, nil
	}

	account, err := deserializeVaultAccount(raw)
	if err != nil {
		return nil, domain.NewInternalError(
			domain.ErrInitializationFailed,
			"failed to deserialize vault account",
			err,
		)
	}
	return account, nil
}

// GetTokenBalance implements Client.
func (c *RPCClient) GetTokenBalance(ctx context.Context, tokenAccount string) (uint64, error) {
	return call(ctx, c, "getTokenAccountBalance", func(ctx context.Context) (uint64, error) {
		return c.transport.GetTokenAccountBalance(ctx, tokenAccount)
	})
}

// GetRecentBlockhash implements Client.
func (c *RPCClient) GetRecentBlockhash(ctx context.Context) (string, error) {
	return call(ctx, c, "getLatestBlockhash", func(ctx context.Context) (string, error) {
		return c.transport.GetLatestBlockhash(ctx)
	})
}

// GetHealth implements Client using the shorter health-probe backoff
// schedule instead of the standard RPC schedule.
func (c *RPCClient) GetHealth(ctx context.Context) bool {
	err := withRetry(ctx, healthBackoff, healthAttemptTimeout, func(attemptCtx context.Context) error {
		_, err := c.transport.GetSlot(attemptCtx)
		return err
	})
	if err != nil {
		log.Warnf("chain health probe failed: %v", err)
		return false
	}
	return true
}

// IsConfirmed implements Client.
func (c *RPCClient) IsConfirmed(ctx context.Context, signature string) (bool, error) {
	type status struct {
		confirmed bool
		known     bool
	}
	s, err := call(ctx, c, "getSignatureStatuses", func(ctx context.Context) (status, error) {
		confirmed, known, err := c.transport.GetSignatureStatus(ctx, signature)
		return status{confirmed: confirmed, known: known}, err
	})
	if err != nil {
		return false, err
	}
	return s.confirmed, nil
}

// SubmitTransaction implements Client.
func (c *RPCClient) SubmitTransaction(ctx context.Context, signedTxBase64 string) (string, error) {
	return call(ctx, c, "sendTransaction", func(ctx context.Context) (string, error) {
		return c.transport.SendTransaction(ctx, signedTxBase64)
	})
}

// RequestAirdrop implements Client.
func (c *RPCClient) RequestAirdrop(ctx context.Context, tokenAccount string, amount uint64) (string, error) {
	return call(ctx, c, "requestAirdrop", func(ctx context.Context) (string, error) {
		return c.transport.RequestAirdrop(ctx, tokenAccount, amount)
	})
}
