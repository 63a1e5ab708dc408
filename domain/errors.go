package domain

import (
	"errors"

	goerrors "github.com/go-errors/errors"
)

// ErrorCode is one of the typed codes surfaced across the HTTP boundary,
// matching spec.md §6.1 verbatim.
type ErrorCode string

const (
	ErrInvalidAmount           ErrorCode = "INVALID_AMOUNT"
	ErrVaultNotFound           ErrorCode = "VAULT_NOT_FOUND"
	ErrInsufficientBalance     ErrorCode = "INSUFFICIENT_BALANCE"
	ErrInsufficientLocked      ErrorCode = "INSUFFICIENT_LOCKED_BALANCE"
	ErrDepositFailed           ErrorCode = "DEPOSIT_FAILED"
	ErrWithdrawFailed          ErrorCode = "WITHDRAW_FAILED"
	ErrLockFailed              ErrorCode = "LOCK_FAILED"
	ErrUnlockFailed            ErrorCode = "UNLOCK_FAILED"
	ErrTransferFailed          ErrorCode = "TRANSFER_FAILED"
	ErrInitializationFailed    ErrorCode = "INITIALIZATION_FAILED"
	ErrTvlQueryFailed          ErrorCode = "TVL_QUERY_FAILED"
	ErrTransactionQueryFailed  ErrorCode = "TRANSACTION_QUERY_FAILED"
	ErrBalanceQueryFailed      ErrorCode = "BALANCE_QUERY_FAILED"
	ErrNotDevnet               ErrorCode = "NOT_DEVNET"
	ErrInvalidPubkey           ErrorCode = "INVALID_PUBKEY"
	ErrMintFailed              ErrorCode = "MINT_FAILED"
	// ErrSignerRequired is not part of spec.md §6.1's enumerated code set;
	// §7 describes the missing-signer condition but names no code for it.
	// Added so the empty-keypair-path rejection has a typed code like every
	// other input-class error instead of falling back to a generic one.
	ErrSignerRequired          ErrorCode = "SIGNER_REQUIRED"
)

// VaultError is a typed, code-bearing error returned by the engine. Input
// and state-class errors (see spec.md §7) are built with NewVaultError and
// carry no stack trace, since they are expected outcomes on the hot path,
// not bugs. Internal-class errors are built with NewInternalError, which
// wraps the cause with github.com/go-errors/errors so a stack trace
// survives into the logs.
type VaultError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *VaultError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

func (e *VaultError) Unwrap() error {
	return e.cause
}

// NewVaultError builds an input/state-class error: cheap, no stack trace.
func NewVaultError(code ErrorCode, message string) *VaultError {
	return &VaultError{Code: code, Message: message}
}

// NewInternalError wraps an unexpected failure (deserialization, arithmetic
// overflow guard, etc.) with a captured stack trace so it can be diagnosed
// from logs alone.
func NewInternalError(code ErrorCode, message string, cause error) *VaultError {
	return &VaultError{
		Code:    code,
		Message: message,
		cause:   goerrors.Wrap(cause, 1),
	}
}

// CodeOf extracts the ErrorCode from err if it is (or wraps) a *VaultError,
// returning ok=false otherwise.
func CodeOf(err error) (ErrorCode, bool) {
	var ve *VaultError
	if errors.As(err, &ve) {
		return ve.Code, true
	}
	return "", false
}
