package model

import "errors"

var (
	// ErrInvalidArgument rejects a request synchronously; the order is
	// left untouched.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrExecutionDeferred means the order could not fill on this pass
	// (stale quote, unmet price condition) and stays OPEN for the next
	// one. Not a user-facing failure.
	ErrExecutionDeferred = errors.New("execution deferred")

	// ErrQuoteUnavailable degrades to a deferral, never a crash.
	ErrQuoteUnavailable = errors.New("quote unavailable")

	// ErrInsufficientFunds and ErrAccountNotFound are terminal for the
	// order: it moves to ERROR and is never retried automatically.
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientShares = errors.New("insufficient shares")

	// ErrOrderNotOpen guards the single OPEN -> terminal transition.
	ErrOrderNotOpen = errors.New("order is not open")

	// ErrPersistenceFailure reports a rolled-back storage transaction.
	// The whole batch is retryable wholesale.
	ErrPersistenceFailure = errors.New("persistence failure")
)
