package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for handlers to map to HTTP status.
var (
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInsufficientFunds = errors.New("insufficient credits")
	ErrRateLimited       = errors.New("rate limit exceeded")
	ErrWorkerUnavailable = errors.New("clip worker unavailable")
	ErrWorkerRejected    = errors.New("clip worker rejected the request")
	ErrProfileMissing    = errors.New("refund target does not exist")
	ErrOrderMismatch     = errors.New("order not found")
	ErrInvalidSignature  = errors.New("payment signature mismatch")
	ErrInvalidAPIKey     = errors.New("invalid or revoked API key")
	ErrAPIDisabled       = errors.New("API access not enabled for this organization")
	ErrKeyLimitReached   = errors.New("organization API key limit reached")
	ErrForbidden         = errors.New("role does not permit this action")
	ErrJobNotFound       = errors.New("job not found")
	ErrOrgNotFound       = errors.New("organization not found")
	ErrUnsupportedLang   = errors.New("unsupported dub language")
	ErrBatchTooLarge     = errors.New("batch exceeds the configured cap")
)

// RateWindow distinguishes which bucket was exhausted.
type RateWindow string

const (
	WindowMinute RateWindow = "minute"
	WindowDay    RateWindow = "day"
)

// RateLimitError carries the exhausted window and its ceiling.
type RateLimitError struct {
	Window RateWindow
	Limit  int64
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limit exceeded: %d per %s", e.Limit, e.Window)
}

func (e *RateLimitError) Unwrap() error { return ErrRateLimited }

// InsufficientFundsError carries the ledger scope that came up short.
type InsufficientFundsError struct {
	Scope   string // "account" or "org"
	Needed  int64
	Balance int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient credits: %s balance %d, need %d", e.Scope, e.Balance, e.Needed)
}

func (e *InsufficientFundsError) Unwrap() error { return ErrInsufficientFunds }
