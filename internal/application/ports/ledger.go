package ports

import (
	"context"
	"time"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

// Ledger is the only component permitted to mutate balances and rate counters.
// Every mutating operation is a single atomic server-side operation; callers
// never read-modify-write a balance.
type Ledger interface {
	// ReserveAccountCredits decrements the account balance by amount only if
	// the result stays non-negative. Returns the new balance, or
	// errors.ErrInsufficientFunds / errors.ErrProfileMissing.
	ReserveAccountCredits(ctx context.Context, accountID domain.AccountID, amount int64) (int64, error)

	// RefundAccountCredits unconditionally increments the account balance.
	// Returns errors.ErrProfileMissing if the account has no balance row; a
	// refund for a nonexistent account is a bug to surface, not to paper over.
	RefundAccountCredits(ctx context.Context, accountID domain.AccountID, amount int64) (int64, error)

	// ReserveOrgCredits and RefundOrgCredits carry the same contract scoped to
	// the organization balance.
	ReserveOrgCredits(ctx context.Context, orgID domain.OrganizationID, amount int64) (int64, error)
	RefundOrgCredits(ctx context.Context, orgID domain.OrganizationID, amount int64) (int64, error)

	// ConsumeRateLimit increments the org's minute and day counters by n,
	// resetting any counter whose stored bucket does not match the bucket
	// derived from now (UTC truncation). If a post-increment count exceeds its
	// ceiling the increment is not retained and a *errors.RateLimitError is
	// returned. A ceiling <= 0 disables that window's check.
	ConsumeRateLimit(ctx context.Context, orgID domain.OrganizationID, now time.Time, n, rpm, daily int64) error

	// Balance returns the current balance for a scope.
	Balance(ctx context.Context, scope domain.Scope) (int64, error)

	// Usage returns current counts versus ceilings, with stale buckets read
	// as zero.
	Usage(ctx context.Context, orgID domain.OrganizationID, now time.Time) (domain.Usage, error)
}
