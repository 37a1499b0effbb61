package ports

import (
	"context"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

// TaskEnqueuer enqueues async tasks. Refund retries are best-effort: an
// enqueue failure is logged by the caller, never escalated.
type TaskEnqueuer interface {
	// EnqueueRefundRetry schedules one delayed retry of a refund that failed
	// synchronously.
	EnqueueRefundRetry(ctx context.Context, scope domain.Scope, amount int64, reason string) error
}
