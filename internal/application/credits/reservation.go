package credits

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

var (
	reservationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cliplingua_credit_reservations_total",
			Help: "Credit reservations by scope and outcome",
		},
		[]string{"scope", "outcome"},
	)
	refundFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cliplingua_refund_failures_total",
			Help: "Refunds that failed synchronously and were handed to reconciliation",
		},
	)
)

// Reserver pairs every reserve with a guaranteed refund attempt if the work
// it paid for does not complete. It is the only code path that calls the
// ledger's reserve/refund operations on behalf of the orchestrators.
type Reserver struct {
	ledger ports.Ledger
	queue  ports.TaskEnqueuer
	log    zerolog.Logger
}

// NewReserver builds the reservation primitive.
func NewReserver(ledger ports.Ledger, queue ports.TaskEnqueuer, log zerolog.Logger) *Reserver {
	return &Reserver{ledger: ledger, queue: queue, log: log}
}

// Reserve debits amount from the scope. InsufficientFunds propagates as-is.
func (r *Reserver) Reserve(ctx context.Context, scope domain.Scope, amount int64) (int64, error) {
	var balance int64
	var err error
	switch scope.Kind {
	case domain.ScopeOrg:
		balance, err = r.ledger.ReserveOrgCredits(ctx, domain.NewOrganizationID(scope.ID), amount)
	default:
		balance, err = r.ledger.ReserveAccountCredits(ctx, domain.NewAccountID(scope.ID), amount)
	}
	if err != nil {
		reservationsTotal.WithLabelValues(string(scope.Kind), "rejected").Inc()
		return 0, err
	}
	reservationsTotal.WithLabelValues(string(scope.Kind), "reserved").Inc()
	return balance, nil
}

// Refund credits amount back to the scope. Failures are logged, counted, and
// handed to the reconciliation queue; they are never escalated to the caller.
func (r *Reserver) Refund(ctx context.Context, scope domain.Scope, amount int64, reason string) {
	var err error
	switch scope.Kind {
	case domain.ScopeOrg:
		_, err = r.ledger.RefundOrgCredits(ctx, domain.NewOrganizationID(scope.ID), amount)
	default:
		_, err = r.ledger.RefundAccountCredits(ctx, domain.NewAccountID(scope.ID), amount)
	}
	if err == nil {
		reservationsTotal.WithLabelValues(string(scope.Kind), "refunded").Inc()
		return
	}
	refundFailuresTotal.Inc()
	r.log.Error().Err(err).
		Str("scope", string(scope.Kind)).
		Str("scope_id", scope.ID.String()).
		Int64("amount", amount).
		Str("reason", reason).
		Msg("refund failed; queued for reconciliation")
	if qerr := r.queue.EnqueueRefundRetry(ctx, scope, amount, reason); qerr != nil {
		r.log.Error().Err(qerr).
			Str("scope_id", scope.ID.String()).
			Int64("amount", amount).
			Msg("refund retry enqueue failed; manual reconciliation required")
	}
}

// WithReservation reserves amount, runs work, and refunds if work fails.
//
// The reserve happens first; if it signals InsufficientFunds, work is never
// invoked. If work returns an error the refund is attempted once, best-effort,
// and the work error propagates unchanged. On success the reservation is
// retained permanently.
func (r *Reserver) WithReservation(ctx context.Context, scope domain.Scope, amount int64, work func(ctx context.Context) error) error {
	if _, err := r.Reserve(ctx, scope, amount); err != nil {
		return err
	}
	if err := work(ctx); err != nil {
		r.Refund(ctx, scope, amount, "work failed: "+err.Error())
		return err
	}
	return nil
}
