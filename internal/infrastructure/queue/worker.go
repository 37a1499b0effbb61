package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// refundRetryPayload matches the JSON enqueued by TaskEnqueuer.EnqueueRefundRetry.
type refundRetryPayload struct {
	ScopeKind string `json:"scope_kind"`
	ScopeID   string `json:"scope_id"`
	Amount    int64  `json:"amount"`
	Reason    string `json:"reason"`
}

// Worker runs Asynq task handlers (refund retries).
type Worker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	ledger ports.Ledger
	log    zerolog.Logger
}

// NewWorker creates an Asynq server and registers handlers. Call Run() to start.
func NewWorker(redisOpt asynq.RedisClientOpt, ledger ports.Ledger, log zerolog.Logger) *Worker {
	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 2,
		LogLevel:    asynq.InfoLevel,
	})
	mux := asynq.NewServeMux()
	w := &Worker{srv: srv, mux: mux, ledger: ledger, log: log}
	mux.HandleFunc(TypeRefundRetry, w.handleRefundRetry)
	return w
}

func (w *Worker) handleRefundRetry(ctx context.Context, t *asynq.Task) error {
	var p refundRetryPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		w.log.Error().Err(err).Msg("refund retry task payload invalid")
		return err
	}
	id, err := uuid.Parse(p.ScopeID)
	if err != nil {
		w.log.Error().Err(err).Str("scope_id", p.ScopeID).Msg("refund retry scope id invalid")
		return err
	}
	switch domain.ScopeKind(p.ScopeKind) {
	case domain.ScopeAccount:
		_, err = w.ledger.RefundAccountCredits(ctx, domain.NewAccountID(id), p.Amount)
	case domain.ScopeOrg:
		_, err = w.ledger.RefundOrgCredits(ctx, domain.NewOrganizationID(id), p.Amount)
	default:
		return fmt.Errorf("refund retry: unknown scope kind %q", p.ScopeKind)
	}
	if err != nil {
		w.log.Error().Err(err).
			Str("scope", p.ScopeKind).
			Str("scope_id", p.ScopeID).
			Int64("amount", p.Amount).
			Str("reason", p.Reason).
			Msg("refund retry failed")
		return err
	}
	w.log.Info().
		Str("scope", p.ScopeKind).
		Str("scope_id", p.ScopeID).
		Int64("amount", p.Amount).
		Msg("refund retried")
	return nil
}

// Run blocks until shutdown. Use Shutdown for graceful stop.
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

// Shutdown stops the worker.
func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
