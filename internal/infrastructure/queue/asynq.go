package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

const (
	TypeRefundRetry = "ledger:refund_retry"

	refundRetryDelay = 30 * time.Second
)

type TaskEnqueuer struct {
	client *asynq.Client
	log    zerolog.Logger
}

func NewAsynqEnqueuer(redisOpt asynq.RedisClientOpt, log zerolog.Logger) (*TaskEnqueuer, error) {
	client := asynq.NewClient(redisOpt)
	return &TaskEnqueuer{client: client, log: log}, nil
}

func (q *TaskEnqueuer) Close() error {
	return q.client.Close()
}

func (q *TaskEnqueuer) EnqueueRefundRetry(ctx context.Context, scope domain.Scope, amount int64, reason string) error {
	payload, _ := json.Marshal(refundRetryPayload{
		ScopeKind: string(scope.Kind),
		ScopeID:   scope.ID.String(),
		Amount:    amount,
		Reason:    reason,
	})
	task := asynq.NewTask(TypeRefundRetry, payload, asynq.MaxRetry(3))
	_, err := q.client.EnqueueContext(ctx, task, asynq.ProcessIn(refundRetryDelay))
	if err != nil {
		q.log.Warn().Err(err).Str("scope", string(scope.Kind)).Int64("amount", amount).Msg("enqueue refund retry failed")
		return err
	}
	return nil
}

var _ ports.TaskEnqueuer = (*TaskEnqueuer)(nil)
