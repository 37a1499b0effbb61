package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/credits"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// BulkItemResult is the per-item outcome of a batch submission.
type BulkItemResult struct {
	URL   string `json:"url"`
	OK    bool   `json:"ok"`
	JobID string `json:"job_id,omitempty"`
	Err   string `json:"error,omitempty"`
}

// SubmitBulkInput carries the batch. Org must be the resolved organization so
// its ceilings can gate admission before any credits move.
type SubmitBulkInput struct {
	AccountID *domain.AccountID
	Org       *domain.Organization
	Scope     domain.Scope
	URLs      []string
}

// SubmitBulkResult aggregates per-item results; one failure never aborts the
// batch.
type SubmitBulkResult struct {
	Items     []BulkItemResult `json:"items"`
	Submitted int              `json:"submitted"`
	Failed    int              `json:"failed"`
}

// SubmitBulk fans the single-job saga out over a batch under a bounded worker
// pool. Reservation is batch-level: one rate-limit consume for the whole
// count, one upfront reserve of count*cost, one refund of failed*cost after
// the pool drains. The accepted failure window is a crash between the upfront
// reserve and the final refund.
type SubmitBulk struct {
	worker   ports.WorkerClient
	jobs     ports.JobRepository
	ledger   ports.Ledger
	reserver *credits.Reserver
	maxBatch int
	workers  int
	log      zerolog.Logger
}

// NewSubmitBulk builds the use case. workers is clamped to [1,6] to bound
// load on the external worker.
func NewSubmitBulk(worker ports.WorkerClient, jobs ports.JobRepository, ledger ports.Ledger, reserver *credits.Reserver, maxBatch, workers int, log zerolog.Logger) *SubmitBulk {
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if workers < 1 {
		workers = 1
	}
	if workers > 6 {
		workers = 6
	}
	return &SubmitBulk{
		worker:   worker,
		jobs:     jobs,
		ledger:   ledger,
		reserver: reserver,
		maxBatch: maxBatch,
		workers:  workers,
		log:      log,
	}
}

// Execute submits the batch. Admission (rate limit) happens before the
// reservation; a rejection there costs nothing.
func (uc *SubmitBulk) Execute(ctx context.Context, input SubmitBulkInput) (*SubmitBulkResult, error) {
	n := len(input.URLs)
	if n == 0 {
		return &SubmitBulkResult{Items: []BulkItemResult{}}, nil
	}
	if n > uc.maxBatch {
		return nil, domerrors.ErrBatchTooLarge
	}

	now := time.Now().UTC()
	if err := uc.ledger.ConsumeRateLimit(ctx, input.Org.ID, now, int64(n), input.Org.RPM, input.Org.DailyJobs); err != nil {
		return nil, err
	}

	total := int64(n) * ClipCost
	if _, err := uc.reserver.Reserve(ctx, input.Scope, total); err != nil {
		return nil, err
	}

	items := make([]BulkItemResult, n)
	idx := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < uc.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				items[i] = uc.submitOne(ctx, input, input.URLs[i])
			}
		}()
	}
	for i := 0; i < n; i++ {
		idx <- i
	}
	close(idx)
	wg.Wait()

	result := &SubmitBulkResult{Items: items}
	for _, item := range items {
		if item.OK {
			result.Submitted++
		} else {
			result.Failed++
		}
	}
	if result.Failed > 0 {
		uc.reserver.Refund(ctx, input.Scope, int64(result.Failed)*ClipCost, "bulk items failed")
	}
	return result, nil
}

// submitOne runs the saga for one item. Credits were reserved for the batch,
// so the record is written directly; a failure here is refunded in aggregate
// once the pool drains.
func (uc *SubmitBulk) submitOne(ctx context.Context, input SubmitBulkInput, url string) BulkItemResult {
	workerJobID, err := uc.worker.CreateJob(ctx, url)
	if err != nil {
		return BulkItemResult{URL: url, Err: err.Error()}
	}
	now := time.Now()
	job := &domain.Job{
		ID:           domain.NewJobID(uuid.New()),
		Kind:         domain.JobKindClip,
		AccountID:    input.AccountID,
		OrgID:        input.Org.ID,
		URL:          url,
		WorkerJobID:  workerJobID,
		Status:       domain.JobSubmitted,
		CreditsSpent: ClipCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.jobs.Create(ctx, job); err != nil {
		uc.log.Warn().Err(err).
			Str("worker_job_id", workerJobID).
			Str("url", url).
			Msg("bulk item persisted failed after worker create")
		return BulkItemResult{URL: url, Err: err.Error()}
	}
	return BulkItemResult{URL: url, OK: true, JobID: job.ID.String()}
}
