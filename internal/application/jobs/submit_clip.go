package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/credits"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// ClipCost is the fixed per-job charge: one credit per clip, one per dub.
const ClipCost int64 = 1

// SubmitClipInput carries the caller identity and the source URL. AccountID is
// nil for key-authenticated calls. Scope selects which balance pays.
type SubmitClipInput struct {
	AccountID *domain.AccountID
	OrgID     domain.OrganizationID
	Scope     domain.Scope
	URL       string
}

// SubmitClip runs the submission saga:
//
//	initiated -> worker_created -> reserved -> persisted
//
// Worker creation happens before the reservation, so an InsufficientFunds
// outcome leaves an unbilled worker job behind. That leak is accepted: the
// scope is never charged without a recorded job.
type SubmitClip struct {
	worker   ports.WorkerClient
	jobs     ports.JobRepository
	reserver *credits.Reserver
	log      zerolog.Logger
}

// NewSubmitClip builds the use case.
func NewSubmitClip(worker ports.WorkerClient, jobs ports.JobRepository, reserver *credits.Reserver, log zerolog.Logger) *SubmitClip {
	return &SubmitClip{worker: worker, jobs: jobs, reserver: reserver, log: log}
}

// Execute submits one clip job. Re-submitting the same URL is not deduplicated;
// each call creates a new worker job and a new charge.
func (uc *SubmitClip) Execute(ctx context.Context, input SubmitClipInput) (*domain.Job, error) {
	workerJobID, err := uc.worker.CreateJob(ctx, input.URL)
	if err != nil {
		// Nothing reserved yet; terminate with no ledger mutation.
		return nil, err
	}

	now := time.Now()
	job := &domain.Job{
		ID:           domain.NewJobID(uuid.New()),
		Kind:         domain.JobKindClip,
		AccountID:    input.AccountID,
		OrgID:        input.OrgID,
		URL:          input.URL,
		WorkerJobID:  workerJobID,
		Status:       domain.JobSubmitted,
		CreditsSpent: ClipCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.reserver.WithReservation(ctx, input.Scope, ClipCost, func(ctx context.Context) error {
		return uc.jobs.Create(ctx, job)
	}); err != nil {
		uc.log.Warn().Err(err).
			Str("worker_job_id", workerJobID).
			Str("url", input.URL).
			Msg("clip submission failed after worker create")
		return nil, err
	}
	return job, nil
}
