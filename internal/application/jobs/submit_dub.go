package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/credits"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// SubmitDubInput requests a dub of an already-submitted clip job.
type SubmitDubInput struct {
	AccountID    *domain.AccountID
	OrgID        domain.OrganizationID
	Scope        domain.Scope
	JobID        domain.JobID
	Lang         string
	CaptionStyle string
}

// SubmitDub is the dub-equivalent of the submission saga: worker dub create,
// then reserve, then persist a dub record referencing the same worker job.
// One dub request charges one credit.
type SubmitDub struct {
	worker   ports.WorkerClient
	jobs     ports.JobRepository
	reserver *credits.Reserver
	log      zerolog.Logger
}

// NewSubmitDub builds the use case.
func NewSubmitDub(worker ports.WorkerClient, jobs ports.JobRepository, reserver *credits.Reserver, log zerolog.Logger) *SubmitDub {
	return &SubmitDub{worker: worker, jobs: jobs, reserver: reserver, log: log}
}

// Execute requests the dub. The language is validated before anything is
// charged or sent to the worker.
func (uc *SubmitDub) Execute(ctx context.Context, input SubmitDubInput) (*domain.Job, error) {
	if !domain.SupportedDubLangs[input.Lang] {
		return nil, domerrors.ErrUnsupportedLang
	}
	parent, err := uc.jobs.GetByID(ctx, input.JobID)
	if err != nil {
		return nil, err
	}
	if parent == nil || parent.OrgID != input.OrgID {
		return nil, domerrors.ErrJobNotFound
	}

	if err := uc.worker.CreateDub(ctx, parent.WorkerJobID, input.Lang, input.CaptionStyle); err != nil {
		return nil, err
	}

	now := time.Now()
	dub := &domain.Job{
		ID:           domain.NewJobID(uuid.New()),
		Kind:         domain.JobKindDub,
		AccountID:    input.AccountID,
		OrgID:        input.OrgID,
		URL:          parent.URL,
		WorkerJobID:  parent.WorkerJobID,
		DubLang:      input.Lang,
		Status:       domain.JobSubmitted,
		CreditsSpent: ClipCost,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.reserver.WithReservation(ctx, input.Scope, ClipCost, func(ctx context.Context) error {
		return uc.jobs.Create(ctx, dub)
	}); err != nil {
		uc.log.Warn().Err(err).
			Str("worker_job_id", parent.WorkerJobID).
			Str("lang", input.Lang).
			Msg("dub submission failed after worker create")
		return nil, err
	}
	return dub, nil
}
