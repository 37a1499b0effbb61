package jobs

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// GetStatus loads the local record, refreshes it from the worker, and
// persists any status transition. The worker being down is not fatal to a
// read: the last known status is returned and the miss is logged.
type GetStatus struct {
	worker ports.WorkerClient
	jobs   ports.JobRepository
	log    zerolog.Logger
}

// NewGetStatus builds the use case.
func NewGetStatus(worker ports.WorkerClient, jobs ports.JobRepository, log zerolog.Logger) *GetStatus {
	return &GetStatus{worker: worker, jobs: jobs, log: log}
}

// Execute returns the job scoped to the caller's organization.
func (uc *GetStatus) Execute(ctx context.Context, orgID domain.OrganizationID, jobID domain.JobID) (*domain.Job, error) {
	job, err := uc.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job == nil || job.OrgID != orgID {
		return nil, domerrors.ErrJobNotFound
	}

	remote, err := uc.worker.GetJob(ctx, job.WorkerJobID)
	if err != nil {
		uc.log.Warn().Err(err).
			Str("worker_job_id", job.WorkerJobID).
			Msg("status refresh failed; serving last known state")
		return job, nil
	}
	if remote.Status != job.Status || remote.Error != job.WorkerError {
		if err := uc.jobs.UpdateStatus(ctx, job.ID, remote.Status, remote.Error); err != nil {
			uc.log.Warn().Err(err).Str("job_id", job.ID.String()).Msg("status persist failed")
		} else {
			job.Status = remote.Status
			job.WorkerError = remote.Error
		}
	}
	return job, nil
}
