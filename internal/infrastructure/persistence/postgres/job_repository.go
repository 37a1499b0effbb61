package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
)

// JobRepository persists job records, the audit trail for every retained
// reservation.
type JobRepository struct {
	pool *pgxpool.Pool
}

var _ ports.JobRepository = (*JobRepository)(nil)

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) error {
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now()
		job.UpdatedAt = job.CreatedAt
	}
	var accountID uuid.NullUUID
	if job.AccountID != nil {
		accountID = uuid.NullUUID{UUID: job.AccountID.UUID, Valid: true}
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO jobs
			(id, kind, account_id, org_id, url, worker_job_id, dub_lang, status, worker_error, credits_spent, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		job.ID.UUID, string(job.Kind), accountID, job.OrgID.UUID, job.URL, job.WorkerJobID,
		job.DubLang, string(job.Status), job.WorkerError, job.CreditsSpent, job.CreatedAt, job.UpdatedAt,
	)
	return err
}

func (r *JobRepository) GetByID(ctx context.Context, id domain.JobID) (*domain.Job, error) {
	var j domain.Job
	var kind, status string
	var accountID uuid.NullUUID
	err := r.pool.QueryRow(ctx,
		`SELECT id, kind, account_id, org_id, url, worker_job_id, dub_lang, status, worker_error, credits_spent, created_at, updated_at
		 FROM jobs WHERE id = $1`,
		id.UUID,
	).Scan(&j.ID.UUID, &kind, &accountID, &j.OrgID.UUID, &j.URL, &j.WorkerJobID,
		&j.DubLang, &status, &j.WorkerError, &j.CreditsSpent, &j.CreatedAt, &j.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	j.Kind = domain.JobKind(kind)
	j.Status = domain.JobStatus(status)
	if accountID.Valid {
		aid := domain.NewAccountID(accountID.UUID)
		j.AccountID = &aid
	}
	return &j, nil
}

func (r *JobRepository) UpdateStatus(ctx context.Context, id domain.JobID, status domain.JobStatus, workerError string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE jobs SET status = $2, worker_error = $3, updated_at = now() WHERE id = $1`,
		id.UUID, string(status), workerError,
	)
	return err
}
