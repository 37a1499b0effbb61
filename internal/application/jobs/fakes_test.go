package jobs

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/credits"
	"github.com/Gautam2117/cliplingua/internal/domain"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/quota"
)

// fakeWorker scripts the external worker per call.
type fakeWorker struct {
	mu        sync.Mutex
	createErr error
	dubErr    error
	getJob    *domain.WorkerJob
	getErr    error
	created   []string
	dubbed    []string
	nextID    int
}

func (f *fakeWorker) CreateJob(_ context.Context, url string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return "", f.createErr
	}
	f.nextID++
	f.created = append(f.created, url)
	return "wj-" + string(rune('a'+f.nextID-1)), nil
}

func (f *fakeWorker) GetJob(_ context.Context, workerJobID string) (*domain.WorkerJob, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if f.getJob != nil {
		return f.getJob, nil
	}
	return &domain.WorkerJob{ID: workerJobID, Status: domain.JobQueued}, nil
}

func (f *fakeWorker) CreateDub(_ context.Context, workerJobID, lang, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dubErr != nil {
		return f.dubErr
	}
	f.dubbed = append(f.dubbed, workerJobID+":"+lang)
	return nil
}

func (f *fakeWorker) Health(context.Context) error { return nil }

// fakeJobRepo stores jobs in memory and can be scripted to fail creates.
type fakeJobRepo struct {
	mu        sync.Mutex
	createErr error
	jobs      map[domain.JobID]*domain.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[domain.JobID]*domain.Job)}
}

func (f *fakeJobRepo) Create(_ context.Context, job *domain.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	copied := *job
	f.jobs[job.ID] = &copied
	return nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id domain.JobID) (*domain.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, nil
	}
	copied := *job
	return &copied, nil
}

func (f *fakeJobRepo) UpdateStatus(_ context.Context, id domain.JobID, status domain.JobStatus, workerError string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if job, ok := f.jobs[id]; ok {
		job.Status = status
		job.WorkerError = workerError
	}
	return nil
}

func (f *fakeJobRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.jobs)
}

// fakeEnqueuer records refund retries.
type fakeEnqueuer struct {
	mu       sync.Mutex
	enqueued []int64
}

func (f *fakeEnqueuer) EnqueueRefundRetry(_ context.Context, _ domain.Scope, amount int64, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enqueued = append(f.enqueued, amount)
	return nil
}

func newTestReserver(ledger *quota.MemoryLedger) *credits.Reserver {
	return credits.NewReserver(ledger, &fakeEnqueuer{}, zerolog.Nop())
}

var errBoom = errors.New("boom")
