package ports

import (
	"context"

	"github.com/Gautam2117/cliplingua/internal/domain"
)

// WorkerClient talks to the external media worker. All calls are fallible
// remote calls with timeouts; a timeout is a failure like any other. The
// implementation normalizes the worker's loosely-typed payloads into the
// domain's fixed enums and never lets unrecognized shapes through.
type WorkerClient interface {
	// CreateJob starts a clip job for the URL and returns the worker job id.
	CreateJob(ctx context.Context, url string) (string, error)
	// GetJob fetches and normalizes the worker's view of a job.
	GetJob(ctx context.Context, workerJobID string) (*domain.WorkerJob, error)
	// CreateDub starts a dub of an existing job into lang.
	CreateDub(ctx context.Context, workerJobID, lang, captionStyle string) error
	// Health probes the worker with a short timeout.
	Health(ctx context.Context) error
}
