package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/domain"
	domainerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

// Client talks to the media worker over HTTP. The worker cold-starts, so job
// creation gets a long timeout while health probes get a short one.
type Client struct {
	baseURL       string
	http          *http.Client
	createTimeout time.Duration
	healthTimeout time.Duration
	log           zerolog.Logger
}

var _ ports.WorkerClient = (*Client)(nil)

func NewClient(baseURL string, createTimeout, healthTimeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		baseURL:       baseURL,
		http:          &http.Client{},
		createTimeout: createTimeout,
		healthTimeout: healthTimeout,
		log:           log.With().Str("component", "worker_client").Logger(),
	}
}

func (c *Client) CreateJob(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	var out struct {
		JobID string `json:"jobId"`
	}
	if err := c.post(ctx, "/jobs", map[string]string{"url": url}, &out); err != nil {
		return "", err
	}
	if out.JobID == "" {
		return "", fmt.Errorf("worker returned empty job id: %w", domainerrors.ErrWorkerRejected)
	}
	return out.JobID, nil
}

func (c *Client) GetJob(ctx context.Context, workerJobID string) (*domain.WorkerJob, error) {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/jobs/"+workerJobID, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("worker get job: %w", domainerrors.ErrWorkerUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, domainerrors.ErrJobNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("worker get job: status %d: %w", resp.StatusCode, domainerrors.ErrWorkerRejected)
	}
	var body struct {
		ID     string `json:"id"`
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("worker get job: decode: %w", domainerrors.ErrWorkerRejected)
	}
	status, ok := normalizeStatus(body.Status)
	if !ok {
		return nil, fmt.Errorf("worker get job: unknown status %q: %w", body.Status, domainerrors.ErrWorkerRejected)
	}
	return &domain.WorkerJob{ID: body.ID, Status: status, Error: body.Error}, nil
}

func (c *Client) CreateDub(ctx context.Context, workerJobID, lang, captionStyle string) error {
	ctx, cancel := context.WithTimeout(ctx, c.createTimeout)
	defer cancel()

	payload := map[string]string{"lang": lang}
	if captionStyle != "" {
		payload["captionStyle"] = captionStyle
	}
	return c.post(ctx, "/jobs/"+workerJobID+"/dub", payload, nil)
}

func (c *Client) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.healthTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("worker health: %w", domainerrors.ErrWorkerUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("worker health: status %d: %w", resp.StatusCode, domainerrors.ErrWorkerUnavailable)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn().Err(err).Str("path", path).Msg("worker request failed")
		return fmt.Errorf("worker post %s: %w", path, domainerrors.ErrWorkerUnavailable)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("worker post %s: status %d: %w", path, resp.StatusCode, domainerrors.ErrWorkerUnavailable)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("worker post %s: status %d: %w", path, resp.StatusCode, domainerrors.ErrWorkerRejected)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("worker post %s: decode: %w", path, domainerrors.ErrWorkerRejected)
	}
	return nil
}

// normalizeStatus maps the worker's status strings onto the fixed lifecycle
// enum. Unknown strings are rejected rather than passed through.
func normalizeStatus(s string) (domain.JobStatus, bool) {
	switch s {
	case "queued":
		return domain.JobQueued, true
	case "running":
		return domain.JobRunning, true
	case "done":
		return domain.JobDone, true
	case "error":
		return domain.JobError, true
	default:
		return "", false
	}
}
