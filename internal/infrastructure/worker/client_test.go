package worker

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gautam2117/cliplingua/internal/domain"
	domainerrors "github.com/Gautam2117/cliplingua/internal/domain/errors"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, 2*time.Second, time.Second, zerolog.Nop()), srv
}

func TestCreateJobReturnsWorkerID(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/jobs", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://example.com/v.mp4", body["url"])
		json.NewEncoder(w).Encode(map[string]string{"jobId": "wj-123"})
	}))

	id, err := client.CreateJob(context.Background(), "https://example.com/v.mp4")
	require.NoError(t, err)
	assert.Equal(t, "wj-123", id)
}

func TestCreateJobServerErrorIsUnavailable(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := client.CreateJob(context.Background(), "https://example.com/v.mp4")
	assert.True(t, errors.Is(err, domainerrors.ErrWorkerUnavailable))
}

func TestCreateJobBadRequestIsRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))

	_, err := client.CreateJob(context.Background(), "not-a-url")
	assert.True(t, errors.Is(err, domainerrors.ErrWorkerRejected))
}

func TestCreateJobUnreachableIsUnavailable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second, time.Second, zerolog.Nop())

	_, err := client.CreateJob(context.Background(), "https://example.com/v.mp4")
	assert.True(t, errors.Is(err, domainerrors.ErrWorkerUnavailable))
}

func TestGetJobNormalizesStatus(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/wj-123", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"id": "wj-123", "status": "running"})
	}))

	job, err := client.GetJob(context.Background(), "wj-123")
	require.NoError(t, err)
	assert.Equal(t, domain.JobRunning, job.Status)
}

func TestGetJobUnknownStatusIsRejected(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"id": "wj-123", "status": "transcoding"})
	}))

	_, err := client.GetJob(context.Background(), "wj-123")
	assert.True(t, errors.Is(err, domainerrors.ErrWorkerRejected))
}

func TestGetJobNotFound(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.GetJob(context.Background(), "missing")
	assert.True(t, errors.Is(err, domainerrors.ErrJobNotFound))
}

func TestCreateDubSendsLang(t *testing.T) {
	var got map[string]string
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/jobs/wj-123/dub", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))

	require.NoError(t, client.CreateDub(context.Background(), "wj-123", "hi", ""))
	assert.Equal(t, "hi", got["lang"])
	_, hasStyle := got["captionStyle"]
	assert.False(t, hasStyle)
}

func TestHealth(t *testing.T) {
	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/health", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]bool{"ok": true})
	}))

	assert.NoError(t, client.Health(context.Background()))
}
