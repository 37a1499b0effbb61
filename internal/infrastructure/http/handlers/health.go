package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/Gautam2117/cliplingua/internal/application/ports"
)

// HealthHandler serves /health with DB, optional Redis, and worker checks.
// The worker check is advisory: the worker cold-starts, so a miss there
// degrades the report without failing it.
type HealthHandler struct {
	pool   *pgxpool.Pool
	redis  *redis.Client
	worker ports.WorkerClient
}

// NewHealthHandler creates a health handler (redis and worker optional).
func NewHealthHandler(pool *pgxpool.Pool, redisClient *redis.Client, worker ports.WorkerClient) *HealthHandler {
	return &HealthHandler{pool: pool, redis: redisClient, worker: worker}
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks,omitempty"`
	Message string            `json:"message,omitempty"`
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := make(map[string]string)
	allOK := true

	if err := h.pool.Ping(ctx); err != nil {
		checks["database"] = "down: " + err.Error()
		allOK = false
	} else {
		checks["database"] = "ok"
	}

	if h.redis != nil {
		if err := h.redis.Ping(ctx).Err(); err != nil {
			checks["redis"] = "down: " + err.Error()
			allOK = false
		} else {
			checks["redis"] = "ok"
		}
	}

	if h.worker != nil {
		if err := h.worker.Health(ctx); err != nil {
			checks["worker"] = "cold: " + err.Error()
		} else {
			checks["worker"] = "ok"
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if !allOK {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(healthResponse{
			Status:  "unhealthy",
			Checks:  checks,
			Message: "one or more checks failed",
		})
		return
	}
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status: "ok",
		Checks: checks,
	})
}
