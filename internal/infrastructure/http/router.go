package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimid "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/handlers"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
)

type RouterConfig struct {
	HealthHandler   *handlers.HealthHandler
	AccountsHandler *handlers.AccountsHandler
	JobsHandler     *handlers.JobsHandler
	OrgsHandler     *handlers.OrgsHandler
	ClipsHandler    *handlers.ClipsHandler
	BillingHandler  *handlers.BillingHandler
	RequireJWT      func(http.Handler) http.Handler // session auth for /me, /jobs, /orgs, /billing
	RequireKey      func(http.Handler) http.Handler // API key auth for /v1/*
	RequireEither   func(http.Handler) http.Handler // JWT or key for shared job routes
	Log             zerolog.Logger
	Secure          func(http.Handler) http.Handler
	IPRateLimit     func(http.Handler) http.Handler
	Metrics         bool // expose /metrics
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chimid.RequestID)
	r.Use(chimid.RealIP)
	r.Use(loggerMiddleware(cfg.Log))
	r.Use(chimid.Recoverer)
	if cfg.Metrics {
		r.Use(middleware.PrometheusMiddleware)
	}
	if cfg.Secure != nil {
		r.Use(cfg.Secure)
	}
	r.Use(chimid.AllowContentType("application/json"))
	r.Use(chimid.SetHeader("Content-Type", "application/json"))
	if cfg.IPRateLimit != nil {
		r.Use(cfg.IPRateLimit)
	}

	if cfg.HealthHandler != nil {
		r.Get("/health", cfg.HealthHandler.ServeHTTP)
	} else {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"status":"ok"}`))
		})
	}
	if cfg.Metrics {
		r.Handle("/metrics", promhttp.Handler())
	}

	if cfg.AccountsHandler != nil && cfg.RequireJWT != nil {
		r.Group(func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Get("/me", cfg.AccountsHandler.Me)
		})
	}

	if cfg.JobsHandler != nil {
		r.Route("/jobs", func(r chi.Router) {
			if cfg.RequireJWT != nil {
				r.Group(func(r chi.Router) {
					r.Use(cfg.RequireJWT)
					r.Post("/", cfg.JobsHandler.Submit)
					r.Post("/bulk", cfg.JobsHandler.SubmitBulk)
				})
			}
			if cfg.RequireEither != nil {
				r.Group(func(r chi.Router) {
					r.Use(cfg.RequireEither)
					r.Get("/{id}", cfg.JobsHandler.Get)
					r.Post("/{id}/dub", cfg.JobsHandler.Dub)
				})
			}
		})
	}

	if cfg.OrgsHandler != nil && cfg.RequireJWT != nil {
		r.Route("/orgs", func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Get("/current", cfg.OrgsHandler.Current)
			r.Post("/join", cfg.OrgsHandler.Join)
			r.Post("/active", cfg.OrgsHandler.SetActive)
			r.Get("/keys", cfg.OrgsHandler.ListKeys)
			r.Post("/keys", cfg.OrgsHandler.CreateKey)
			r.Delete("/keys/{id}", cfg.OrgsHandler.RevokeKey)
		})
	}

	if cfg.ClipsHandler != nil && cfg.RequireKey != nil {
		r.Route("/v1", func(r chi.Router) {
			r.Use(cfg.RequireKey)
			r.Post("/clips", cfg.ClipsHandler.Create)
			r.Post("/clips/bulk", cfg.ClipsHandler.CreateBulk)
			r.Get("/usage", cfg.ClipsHandler.Usage)
		})
	}

	if cfg.BillingHandler != nil && cfg.RequireJWT != nil {
		r.Route("/billing", func(r chi.Router) {
			r.Use(cfg.RequireJWT)
			r.Post("/orders", cfg.BillingHandler.CreateOrder)
			r.Post("/orders/verify", cfg.BillingHandler.VerifyOrder)
		})
	}

	return r
}

func loggerMiddleware(log zerolog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := chimid.GetReqID(r.Context())
			log.Info().
				Str("request_id", reqID).
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Msg("request")
			next.ServeHTTP(w, r)
		})
	}
}
