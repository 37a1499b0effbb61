package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Gautam2117/cliplingua/internal/application/billing"
	"github.com/Gautam2117/cliplingua/internal/application/credits"
	"github.com/Gautam2117/cliplingua/internal/application/jobs"
	"github.com/Gautam2117/cliplingua/internal/application/orgs"
	"github.com/Gautam2117/cliplingua/internal/application/ports"
	"github.com/Gautam2117/cliplingua/internal/config"
	infraauth "github.com/Gautam2117/cliplingua/internal/infrastructure/auth"
	httprouter "github.com/Gautam2117/cliplingua/internal/infrastructure/http"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/handlers"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/http/middleware"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/persistence/postgres"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/queue"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/security"
	"github.com/Gautam2117/cliplingua/internal/infrastructure/worker"
)

func main() {
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("connect to database")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("ping database")
	}
	if err := postgres.EnsureSchema(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("ensure schema")
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opt, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("parse REDIS_URL")
		}
		redisClient = redis.NewClient(opt)
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			log.Warn().Err(err).Msg("redis ping failed; continuing without redis")
			redisClient = nil
		}
	}

	accountRepo := postgres.NewAccountRepository(pool)
	orgRepo := postgres.NewOrganizationRepository(pool)
	keyRepo := postgres.NewAPIKeyRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	orderRepo := postgres.NewOrderRepository(pool)
	ledger := postgres.NewLedger(pool)

	var taskEnqueuer ports.TaskEnqueuer
	var asynqWorker *queue.Worker
	if redisClient != nil {
		redisOpt, _ := redis.ParseURL(cfg.Redis.URL)
		asynqOpt := asynq.RedisClientOpt{Addr: redisOpt.Addr, Password: redisOpt.Password, DB: redisOpt.DB}
		asynqEnq, err := queue.NewAsynqEnqueuer(asynqOpt, log)
		if err != nil {
			log.Fatal().Err(err).Msg("create asynq enqueuer")
		}
		defer asynqEnq.Close()
		taskEnqueuer = asynqEnq
		asynqWorker = queue.NewWorker(asynqOpt, ledger, log)
		go func() {
			if err := asynqWorker.Run(); err != nil {
				log.Warn().Err(err).Msg("asynq worker stopped")
			}
		}()
	} else {
		taskEnqueuer = queue.NewNoopEnqueuer()
	}

	hasher := security.NewArgon2Hasher(security.Argon2Params{
		Memory:      cfg.Argon2.Memory,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  16,
		KeyLength:   32,
	})

	if cfg.JWT.PublicKeyPath == "" {
		log.Fatal().Msg("JWT_PUBLIC_KEY_PATH is required")
	}
	publicKey, err := infraauth.LoadRSAPublicKey(cfg.JWT.PublicKeyPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load JWT public key")
	}
	verifier := infraauth.NewTokenVerifier(publicKey, cfg.JWT.Issuer, cfg.JWT.Audience)

	workerClient := worker.NewClient(cfg.Worker.BaseURL, cfg.Worker.CreateTimeout, cfg.Worker.HealthTimeout, log)

	reserver := credits.NewReserver(ledger, taskEnqueuer, log)
	submitClipUC := jobs.NewSubmitClip(workerClient, jobRepo, reserver, log)
	submitBulkUC := jobs.NewSubmitBulk(workerClient, jobRepo, ledger, reserver, cfg.Bulk.MaxBatch, cfg.Bulk.Workers, log)
	submitDubUC := jobs.NewSubmitDub(workerClient, jobRepo, reserver, log)
	getStatusUC := jobs.NewGetStatus(workerClient, jobRepo, log)
	bootstrapUC := orgs.NewBootstrap(accountRepo, orgRepo)
	joinUC := orgs.NewJoin(accountRepo, orgRepo)
	setActiveUC := orgs.NewSetActive(accountRepo, orgRepo)
	createKeyUC := orgs.NewCreateAPIKey(orgRepo, keyRepo, hasher)
	revokeKeyUC := orgs.NewRevokeAPIKey(orgRepo, keyRepo)
	createOrderUC := billing.NewCreateOrder(orgRepo, orderRepo)
	verifyPaymentUC := billing.NewVerifyPayment(orderRepo, orgRepo, cfg.Billing.PaymentSecret, log)

	healthHandler := handlers.NewHealthHandler(pool, redisClient, workerClient)
	accountsHandler := handlers.NewAccountsHandler(ledger)
	jobsHandler := handlers.NewJobsHandler(submitClipUC, submitBulkUC, submitDubUC, getStatusUC, bootstrapUC, ledger, log)
	orgsHandler := handlers.NewOrgsHandler(bootstrapUC, joinUC, setActiveUC, createKeyUC, revokeKeyUC, keyRepo, ledger)
	clipsHandler := handlers.NewClipsHandler(submitClipUC, submitBulkUC, ledger)
	billingHandler := handlers.NewBillingHandler(createOrderUC, verifyPaymentUC, bootstrapUC, log)

	jwtAuth := middleware.NewAuthValidator(verifier, accountRepo, cfg.Credits.SignupGrant)
	keyAuth := middleware.NewAPIKeyResolver(keyRepo, orgRepo, hasher)
	dualAuth := middleware.NewDualAuth(jwtAuth, keyAuth)

	ipLimit, err := middleware.NewIPRateLimiter(cfg.RateLimit.RatePerIP)
	if err != nil {
		log.Fatal().Err(err).Msg("create IP rate limiter")
	}
	secureMiddleware := middleware.NewSecure(middleware.SecureOptions(cfg.Secure.IsDevelopment))

	router := httprouter.NewRouter(httprouter.RouterConfig{
		HealthHandler:   healthHandler,
		AccountsHandler: accountsHandler,
		JobsHandler:     jobsHandler,
		OrgsHandler:     orgsHandler,
		ClipsHandler:    clipsHandler,
		BillingHandler:  billingHandler,
		RequireJWT:      jwtAuth.Handler,
		RequireKey:      keyAuth.Handler,
		RequireEither:   dualAuth.Handler,
		Log:             log,
		Secure:          secureMiddleware,
		IPRateLimit:     ipLimit,
		Metrics:         true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 150 * time.Second, // submits wait out worker cold starts
	}

	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	if asynqWorker != nil {
		asynqWorker.Shutdown()
	}
	log.Info().Msg("server stopped")
}
