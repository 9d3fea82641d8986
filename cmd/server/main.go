package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	httpAdapter "github.com/iho/brook/internal/adapter/http"
	"github.com/iho/brook/internal/adapter/http/handler"
	"github.com/iho/brook/internal/adapter/http/middleware"
	"github.com/iho/brook/internal/adapter/repository/memory"
	redisRepo "github.com/iho/brook/internal/adapter/repository/redis"
	"github.com/iho/brook/internal/demo"
	"github.com/iho/brook/internal/infrastructure/config"
	"github.com/iho/brook/internal/infrastructure/logger"
	"github.com/iho/brook/internal/infrastructure/metrics"
	"github.com/iho/brook/internal/infrastructure/redis"
	"github.com/iho/brook/internal/usecase"
)

const rateLimitCleanupInterval = time.Minute

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	// Setup logger
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	zerolog.DefaultContextLogger = &log.Logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		log.Fatal().Err(err).Str("addr", cfg.Addr()).Msg("failed to listen")
	}

	if err := run(ctx, cfg, log.Logger, ln); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}

	log.Info().Msg("server stopped")
}

// app is the wired server: handler plus the resources it owns.
type app struct {
	handler     http.Handler
	rateLimiter *middleware.RateLimiter
	redisClient *goredis.Client
}

func (a *app) Close() error {
	if a.redisClient != nil {
		return a.redisClient.Close()
	}
	return nil
}

// newApp wires repositories, use cases and handlers into a router.
func newApp(ctx context.Context, cfg *config.Config, logger zerolog.Logger, reg *prometheus.Registry) (*app, error) {
	m := metrics.New(reg)

	// Initialize repositories
	accountRepo := memory.NewAccountRepository()
	idGen := memory.NewULIDGenerator()

	// Initialize use cases
	accountUC := usecase.NewAccountUseCase(accountRepo, idGen, m)
	transactionUC := usecase.NewTransactionUseCase(accountRepo, idGen, m)
	transferUC := usecase.NewTransferUseCase(accountRepo, idGen, m)
	reconciliationUC := usecase.NewReconciliationUseCase(accountRepo)

	a := &app{}
	checks := map[string]handler.Pinger{}

	var idempotencyStore usecase.IdempotencyStore = memory.NewIdempotencyStore()
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(ctx, cfg.RedisURL, 5*time.Second)
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to redis")

		a.redisClient = client
		idempotencyStore = redisRepo.NewIdempotencyStore(client, redisRepo.DefaultKeyPrefix)
		checks["redis"] = handler.PingerFunc(func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	if cfg.SeedDemo {
		account, err := demo.Seed(ctx, accountUC)
		if err != nil {
			a.Close()
			return nil, err
		}
		logger.Info().Str("account_id", account.ID).Str("name", account.Name).Msg("seeded demo account")
	}

	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst > 0 {
		a.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, m)
	}

	a.handler = httpAdapter.NewRouter(httpAdapter.RouterConfig{
		AccountHandler:        handler.NewAccountHandler(accountUC),
		TransactionHandler:    handler.NewTransactionHandler(transactionUC),
		TransferHandler:       handler.NewTransferHandler(transferUC),
		ReconciliationHandler: handler.NewReconciliationHandler(reconciliationUC),
		HealthHandler:         handler.NewHealthHandler(checks),
		Logger:                logger,
		Metrics:               m,
		Gatherer:              reg,
		RateLimiter:           a.rateLimiter,
		IdempotencyStore:      idempotencyStore,
		IdempotencyTTL:        cfg.IdempotencyTTL,
	})

	return a, nil
}

// run serves on ln until ctx is canceled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, logger zerolog.Logger, ln net.Listener) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	a, err := newApp(ctx, cfg, logger, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Handler:      a.handler,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
		BaseContext:  func(net.Listener) context.Context { return logger.WithContext(context.Background()) },
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info().Str("addr", ln.Addr().String()).Msg("starting server")
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if a.rateLimiter != nil {
		g.Go(func() error {
			return a.rateLimiter.Run(gctx, rateLimitCleanupInterval)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()

		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
