package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/recruiting-service/internal/api/http"
	"github.com/spec-kit/recruiting-service/internal/api/http/handlers"
	"github.com/spec-kit/recruiting-service/internal/auth"
	"github.com/spec-kit/recruiting-service/internal/config"
	"github.com/spec-kit/recruiting-service/internal/events"
	"github.com/spec-kit/recruiting-service/internal/observability"
	"github.com/spec-kit/recruiting-service/internal/persistence"
	"github.com/spec-kit/recruiting-service/internal/repository"
	"github.com/spec-kit/recruiting-service/internal/service"
	"github.com/spec-kit/recruiting-service/internal/storage"
	"github.com/spec-kit/recruiting-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	fileStore, err := storage.New(cfg.Storage)
	if err != nil {
		logger.Fatal("failed to init file storage", zap.Error(err))
	}
	logger.Info("file storage ready", zap.String("backend", cfg.Storage.Backend))

	pool := pg.PoolHandle()
	candidateRepo := repository.NewCandidateRepository(pool)
	statusChangeRepo := repository.NewStatusChangeRepository(pool)

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(
		dispatcher,
		service.NewLogEmailSender(logger),
		logger,
		cfg.Notification,
	)
	worker.StartNotificationWorker(notificationService)

	candidateService := service.NewCandidateService(service.CandidateDependencies{
		CandidateRepo:    candidateRepo,
		StatusChangeRepo: statusChangeRepo,
		FileStore:        fileStore,
		Dispatcher:       dispatcher,
		Logger:           logger,
		MaxResumeSize:    cfg.Upload.MaxResumeSizeBytes,
	})

	adminMiddleware := auth.NewAdminMiddleware(cfg.Auth.AdminToken)
	metrics := observability.NewMetrics()

	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.Upload.MaxResumeSizeBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	limiter := httptransport.NewRedisLimiter(redis.ClientHandle())
	publicLimiter := httptransport.RateLimitMiddleware(limiter, cfg.RateLimit.PublicRequestsPerMinute, time.Minute)

	healthHandler := handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis)
	candidatesHandler := handlers.NewCandidatesHandler(candidateService)
	adminHandler := handlers.NewAdminHandler(candidateService)

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:          healthHandler,
		Candidates:      candidatesHandler,
		Admin:           adminHandler,
		AdminMiddleware: adminMiddleware,
		PublicLimiter:   publicLimiter,
		Metrics:         metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
