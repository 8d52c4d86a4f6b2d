package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/cffrank/jobmatchAI-sub016/internal/api/http"
	"github.com/cffrank/jobmatchAI-sub016/internal/api/http/handlers"
	"github.com/cffrank/jobmatchAI-sub016/internal/auth"
	"github.com/cffrank/jobmatchAI-sub016/internal/config"
	"github.com/cffrank/jobmatchAI-sub016/internal/events"
	"github.com/cffrank/jobmatchAI-sub016/internal/observability"
	"github.com/cffrank/jobmatchAI-sub016/internal/persistence"
	"github.com/cffrank/jobmatchAI-sub016/internal/repository"
	"github.com/cffrank/jobmatchAI-sub016/internal/service"
	"github.com/cffrank/jobmatchAI-sub016/internal/worker"
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

	if cfg.Postgres.RunMigrations && pg.PoolHandle() != nil {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	var userRepo repository.UserRepository
	var appRepo repository.ApplicationRepository
	if pool := pg.PoolHandle(); pool != nil {
		userRepo = repository.NewUserRepository(pool)
		appRepo = repository.NewApplicationRepository(pool)
	} else {
		userRepo = repository.NewMemoryUserRepository()
		appRepo = repository.NewMemoryApplicationRepository()
	}

	dispatcher := events.NewInMemoryDispatcher()
	events.NewRedisBridge(redis.Client, logger).Register(dispatcher)

	authService := service.NewAuthService(*cfg, userRepo)
	applicationService := service.NewApplicationService(appRepo, dispatcher)
	statusService := service.NewStatusService(appRepo, dispatcher, logger)
	queryService := service.NewQueryService(appRepo)
	notificationService := service.NewNotificationService(dispatcher, logger, cfg.Notification)
	worker.StartNotificationWorker(notificationService)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo)
	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Users:          handlers.NewUsersHandler(authService),
		Applications:   handlers.NewApplicationsHandler(applicationService, statusService, queryService),
		AuthMiddleware: authMiddleware,
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
