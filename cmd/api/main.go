package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/SAGARSINGH-1/HostelCMS/internal/api/http"
	"github.com/SAGARSINGH-1/HostelCMS/internal/api/http/handlers"
	"github.com/SAGARSINGH-1/HostelCMS/internal/auth"
	"github.com/SAGARSINGH-1/HostelCMS/internal/blob"
	"github.com/SAGARSINGH-1/HostelCMS/internal/config"
	"github.com/SAGARSINGH-1/HostelCMS/internal/directory"
	"github.com/SAGARSINGH-1/HostelCMS/internal/events"
	"github.com/SAGARSINGH-1/HostelCMS/internal/mention"
	"github.com/SAGARSINGH-1/HostelCMS/internal/observability"
	"github.com/SAGARSINGH-1/HostelCMS/internal/persistence"
	"github.com/SAGARSINGH-1/HostelCMS/internal/realtime"
	"github.com/SAGARSINGH-1/HostelCMS/internal/repository"
	"github.com/SAGARSINGH-1/HostelCMS/internal/service"
	"github.com/SAGARSINGH-1/HostelCMS/internal/worker"
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

	pool := pg.PoolHandle()
	studentRepo := repository.NewStudentRepository(pool)
	facultyRepo := repository.NewFacultyRepository(pool)
	queryRepo := repository.NewQueryRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	dir := directory.New(studentRepo, facultyRepo)
	extractor := mention.NewExtractor(dir)
	blobStore := blob.NewPostgresStore(pool)
	notifier := realtime.NewRedisNotifier(redis.Client, cfg.Notification.ChannelPrefix, logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		StudentRepo: studentRepo,
		FacultyRepo: facultyRepo,
	})
	queryService := service.NewQueryService(service.QueryDependencies{
		QueryRepo:  queryRepo,
		BlobStore:  blobStore,
		Extractor:  extractor,
		Directory:  dir,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	notificationService := service.NewNotificationService(notificationRepo, cfg.Notification)
	fanoutService := service.NewFanoutService(notificationRepo, notifier, logger, metrics)
	worker.StartNotificationWorker(fanoutService, dispatcher)

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), dir)

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxFileSizeBytes)*cfg.Upload.MaxFilesPerQuery + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	validate := handlers.NewValidator()
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:           handlers.NewAuthHandler(authService, validate),
		Queries:        handlers.NewQueriesHandler(queryService, validate, cfg.Upload),
		Notifications:  handlers.NewNotificationsHandler(notificationService),
		Usernames:      handlers.NewUsernamesHandler(dir, validate),
		Files:          handlers.NewFilesHandler(blobStore),
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
