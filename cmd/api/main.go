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
	"golang.org/x/sync/errgroup"

	httptransport "github.com/opcopilot/opcopilot/internal/api/http"
	"github.com/opcopilot/opcopilot/internal/api/http/handlers"
	"github.com/opcopilot/opcopilot/internal/auth"
	"github.com/opcopilot/opcopilot/internal/config"
	"github.com/opcopilot/opcopilot/internal/events"
	"github.com/opcopilot/opcopilot/internal/fixtures"
	"github.com/opcopilot/opcopilot/internal/observability"
	"github.com/opcopilot/opcopilot/internal/persistence"
	"github.com/opcopilot/opcopilot/internal/repository"
	"github.com/opcopilot/opcopilot/internal/service"
	"github.com/opcopilot/opcopilot/internal/worker"
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

	operationRepo := repository.NewMemoryOperationRepository()
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		operationRepo = repository.NewPostgresOperationRepository(pg.PoolHandle())
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	sessions := repository.NewMemorySessionStore()
	if redis.Enabled() {
		sessions = repository.NewRedisSessionStore(redis.Client, cfg.Redis.SessionTTLDuration())
	}

	directory, err := auth.NewDirectory(auth.DemoCredentials, cfg.Auth.BcryptCost)
	if err != nil {
		logger.Fatal("failed to hash credentials", zap.Error(err))
	}
	tokenManager := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes)

	loader := fixtures.NewLoader(cfg.Data.Dir, cfg.Data.DemoFile, cfg.Data.TemplatesFile, logger)
	dispatcher := events.NewInMemoryDispatcher()
	metrics := observability.NewMetrics()

	notificationService := service.NewNotificationService(logger, cfg.Notification)
	notificationWorker := worker.NewNotificationWorker(notificationService, cfg.Notification.QueueSize, logger)
	notificationWorker.Subscribe(dispatcher)

	authService := service.NewAuthService(directory, tokenManager, sessions, logger)
	portfolioService := service.NewPortfolioService(service.PortfolioDependencies{
		Loader:     loader,
		Repo:       operationRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	navigationService := service.NewNavigationService(sessions, portfolioService)
	dashboardService := service.NewDashboardService(loader, portfolioService)
	moduleService := service.NewModuleService(service.ModuleDependencies{
		Loader:      loader,
		Portfolio:   portfolioService,
		Submissions: repository.NewSubmissionStore(),
		Dispatcher:  dispatcher,
		Logger:      logger,
	})

	cookie := handlers.CookieSettings{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
	authMiddleware := auth.NewAuthMiddleware(tokenManager, directory, sessions, cfg.Auth.CookieName)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:    handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:      handlers.NewAuthHandler(authService, navigationService, cookie),
		Dashboard: handlers.NewDashboardHandler(dashboardService),
		Session:   handlers.NewSessionHandler(navigationService),
		Portfolio: handlers.NewPortfolioHandler(portfolioService),
		Modules:   handlers.NewModulesHandler(moduleService),
		Admin:     handlers.NewAdminHandler(loader, metrics),
		Pages: handlers.NewPagesHandler(handlers.PagesDependencies{
			Auth:       authService,
			Navigation: navigationService,
			Dashboard:  dashboardService,
			Portfolio:  portfolioService,
			Modules:    moduleService,
			Cookie:     cookie,
		}),
		AuthMiddleware: authMiddleware,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return notificationWorker.Run(gctx) })
	if cfg.Data.Watch {
		watcher, err := fixtures.NewWatcher(loader, fixtures.DefaultDebounce)
		if err != nil {
			logger.Warn("fixture watcher disabled", zap.Error(err))
		} else {
			g.Go(func() error { return watcher.Run(gctx) })
		}
	}
	g.Go(func() error {
		return app.Listen(cfg.App.Addr())
	})
	g.Go(func() error {
		waitForShutdown(gctx, logger)
		cancel()
		return app.ShutdownWithTimeout(10 * time.Second)
	})

	if err := g.Wait(); err != nil {
		logger.Error("server stopped", zap.Error(err))
	}
}

func waitForShutdown(ctx context.Context, logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	case <-ctx.Done():
		logger.Info("shutting down", zap.Error(context.Cause(ctx)))
	}
}
