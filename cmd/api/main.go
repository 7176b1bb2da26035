package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/caseflow/triage-service/internal/api/http"
	"github.com/caseflow/triage-service/internal/api/http/handlers"
	"github.com/caseflow/triage-service/internal/classifier"
	"github.com/caseflow/triage-service/internal/config"
	"github.com/caseflow/triage-service/internal/events"
	"github.com/caseflow/triage-service/internal/mailer"
	"github.com/caseflow/triage-service/internal/observability"
	"github.com/caseflow/triage-service/internal/persistence"
	"github.com/caseflow/triage-service/internal/repository"
	"github.com/caseflow/triage-service/internal/service"
	"github.com/caseflow/triage-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	caseRepo, storeName, closeStore := openCaseStore(ctx, cfg, logger)
	defer closeStore()

	if cfg.Classifier.APIKey == "" {
		logger.Warn("ANTHROPIC_API_KEY not set, classification requests will fail")
	}
	caseClassifier := classifier.NewAnthropicClassifier(cfg.Classifier,
		&http.Client{Timeout: cfg.Classifier.Timeout()}, logger, metrics)

	sender := mailer.NewSMTPSender(cfg.Mail)
	if !sender.Configured() {
		logger.Warn("EMAIL_USER or EMAIL_PASS not set, notifications disabled")
	}

	dispatcher := events.NewInMemoryDispatcher()
	notificationService := service.NewNotificationService(dispatcher, sender, logger, metrics)
	worker.StartNotificationWorker(notificationService, logger)

	caseService := service.NewCaseService(service.CaseDependencies{
		CaseRepo:   caseRepo,
		Classifier: caseClassifier,
		Dispatcher: dispatcher,
		Logger:     logger,
		Metrics:    metrics,
	})

	app := fiber.New(fiber.Config{
		AppName:               cfg.App.Name,
		DisableStartupMessage: true,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, storeName, caseRepo),
		Cases:   handlers.NewCasesHandler(caseService),
		Metrics: metrics,
	})

	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("store", storeName))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Error("shutdown", zap.Error(err))
	}
}

// openCaseStore picks PostgreSQL when a DSN is configured and the embedded SQLite file otherwise.
func openCaseStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (repository.CaseRepository, string, func()) {
	if cfg.Postgres.UsePostgres() {
		pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to connect postgres", zap.Error(err))
		}
		return repository.NewPostgresCaseRepository(pg.PoolHandle()), "postgres", pg.Close
	}

	store, err := persistence.NewSQLite(ctx, cfg.SQLite, logger)
	if err != nil {
		logger.Fatal("failed to open sqlite", zap.Error(err))
	}
	return repository.NewSQLiteCaseRepository(store.DB), "sqlite", store.Close
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
