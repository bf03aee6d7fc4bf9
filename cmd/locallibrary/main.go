package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/locallibrary/locallibrary/internal/app"
	"github.com/locallibrary/locallibrary/internal/auth"
	"github.com/locallibrary/locallibrary/internal/catalog"
	"github.com/locallibrary/locallibrary/internal/catalog/authors"
	"github.com/locallibrary/locallibrary/internal/catalog/books"
	"github.com/locallibrary/locallibrary/internal/loans"
	"github.com/locallibrary/locallibrary/internal/observability"
	"github.com/locallibrary/locallibrary/internal/platform/cache"
	"github.com/locallibrary/locallibrary/internal/platform/db"
	"github.com/locallibrary/locallibrary/internal/rbac"
	"github.com/locallibrary/locallibrary/internal/shared"
	"github.com/locallibrary/locallibrary/internal/view"
	"github.com/locallibrary/locallibrary/jobs"
)

const sessionCookieName = "library_session"

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)
	slog.SetDefault(logger)

	if cfg.DBAutoMigrate {
		if err := db.RunMigrations(cfg.PGDSN); err != nil {
			logger.Error("run migrations", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("migrations applied")
	}

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, sessionCookieName, cfg.SessionTTL, cfg.IsProduction())
	csrfManager := shared.NewCSRFManager(cfg.CSRFSecret)

	templates, err := view.NewEngine()
	if err != nil {
		logger.Error("parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	pages := view.Responder{Templates: templates, CSRF: csrfManager, Logger: logger}

	metrics := observability.NewMetrics()
	auditLogger := shared.NewAuditLogger(dbpool)
	statsCache := catalog.NewStatsCache(redisClient, cfg.StatsCacheTTL)

	rbacService := rbac.NewService(dbpool)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}

	authService := auth.NewService(auth.NewRepository(dbpool))
	authHandler := auth.NewHandler(logger, authService, pages, sessionManager)

	catalogService := catalog.NewService(catalog.NewRepository(dbpool), statsCache, logger)
	catalogHandler := catalog.NewHandler(logger, catalogService, pages, cfg.CatalogPageSize)

	loansService := loans.NewService(loans.NewRepository(dbpool), auditLogger, statsCache, metrics, logger)
	loansHandler := loans.NewHandler(logger, loansService, pages, rbacMiddleware)

	authorsService := authors.NewService(authors.NewRepository(dbpool), auditLogger, statsCache, logger).WithMetrics(metrics)
	authorsHandler := authors.NewHandler(logger, authorsService, pages, rbacMiddleware)

	booksService := books.NewService(books.NewRepository(dbpool), auditLogger, statsCache, logger).WithMetrics(metrics)
	booksHandler := books.NewHandler(logger, booksService, pages, rbacMiddleware)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:         logger,
		Config:         cfg,
		Pages:          pages,
		SessionManager: sessionManager,
		CSRFManager:    csrfManager,
		RBACMiddleware: rbacMiddleware,
		AuthHandler:    authHandler,
		CatalogHandler: catalogHandler,
		LoansHandler:   loansHandler,
		AuthorsHandler: authorsHandler,
		BooksHandler:   booksHandler,
		JobHandler:     jobHandler,
		Metrics:        metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
