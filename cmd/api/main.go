package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campusshelf/library-backend/api/routes"
	"github.com/campusshelf/library-backend/internal/auth"
	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/internal/reminders"
	"github.com/campusshelf/library-backend/internal/reports"
	"github.com/campusshelf/library-backend/internal/reviews"
	"github.com/campusshelf/library-backend/internal/settings"
	"github.com/campusshelf/library-backend/internal/users"
	"github.com/campusshelf/library-backend/pkg/auth/session"
	"github.com/campusshelf/library-backend/pkg/config"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/mailer"
	"github.com/campusshelf/library-backend/pkg/metrics"
	"github.com/campusshelf/library-backend/pkg/migrate"
	"github.com/campusshelf/library-backend/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	lendingMetrics := metrics.NewLendingMetrics(registry)

	deps, err := buildDeps(cfg, logg, dbClient, sessionManager, lendingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to wire services", err)
		os.Exit(1)
	}
	deps.DB = dbClient
	deps.Redis = redisClient
	deps.Sessions = sessionManager
	deps.Gatherer = registry
	deps.Metrics = metrics.NewHTTPMetrics(registry)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           routes.NewRouter(cfg, logg, deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

func buildDeps(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, sessions *session.Manager, lending *metrics.LendingMetrics) (routes.Deps, error) {
	gdb := dbClient.DB()
	userRepo := users.NewRepository(gdb)
	bookRepo := books.NewRepository(gdb)
	borrowRepo := borrows.NewRepository(gdb)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
		Logger:         logg,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	userService, err := users.NewService(userRepo, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	bookService, err := books.NewService(bookRepo, dbClient)
	if err != nil {
		return routes.Deps{}, err
	}

	settingsService, err := settings.NewService(settings.NewRepository(gdb), cfg.Lending.DefaultFineRate())
	if err != nil {
		return routes.Deps{}, err
	}

	borrowService, err := borrows.NewService(borrows.ServiceParams{
		Repo:        borrowRepo,
		Books:       bookRepo,
		Users:       userRepo,
		Rates:       settingsService,
		Tx:          dbClient,
		Logger:      logg,
		Metrics:     lending,
		LoanPeriod:  cfg.Lending.LoanPeriod(),
		MaxRenewals: cfg.Lending.MaxRenewals,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	reviewService, err := reviews.NewService(reviews.NewRepository(gdb), bookRepo, borrowRepo, dbClient, logg)
	if err != nil {
		return routes.Deps{}, err
	}

	reportService, err := reports.NewService(reports.NewRepository(gdb), time.Now)
	if err != nil {
		return routes.Deps{}, err
	}

	dispatcher, err := reminders.NewDispatcher(borrowRepo, mailer.New(cfg.Sendgrid, logg), settingsService, logg, lending, reminders.Options{
		DueSoonWindow: cfg.Lending.DueSoonWindow(),
		MinInterval:   cfg.Reminders.MinInterval,
	})
	if err != nil {
		return routes.Deps{}, err
	}

	return routes.Deps{
		Auth:      authService,
		Users:     userService,
		Books:     bookService,
		Borrows:   borrowService,
		Settings:  settingsService,
		Reviews:   reviewService,
		Reports:   reportService,
		Reminders: dispatcher,
	}, nil
}
