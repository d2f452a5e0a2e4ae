package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/campusshelf/library-backend/internal/books"
	"github.com/campusshelf/library-backend/internal/borrows"
	"github.com/campusshelf/library-backend/internal/cron"
	"github.com/campusshelf/library-backend/internal/reminders"
	"github.com/campusshelf/library-backend/internal/settings"
	"github.com/campusshelf/library-backend/internal/users"
	"github.com/campusshelf/library-backend/pkg/config"
	"github.com/campusshelf/library-backend/pkg/db"
	"github.com/campusshelf/library-backend/pkg/logger"
	"github.com/campusshelf/library-backend/pkg/mailer"
	"github.com/campusshelf/library-backend/pkg/metrics"
	"github.com/campusshelf/library-backend/pkg/migrate"
	"github.com/campusshelf/library-backend/pkg/redis"
)

func main() {
	once := flag.Bool("once", false, "run a single cycle and exit")
	flag.Parse()

	logg := logger.New(logger.Options{ServiceName: "cron-worker"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	cfg.Service.Kind = "cron-worker"

	logg = logger.New(logger.Options{
		ServiceName: "cron-worker",
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

	cronMetrics := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lendingMetrics := metrics.NewLendingMetrics(prometheus.DefaultRegisterer)

	registry, err := buildRegistry(cfg, logg, dbClient, lendingMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to register cron jobs", err)
		os.Exit(1)
	}

	lock, err := cron.NewRedisLock(redisClient, redisClient.LockKey("cron"), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  cronMetrics,
		Interval: cfg.Reminders.CronInterval,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	if *once {
		logg.Info(ctx, "running single cron cycle")
		if err := service.RunOnce(ctx); err != nil {
			logg.Error(ctx, "cron cycle finished with failures", err)
			os.Exit(1)
		}
		return
	}

	logg.Info(ctx, "starting cron worker")

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

// buildRegistry registers the fine refresh ahead of reminders so reminder
// emails quote the up-to-date amount.
func buildRegistry(cfg *config.Config, logg *logger.Logger, dbClient *db.Client, lending *metrics.LendingMetrics) (*cron.Registry, error) {
	gdb := dbClient.DB()
	borrowRepo := borrows.NewRepository(gdb)

	rates, err := settings.NewService(settings.NewRepository(gdb), cfg.Lending.DefaultFineRate())
	if err != nil {
		return nil, err
	}

	borrowService, err := borrows.NewService(borrows.ServiceParams{
		Repo:        borrowRepo,
		Books:       books.NewRepository(gdb),
		Users:       users.NewRepository(gdb),
		Rates:       rates,
		Tx:          dbClient,
		Logger:      logg,
		Metrics:     lending,
		LoanPeriod:  cfg.Lending.LoanPeriod(),
		MaxRenewals: cfg.Lending.MaxRenewals,
	})
	if err != nil {
		return nil, err
	}

	dispatcher, err := reminders.NewDispatcher(borrowRepo, mailer.New(cfg.Sendgrid, logg), rates, logg, lending, reminders.Options{
		DueSoonWindow: cfg.Lending.DueSoonWindow(),
		MinInterval:   cfg.Reminders.MinInterval,
	})
	if err != nil {
		return nil, err
	}

	fineJob, err := cron.NewOverdueFineJob(cron.OverdueFineJobParams{Logger: logg, Fines: borrowService})
	if err != nil {
		return nil, err
	}
	reminderJob, err := cron.NewReminderJob(cron.ReminderJobParams{Logger: logg, Dispatcher: dispatcher})
	if err != nil {
		return nil, err
	}

	return cron.NewRegistry(fineJob, reminderJob), nil
}
