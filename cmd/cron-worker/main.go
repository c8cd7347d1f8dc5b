package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvaldez/genstudio-backend/internal/artifacts"
	"github.com/mvaldez/genstudio-backend/internal/cron"
	"github.com/mvaldez/genstudio-backend/internal/jobs"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/db"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
	"github.com/mvaldez/genstudio-backend/pkg/metrics"
	"github.com/mvaldez/genstudio-backend/pkg/migrate"
	"github.com/mvaldez/genstudio-backend/pkg/redis"
)

const lockKeyFormat = "genstudio:cron-worker:lock:%s"

func main() {
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

	var dbClient *db.Client
	if backendIsDB(cfg.Jobs.Backend) || backendIsDB(cfg.Storage.Backend) {
		dbClient, err = db.New(context.Background(), cfg.DB, logg)
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

	jobStore, err := buildJobStore(cfg, dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to build job store", err)
		os.Exit(1)
	}

	artifactStore, err := buildArtifactStore(cfg, dbClient, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build artifact store", err)
		os.Exit(1)
	}

	retentionJob, err := cron.NewArtifactRetentionJob(cron.ArtifactRetentionJobParams{
		Logger:        logg,
		Store:         artifactStore,
		RetentionDays: cfg.Storage.RetentionDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build artifact retention job", err)
		os.Exit(1)
	}

	cleanupJob, err := cron.NewJobCleanupJob(cron.JobCleanupJobParams{
		Logger:  logg,
		Store:   jobStore,
		Horizon: cfg.Jobs.CleanupHorizon,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to build job cleanup job", err)
		os.Exit(1)
	}

	registry := cron.NewRegistry(
		cron.Every(cfg.Storage.SweepInterval, retentionJob),
		cron.Every(cfg.Jobs.SweepInterval, cleanupJob),
	)

	metricsCollector := metrics.NewCronJobMetrics(prometheus.DefaultRegisterer)
	lock, err := cron.NewRedisLock(redisClient, lockKey(cfg.App.Env), 0)
	if err != nil {
		logg.Error(context.Background(), "failed to create cron lock", err)
		os.Exit(1)
	}

	service, err := cron.NewService(cron.ServiceParams{
		Logger:   logg,
		Registry: registry,
		Lock:     lock,
		Metrics:  metricsCollector,
		Interval: loopInterval(cfg),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create cron service", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logg.WithFields(ctx, map[string]any{
		"env":         cfg.App.Env,
		"serviceKind": cfg.Service.Kind,
	})
	logg.Info(ctx, "starting cron worker")

	// Let the API come up first after a deploy before the first sweep runs.
	if cfg.Storage.SweepDelay > 0 {
		select {
		case <-ctx.Done():
			return
		case <-time.After(cfg.Storage.SweepDelay):
		}
	}

	if err := service.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "cron worker stopped unexpectedly", err)
		os.Exit(1)
	}

	logg.Info(ctx, "cron worker shutting down gracefully")
}

func lockKey(env string) string {
	if env == "" {
		env = "local"
	}
	return fmt.Sprintf(lockKeyFormat, env)
}

func backendIsDB(backend string) bool {
	return backend == "db" || backend == "postgres"
}

func buildJobStore(cfg *config.Config, dbClient *db.Client) (jobs.Store, error) {
	if backendIsDB(cfg.Jobs.Backend) {
		return jobs.NewRepository(dbClient.DB()), nil
	}
	return jobs.NewFileStore(cfg.Jobs.SnapshotPath)
}

func buildArtifactStore(cfg *config.Config, dbClient *db.Client, logg *logger.Logger) (*artifacts.Store, error) {
	var index artifacts.Index
	if backendIsDB(cfg.Storage.Backend) {
		index = artifacts.NewRepositoryIndex(dbClient.DB())
	} else {
		fileIndex, err := artifacts.NewFileIndex(filepath.Join(cfg.Storage.Root, "index.json"))
		if err != nil {
			return nil, err
		}
		index = fileIndex
	}
	return artifacts.NewStore(cfg.Storage.Root, index, logg)
}

// loopInterval picks the tightest registered cadence so throttled jobs never
// wait a full retention cycle for their turn.
func loopInterval(cfg *config.Config) time.Duration {
	interval := cfg.Storage.SweepInterval
	if cfg.Jobs.SweepInterval > 0 && (interval <= 0 || cfg.Jobs.SweepInterval < interval) {
		interval = cfg.Jobs.SweepInterval
	}
	return interval
}
