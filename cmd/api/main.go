package main

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mvaldez/genstudio-backend/api/controllers"
	"github.com/mvaldez/genstudio-backend/api/routes"
	"github.com/mvaldez/genstudio-backend/internal/analytics"
	"github.com/mvaldez/genstudio-backend/internal/artifacts"
	"github.com/mvaldez/genstudio-backend/internal/counter"
	"github.com/mvaldez/genstudio-backend/internal/cron"
	"github.com/mvaldez/genstudio-backend/internal/events"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/internal/jobs"
	"github.com/mvaldez/genstudio-backend/internal/provider/gemini"
	"github.com/mvaldez/genstudio-backend/internal/quota"
	"github.com/mvaldez/genstudio-backend/pkg/bigquery"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/db"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
	"github.com/mvaldez/genstudio-backend/pkg/metrics"
	"github.com/mvaldez/genstudio-backend/pkg/migrate"
	"github.com/mvaldez/genstudio-backend/pkg/pubsub"
	"github.com/mvaldez/genstudio-backend/pkg/redis"
)

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

	pingers := map[string]controllers.Pinger{}

	// The database is only opened when a db-backed store is selected.
	var dbClient *db.Client
	if needsDatabase(cfg) {
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
		pingers["db"] = dbClient

		if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
			logg.Error(context.Background(), "failed to run dev migrations", err)
			os.Exit(1)
		}
	}

	var redisClient *redis.Client
	if needsRedis(cfg) {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
		pingers["redis"] = redisClient
	}

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

	counterStore := buildCounterStore(cfg, redisClient)
	tracker, err := quota.NewTracker(counterStore, cfg.Quota)
	if err != nil {
		logg.Error(context.Background(), "failed to build quota tracker", err)
		os.Exit(1)
	}

	// Redis expires quota buckets itself; the in-process backend needs a
	// periodic eviction pass, and it has to run here because the buckets
	// live in this process.
	if sweeper, ok := counterStore.(counter.Sweeper); ok {
		sweepJob, err := cron.NewCounterSweepJob(cron.CounterSweepJobParams{Logger: logg, Sweeper: sweeper})
		if err != nil {
			logg.Error(context.Background(), "failed to build counter sweep job", err)
			os.Exit(1)
		}
		go runJobOnTicker(context.Background(), sweepJob, cfg.Quota.SweepInterval, logg)
	}

	geminiClient, err := gemini.New(cfg.Gemini, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to build gemini client", err)
		os.Exit(1)
	}

	provider, err := generation.NewGeminiProvider(geminiClient, cfg.Gemini)
	if err != nil {
		logg.Error(context.Background(), "failed to build generation provider", err)
		os.Exit(1)
	}

	orchestratorOpts := generation.Options{
		Quota:     tracker,
		Jobs:      jobStore,
		Artifacts: artifactStore,
		Provider:  provider,
		Metrics:   metrics.NewGenerationMetrics(prometheus.DefaultRegisterer),
		Logger:    logg,
		Retry: generation.RetryPolicy{
			MaxRetries:  uint64(cfg.Gemini.SubmitRetries),
			BaseBackoff: cfg.Gemini.SubmitRetryBase,
		},
		Poll: generation.PollPolicy{
			Interval:    cfg.Gemini.PollInterval,
			MaxAttempts: cfg.Gemini.MaxPollAttempts,
		},
	}

	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()

		publisher, err := events.NewPublisher(pubsubClient, pubsubClient.JobEventsTopic(), logg)
		if err != nil {
			logg.Error(context.Background(), "failed to build event publisher", err)
			os.Exit(1)
		}
		orchestratorOpts.Events = publisher
	}

	if cfg.BigQuery.Enabled() {
		bigqueryClient, err := bigquery.NewClient(context.Background(), cfg.GCP, cfg.BigQuery, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap bigquery", err)
			os.Exit(1)
		}
		defer func() {
			if err := bigqueryClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing bigquery", err)
			}
		}()
		pingers["bigquery"] = bigqueryClient

		sink, err := analytics.NewSink(bigqueryClient, cfg.BigQuery.UsageEventsTable)
		if err != nil {
			logg.Error(context.Background(), "failed to build analytics sink", err)
			os.Exit(1)
		}
		orchestratorOpts.Usage = sink
	}

	orchestrator, err := generation.NewOrchestrator(orchestratorOpts)
	if err != nil {
		logg.Error(context.Background(), "failed to build orchestrator", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			Generation: orchestrator,
			Jobs:       jobStore,
			Media:      artifactStore,
			Quota:      tracker,
			Pingers:    pingers,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func needsDatabase(cfg *config.Config) bool {
	return backendIsDB(cfg.Jobs.Backend) || backendIsDB(cfg.Storage.Backend)
}

func needsRedis(cfg *config.Config) bool {
	return strings.EqualFold(cfg.Quota.Backend, "redis")
}

func backendIsDB(backend string) bool {
	return strings.EqualFold(backend, "db") || strings.EqualFold(backend, "postgres")
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

func buildCounterStore(cfg *config.Config, redisClient *redis.Client) counter.Store {
	if redisClient != nil {
		return counter.NewRedisStore(redisClient)
	}
	return counter.NewMemoryStore()
}

func runJobOnTicker(ctx context.Context, job cron.Job, interval time.Duration, logg *logger.Logger) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := job.Run(ctx); err != nil {
				logg.Error(logg.WithField(ctx, "job", job.Name()), "background job failed", err)
			}
		}
	}
}
