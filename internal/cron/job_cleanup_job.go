package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

const defaultJobCleanupHorizon = 48 * time.Hour

type terminalJobDeleter interface {
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
}

type JobCleanupJobParams struct {
	Logger  *logger.Logger
	Store   terminalJobDeleter
	Horizon time.Duration
}

// NewJobCleanupJob removes completed and failed generation jobs whose
// terminal timestamp is older than the horizon. Artifacts are never touched
// by this job.
func NewJobCleanupJob(params JobCleanupJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("job store required")
	}
	horizon := params.Horizon
	if horizon <= 0 {
		horizon = defaultJobCleanupHorizon
	}
	return &jobCleanupJob{
		logg:    params.Logger,
		store:   params.Store,
		horizon: horizon,
		now:     time.Now,
	}, nil
}

type jobCleanupJob struct {
	logg    *logger.Logger
	store   terminalJobDeleter
	horizon time.Duration
	now     func() time.Time
}

func (j *jobCleanupJob) Name() string { return "job-cleanup" }

func (j *jobCleanupJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.horizon)
	removed, err := j.store.DeleteTerminalBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("delete terminal jobs: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "removed", removed), "job cleanup complete")
	return nil
}
