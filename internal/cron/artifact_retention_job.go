package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

const defaultArtifactRetentionDays = 30

type artifactSweeper interface {
	SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

type ArtifactRetentionJobParams struct {
	Logger        *logger.Logger
	Store         artifactSweeper
	RetentionDays int
}

// NewArtifactRetentionJob deletes stored media older than the retention
// horizon. Jobs referencing a swept artifact keep their reference; reads of
// the missing artifact report not found.
func NewArtifactRetentionJob(params ArtifactRetentionJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("artifact store required")
	}
	retention := params.RetentionDays
	if retention <= 0 {
		retention = defaultArtifactRetentionDays
	}
	return &artifactRetentionJob{
		logg:      params.Logger,
		store:     params.Store,
		retention: retention,
		now:       time.Now,
	}, nil
}

type artifactRetentionJob struct {
	logg      *logger.Logger
	store     artifactSweeper
	retention int
	now       func() time.Time
}

func (j *artifactRetentionJob) Name() string { return "artifact-retention" }

func (j *artifactRetentionJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-time.Duration(j.retention) * 24 * time.Hour)
	removed, err := j.store.SweepOlderThan(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("sweep artifacts: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "removed", removed), "artifact retention sweep complete")
	return nil
}
