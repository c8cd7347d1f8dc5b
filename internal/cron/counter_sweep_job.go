package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/mvaldez/genstudio-backend/internal/counter"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

type CounterSweepJobParams struct {
	Logger  *logger.Logger
	Sweeper counter.Sweeper
}

// NewCounterSweepJob evicts expired quota buckets from an in-memory counter
// backend. Redis expires keys itself, so the job is only registered for the
// memory backend.
func NewCounterSweepJob(params CounterSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("counter sweeper required")
	}
	return &counterSweepJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		now:     time.Now,
	}, nil
}

type counterSweepJob struct {
	logg    *logger.Logger
	sweeper counter.Sweeper
	now     func() time.Time
}

func (j *counterSweepJob) Name() string { return "counter-sweep" }

func (j *counterSweepJob) Run(ctx context.Context) error {
	removed := j.sweeper.DeleteExpired(j.now())
	j.logg.Info(j.logg.WithField(ctx, "removed", removed), "counter sweep complete")
	return nil
}
