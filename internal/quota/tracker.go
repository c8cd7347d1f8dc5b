package quota

import (
	"context"
	"fmt"
	"time"

	"github.com/mvaldez/genstudio-backend/internal/counter"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

// Limits holds the fixed-window budgets for one resource.
type Limits struct {
	Hourly int64
	Daily  int64
}

// LimitResult is the outcome of a quota check.
type LimitResult struct {
	Allowed    bool
	Remaining  int64
	ResetAt    time.Time
	RetryAfter time.Duration
}

// ResourceUsage reports the current consumption of the binding window for the
// quota-status endpoint.
type ResourceUsage struct {
	Resource    enums.MediaType `json:"resource"`
	HourlyUsed  int64           `json:"hourlyUsed"`
	HourlyLimit int64           `json:"hourlyLimit"`
	DailyUsed   int64           `json:"dailyUsed"`
	DailyLimit  int64           `json:"dailyLimit"`
	Remaining   int64           `json:"remaining"`
	ResetAt     time.Time       `json:"resetAt"`
}

// Tracker enforces per-subject, per-resource usage budgets over dual fixed
// windows. It is the admission gate in front of every generation request.
type Tracker struct {
	store  counter.Store
	limits map[enums.MediaType]Limits
	now    func() time.Time
}

// NewTracker builds a tracker over the provided counter backend with limits
// taken from configuration.
func NewTracker(store counter.Store, cfg config.QuotaConfig) (*Tracker, error) {
	if store == nil {
		return nil, fmt.Errorf("counter store required")
	}
	return &Tracker{
		store: store,
		limits: map[enums.MediaType]Limits{
			enums.MediaTypeImage: {Hourly: int64(cfg.ImageHourly), Daily: int64(cfg.ImageDaily)},
			enums.MediaTypeVideo: {Hourly: int64(cfg.VideoHourly), Daily: int64(cfg.VideoDaily)},
			enums.MediaTypeAudio: {Hourly: int64(cfg.AudioHourly), Daily: int64(cfg.AudioDaily)},
		},
		now: time.Now,
	}, nil
}

// CheckLimit reads the current hourly and daily counters without mutating
// them. When either window is exhausted the result carries the reset instant
// and retry hint of the soonest-recovering exhausted window.
func (t *Tracker) CheckLimit(ctx context.Context, subject string, resource enums.MediaType) (LimitResult, error) {
	limits, err := t.limitsFor(resource)
	if err != nil {
		return LimitResult{}, err
	}

	now := t.now()
	hourUsed, err := t.store.Get(ctx, counterKey(subject, resource, WindowHour, now))
	if err != nil {
		return LimitResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read hourly counter")
	}
	dayUsed, err := t.store.Get(ctx, counterKey(subject, resource, WindowDay, now))
	if err != nil {
		return LimitResult{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read daily counter")
	}

	hourEnd := windowEnd(WindowHour, now)
	dayEnd := windowEnd(WindowDay, now)

	hourExhausted := hourUsed >= limits.Hourly
	dayExhausted := dayUsed >= limits.Daily

	if hourExhausted || dayExhausted {
		resetAt := dayEnd
		if hourExhausted && (!dayExhausted || hourEnd.Before(dayEnd)) {
			resetAt = hourEnd
		}
		return LimitResult{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    resetAt,
			RetryAfter: resetAt.Sub(now),
		}, nil
	}

	hourRemaining := limits.Hourly - hourUsed
	dayRemaining := limits.Daily - dayUsed

	remaining := hourRemaining
	resetAt := hourEnd
	if dayRemaining < hourRemaining {
		remaining = dayRemaining
		resetAt = dayEnd
	}

	return LimitResult{
		Allowed:   true,
		Remaining: remaining,
		ResetAt:   resetAt,
	}, nil
}

// IncrementUsage adds one to both the hourly and daily counters of the
// current buckets, pinning each bucket's expiry to its window boundary.
func (t *Tracker) IncrementUsage(ctx context.Context, subject string, resource enums.MediaType) error {
	now := t.now()
	if _, err := t.store.Increment(ctx, counterKey(subject, resource, WindowHour, now), windowEnd(WindowHour, now)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment hourly counter")
	}
	if _, err := t.store.Increment(ctx, counterKey(subject, resource, WindowDay, now), windowEnd(WindowDay, now)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment daily counter")
	}
	return nil
}

// EnforceLimit admits or rejects one generation. Rejections never increment.
// Admission consumes one unit from each window through the store's atomic
// try-consume, so two concurrent requests cannot both squeeze through the
// last slot of a window.
func (t *Tracker) EnforceLimit(ctx context.Context, subject string, resource enums.MediaType) error {
	check, err := t.CheckLimit(ctx, subject, resource)
	if err != nil {
		return err
	}
	if !check.Allowed {
		return t.exceeded(resource, check)
	}

	limits, err := t.limitsFor(resource)
	if err != nil {
		return err
	}

	now := t.now()
	allowed, _, err := t.store.TryConsume(ctx, counterKey(subject, resource, WindowHour, now), limits.Hourly, windowEnd(WindowHour, now))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume hourly budget")
	}
	if !allowed {
		return t.exceededAt(resource, windowEnd(WindowHour, now), now)
	}

	allowed, _, err = t.store.TryConsume(ctx, counterKey(subject, resource, WindowDay, now), limits.Daily, windowEnd(WindowDay, now))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "consume daily budget")
	}
	if !allowed {
		return t.exceededAt(resource, windowEnd(WindowDay, now), now)
	}
	return nil
}

// Status reports per-resource usage for the subject across every tracked
// resource.
func (t *Tracker) Status(ctx context.Context, subject string) ([]ResourceUsage, error) {
	now := t.now()
	usages := make([]ResourceUsage, 0, len(t.limits))

	for _, resource := range []enums.MediaType{enums.MediaTypeImage, enums.MediaTypeVideo, enums.MediaTypeAudio} {
		limits := t.limits[resource]

		hourUsed, err := t.store.Get(ctx, counterKey(subject, resource, WindowHour, now))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read hourly counter")
		}
		dayUsed, err := t.store.Get(ctx, counterKey(subject, resource, WindowDay, now))
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read daily counter")
		}

		check, err := t.CheckLimit(ctx, subject, resource)
		if err != nil {
			return nil, err
		}

		usages = append(usages, ResourceUsage{
			Resource:    resource,
			HourlyUsed:  hourUsed,
			HourlyLimit: limits.Hourly,
			DailyUsed:   dayUsed,
			DailyLimit:  limits.Daily,
			Remaining:   check.Remaining,
			ResetAt:     check.ResetAt,
		})
	}
	return usages, nil
}

func (t *Tracker) limitsFor(resource enums.MediaType) (Limits, error) {
	limits, ok := t.limits[resource]
	if !ok {
		return Limits{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("no quota configured for resource %q", resource))
	}
	return limits, nil
}

func (t *Tracker) exceeded(resource enums.MediaType, check LimitResult) error {
	return pkgerrors.New(pkgerrors.CodeQuotaExceeded,
		fmt.Sprintf("quota exceeded for %s generation", resource)).
		WithDetails(map[string]any{
			"resource":            resource.String(),
			"retry_after_seconds": int64(check.RetryAfter.Seconds()),
			"reset_at":            check.ResetAt.UTC().Format(time.RFC3339),
		})
}

func (t *Tracker) exceededAt(resource enums.MediaType, resetAt, now time.Time) error {
	return t.exceeded(resource, LimitResult{ResetAt: resetAt, RetryAfter: resetAt.Sub(now)})
}
