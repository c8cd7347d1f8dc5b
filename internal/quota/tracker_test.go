package quota

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvaldez/genstudio-backend/internal/counter"
	"github.com/mvaldez/genstudio-backend/pkg/config"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

func newTestTracker(t *testing.T, cfg config.QuotaConfig) (*Tracker, *counter.MemoryStore) {
	t.Helper()
	store := counter.NewMemoryStore()
	tracker, err := NewTracker(store, cfg)
	require.NoError(t, err)
	tracker.now = func() time.Time {
		return time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)
	}
	return tracker, store
}

func baseConfig() config.QuotaConfig {
	return config.QuotaConfig{
		ImageHourly: 10, ImageDaily: 100,
		VideoHourly: 5, VideoDaily: 50,
		AudioHourly: 10, AudioDaily: 100,
	}
}

func TestEnforceLimitDeniesThirdCall(t *testing.T) {
	cfg := baseConfig()
	cfg.ImageHourly = 2

	tracker, _ := newTestTracker(t, cfg)
	ctx := context.Background()

	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))
	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))

	err := tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage)
	require.Error(t, err)

	qerr := pkgerrors.As(err)
	require.NotNil(t, qerr)
	assert.Equal(t, pkgerrors.CodeQuotaExceeded, qerr.Code())

	details, ok := qerr.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "image", details["resource"])
	assert.Greater(t, details["retry_after_seconds"].(int64), int64(0))
}

func TestEnforceLimitDenialDoesNotIncrement(t *testing.T) {
	cfg := baseConfig()
	cfg.ImageHourly = 1

	tracker, store := newTestTracker(t, cfg)
	ctx := context.Background()
	now := tracker.now()

	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))
	require.Error(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))
	require.Error(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))

	hourly, err := store.Get(ctx, counterKey("u1", enums.MediaTypeImage, WindowHour, now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), hourly)

	daily, err := store.Get(ctx, counterKey("u1", enums.MediaTypeImage, WindowDay, now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), daily)
}

func TestEnforceLimitConsumesBothWindows(t *testing.T) {
	tracker, store := newTestTracker(t, baseConfig())
	ctx := context.Background()
	now := tracker.now()

	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeVideo))

	hourly, err := store.Get(ctx, counterKey("u1", enums.MediaTypeVideo, WindowHour, now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), hourly)

	daily, err := store.Get(ctx, counterKey("u1", enums.MediaTypeVideo, WindowDay, now))
	require.NoError(t, err)
	assert.Equal(t, int64(1), daily)
}

func TestCheckLimitRemainingAndReset(t *testing.T) {
	cfg := baseConfig()
	cfg.ImageHourly = 3
	cfg.ImageDaily = 100

	tracker, _ := newTestTracker(t, cfg)
	ctx := context.Background()

	res, err := tracker.CheckLimit(ctx, "u1", enums.MediaTypeImage)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(3), res.Remaining)
	assert.Equal(t, time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC), res.ResetAt)

	require.NoError(t, tracker.IncrementUsage(ctx, "u1", enums.MediaTypeImage))
	require.NoError(t, tracker.IncrementUsage(ctx, "u1", enums.MediaTypeImage))

	res, err = tracker.CheckLimit(ctx, "u1", enums.MediaTypeImage)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)
}

func TestCheckLimitDailyBinds(t *testing.T) {
	cfg := baseConfig()
	cfg.ImageHourly = 10
	cfg.ImageDaily = 2

	tracker, _ := newTestTracker(t, cfg)
	ctx := context.Background()

	require.NoError(t, tracker.IncrementUsage(ctx, "u1", enums.MediaTypeImage))

	res, err := tracker.CheckLimit(ctx, "u1", enums.MediaTypeImage)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)
	assert.Equal(t, time.Date(2025, 6, 16, 0, 0, 0, 0, time.UTC), res.ResetAt)
}

func TestCheckLimitExhaustedHourResetsAtHour(t *testing.T) {
	cfg := baseConfig()
	cfg.AudioHourly = 1

	tracker, _ := newTestTracker(t, cfg)
	ctx := context.Background()

	require.NoError(t, tracker.IncrementUsage(ctx, "u1", enums.MediaTypeAudio))

	res, err := tracker.CheckLimit(ctx, "u1", enums.MediaTypeAudio)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, int64(0), res.Remaining)
	assert.Equal(t, time.Date(2025, 6, 15, 15, 0, 0, 0, time.UTC), res.ResetAt)
	assert.Equal(t, 30*time.Minute, res.RetryAfter)
}

func TestSubjectsAndResourcesIsolated(t *testing.T) {
	cfg := baseConfig()
	cfg.ImageHourly = 1
	cfg.VideoHourly = 1

	tracker, _ := newTestTracker(t, cfg)
	ctx := context.Background()

	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))
	require.Error(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))

	// A different subject and a different resource are untouched.
	require.NoError(t, tracker.EnforceLimit(ctx, "u2", enums.MediaTypeImage))
	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeVideo))
}

func TestStatusReportsAllResources(t *testing.T) {
	tracker, _ := newTestTracker(t, baseConfig())
	ctx := context.Background()

	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))
	require.NoError(t, tracker.EnforceLimit(ctx, "u1", enums.MediaTypeImage))

	usages, err := tracker.Status(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, usages, 3)

	byResource := map[enums.MediaType]ResourceUsage{}
	for _, u := range usages {
		byResource[u.Resource] = u
	}

	img := byResource[enums.MediaTypeImage]
	assert.Equal(t, int64(2), img.HourlyUsed)
	assert.Equal(t, int64(10), img.HourlyLimit)
	assert.Equal(t, int64(2), img.DailyUsed)
	assert.Equal(t, int64(8), img.Remaining)

	vid := byResource[enums.MediaTypeVideo]
	assert.Equal(t, int64(0), vid.HourlyUsed)
	assert.Equal(t, int64(5), vid.Remaining)
}

func TestBucketLabelFormat(t *testing.T) {
	at := time.Date(2025, 6, 5, 7, 12, 0, 0, time.UTC)
	assert.Equal(t, "2025-6-5-7", bucketLabel(WindowHour, at))
	assert.Equal(t, "2025-6-5", bucketLabel(WindowDay, at))

	key := counterKey("u1", enums.MediaTypeImage, WindowHour, at)
	assert.Equal(t, "ratelimit:u1:image:hour:2025-6-5-7", key)
}
