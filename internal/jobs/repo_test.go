package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

func setupJobsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS generation_jobs (
  id TEXT PRIMARY KEY,
  subject TEXT NOT NULL,
  resource TEXT NOT NULL,
  prompt TEXT,
  model TEXT,
  mode TEXT NOT NULL DEFAULT 'text',
  status TEXT NOT NULL DEFAULT 'queued',
  progress INTEGER NOT NULL DEFAULT 0,
  operation_handle TEXT,
  artifact_id TEXT,
  error TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  completed_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func TestRepositoryCreateGetUpdate(t *testing.T) {
	repo := NewRepository(setupJobsTestDB(t))
	ctx := context.Background()

	job := newJob("job_10_aa", "u1")
	require.NoError(t, repo.Create(ctx, job))

	got, err := repo.Get(ctx, "job_10_aa")
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusQueued, got.Status)

	updated, err := repo.Update(ctx, "job_10_aa", Update{
		Status:   statusPtr(enums.JobStatusProcessing),
		Progress: intPtr(50),
	})
	require.NoError(t, err)
	assert.Equal(t, enums.JobStatusProcessing, updated.Status)
	assert.Equal(t, 50, updated.Progress)
	assert.Nil(t, updated.CompletedAt)

	updated, err = repo.Update(ctx, "job_10_aa", Update{Status: statusPtr(enums.JobStatusCompleted)})
	require.NoError(t, err)
	require.NotNil(t, updated.CompletedAt)

	_, err = repo.Update(ctx, "job_10_aa", Update{Status: statusPtr(enums.JobStatusQueued)})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestRepositoryGetMissing(t *testing.T) {
	repo := NewRepository(setupJobsTestDB(t))

	_, err := repo.Get(context.Background(), "job_missing")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestRepositoryListBySubject(t *testing.T) {
	repo := NewRepository(setupJobsTestDB(t))
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"job_1_a", "job_2_b", "job_3_c"} {
		job := newJob(id, "u1")
		job.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(ctx, job))
	}
	require.NoError(t, repo.Create(ctx, newJob("job_4_d", "u2")))

	found, err := repo.ListBySubject(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "job_3_c", found[0].ID)
}

func TestRepositoryDeleteTerminalBefore(t *testing.T) {
	repo := NewRepository(setupJobsTestDB(t))
	ctx := context.Background()

	old := time.Now().Add(-72 * time.Hour)
	stale := newJob("job_1_a", "u1")
	stale.Status = enums.JobStatusFailed
	stale.CompletedAt = &old
	require.NoError(t, repo.Create(ctx, stale))

	running := newJob("job_2_b", "u1")
	running.Status = enums.JobStatusProcessing
	require.NoError(t, repo.Create(ctx, running))

	removed, err := repo.DeleteTerminalBefore(ctx, time.Now().Add(-48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = repo.Get(ctx, "job_2_b")
	require.NoError(t, err)
}
