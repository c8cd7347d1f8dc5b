package jobs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

// Update carries the partial fields of a job mutation. Nil fields are left
// untouched by the merge.
type Update struct {
	Status          *enums.JobStatus
	Progress        *int
	OperationHandle *string
	ArtifactID      *string
	Error           *string
}

// Store persists generation jobs. Implementations must keep terminal statuses
// final and stamp completed_at exactly when a job enters a terminal status.
type Store interface {
	Create(ctx context.Context, job *models.GenerationJob) error
	Get(ctx context.Context, id string) (*models.GenerationJob, error)
	ListBySubject(ctx context.Context, subject string, limit int) ([]models.GenerationJob, error)
	Update(ctx context.Context, id string, update Update) (*models.GenerationJob, error)

	// DeleteTerminalBefore removes completed and failed jobs whose
	// completed_at is older than cutoff. Artifacts are never touched.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// NewJobID mints a sortable job identifier: a millisecond timestamp plus a
// short random suffix.
func NewJobID(now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("job_%d_%s", now.UnixMilli(), suffix)
}

// applyUpdate merges update into job in place, enforcing the status machine.
// Shared by every Store implementation so the lifecycle rules cannot drift
// between backends.
func applyUpdate(job *models.GenerationJob, update Update, now time.Time) error {
	if update.Status != nil && *update.Status != job.Status {
		if job.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("job %s is %s and cannot transition to %s", job.ID, job.Status, *update.Status))
		}
		if !update.Status.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid job status %q", *update.Status))
		}
		job.Status = *update.Status
		if job.Status.IsTerminal() {
			completed := now
			job.CompletedAt = &completed
		}
	}
	if update.Progress != nil {
		job.Progress = *update.Progress
	}
	if update.OperationHandle != nil {
		job.OperationHandle = *update.OperationHandle
	}
	if update.ArtifactID != nil {
		job.ArtifactID = update.ArtifactID
	}
	if update.Error != nil {
		job.Error = update.Error
	}
	job.UpdatedAt = now
	return nil
}

func notFound(id string) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("job %s not found", id))
}
