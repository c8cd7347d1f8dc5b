package jobs

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mvaldez/genstudio-backend/internal/repo"
	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

type repository struct {
	repo.Base
	now func() time.Time
}

// NewRepository builds a Store backed by the relational database.
func NewRepository(db *gorm.DB) Store {
	return &repository{Base: repo.NewBase(db), now: time.Now}
}

func (r *repository) Create(ctx context.Context, job *models.GenerationJob) error {
	if err := r.DB(ctx).Create(job).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create job")
	}
	return nil
}

func (r *repository) Get(ctx context.Context, id string) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := r.DB(ctx).Where("id = ?", id).First(&job).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound(id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find job")
	}
	return &job, nil
}

func (r *repository) ListBySubject(ctx context.Context, subject string, limit int) ([]models.GenerationJob, error) {
	query := r.DB(ctx).
		Where("subject = ?", subject).
		Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var found []models.GenerationJob
	if err := query.Find(&found).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list jobs")
	}
	return found, nil
}

// Update applies the merge inside a transaction so the terminal-status guard
// holds against concurrent writers.
func (r *repository) Update(ctx context.Context, id string, update Update) (*models.GenerationJob, error) {
	var job models.GenerationJob
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", id).First(&job).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return notFound(id)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find job")
		}
		if err := applyUpdate(&job, update, r.now()); err != nil {
			return err
		}
		if err := tx.Save(&job).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save job")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &job, nil
}

func (r *repository) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	result := r.DB(ctx).
		Where("status IN ?", []enums.JobStatus{enums.JobStatusCompleted, enums.JobStatusFailed}).
		Where("completed_at < ?", cutoff).
		Delete(&models.GenerationJob{})
	if result.Error != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete terminal jobs")
	}
	return int(result.RowsAffected), nil
}
