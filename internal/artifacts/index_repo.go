package artifacts

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvaldez/genstudio-backend/internal/repo"
	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

type repositoryIndex struct {
	repo.Base
}

// NewRepositoryIndex builds an artifact index backed by the relational
// database.
func NewRepositoryIndex(db *gorm.DB) Index {
	return &repositoryIndex{Base: repo.NewBase(db)}
}

func (r *repositoryIndex) Append(ctx context.Context, record *models.MediaArtifact) error {
	if err := r.DB(ctx).Create(record).Error; err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "index artifact")
	}
	return nil
}

func (r *repositoryIndex) Get(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, error) {
	var rec models.MediaArtifact
	err := r.DB(ctx).Where("id = ?", id).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, artifactNotFound(id)
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find artifact")
	}
	return &rec, nil
}

func (r *repositoryIndex) List(ctx context.Context, query Query) ([]models.MediaArtifact, error) {
	q := r.DB(ctx).Order("created_at DESC")
	if query.Subject != "" {
		q = q.Where("subject = ?", query.Subject)
	}
	if query.Type != nil {
		q = q.Where("type = ?", *query.Type)
	}
	if query.OlderThan != nil {
		q = q.Where("created_at < ?", *query.OlderThan)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	var found []models.MediaArtifact
	if err := q.Find(&found).Error; err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list artifacts")
	}
	return found, nil
}

func (r *repositoryIndex) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.DB(ctx).Where("id = ?", id).Delete(&models.MediaArtifact{})
	if result.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, result.Error, "delete artifact index entry")
	}
	if result.RowsAffected == 0 {
		return artifactNotFound(id)
	}
	return nil
}
