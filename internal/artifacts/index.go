package artifacts

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// Query filters an index listing. Zero values mean "no constraint".
type Query struct {
	Subject   string
	Type      *enums.MediaType
	Limit     int
	OlderThan *time.Time
}

// Index is the metadata catalog behind the artifact store. Entries are
// ordered newest first on listing. The binary content is never the index's
// concern.
type Index interface {
	Append(ctx context.Context, record *models.MediaArtifact) error
	Get(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, error)
	List(ctx context.Context, query Query) ([]models.MediaArtifact, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
