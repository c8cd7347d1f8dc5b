package controllers

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mvaldez/genstudio-backend/internal/artifacts"
	"github.com/mvaldez/genstudio-backend/internal/generation"
	"github.com/mvaldez/genstudio-backend/internal/quota"
	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
)

// GenerationService drives the job lifecycle for all generation endpoints.
type GenerationService interface {
	Submit(ctx context.Context, req generation.Request) (*models.GenerationJob, error)
	CheckStatus(ctx context.Context, jobID string) (*models.GenerationJob, error)
}

// JobReader exposes the read side of the job store.
type JobReader interface {
	Get(ctx context.Context, id string) (*models.GenerationJob, error)
	ListBySubject(ctx context.Context, subject string, limit int) ([]models.GenerationJob, error)
}

// MediaService exposes stored artifacts to the media endpoints.
type MediaService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, []byte, error)
	GetMetadata(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, error)
	ListBySubject(ctx context.Context, subject string, mediaType *enums.MediaType) ([]models.MediaArtifact, error)
	ListRecent(ctx context.Context, limit int, mediaType *enums.MediaType) ([]models.MediaArtifact, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Stats(ctx context.Context) (*artifacts.Stats, error)
}

// QuotaService reports per-resource consumption for the status endpoint.
type QuotaService interface {
	Status(ctx context.Context, subject string) ([]quota.ResourceUsage, error)
}

// Pinger is a health-checkable dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}

const dependencyPingTimeout = 2 * time.Second
