package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	"github.com/mvaldez/genstudio-backend/pkg/enums"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
	"github.com/mvaldez/genstudio-backend/pkg/logger"
)

// Meta carries the caller-supplied metadata persisted alongside an artifact.
type Meta struct {
	Subject  string
	Prompt   string
	Model    string
	MimeType string
}

// TypeStats aggregates one media type inside Stats.
type TypeStats struct {
	Count int   `json:"count"`
	Bytes int64 `json:"bytes"`
}

// Stats summarizes the whole store for the stats endpoint.
type Stats struct {
	TotalCount int                           `json:"totalCount"`
	TotalBytes int64                         `json:"totalBytes"`
	ByType     map[enums.MediaType]TypeStats `json:"byType"`
	OldestAt   *time.Time                    `json:"oldestAt,omitempty"`
	NewestAt   *time.Time                    `json:"newestAt,omitempty"`
}

var extensionByMime = map[string]string{
	"image/png":  "png",
	"image/jpeg": "jpg",
	"image/webp": "webp",
	"image/gif":  "gif",
	"video/mp4":  "mp4",
	"video/webm": "webm",
	"audio/wav":  "wav",
	"audio/wave": "wav",
	"audio/mpeg": "mp3",
	"audio/ogg":  "ogg",
}

// extensionFor picks a file extension from the mime type, falling back to the
// media type's default when the mime type is unknown.
func extensionFor(mimeType string, mediaType enums.MediaType) string {
	if ext, ok := extensionByMime[mimeType]; ok {
		return ext
	}
	return mediaType.DefaultExtension()
}

// Store writes artifact binaries into type-partitioned directories under a
// root and records their metadata in a pluggable index.
type Store struct {
	root  string
	index Index
	log   *logger.Logger
	now   func() time.Time
}

// NewStore builds a store rooted at root. The directory tree is created
// lazily on first save.
func NewStore(root string, index Index, log *logger.Logger) (*Store, error) {
	if root == "" {
		return nil, fmt.Errorf("storage root required")
	}
	if index == nil {
		return nil, fmt.Errorf("artifact index required")
	}
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Store{root: root, index: index, log: log, now: time.Now}, nil
}

// Save persists content to disk and appends the index record synchronously,
// so a returned artifact is always retrievable. The file is removed again if
// indexing fails.
func (s *Store) Save(ctx context.Context, mediaType enums.MediaType, content []byte, meta Meta) (*models.MediaArtifact, error) {
	if len(content) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "artifact content is empty")
	}
	if !mediaType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid media type %q", mediaType))
	}
	mimeType := meta.MimeType
	if mimeType == "" {
		mimeType = mediaType.DefaultMimeType()
	}

	record := &models.MediaArtifact{
		ID:        uuid.New(),
		Type:      mediaType,
		Subject:   meta.Subject,
		Prompt:    meta.Prompt,
		Model:     meta.Model,
		MimeType:  mimeType,
		SizeBytes: int64(len(content)),
		CreatedAt: s.now().UTC(),
	}
	record.Filename = fmt.Sprintf("%s.%s", record.ID, extensionFor(mimeType, mediaType))

	path := s.pathFor(record)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "create artifact dir")
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "write artifact")
	}
	if err := s.index.Append(ctx, record); err != nil {
		if removeErr := os.Remove(path); removeErr != nil {
			s.log.Warn(s.log.WithField(ctx, "path", path), "failed to remove orphaned artifact file")
		}
		return nil, err
	}
	return record, nil
}

// Get returns the metadata and the raw bytes of one artifact.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, []byte, error) {
	record, err := s.index.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	content, err := os.ReadFile(s.pathFor(record))
	if os.IsNotExist(err) {
		return nil, nil, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("artifact %s content missing from disk", id))
	}
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeStorage, err, "read artifact")
	}
	return record, content, nil
}

// GetMetadata returns the index record without touching the file.
func (s *Store) GetMetadata(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, error) {
	return s.index.Get(ctx, id)
}

// ListBySubject lists a subject's artifacts, newest first, optionally
// filtered by type.
func (s *Store) ListBySubject(ctx context.Context, subject string, mediaType *enums.MediaType) ([]models.MediaArtifact, error) {
	return s.index.List(ctx, Query{Subject: subject, Type: mediaType})
}

// ListRecent lists the newest artifacts across all subjects.
func (s *Store) ListRecent(ctx context.Context, limit int, mediaType *enums.MediaType) ([]models.MediaArtifact, error) {
	return s.index.List(ctx, Query{Limit: limit, Type: mediaType})
}

// Delete removes the index entry and the file. A file already gone from disk
// is logged and otherwise ignored.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	record, err := s.index.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := s.index.Delete(ctx, id); err != nil {
		return err
	}
	if err := os.Remove(s.pathFor(record)); err != nil && !os.IsNotExist(err) {
		return pkgerrors.Wrap(pkgerrors.CodeStorage, err, "remove artifact file")
	}
	return nil
}

// Stats aggregates totals, per-type counts and the age range of the store.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	records, err := s.index.List(ctx, Query{})
	if err != nil {
		return nil, err
	}

	stats := &Stats{ByType: make(map[enums.MediaType]TypeStats)}
	for _, rec := range records {
		stats.TotalCount++
		stats.TotalBytes += rec.SizeBytes

		byType := stats.ByType[rec.Type]
		byType.Count++
		byType.Bytes += rec.SizeBytes
		stats.ByType[rec.Type] = byType

		created := rec.CreatedAt
		if stats.OldestAt == nil || created.Before(*stats.OldestAt) {
			stats.OldestAt = &created
		}
		if stats.NewestAt == nil || created.After(*stats.NewestAt) {
			stats.NewestAt = &created
		}
	}
	return stats, nil
}

// SweepOlderThan deletes every artifact created before cutoff, both file and
// index entry. Missing files are logged and the sweep continues; real
// failures are aggregated so one bad entry cannot stall retention.
func (s *Store) SweepOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	records, err := s.index.List(ctx, Query{OlderThan: &cutoff})
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs error
	for _, rec := range records {
		if err := s.index.Delete(ctx, rec.ID); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("artifact %s: %w", rec.ID, err))
			continue
		}
		if err := os.Remove(s.pathFor(&rec)); err != nil {
			if os.IsNotExist(err) {
				s.log.Warn(s.log.WithField(ctx, "artifact_id", rec.ID.String()), "retention sweep found index entry without file")
			} else {
				errs = multierr.Append(errs, fmt.Errorf("artifact %s: %w", rec.ID, err))
			}
		}
		removed++
	}
	return removed, errs
}

func (s *Store) pathFor(record *models.MediaArtifact) string {
	return filepath.Join(s.root, string(record.Type)+"s", record.Filename)
}

func artifactNotFound(id uuid.UUID) error {
	return pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("artifact %s not found", id))
}
