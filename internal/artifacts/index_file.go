package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

// FileIndex keeps the artifact catalog in memory and mirrors every mutation
// to a JSON snapshot, the zero-dependency counterpart of the GORM index.
type FileIndex struct {
	mu      sync.RWMutex
	path    string
	records map[uuid.UUID]models.MediaArtifact
}

// NewFileIndex loads the snapshot at path when one exists.
func NewFileIndex(path string) (*FileIndex, error) {
	idx := &FileIndex{
		path:    path,
		records: make(map[uuid.UUID]models.MediaArtifact),
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return idx, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read artifact index: %w", err)
	}
	var snapshot []models.MediaArtifact
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode artifact index %s: %w", path, err)
	}
	for _, rec := range snapshot {
		idx.records[rec.ID] = rec
	}
	return idx, nil
}

func (x *FileIndex) Append(ctx context.Context, record *models.MediaArtifact) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, exists := x.records[record.ID]; exists {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("artifact %s already indexed", record.ID))
	}
	x.records[record.ID] = *record
	return x.persistLocked()
}

func (x *FileIndex) Get(ctx context.Context, id uuid.UUID) (*models.MediaArtifact, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	rec, ok := x.records[id]
	if !ok {
		return nil, artifactNotFound(id)
	}
	return &rec, nil
}

func (x *FileIndex) List(ctx context.Context, query Query) ([]models.MediaArtifact, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	found := make([]models.MediaArtifact, 0)
	for _, rec := range x.records {
		if query.Subject != "" && rec.Subject != query.Subject {
			continue
		}
		if query.Type != nil && rec.Type != *query.Type {
			continue
		}
		if query.OlderThan != nil && !rec.CreatedAt.Before(*query.OlderThan) {
			continue
		}
		found = append(found, rec)
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	if query.Limit > 0 && len(found) > query.Limit {
		found = found[:query.Limit]
	}
	return found, nil
}

func (x *FileIndex) Delete(ctx context.Context, id uuid.UUID) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	if _, ok := x.records[id]; !ok {
		return artifactNotFound(id)
	}
	delete(x.records, id)
	return x.persistLocked()
}

func (x *FileIndex) persistLocked() error {
	snapshot := make([]models.MediaArtifact, 0, len(x.records))
	for _, rec := range x.records {
		snapshot = append(snapshot, rec)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})

	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact index: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(x.path), 0o755); err != nil {
		return fmt.Errorf("create index dir: %w", err)
	}
	tmp := x.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write artifact index: %w", err)
	}
	return os.Rename(tmp, x.path)
}
