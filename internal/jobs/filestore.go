package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/mvaldez/genstudio-backend/pkg/db/models"
	pkgerrors "github.com/mvaldez/genstudio-backend/pkg/errors"
)

// FileStore keeps the full job set in memory and mirrors every mutation to a
// JSON snapshot on disk, so job state survives restarts without a database.
type FileStore struct {
	mu   sync.RWMutex
	path string
	jobs map[string]models.GenerationJob
	now  func() time.Time
}

// NewFileStore loads the snapshot at path when one exists and returns a store
// bound to it. A corrupt snapshot is an error rather than silent data loss.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{
		path: path,
		jobs: make(map[string]models.GenerationJob),
		now:  time.Now,
	}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read job snapshot: %w", err)
	}
	var snapshot []models.GenerationJob
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode job snapshot %s: %w", path, err)
	}
	for _, job := range snapshot {
		s.jobs[job.ID] = job
	}
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, job *models.GenerationJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("job %s already exists", job.ID))
	}
	now := s.now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	s.jobs[job.ID] = *job
	return s.persistLocked()
}

func (s *FileStore) Get(ctx context.Context, id string) (*models.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, notFound(id)
	}
	return &job, nil
}

func (s *FileStore) ListBySubject(ctx context.Context, subject string, limit int) ([]models.GenerationJob, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	found := make([]models.GenerationJob, 0)
	for _, job := range s.jobs {
		if job.Subject == subject {
			found = append(found, job)
		}
	}
	sort.Slice(found, func(i, j int) bool {
		return found[i].CreatedAt.After(found[j].CreatedAt)
	})
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	return found, nil
}

func (s *FileStore) Update(ctx context.Context, id string, update Update) (*models.GenerationJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[id]
	if !ok {
		return nil, notFound(id)
	}
	if err := applyUpdate(&job, update, s.now()); err != nil {
		return nil, err
	}
	s.jobs[id] = job
	if err := s.persistLocked(); err != nil {
		return nil, err
	}
	return &job, nil
}

func (s *FileStore) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, job := range s.jobs {
		if !job.Status.IsTerminal() || job.CompletedAt == nil {
			continue
		}
		if job.CompletedAt.Before(cutoff) {
			delete(s.jobs, id)
			removed++
		}
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, s.persistLocked()
}

// persistLocked writes the snapshot through a temp file and rename so readers
// never observe a half-written file. Callers hold the write lock.
func (s *FileStore) persistLocked() error {
	snapshot := make([]models.GenerationJob, 0, len(s.jobs))
	for _, job := range s.jobs {
		snapshot = append(snapshot, job)
	}
	sort.Slice(snapshot, func(i, j int) bool {
		return snapshot[i].CreatedAt.Before(snapshot[j].CreatedAt)
	})

	raw, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return fmt.Errorf("encode job snapshot: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write job snapshot: %w", err)
	}
	return os.Rename(tmp, s.path)
}
