package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerationJobsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_generation_jobs.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no generation_jobs migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS generation_jobs",
		"CHECK (progress >= 0 AND progress <= 100)",
		"CREATE INDEX IF NOT EXISTS idx_generation_jobs_subject",
		"CREATE INDEX IF NOT EXISTS idx_generation_jobs_status_completed_at",
		"DROP TABLE IF EXISTS generation_jobs",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMediaArtifactsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_media_artifacts.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no media_artifacts migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS media_artifacts",
		"CHECK (size_bytes >= 0)",
		"CREATE INDEX IF NOT EXISTS idx_media_artifacts_subject",
		"CREATE INDEX IF NOT EXISTS idx_media_artifacts_created_at",
		"DROP TABLE IF EXISTS media_artifacts",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
