package repository

import (
	"io/fs"
	"path"
	"strings"
	"testing"
)

func TestMigrationFiles_SortedAndEmbedded(t *testing.T) {
	files, err := migrationFiles()
	if err != nil {
		t.Fatalf("migrationFiles: %v", err)
	}
	if len(files) == 0 {
		t.Fatalf("expected at least one embedded migration")
	}
	for i := 1; i < len(files); i++ {
		if files[i-1] > files[i] {
			t.Fatalf("migrations not sorted: %v", files)
		}
	}
}

func TestInitMigration_DeclaresLifecycleGuards(t *testing.T) {
	body, err := fs.ReadFile(migrationFS, path.Join("migrations", "0001_init.sql"))
	if err != nil {
		t.Fatalf("read init migration: %v", err)
	}
	sql := string(body)

	guards := []string{
		"job_requests_one_approved_idx ON job_requests (job_id) WHERE is_approved",
		"job_id     UUID NOT NULL UNIQUE REFERENCES jobs",
		"active_job_id         UUID NOT NULL UNIQUE REFERENCES active_jobs",
		"UNIQUE (client_id, driver_id)",
		"CHECK (rating BETWEEN 1 AND 5)",
	}
	for _, g := range guards {
		if !strings.Contains(sql, g) {
			t.Errorf("init migration missing guard %q", g)
		}
	}
}
