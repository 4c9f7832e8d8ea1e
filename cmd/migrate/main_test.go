package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDescriptionFromFilename(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"2026-10-18-002-create-records.sql", "create records"},
		{"2026-10-18-001-create-migrations.sql", "create migrations"},
		{"no-prefix.sql", "no prefix"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			if got := descriptionFromFilename(tc.in); got != tc.want {
				t.Errorf("descriptionFromFilename(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestMigrationFiles_Sorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"2026-10-18-002-b.sql", "2026-10-18-001-a.sql", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("SELECT 1;"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	files, err := migrationFiles(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 || filepath.Base(files[0]) != "2026-10-18-001-a.sql" {
		t.Errorf("unexpected files: %v", files)
	}

	if _, err := migrationFiles(t.TempDir()); err == nil {
		t.Error("expected error for empty dir")
	}
}
