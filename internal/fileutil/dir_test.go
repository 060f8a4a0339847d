package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestEnsureDir(t *testing.T) {
	t.Parallel()

	t.Run("creates nested directories", func(t *testing.T) {
		t.Parallel()
		dir := filepath.Join(t.TempDir(), "dynamodb-local", "a", "b")

		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() error: %v", err)
		}

		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat after EnsureDir: %v", err)
		}
		if !info.IsDir() {
			t.Error("expected directory, got file")
		}
	})

	t.Run("idempotent on existing directory", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()

		if err := EnsureDir(dir); err != nil {
			t.Fatalf("EnsureDir() on existing dir error: %v", err)
		}
	})

	t.Run("fails when path is a file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "occupied")
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatalf("create file: %v", err)
		}

		if err := EnsureDir(path); err == nil {
			t.Fatal("expected error when a regular file occupies the path")
		}
	})
}

func TestEnsureDirForFile(t *testing.T) {
	t.Parallel()

	filePath := filepath.Join(t.TempDir(), "a", "b", "file.txt")
	if err := EnsureDirForFile(filePath); err != nil {
		t.Fatalf("EnsureDirForFile() error: %v", err)
	}

	info, err := os.Stat(filepath.Dir(filePath))
	if err != nil {
		t.Fatalf("stat parent dir: %v", err)
	}
	if !info.IsDir() {
		t.Error("expected parent to be directory")
	}
}

func TestIsRegularFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "DynamoDBLocal.jar")
	if err := os.WriteFile(file, []byte("jar"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}

	tests := map[string]struct {
		path    string
		want    bool
		wantErr bool
	}{
		"regular file": {path: file, want: true},
		"directory":    {path: dir, want: false},
		"missing":      {path: filepath.Join(dir, "missing.jar"), want: false, wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := IsRegularFile(tc.path)
			if (err != nil) != tc.wantErr {
				t.Fatalf("IsRegularFile() error = %v, wantErr %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Errorf("IsRegularFile() = %v, want %v", got, tc.want)
			}
		})
	}
}
