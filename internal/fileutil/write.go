package fileutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/giantswarm/ddblocal/internal/sentinel"
)

// ErrEmptyDst is returned when a destination path is empty.
const ErrEmptyDst = sentinel.Error("destination path must not be empty")

// ErrNilReader is returned when WriteFile is called without a source.
const ErrNilReader = sentinel.Error("source reader must not be nil")

// WriteFileOptions configures WriteFile.
type WriteFileOptions struct {
	Mode *os.FileMode // Optional: permissions for the final file (default 0644)
	Sync bool         // If true, fsync the temp file before the rename
}

// WriteFile streams r into dst, creating parent directories as needed.
// Data is written to a temp file in dst's directory and renamed into place,
// so concurrent readers never observe a partially written dst. On any error
// the temp file is removed and dst is left untouched.
func WriteFile(dst string, r io.Reader, opts *WriteFileOptions) (retErr error) {
	if dst == "" {
		return ErrEmptyDst
	}
	if r == nil {
		return ErrNilReader
	}

	var o WriteFileOptions
	if opts != nil {
		o = *opts
	}

	if err := EnsureDirForFile(dst); err != nil {
		return fmt.Errorf("prepare destination: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".tmp-write-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if retErr != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(resolveFileMode(&o)); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("chmod temp file: %w", err)
	}

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("copy: %w", err)
	}

	if o.Sync {
		if err := tmp.Sync(); err != nil {
			_ = tmp.Close()
			return fmt.Errorf("sync: %w", err)
		}
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("rename temp file to destination: %w", err)
	}
	return nil
}

// resolveFileMode returns the file mode from opts, defaulting to 0o644.
func resolveFileMode(opts *WriteFileOptions) os.FileMode {
	if opts.Mode != nil {
		return *opts.Mode
	}
	return 0o644
}
