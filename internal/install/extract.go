package install

import (
	"archive/tar"
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/giantswarm/ddblocal/internal/fileutil"
)

// extractTarGz unpacks a gzip-compressed tar stream into root. Only
// directories and regular files are materialized; other entry types are
// skipped with a warning. Entries whose names would land outside root are
// rejected.
func extractTarGz(r io.Reader, root string, logger *slog.Logger) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("open gzip stream: %w", err)
	}
	defer func() { _ = gz.Close() }()

	tr := tar.NewReader(gz)
	var files int
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read tar entry: %w", err)
		}

		target, err := entryPath(root, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return fmt.Errorf("create %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			mode := hdr.FileInfo().Mode().Perm() | 0o200
			if err := fileutil.WriteFile(target, tr, &fileutil.WriteFileOptions{Mode: &mode}); err != nil {
				return fmt.Errorf("write %s: %w", hdr.Name, err)
			}
			files++
		default:
			logger.Warn("skipping unsupported archive entry",
				"name", hdr.Name, "type", string(hdr.Typeflag))
		}
	}

	logger.Debug("archive unpacked", "files", files, "root", root)
	return nil
}

// entryPath maps an archive entry name to a path under root.
func entryPath(root, name string) (string, error) {
	rel := filepath.FromSlash(name)
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("illegal path in archive: %q", name)
	}
	return filepath.Join(root, rel), nil
}

// promote moves every top-level entry of staging into dir, replacing what is
// there. The entry that contains asset is moved last so the asset only shows
// up once everything else is in place.
func promote(staging, dir, asset string) error {
	entries, err := os.ReadDir(staging)
	if err != nil {
		return fmt.Errorf("read staging dir: %w", err)
	}

	top := strings.SplitN(filepath.ToSlash(asset), "/", 2)[0]
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Name() != top {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	names = append(names, top)

	for _, name := range names {
		src := filepath.Join(staging, name)
		dst := filepath.Join(dir, name)
		if err := os.RemoveAll(dst); err != nil {
			return fmt.Errorf("remove stale %s: %w", dst, err)
		}
		if err := os.Rename(src, dst); err != nil {
			return fmt.Errorf("move %s into place: %w", name, err)
		}
	}
	return nil
}
