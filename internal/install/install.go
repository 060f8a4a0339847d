package install

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/giantswarm/ddblocal/internal/fileutil"
)

// DefaultTimeout bounds a whole install when Config.Timeout is zero.
const DefaultTimeout = 10 * time.Minute

// stagingPattern names the temporary directories archives are unpacked into
// before being moved into place.
const stagingPattern = ".extract-*"

// Config describes where the emulator lives and where to fetch it from.
type Config struct {
	// Dir is the install directory. It is created if missing.
	Dir string
	// SourceURL must answer with a 302 pointing at the archive.
	SourceURL string
	// AssetName is the path, relative to Dir, of the file whose presence
	// marks the install as complete.
	AssetName string
	// HTTPClient performs both requests. Nil means http.DefaultClient.
	// Its redirect policy is overridden for the first request.
	HTTPClient *http.Client
	// Timeout bounds lock acquisition plus download and unpack.
	// Zero means DefaultTimeout.
	Timeout time.Duration
	// SHA256 is the optional hex digest of the archive bytes.
	SHA256 string
	// Logger receives progress messages. Nil means slog.Default().
	Logger *slog.Logger
}

func (c Config) validate() error {
	var errs []error
	if c.Dir == "" {
		errs = append(errs, errors.New("install dir must not be empty"))
	}
	if c.SourceURL == "" {
		errs = append(errs, errors.New("source URL must not be empty"))
	}
	if c.AssetName == "" {
		errs = append(errs, errors.New("asset name must not be empty"))
	} else if !filepath.IsLocal(filepath.FromSlash(c.AssetName)) {
		errs = append(errs, fmt.Errorf("asset name %q must be a relative path inside the install dir", c.AssetName))
	}
	if c.Timeout < 0 {
		errs = append(errs, fmt.Errorf("install timeout must not be negative, got %v", c.Timeout))
	}
	if c.SHA256 != "" {
		if b, err := hex.DecodeString(c.SHA256); err != nil || len(b) != sha256.Size {
			errs = append(errs, fmt.Errorf("archive SHA-256 %q is not a hex-encoded digest", c.SHA256))
		}
	}
	return errors.Join(errs...)
}

// Result describes the outcome of EnsureInstalled.
type Result struct {
	// Dir is the install directory.
	Dir string
	// AssetPath is Dir joined with the configured asset name.
	AssetPath string
	// Installed is true when this call downloaded the archive, false when
	// the asset was already present.
	Installed bool
}

// EnsureInstalled makes sure cfg.AssetName exists under cfg.Dir. When it
// already does, no network traffic happens. Otherwise the archive is fetched
// from cfg.SourceURL and unpacked into cfg.Dir.
//
// Concurrent callers sharing a directory are serialized by a file lock; only
// the first one downloads, the others see the asset after the lock is
// released.
func EnsureInstalled(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid install config: %w", err)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	assetPath := filepath.Join(cfg.Dir, filepath.FromSlash(cfg.AssetName))
	res := &Result{Dir: cfg.Dir, AssetPath: assetPath}

	if present(assetPath, logger) {
		return res, nil
	}

	if err := fileutil.EnsureDir(cfg.Dir); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDirectoryCreate, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	fl, err := acquireFileLock(ctx, filepath.Join(cfg.Dir, lockFileName))
	if err != nil {
		return nil, err
	}
	defer releaseFileLock(logger, fl)

	// Another caller may have finished while we waited for the lock.
	if present(assetPath, logger) {
		return res, nil
	}

	sweepStaging(cfg.Dir, logger)

	start := time.Now()
	logger.Info("installing emulator", "dir", cfg.Dir, "source", cfg.SourceURL)

	if err := download(ctx, cfg, logger); err != nil {
		return nil, err
	}

	logger.Info("emulator installed", "dir", cfg.Dir, "duration", time.Since(start).Round(time.Millisecond))
	res.Installed = true
	return res, nil
}

// present reports whether the asset exists as a regular file. Stat failures
// other than not-exist are logged and treated as absent.
func present(assetPath string, logger *slog.Logger) bool {
	ok, err := fileutil.IsRegularFile(assetPath)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Debug("cannot stat asset, treating as not installed", "path", assetPath, "err", err)
	}
	return ok
}

// sweepStaging removes staging directories left behind by installers that
// died mid-extraction. The caller must hold the install lock.
func sweepStaging(dir string, logger *slog.Logger) {
	leftovers, err := filepath.Glob(filepath.Join(dir, stagingPattern))
	if err != nil {
		return
	}
	for _, p := range leftovers {
		if err := os.RemoveAll(p); err != nil {
			logger.Warn("failed to remove stale staging dir", "path", p, "err", err)
			continue
		}
		logger.Debug("removed stale staging dir", "path", p)
	}
}

// download runs the redirect lookup, streams the archive into a staging
// directory inside cfg.Dir and promotes the result.
func download(ctx context.Context, cfg Config, logger *slog.Logger) error {
	client := cfg.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	location, err := resolveArchiveLocation(ctx, noRedirectClient(client), cfg.SourceURL)
	if err != nil {
		return err
	}
	logger.Debug("archive location resolved", "location", location)

	body, err := openArchive(ctx, client, location)
	if err != nil {
		return err
	}
	defer func() { _ = body.Close() }()

	staging, err := os.MkdirTemp(cfg.Dir, stagingPattern)
	if err != nil {
		return fmt.Errorf("%w: create staging dir: %w", ErrExtraction, err)
	}
	defer func() {
		if rmErr := os.RemoveAll(staging); rmErr != nil {
			logger.Debug("failed to remove staging dir", "path", staging, "err", rmErr)
		}
	}()

	var (
		src    io.Reader = body
		digest hash.Hash
	)
	if cfg.SHA256 != "" {
		digest = sha256.New()
		src = io.TeeReader(body, digest)
	}

	if err := extractTarGz(src, staging, logger); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrNetwork, ctx.Err())
		}
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}

	if digest != nil {
		// tar stops reading at the end-of-archive marker; hash the rest too.
		if _, err := io.Copy(io.Discard, src); err != nil {
			return fmt.Errorf("%w: %w", ErrNetwork, err)
		}
		got := hex.EncodeToString(digest.Sum(nil))
		if !strings.EqualFold(got, cfg.SHA256) {
			return fmt.Errorf("%w: got %s, want %s", ErrChecksumMismatch, got, strings.ToLower(cfg.SHA256))
		}
	}

	if ok, _ := fileutil.IsRegularFile(filepath.Join(staging, filepath.FromSlash(cfg.AssetName))); !ok {
		return fmt.Errorf("%w: archive does not contain %s", ErrExtraction, cfg.AssetName)
	}

	if err := promote(staging, cfg.Dir, cfg.AssetName); err != nil {
		return fmt.Errorf("%w: %w", ErrExtraction, err)
	}
	return nil
}
