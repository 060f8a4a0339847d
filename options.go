package ddblocal

import (
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// requirePositive panics if v <= 0 with a descriptive message.
func requirePositive[T int | time.Duration](name string, v T) {
	if v <= 0 {
		panic(fmt.Sprintf("ddblocal: %s must be greater than 0, got %v", name, v))
	}
}

// requireNonEmpty panics if s is empty with a descriptive message.
func requireNonEmpty(name, s string) {
	if s == "" {
		panic(fmt.Sprintf("ddblocal: %s must not be empty", name))
	}
}

// RegistryOption configures a Registry during construction via NewRegistry.
//
// Several With* functions panic on invalid input (empty paths, non-positive
// durations, malformed URLs). Option values are typically constants, so an
// invalid value indicates a programmer error rather than a runtime
// condition. The pattern mirrors [regexp.MustCompile].
type RegistryOption func(*registryConfig)

// WithInstallDir sets the directory the archive is unpacked into. It is also
// the working directory of every emulator process.
//
// Default: filepath.Join(os.TempDir(), DefaultInstallDirName).
//
// Panics if dir is empty.
func WithInstallDir(dir string) RegistryOption {
	requireNonEmpty("install directory", dir)
	return func(c *registryConfig) {
		c.InstallDir = dir
	}
}

// WithSourceURL sets the URL queried for the archive location. It must answer
// with a 302 whose Location points at a gzip-compressed tar archive.
//
// Default: DefaultSourceURL.
//
// Panics if rawURL is not an absolute http or https URL.
func WithSourceURL(rawURL string) RegistryOption {
	requireNonEmpty("source URL", rawURL)
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		panic(fmt.Sprintf("ddblocal: source URL must be an absolute http(s) URL, got %q", rawURL))
	}
	return func(c *registryConfig) {
		c.SourceURL = rawURL
	}
}

// WithJavaBinary sets the java executable, either a name looked up in PATH
// or a path.
//
// Default: DefaultJavaBinary.
//
// Panics if binPath is empty.
func WithJavaBinary(binPath string) RegistryOption {
	requireNonEmpty("java binary path", binPath)
	return func(c *registryConfig) {
		c.JavaBinary = binPath
	}
}

// WithAssetName sets the jar passed to -jar, relative to the install
// directory. Its presence marks the install as complete.
//
// Default: DefaultAssetName.
//
// Panics if name is empty.
func WithAssetName(name string) RegistryOption {
	requireNonEmpty("asset name", name)
	return func(c *registryConfig) {
		c.AssetName = name
	}
}

// WithLibraryDir sets the -Djava.library.path value, relative to the install
// directory.
//
// Default: DefaultLibraryDir.
//
// Panics if dir is empty.
func WithLibraryDir(dir string) RegistryOption {
	requireNonEmpty("library directory", dir)
	return func(c *registryConfig) {
		c.LibraryDir = dir
	}
}

// WithLogDir sets the directory receiving ddblocal-<port>-stdout.log and
// ddblocal-<port>-stderr.log. The files are truncated on every launch.
//
// Default: the install directory.
//
// Panics if dir is empty.
func WithLogDir(dir string) RegistryOption {
	requireNonEmpty("log directory", dir)
	return func(c *registryConfig) {
		c.LogDir = dir
	}
}

// WithHTTPClient sets the client used to download the archive. Its redirect
// policy is ignored for the first request, whose 302 is inspected rather
// than followed.
//
// Default: http.DefaultClient.
//
// Panics if client is nil.
func WithHTTPClient(client *http.Client) RegistryOption {
	if client == nil {
		panic("ddblocal: HTTP client must not be nil")
	}
	return func(c *registryConfig) {
		c.HTTPClient = client
	}
}

// WithInstallTimeout bounds one download and unpack of the archive,
// including the wait for another process installing into the same directory.
//
// Default: DefaultInstallTimeout.
//
// Panics if d <= 0.
func WithInstallTimeout(d time.Duration) RegistryOption {
	requirePositive("install timeout", d)
	return func(c *registryConfig) {
		c.InstallTimeout = d
	}
}

// WithArchiveSHA256 pins the SHA-256 digest of the archive. A download with a
// different digest fails with ErrChecksumMismatch and installs nothing.
//
// Default: no verification.
//
// Panics if digest is not 64 hex characters.
func WithArchiveSHA256(digest string) RegistryOption {
	if b, err := hex.DecodeString(digest); err != nil || len(b) != 32 {
		panic(fmt.Sprintf("ddblocal: archive SHA-256 must be 64 hex characters, got %q", digest))
	}
	return func(c *registryConfig) {
		c.ArchiveSHA256 = digest
	}
}

// WithReadyTimeout makes Launch wait until the emulator accepts TCP
// connections on its port. If it does not within d, or exits first, the
// process is killed and Launch returns ErrNotReady.
//
// Default: DefaultReadyTimeout (disabled).
//
// Panics if d <= 0.
func WithReadyTimeout(d time.Duration) RegistryOption {
	requirePositive("ready timeout", d)
	return func(c *registryConfig) {
		c.ReadyTimeout = d
	}
}

// WithReadyPollInterval sets the interval between readiness probes.
//
// Default: DefaultReadyPollInterval.
//
// Panics if d <= 0.
func WithReadyPollInterval(d time.Duration) RegistryOption {
	requirePositive("ready poll interval", d)
	return func(c *registryConfig) {
		c.ReadyPollInterval = d
	}
}

// WithStopTimeout bounds how long Relaunch and Shutdown wait for a killed
// process to exit.
//
// Default: DefaultStopTimeout.
//
// Panics if d <= 0.
func WithStopTimeout(d time.Duration) RegistryOption {
	requirePositive("stop timeout", d)
	return func(c *registryConfig) {
		c.StopTimeout = d
	}
}

// WithMetricsRegisterer registers Prometheus metrics for installs, launches,
// stops, and running processes with reg. NewRegistry panics if the metrics
// are already registered with reg.
//
// Default: no metrics.
//
// Panics if reg is nil.
func WithMetricsRegisterer(reg prometheus.Registerer) RegistryOption {
	if reg == nil {
		panic("ddblocal: metrics registerer must not be nil")
	}
	return func(c *registryConfig) {
		c.metricsRegisterer = reg
	}
}

// LaunchOption configures a single Launch or Relaunch call.
type LaunchOption func(*launchRequest)

// WithDBPath stores tables in path (-dbPath) instead of in memory
// (-inMemory). An empty path keeps the in-memory default.
func WithDBPath(path string) LaunchOption {
	return func(r *launchRequest) {
		r.DBPath = path
	}
}

// WithExtraArgs appends arguments after the storage flags, e.g.
// WithExtraArgs("-sharedDb") or WithExtraArgs(args...). Repeated options
// accumulate in order.
func WithExtraArgs(args ...string) LaunchOption {
	return func(r *launchRequest) {
		r.ExtraArgs = append(r.ExtraArgs, args...)
	}
}
