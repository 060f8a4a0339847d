package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// RegistryConfig holds configuration for Registry instances.
//
// All fields are immutable after construction via NewRegistryWithConfig.
// Launch goroutines read them without synchronization.
type RegistryConfig struct {
	// InstallDir receives the unpacked archive and is the working directory
	// of every emulator process.
	InstallDir string
	// SourceURL answers with a 302 pointing at the archive.
	SourceURL string
	// AssetName is the jar launched with -jar, relative to InstallDir. Its
	// presence marks the install as complete.
	AssetName string
	// JavaBinary is the JVM executable, resolved through PATH.
	JavaBinary string
	// LibraryDir is passed as -Djava.library.path, relative to InstallDir.
	LibraryDir string
	// LogDir receives <name>-stdout.log and <name>-stderr.log per port.
	// Empty means InstallDir.
	LogDir string

	// HTTPClient performs the download. Nil means http.DefaultClient.
	HTTPClient *http.Client
	// InstallTimeout bounds one download-and-unpack run.
	InstallTimeout time.Duration
	// ArchiveSHA256 optionally pins the archive digest (hex).
	ArchiveSHA256 string

	// ReadyTimeout enables a TCP readiness probe after spawn when positive.
	// Zero disables the probe: Launch returns as soon as the child started.
	ReadyTimeout time.Duration
	// ReadyPollInterval is the interval between readiness probes.
	ReadyPollInterval time.Duration
	// StopTimeout bounds how long Relaunch and Shutdown wait for a killed
	// child to exit.
	StopTimeout time.Duration

	// Metrics receives lifecycle observations. Nil means no metrics.
	Metrics MetricsCollector
}

// logDir returns the effective log directory.
func (c RegistryConfig) logDir() string {
	if c.LogDir != "" {
		return c.LogDir
	}
	return c.InstallDir
}

// Validate checks all RegistryConfig invariants and returns an error
// describing every violation found.
//
// Validate is called by NewRegistryWithConfig, which panics on error since
// invalid config is a programmer error.
func (c RegistryConfig) Validate() error {
	var errs []error

	if c.InstallDir == "" {
		errs = append(errs, errors.New("install directory must not be empty"))
	}
	if c.SourceURL == "" {
		errs = append(errs, errors.New("source URL must not be empty"))
	}
	if c.AssetName == "" {
		errs = append(errs, errors.New("asset name must not be empty"))
	}
	if c.JavaBinary == "" {
		errs = append(errs, errors.New("java binary must not be empty"))
	}
	if c.LibraryDir == "" {
		errs = append(errs, errors.New("library directory must not be empty"))
	}
	if c.InstallTimeout <= 0 {
		errs = append(errs, fmt.Errorf("install timeout must be greater than 0, got %s", c.InstallTimeout))
	}
	if c.ReadyTimeout < 0 {
		errs = append(errs, fmt.Errorf("ready timeout must not be negative, got %s", c.ReadyTimeout))
	}
	if c.ReadyTimeout > 0 && c.ReadyPollInterval <= 0 {
		errs = append(errs, fmt.Errorf("ready poll interval must be greater than 0, got %s", c.ReadyPollInterval))
	}
	if c.StopTimeout <= 0 {
		errs = append(errs, fmt.Errorf("stop timeout must be greater than 0, got %s", c.StopTimeout))
	}

	return errors.Join(errs...)
}

// LaunchRequest describes one emulator process.
type LaunchRequest struct {
	// Port is the TCP port the emulator listens on.
	Port int
	// DBPath selects -dbPath <DBPath>. Empty selects -inMemory.
	DBPath string
	// ExtraArgs are appended verbatim after the storage flags.
	ExtraArgs []string
}

// Validate reports whether the request can be launched.
func (r LaunchRequest) Validate() error {
	if r.Port < 1 || r.Port > 65535 {
		return fmt.Errorf("%w: %d", ErrInvalidPort, r.Port)
	}
	return nil
}
