package ddblocal

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ConfigSnapshot holds a copy of registryConfig fields for test assertions.
// Exported only via export_test.go so that the _test package can verify
// option closures actually mutate the config without accessing internals.
type ConfigSnapshot struct {
	InstallDir        string
	SourceURL         string
	AssetName         string
	JavaBinary        string
	LibraryDir        string
	LogDir            string
	HasHTTPClient     bool
	InstallTimeout    time.Duration
	ArchiveSHA256     string
	ReadyTimeout      time.Duration
	ReadyPollInterval time.Duration
	StopTimeout       time.Duration
	MetricsRegisterer prometheus.Registerer
}

// ApplyOptionsForTesting creates a default registryConfig, applies the given
// options, and returns a ConfigSnapshot of the result.
func ApplyOptionsForTesting(opts ...RegistryOption) ConfigSnapshot {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return ConfigSnapshot{
		InstallDir:        cfg.InstallDir,
		SourceURL:         cfg.SourceURL,
		AssetName:         cfg.AssetName,
		JavaBinary:        cfg.JavaBinary,
		LibraryDir:        cfg.LibraryDir,
		LogDir:            cfg.LogDir,
		HasHTTPClient:     cfg.HTTPClient != nil,
		InstallTimeout:    cfg.InstallTimeout,
		ArchiveSHA256:     cfg.ArchiveSHA256,
		ReadyTimeout:      cfg.ReadyTimeout,
		ReadyPollInterval: cfg.ReadyPollInterval,
		StopTimeout:       cfg.StopTimeout,
		MetricsRegisterer: cfg.metricsRegisterer,
	}
}

// LaunchSnapshot is the flattened result of applying LaunchOptions.
type LaunchSnapshot struct {
	Port      int
	DBPath    string
	ExtraArgs []string
}

// ApplyLaunchOptionsForTesting builds the launch request for port.
func ApplyLaunchOptionsForTesting(port int, opts ...LaunchOption) LaunchSnapshot {
	req := buildLaunchRequest(port, opts)
	return LaunchSnapshot{Port: req.Port, DBPath: req.DBPath, ExtraArgs: req.ExtraArgs}
}
