package ddblocal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/giantswarm/ddblocal/internal/core"
)

// Compile-time interface satisfaction checks.
var (
	_ Registry = (*registryWrapper)(nil)
	_ Process  = processWrapper{}
)

// registryWrapper wraps core.Registry to implement the Registry interface.
//
// The core.Registry is stored as a named field rather than embedded so
// callers cannot reach internal methods through type assertions.
type registryWrapper struct {
	reg *core.Registry
}

// Launch implements Registry.Launch.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (w *registryWrapper) Launch(ctx context.Context, port int, opts ...LaunchOption) (Process, error) {
	h, err := w.reg.Launch(ctx, buildLaunchRequest(port, opts))
	if err != nil {
		return nil, err
	}
	return processWrapper{h: h}, nil
}

// LaunchFreePort implements Registry.LaunchFreePort.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (w *registryWrapper) LaunchFreePort(ctx context.Context, opts ...LaunchOption) (Process, error) {
	h, err := w.reg.LaunchFreePort(ctx, buildLaunchRequest(0, opts))
	if err != nil {
		return nil, err
	}
	return processWrapper{h: h}, nil
}

// Stop implements Registry.Stop.
func (w *registryWrapper) Stop(port int) error {
	return w.reg.Stop(port)
}

// Relaunch implements Registry.Relaunch.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (w *registryWrapper) Relaunch(ctx context.Context, port int, opts ...LaunchOption) (Process, error) {
	h, err := w.reg.Relaunch(ctx, buildLaunchRequest(port, opts))
	if err != nil {
		return nil, err
	}
	return processWrapper{h: h}, nil
}

// Get implements Registry.Get.
//
//nolint:ireturn // Returns Process interface by design for testability (mockable).
func (w *registryWrapper) Get(port int) (Process, bool) {
	h, ok := w.reg.Get(port)
	if !ok {
		return nil, false
	}
	return processWrapper{h: h}, true
}

// Ports implements Registry.Ports.
func (w *registryWrapper) Ports() []int {
	return w.reg.Ports()
}

// Install implements Registry.Install.
func (w *registryWrapper) Install(ctx context.Context) error {
	_, err := w.reg.Install(ctx)
	return err
}

// Shutdown implements Registry.Shutdown.
func (w *registryWrapper) Shutdown() error {
	return w.reg.Shutdown()
}

// processWrapper wraps core.Handle to implement the Process interface. It is
// a value type so that wrappers of the same handle compare equal.
type processWrapper struct {
	h *core.Handle
}

func (p processWrapper) PID() int                          { return p.h.PID() }
func (p processWrapper) Port() int                         { return p.h.Port() }
func (p processWrapper) Args() []string                    { return p.h.Args() }
func (p processWrapper) DBPath() string                    { return p.h.DBPath() }
func (p processWrapper) Exited() <-chan struct{}           { return p.h.Exited() }
func (p processWrapper) LogFiles() (stdout, stderr string) { return p.h.LogFiles() }

// defaultRegistryConfig returns a registryConfig populated with all default
// values. Both NewRegistry and test helpers use this.
func defaultRegistryConfig() registryConfig {
	return registryConfig{RegistryConfig: core.RegistryConfig{
		InstallDir:        filepath.Join(os.TempDir(), DefaultInstallDirName),
		SourceURL:         DefaultSourceURL,
		AssetName:         DefaultAssetName,
		JavaBinary:        DefaultJavaBinary,
		LibraryDir:        DefaultLibraryDir,
		InstallTimeout:    DefaultInstallTimeout,
		ReadyTimeout:      DefaultReadyTimeout,
		ReadyPollInterval: DefaultReadyPollInterval,
		StopTimeout:       DefaultStopTimeout,
	}}
}

// NewRegistry returns a new Registry. This performs no I/O: the emulator is
// downloaded on the first Launch or Install.
//
// Registries are independent. Two registries sharing an install directory
// share the download (a file lock prevents double installs) but not their
// processes; launching the same port from both makes the second JVM fail to
// bind.
//
// Panics if any option receives an invalid value, or if the metrics cannot
// be registered with the registerer given to WithMetricsRegisterer.
//
//nolint:ireturn // Returns Registry interface by design for testability (mockable).
func NewRegistry(opts ...RegistryOption) Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.metricsRegisterer != nil {
		pmc, err := core.NewPrometheusMetricsCollector(cfg.metricsRegisterer)
		if err != nil {
			panic(fmt.Sprintf("ddblocal: %v", err))
		}
		cfg.Metrics = pmc
	}

	return &registryWrapper{reg: core.NewRegistryWithConfig(cfg.RegistryConfig)}
}
