package core

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"net"
	"os"
	"slices"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/giantswarm/ddblocal/internal/fileutil"
	"github.com/giantswarm/ddblocal/internal/install"
	"github.com/giantswarm/ddblocal/internal/netutil"
	"github.com/giantswarm/ddblocal/internal/process"
)

// Registry tracks at most one emulator process per port.
// It is safe for concurrent use by multiple goroutines.
//
// Synchronization strategy:
//   - mu guards procs and closed. It is never held across I/O. The running
//     gauge is published under mu so concurrent updates land in order.
//   - launches collapses concurrent Launch calls for the same unregistered
//     port into one install-and-spawn, so a port is never spawned twice.
//   - A Handle removed from procs is owned by whoever removed it; only that
//     goroutine kills and closes it.
//   - ports holds every registered port plus those handed out by
//     LaunchFreePort whose launch is still in flight.
type Registry struct {
	cfg     RegistryConfig
	metrics MetricsCollector
	ports   *netutil.PortAllocator

	mu     sync.Mutex
	procs  map[int]*Handle
	closed bool

	launches singleflight.Group
}

// NewRegistryWithConfig creates a Registry. This performs no I/O: nothing is
// downloaded until the first Launch or Install.
//
// Panics if cfg.Validate() reports any errors. Invalid configuration is a
// programmer error that should be caught at construction time, similar to
// regexp.MustCompile.
func NewRegistryWithConfig(cfg RegistryConfig) *Registry {
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("ddblocal: invalid registry config: %v", err))
	}
	m := cfg.Metrics
	if m == nil {
		m = NewNoopMetricsCollector()
	}
	return &Registry{
		cfg:     cfg,
		metrics: m,
		ports:   netutil.NewPortAllocator(Logger()),
		procs:   make(map[int]*Handle),
	}
}

// Config returns the registry configuration.
func (r *Registry) Config() RegistryConfig {
	return r.cfg
}

// Install runs the acquisition pipeline without launching anything.
func (r *Registry) Install(ctx context.Context) (*install.Result, error) {
	start := time.Now()
	res, err := install.EnsureInstalled(ctx, install.Config{
		Dir:        r.cfg.InstallDir,
		SourceURL:  r.cfg.SourceURL,
		AssetName:  r.cfg.AssetName,
		HTTPClient: r.cfg.HTTPClient,
		Timeout:    r.cfg.InstallTimeout,
		SHA256:     r.cfg.ArchiveSHA256,
		Logger:     Logger(),
	})
	switch {
	case err != nil:
		r.metrics.InstallFinished(InstallOutcomeError, time.Since(start))
		return nil, fmt.Errorf("install emulator: %w", err)
	case res.Installed:
		r.metrics.InstallFinished(InstallOutcomeInstalled, time.Since(start))
	default:
		r.metrics.InstallFinished(InstallOutcomeCached, time.Since(start))
	}
	return res, nil
}

// Launch returns the process registered for req.Port, starting one if none
// is registered. An existing handle is returned as is: no liveness check is
// made and req's other fields are ignored.
//
// Concurrent calls for the same unregistered port share a single launch and
// all receive its outcome. The shared launch keeps the first caller's values
// but not its cancellation; it is bounded by InstallTimeout and ReadyTimeout
// instead. A caller whose own ctx ends stops waiting early; the shared launch
// carries on and registers the process if it succeeds.
func (r *Registry) Launch(ctx context.Context, req LaunchRequest) (*Handle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := time.Now()
	h, err := r.lookup(req.Port)
	if err != nil {
		return nil, err
	}
	if h != nil {
		r.metrics.LaunchFinished(req.Port, LaunchOutcomeReused, time.Since(start))
		return h, nil
	}

	flightCtx := context.WithoutCancel(ctx)
	ch := r.launches.DoChan(strconv.Itoa(req.Port), func() (any, error) {
		return r.launch(flightCtx, req)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Handle), nil //nolint:forcetypeassert // launch only returns *Handle
	case <-ctx.Done():
		return nil, fmt.Errorf("launch port %d: %w", req.Port, ctx.Err())
	}
}

// LaunchFreePort picks a free loopback port and launches an emulator on it.
// req.Port is ignored. The port stays reserved while a process is registered
// on it.
func (r *Registry) LaunchFreePort(ctx context.Context, req LaunchRequest) (*Handle, error) {
	port, err := r.ports.Allocate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLaunch, err)
	}
	req.Port = port

	h, err := r.Launch(ctx, req)
	if err != nil {
		// The shared launch may still register the port after ctx ended;
		// launch then reserves it again.
		if _, ok := r.Get(port); !ok {
			r.ports.Release(port)
		}
		return nil, err
	}
	return h, nil
}

// lookup returns the handle registered for port, or nil.
func (r *Registry) lookup(port int) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrRegistryClosed
	}
	return r.procs[port], nil
}

// launch runs inside the per-port singleflight slot.
func (r *Registry) launch(ctx context.Context, req LaunchRequest) (*Handle, error) {
	// A launch that completed between the caller's lookup and this slot
	// has already registered the port.
	if h, err := r.lookup(req.Port); h != nil || err != nil {
		return h, err
	}

	start := time.Now()
	h, err := r.start(ctx, req)
	if err != nil {
		r.metrics.LaunchFinished(req.Port, LaunchOutcomeError, time.Since(start))
		return nil, err
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		_ = r.kill(h)
		r.metrics.LaunchFinished(req.Port, LaunchOutcomeError, time.Since(start))
		return nil, ErrRegistryClosed
	}
	r.procs[req.Port] = h
	r.ports.Reserve(req.Port)
	r.metrics.RunningProcesses(len(r.procs))
	r.mu.Unlock()

	r.metrics.LaunchFinished(req.Port, LaunchOutcomeStarted, time.Since(start))
	h.log.Info("emulator started", "pid", h.PID(), "port", req.Port)
	return h, nil
}

// start installs the emulator if needed and spawns it. The returned handle
// is not yet registered.
func (r *Registry) start(ctx context.Context, req LaunchRequest) (*Handle, error) {
	if _, err := r.Install(ctx); err != nil {
		return nil, err
	}

	logDir := r.cfg.logDir()
	if err := fileutil.EnsureDir(logDir); err != nil {
		return nil, fmt.Errorf("%w: port %d: %w", ErrLaunch, req.Port, err)
	}

	log := Logger().With("port", req.Port)
	args := BuildArgs(r.cfg.LibraryDir, r.cfg.AssetName, req)
	name := "ddblocal-" + strconv.Itoa(req.Port)

	proc, err := process.Start(process.Config{
		Name:   name,
		Binary: r.cfg.JavaBinary,
		Args:   args,
		Dir:    r.cfg.InstallDir,
		Env:    os.Environ(),
		LogDir: logDir,
		Logger: log,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: port %d: %w", ErrLaunch, req.Port, err)
	}

	h := &Handle{
		proc:      proc,
		port:      req.Port,
		dbPath:    req.DBPath,
		args:      args,
		startedAt: time.Now(),
		log:       log,
	}

	if r.cfg.ReadyTimeout > 0 {
		if err := r.waitReady(ctx, h); err != nil {
			_ = h.proc.Kill()
			h.proc.Close()
			return nil, fmt.Errorf("%w: %w", ErrNotReady, err)
		}
	}
	return h, nil
}

// waitReady polls the emulator port until it accepts a TCP connection.
func (r *Registry) waitReady(ctx context.Context, h *Handle) error {
	addr := net.JoinHostPort("127.0.0.1", strconv.Itoa(h.port))
	return h.proc.WaitListening(ctx, addr, r.cfg.ReadyPollInterval, r.cfg.ReadyTimeout)
}

// Stop kills the process registered for port and forgets it. It does not
// wait for the process to exit. Stopping an unregistered port is a no-op.
func (r *Registry) Stop(port int) error {
	h := r.detach(port)
	if h == nil {
		return nil
	}
	return r.kill(h)
}

// detach removes and returns the handle for port, or nil.
func (r *Registry) detach(port int) *Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.procs[port]
	if !ok {
		return nil
	}
	delete(r.procs, port)
	r.ports.Release(port)
	r.metrics.RunningProcesses(len(r.procs))
	return h
}

// kill sends SIGKILL and releases the parent's log file handles. The caller
// must own h.
func (r *Registry) kill(h *Handle) error {
	err := h.proc.Kill()
	h.proc.Close()
	r.metrics.ProcessStopped(h.port)
	h.log.Info("emulator stopped", "pid", h.PID(), "port", h.port)
	return err
}

// Relaunch stops the process on req.Port, waits up to StopTimeout for it to
// exit so the port is free again, and launches a new one with req.
func (r *Registry) Relaunch(ctx context.Context, req LaunchRequest) (*Handle, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if h := r.detach(req.Port); h != nil {
		if err := r.kill(h); err != nil {
			return nil, fmt.Errorf("relaunch port %d: %w", req.Port, err)
		}
		if err := h.proc.Wait(r.cfg.StopTimeout); err != nil {
			h.log.Warn("previous emulator did not exit cleanly; launching anyway", "error", err)
		}
	}

	return r.Launch(ctx, req)
}

// Get returns the handle registered for port.
func (r *Registry) Get(port int) (*Handle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.procs[port]
	return h, ok
}

// Ports returns the registered ports in ascending order.
func (r *Registry) Ports() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Sorted(maps.Keys(r.procs))
}

// Shutdown kills every registered process and waits, in parallel and each
// bounded by StopTimeout, for them to exit. Launch fails with
// ErrRegistryClosed afterwards. Calling Shutdown again is a no-op.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	handles := slices.Collect(maps.Values(r.procs))
	clear(r.procs)
	if len(handles) > 0 {
		r.metrics.RunningProcesses(0)
	}
	r.mu.Unlock()

	if len(handles) == 0 {
		return nil
	}

	// Each process is independent, so parallel stops bound the worst case
	// at one StopTimeout instead of N.
	stopErrs := make([]error, len(handles))
	var wg sync.WaitGroup
	for idx, h := range handles {
		wg.Add(1)
		go func(pos int, h *Handle) {
			defer wg.Done()
			defer r.ports.Release(h.port)
			if err := r.kill(h); err != nil {
				stopErrs[pos] = err
				return
			}
			if err := h.proc.Wait(r.cfg.StopTimeout); err != nil {
				stopErrs[pos] = fmt.Errorf("port %d: %w", h.port, err)
			}
		}(idx, h)
	}
	wg.Wait()

	return errors.Join(stopErrs...)
}
