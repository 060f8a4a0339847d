package ddblocal

import "context"

// Registry supervises DynamoDB Local processes, at most one per port.
//
// All methods are safe for concurrent use. After Shutdown, Launch and
// Relaunch return ErrRegistryClosed.
type Registry interface {
	// Launch returns the process running on port, starting one if none is
	// registered. The first launch installs the emulator if needed.
	//
	// A registered process is returned as is: opts are ignored and no
	// liveness check is made. Concurrent calls for the same unregistered
	// port share a single spawn and receive the same Process or error. The
	// shared spawn does not stop when the first caller's ctx is cancelled;
	// each caller stops waiting when its own ctx ends.
	//
	// Returns ErrInvalidPort for ports outside 1..65535, install errors
	// (ErrNetwork, ErrUnexpectedStatus, ...) when the download fails,
	// ErrLaunch when java cannot be spawned, and ErrNotReady when a
	// readiness timeout is configured and the port never opens.
	Launch(ctx context.Context, port int, opts ...LaunchOption) (Process, error)

	// LaunchFreePort starts a new process on a free loopback port chosen by
	// the registry. Read the port from the returned Process. The port is not
	// handed out again until the process is stopped.
	LaunchFreePort(ctx context.Context, opts ...LaunchOption) (Process, error)

	// Stop sends SIGKILL to the process on port and removes it from the
	// registry without waiting for it to exit. Stopping a port with no
	// registered process is a no-op and returns nil.
	Stop(port int) error

	// Relaunch stops the process on port, waits for it to exit, and launches
	// a new one with opts. Launch failures are returned to the caller.
	Relaunch(ctx context.Context, port int, opts ...LaunchOption) (Process, error)

	// Get returns the process registered for port.
	Get(port int) (Process, bool)

	// Ports returns the registered ports in ascending order.
	Ports() []int

	// Install downloads and unpacks the emulator if it is not installed yet,
	// without launching it. Useful to warm the cache before tests run.
	Install(ctx context.Context) error

	// Shutdown kills every registered process and waits for them to exit.
	// Returns the joined errors of processes that could not be stopped.
	// Calling Shutdown more than once is safe.
	Shutdown() error
}

// Process is a running DynamoDB Local child process.
//
// Two Process values are equal (==) when they refer to the same child.
type Process interface {
	// PID returns the OS process identifier.
	PID() int

	// Port returns the port the emulator was started on.
	Port() int

	// Args returns the arguments java was started with.
	Args() []string

	// DBPath returns the -dbPath value, or "" for an in-memory emulator.
	DBPath() string

	// Exited returns a channel that is closed when the process exits.
	Exited() <-chan struct{}

	// LogFiles returns the paths receiving the process's stdout and stderr.
	LogFiles() (stdout, stderr string)
}
