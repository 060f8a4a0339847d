package core

import (
	"log/slog"
	"slices"
	"time"

	"github.com/giantswarm/ddblocal/internal/process"
)

// Handle is a running emulator process owned by a Registry. Callers may read
// it concurrently; only the Registry terminates it.
type Handle struct {
	proc      *process.Process
	port      int
	dbPath    string
	args      []string
	startedAt time.Time
	log       *slog.Logger
}

// PID returns the OS process identifier.
func (h *Handle) PID() int {
	return h.proc.PID()
}

// Port returns the port the emulator was launched on.
func (h *Handle) Port() int {
	return h.port
}

// DBPath returns the -dbPath value, or "" for an in-memory emulator.
func (h *Handle) DBPath() string {
	return h.dbPath
}

// Args returns a copy of the JVM arguments the process was started with.
func (h *Handle) Args() []string {
	return slices.Clone(h.args)
}

// StartedAt returns the time the process was spawned.
func (h *Handle) StartedAt() time.Time {
	return h.startedAt
}

// Exited returns a channel closed when the process exits.
func (h *Handle) Exited() <-chan struct{} {
	return h.proc.Exited()
}

// LogFiles returns the stdout and stderr log paths.
func (h *Handle) LogFiles() (stdout, stderr string) {
	return h.proc.LogFiles()
}
