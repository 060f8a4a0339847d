package process

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/giantswarm/ddblocal/internal/sentinel"
)

// ErrNoPID is returned by Start when the OS accepted the command but did not
// report a usable process identifier.
const ErrNoPID = sentinel.Error("process started without a pid")

// ErrWaitTimeout is returned by Wait when the process did not exit in time.
const ErrWaitTimeout = sentinel.Error("timed out waiting for process to exit")

// Config describes a child process to spawn.
type Config struct {
	Name   string   // Used for log file names and log messages, e.g. "ddblocal-8000"
	Binary string   // Executable name or path, resolved through PATH by exec
	Args   []string // Arguments, not including the binary
	Dir    string   // Working directory of the child
	Env    []string // Full environment of the child
	LogDir string   // Directory receiving <Name>-stdout.log and <Name>-stderr.log

	// Logger (optional, defaults to slog.Default())
	Logger *slog.Logger
}

func (c Config) validate() error {
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	if c.Binary == "" {
		return errors.New("binary must not be empty")
	}
	if c.Dir == "" {
		return errors.New("working directory must not be empty")
	}
	if c.LogDir == "" {
		return errors.New("log directory must not be empty")
	}
	return nil
}

// Process is a started child process.
//
// Kill and Close are not safe for concurrent use with each other. Only the
// goroutine that owns the Process calls them; the registry hands ownership to
// whoever removes the handle from its table. Exited, PID, Wait, and
// WaitListening may be used from any goroutine.
type Process struct {
	cmd      *exec.Cmd
	exited   chan struct{} // closed after cmd.Wait returns
	waitErr  error         // result of cmd.Wait; read only after exited is closed
	logFiles LogFiles
	name     string
	log      *slog.Logger
	killed   bool
}

// Start spawns the process described by cfg. The returned Process already has
// a goroutine reaping the child; callers must eventually call Kill or let the
// child exit on its own, and then Close.
func Start(cfg Config) (*Process, error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid process config: %w", err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	cmd := exec.Command(cfg.Binary, cfg.Args...) //nolint:gosec // G204: binary and args come from registry configuration
	cmd.Dir = cfg.Dir
	cmd.Env = cfg.Env
	configureSysProcAttr(cmd)

	logFiles, err := startCmd(cmd, cfg.LogDir, cfg.Name)
	if err != nil {
		return nil, err
	}

	if cmd.Process == nil || cmd.Process.Pid <= 0 {
		logFiles.Close()
		return nil, fmt.Errorf("%s: %w", cfg.Name, ErrNoPID)
	}

	p := &Process{
		cmd:      cmd,
		exited:   make(chan struct{}),
		logFiles: logFiles,
		name:     cfg.Name,
		log:      log,
	}

	// cmd.Wait must be called exactly once per started process. The result is
	// published through waitErr before exited is closed, so any goroutine that
	// observes the closed channel also observes the error.
	go func() {
		p.waitErr = cmd.Wait()
		close(p.exited)
	}()

	return p, nil
}

// PID returns the OS process identifier.
func (p *Process) PID() int {
	return p.cmd.Process.Pid
}

// Exited returns a channel that is closed when the process exits. It is safe
// to select on from any number of goroutines.
func (p *Process) Exited() <-chan struct{} {
	return p.exited
}

// Kill sends SIGKILL to the process and returns without waiting for it to
// exit. Killing a process that already exited, or killing twice, is not an
// error.
func (p *Process) Kill() error {
	if p.killed {
		return nil
	}
	p.killed = true
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		p.log.Warn("process kill failed; process may be orphaned",
			"process", p.name, "pid", p.PID(), "error", err)
		return fmt.Errorf("kill %s: %w", p.name, err)
	}
	return nil
}

// Wait blocks until the process exits or timeout elapses. An exit caused by
// SIGTERM or SIGKILL is reported as success.
func (p *Process) Wait(timeout time.Duration) error {
	if !waitExited(p.exited, timeout) {
		return fmt.Errorf("%s: %w", p.name, ErrWaitTimeout)
	}
	return expectSignalExit(p.waitErr, p.name)
}

// Close releases the parent's handles on the log files. The child keeps its
// own descriptors, so closing while it is still running is harmless.
func (p *Process) Close() {
	p.logFiles.Close()
}

// LogFiles returns the paths of the process log files.
func (p *Process) LogFiles() (stdout, stderr string) {
	return p.logFiles.StdoutPath(), p.logFiles.StderrPath()
}

// waitExited waits for exited to close, bounded by timeout. Returns false if
// the timeout elapsed first.
func waitExited(exited <-chan struct{}, timeout time.Duration) bool {
	t := time.NewTimer(timeout)
	defer t.Stop()

	select {
	case <-exited:
		return true
	case <-t.C:
		return false
	}
}

// expectSignalExit interprets an error from cmd.Wait after sending a
// termination signal. Exit errors caused by SIGTERM or SIGKILL are expected
// and treated as successful stops.
func expectSignalExit(err error, name string) error {
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if status, ok := exitErr.Sys().(syscall.WaitStatus); ok {
			sig := status.Signal()
			if sig == syscall.SIGTERM || sig == syscall.SIGKILL {
				return nil
			}
		}
	}
	return fmt.Errorf("%s: %w", name, err)
}

// LogFiles manages stdout/stderr file handles for a process.
type LogFiles struct {
	stdoutFile *os.File
	stderrFile *os.File
	dir        string
	stdoutName string // e.g., "ddblocal-8000-stdout.log"
	stderrName string
}

// create creates stdout and stderr log files.
// Both files are assigned to the struct only after both creates succeed.
func (l *LogFiles) create() error {
	stdoutFile, err := os.Create(l.StdoutPath())
	if err != nil {
		return fmt.Errorf("create stdout log: %w", err)
	}
	stderrFile, err := os.Create(l.StderrPath())
	if err != nil {
		_ = stdoutFile.Close()
		return fmt.Errorf("create stderr log: %w", err)
	}
	l.stdoutFile = stdoutFile
	l.stderrFile = stderrFile
	return nil
}

// Close closes both log file handles and nils them to prevent double-close.
func (l *LogFiles) Close() {
	if l.stdoutFile != nil {
		_ = l.stdoutFile.Close()
		l.stdoutFile = nil
	}
	if l.stderrFile != nil {
		_ = l.stderrFile.Close()
		l.stderrFile = nil
	}
}

// StdoutPath returns the path to the stdout log file.
func (l *LogFiles) StdoutPath() string {
	return filepath.Join(l.dir, l.stdoutName)
}

// StderrPath returns the path to the stderr log file.
func (l *LogFiles) StderrPath() string {
	return filepath.Join(l.dir, l.stderrName)
}

// newLogFiles creates and initializes log files for a process, truncating
// logs left by a previous process of the same name.
func newLogFiles(dir, processName string) (LogFiles, error) {
	l := LogFiles{
		dir:        dir,
		stdoutName: processName + "-stdout.log",
		stderrName: processName + "-stderr.log",
	}
	if err := l.create(); err != nil {
		return LogFiles{}, err
	}
	return l, nil
}

// startCmd creates log files, sets up stdout/stderr, and starts the command.
// On success, caller owns the LogFiles. On failure, log files are closed automatically.
func startCmd(cmd *exec.Cmd, logDir, processName string) (LogFiles, error) {
	logFiles, err := newLogFiles(logDir, processName)
	if err != nil {
		return LogFiles{}, fmt.Errorf("create %s logs: %w", processName, err)
	}

	cmd.Stdout = logFiles.stdoutFile
	cmd.Stderr = logFiles.stderrFile

	if err := cmd.Start(); err != nil {
		logFiles.Close()
		return LogFiles{}, fmt.Errorf("start %s process: %w", processName, err)
	}

	return logFiles, nil
}
