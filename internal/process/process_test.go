package process

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"
	"time"
)

func TestExpectSignalExit(t *testing.T) {
	t.Parallel()

	type testCase struct {
		err     error
		signal  syscall.Signal
		wantErr bool
	}

	tests := map[string]testCase{
		"nil error returns nil":       {wantErr: false},
		"SIGTERM exit is expected":    {signal: syscall.SIGTERM, wantErr: false},
		"SIGKILL exit is expected":    {signal: syscall.SIGKILL, wantErr: false},
		"other signal is unexpected":  {signal: syscall.SIGINT, wantErr: true},
		"non-ExitError is unexpected": {err: errors.New("some other error"), wantErr: true},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			inputErr := tc.err
			if inputErr == nil && tc.signal != 0 {
				inputErr = makeSignalExitError(t, tc.signal)
			}

			got := expectSignalExit(inputErr, "ddblocal-8000")

			if tc.wantErr && got == nil {
				t.Fatal("expected error, got nil")
			}
			if !tc.wantErr && got != nil {
				t.Fatalf("expected nil, got %v", got)
			}
		})
	}
}

func TestExpectSignalExit_WrapsProcessName(t *testing.T) {
	t.Parallel()

	err := expectSignalExit(errors.New("exit status 1"), "ddblocal-8000")
	if got := err.Error(); got != "ddblocal-8000: exit status 1" {
		t.Errorf("error = %q, want %q", got, "ddblocal-8000: exit status 1")
	}
}

func TestWaitExited(t *testing.T) {
	t.Parallel()

	t.Run("closed channel", func(t *testing.T) {
		t.Parallel()
		ch := make(chan struct{})
		close(ch)
		if !waitExited(ch, time.Second) {
			t.Fatal("expected true for closed channel")
		}
	})

	t.Run("times out", func(t *testing.T) {
		t.Parallel()
		if waitExited(make(chan struct{}), 10*time.Millisecond) {
			t.Fatal("expected false when timeout elapses")
		}
	})
}

func TestStart_InvalidConfig(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	tests := map[string]Config{
		"missing name":    {Binary: "sleep", Dir: dir, LogDir: dir},
		"missing binary":  {Name: "p", Dir: dir, LogDir: dir},
		"missing dir":     {Name: "p", Binary: "sleep", LogDir: dir},
		"missing log dir": {Name: "p", Binary: "sleep", Dir: dir},
	}

	for name, cfg := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			if _, err := Start(cfg); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestStart_BinaryNotFound(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	_, err := Start(Config{
		Name:   "ddblocal-8000",
		Binary: filepath.Join(dir, "no-such-java"),
		Dir:    dir,
		LogDir: dir,
	})
	if err == nil {
		t.Fatal("expected error for missing binary, got nil")
	}
}

func TestStart_KillAndWait(t *testing.T) {
	skipUnlessUnix(t)
	t.Parallel()

	dir := t.TempDir()
	p, err := Start(Config{
		Name:   "ddblocal-8000",
		Binary: "sleep",
		Args:   []string{"60"},
		Dir:    dir,
		Env:    os.Environ(),
		LogDir: dir,
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer p.Close()

	if p.PID() <= 0 {
		t.Fatalf("PID() = %d, want > 0", p.PID())
	}

	select {
	case <-p.Exited():
		t.Fatal("process exited before Kill")
	default:
	}

	if err := p.Kill(); err != nil {
		t.Fatalf("Kill() error: %v", err)
	}
	if err := p.Kill(); err != nil {
		t.Fatalf("second Kill() error: %v", err)
	}
	if err := p.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait() after kill: %v", err)
	}
}

func TestStart_WorkingDirAndLogs(t *testing.T) {
	skipUnlessUnix(t)
	t.Parallel()

	workDir := t.TempDir()
	logDir := t.TempDir()
	p, err := Start(Config{
		Name:   "ddblocal-9000",
		Binary: "sh",
		Args:   []string{"-c", "pwd; echo oops >&2"},
		Dir:    workDir,
		Env:    os.Environ(),
		LogDir: logDir,
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer p.Close()

	if err := p.Wait(5 * time.Second); err != nil {
		t.Fatalf("Wait() error: %v", err)
	}

	stdout, stderr := p.LogFiles()
	if want := filepath.Join(logDir, "ddblocal-9000-stdout.log"); stdout != want {
		t.Errorf("stdout path = %q, want %q", stdout, want)
	}

	out, err := os.ReadFile(stdout) //nolint:gosec // G304: path is test-controlled
	if err != nil {
		t.Fatalf("read stdout log: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(workDir)
	if err != nil {
		t.Fatalf("eval symlinks: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != workDir && got != resolved {
		t.Errorf("child working dir = %q, want %q", got, workDir)
	}

	errOut, err := os.ReadFile(stderr) //nolint:gosec // G304: path is test-controlled
	if err != nil {
		t.Fatalf("read stderr log: %v", err)
	}
	if got := strings.TrimSpace(string(errOut)); got != "oops" {
		t.Errorf("stderr = %q, want %q", got, "oops")
	}
}

func TestWait_NonSignalExitIsError(t *testing.T) {
	skipUnlessUnix(t)
	t.Parallel()

	dir := t.TempDir()
	p, err := Start(Config{
		Name:   "ddblocal-8001",
		Binary: "sh",
		Args:   []string{"-c", "exit 3"},
		Dir:    dir,
		LogDir: dir,
	})
	if err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	defer p.Close()

	if err := p.Wait(5 * time.Second); err == nil {
		t.Fatal("expected error for exit status 3, got nil")
	}
}

func TestLogFiles_Paths(t *testing.T) {
	t.Parallel()

	lf := LogFiles{dir: "/tmp/dynamodb-local", stdoutName: "ddblocal-8000-stdout.log", stderrName: "ddblocal-8000-stderr.log"}
	if got, want := lf.StdoutPath(), "/tmp/dynamodb-local/ddblocal-8000-stdout.log"; got != want {
		t.Errorf("StdoutPath() = %q, want %q", got, want)
	}
	if got, want := lf.StderrPath(), "/tmp/dynamodb-local/ddblocal-8000-stderr.log"; got != want {
		t.Errorf("StderrPath() = %q, want %q", got, want)
	}
}

func TestLogFiles_CloseNilHandles(t *testing.T) {
	t.Parallel()

	lf := LogFiles{}
	lf.Close()
}

func skipUnlessUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell and sleep")
	}
}

// makeSignalExitError creates an *exec.ExitError with the given signal.
// It uses a real process to generate an authentic WaitStatus.
func makeSignalExitError(tb testing.TB, sig syscall.Signal) *exec.ExitError {
	tb.Helper()

	cmd := exec.Command("sleep", "60")
	if err := cmd.Start(); err != nil {
		tb.Fatalf("test setup: start sleep: %v", err)
	}

	if err := cmd.Process.Signal(sig); err != nil {
		_ = cmd.Process.Kill() // best-effort cleanup
		tb.Fatalf("test setup: signal process with %v: %v", sig, err)
	}

	err := cmd.Wait()

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		tb.Fatalf("test setup: expected *exec.ExitError from signaled process, got %v", err)
	}

	return exitErr
}
