package ddblocal_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/giantswarm/ddblocal"
)

// fakeJava records its arguments in the working directory and idles.
const fakeJava = `#!/bin/sh
printf '%s\n' "$@" > ".args.$$" && mv ".args.$$" "args.$$"
exec sleep 60
`

// vendor serves a 302 from /latest to an archive holding the emulator jar.
type vendor struct {
	*httptest.Server
	requests atomic.Int32
}

func newVendor(t *testing.T) *vendor {
	t.Helper()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for name, body := range map[string]string{
		"DynamoDBLocal.jar":                 "jar",
		"DynamoDBLocal_lib/sqlite4java.jar": "lib",
	} {
		if err := tw.WriteHeader(&tar.Header{Name: name, Mode: 0o644, Size: int64(len(body)), Typeflag: tar.TypeReg}); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(body)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	archive := buf.Bytes()

	v := &vendor{}
	mux := http.NewServeMux()
	mux.HandleFunc("/latest", func(w http.ResponseWriter, r *http.Request) {
		v.requests.Add(1)
		http.Redirect(w, r, "/archive.tar.gz", http.StatusFound)
	})
	mux.HandleFunc("/archive.tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		v.requests.Add(1)
		_, _ = w.Write(archive)
	})
	v.Server = httptest.NewServer(mux)
	t.Cleanup(v.Close)
	return v
}

func newRegistry(t *testing.T, v *vendor, extra ...ddblocal.RegistryOption) (ddblocal.Registry, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}

	java := filepath.Join(t.TempDir(), "java")
	if err := os.WriteFile(java, []byte(fakeJava), 0o755); err != nil {
		t.Fatal(err)
	}
	dir := filepath.Join(t.TempDir(), "dynamodb-local")

	opts := append([]ddblocal.RegistryOption{
		ddblocal.WithInstallDir(dir),
		ddblocal.WithSourceURL(v.URL + "/latest"),
		ddblocal.WithHTTPClient(v.Client()),
		ddblocal.WithJavaBinary(java),
		ddblocal.WithStopTimeout(5 * time.Second),
	}, extra...)

	reg := ddblocal.NewRegistry(opts...)
	t.Cleanup(func() { _ = reg.Shutdown() })
	return reg, dir
}

func readArgs(t *testing.T, dir string, pid int) []string {
	t.Helper()

	path := filepath.Join(dir, fmt.Sprintf("args.%d", pid))
	deadline := time.Now().Add(5 * time.Second)
	for {
		b, err := os.ReadFile(path)
		if err == nil {
			return strings.Split(strings.TrimSuffix(string(b), "\n"), "\n")
		}
		if time.Now().After(deadline) {
			t.Fatalf("fake java never recorded %s: %v", path, err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestRegistryLifecycle(t *testing.T) {
	t.Parallel()

	v := newVendor(t)
	reg, dir := newRegistry(t, v)
	ctx := context.Background()

	proc, err := reg.Launch(ctx, 8000)
	if err != nil {
		t.Fatalf("Launch() error = %v", err)
	}
	want := []string{"-Djava.library.path=./DynamoDBLocal_lib", "-jar", "DynamoDBLocal.jar", "-port", "8000", "-inMemory"}
	if got := readArgs(t, dir, proc.PID()); !slices.Equal(got, want) {
		t.Errorf("spawned args = %q, want %q", got, want)
	}
	if got := v.requests.Load(); got != 2 {
		t.Errorf("vendor requests = %d, want 2 (redirect + archive)", got)
	}

	again, err := reg.Launch(ctx, 8000, ddblocal.WithDBPath("/ignored"))
	if err != nil {
		t.Fatalf("second Launch() error = %v", err)
	}
	if again != proc {
		t.Errorf("second Launch returned pid %d, want the running pid %d", again.PID(), proc.PID())
	}
	if got, ok := reg.Get(8000); !ok || got != proc {
		t.Error("Get(8000) does not return the launched process")
	}

	relaunched, err := reg.Relaunch(ctx, 8000, ddblocal.WithDBPath("/x"), ddblocal.WithExtraArgs("-sharedDb"))
	if err != nil {
		t.Fatalf("Relaunch() error = %v", err)
	}
	select {
	case <-proc.Exited():
	default:
		t.Error("old process still running after Relaunch")
	}
	want = []string{"-Djava.library.path=./DynamoDBLocal_lib", "-jar", "DynamoDBLocal.jar", "-port", "8000", "-dbPath", "/x", "-sharedDb"}
	if got := readArgs(t, dir, relaunched.PID()); !slices.Equal(got, want) {
		t.Errorf("relaunched args = %q, want %q", got, want)
	}
	if relaunched.DBPath() != "/x" {
		t.Errorf("DBPath() = %q, want /x", relaunched.DBPath())
	}
	if got := v.requests.Load(); got != 2 {
		t.Errorf("vendor requests after relaunch = %d, want still 2", got)
	}

	if err := reg.Stop(8000); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if _, ok := reg.Get(8000); ok {
		t.Error("8000 still registered after Stop")
	}
	if err := reg.Stop(8000); err != nil {
		t.Errorf("Stop() on absent port error = %v", err)
	}

	if err := reg.Shutdown(); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
	if _, err := reg.Launch(ctx, 8000); !errors.Is(err, ddblocal.ErrRegistryClosed) {
		t.Errorf("Launch() after Shutdown error = %v, want ErrRegistryClosed", err)
	}
}

func TestRegistryInstallOnly(t *testing.T) {
	t.Parallel()

	v := newVendor(t)
	reg, dir := newRegistry(t, v)

	if err := reg.Install(context.Background()); err != nil {
		t.Fatalf("Install() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, ddblocal.DefaultAssetName)); err != nil {
		t.Errorf("asset not installed: %v", err)
	}
	if err := reg.Install(context.Background()); err != nil {
		t.Fatalf("second Install() error = %v", err)
	}
	if got := v.requests.Load(); got != 2 {
		t.Errorf("vendor requests = %d, want 2", got)
	}
	if ports := reg.Ports(); len(ports) != 0 {
		t.Errorf("Ports() = %v, want empty", ports)
	}
}

func TestRegistryLaunchFreePort(t *testing.T) {
	t.Parallel()

	reg, dir := newRegistry(t, newVendor(t))

	proc, err := reg.LaunchFreePort(context.Background(), ddblocal.WithDBPath("/data"))
	if err != nil {
		t.Fatalf("LaunchFreePort() error = %v", err)
	}

	got, ok := reg.Get(proc.Port())
	if !ok || got != proc {
		t.Errorf("Get(%d) did not return the launched process", proc.Port())
	}
	args := readArgs(t, dir, proc.PID())
	if i := slices.Index(args, "-port"); i < 0 || args[i+1] != fmt.Sprint(proc.Port()) {
		t.Errorf("args = %q, want -port %d", args, proc.Port())
	}
	if err := reg.Stop(proc.Port()); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestRegistryInvalidPort(t *testing.T) {
	t.Parallel()

	reg, _ := newRegistry(t, newVendor(t))
	if _, err := reg.Launch(context.Background(), 70000); !errors.Is(err, ddblocal.ErrInvalidPort) {
		t.Errorf("Launch(70000) error = %v, want ErrInvalidPort", err)
	}
}

func TestRegistryMetrics(t *testing.T) {
	t.Parallel()

	promReg := prometheus.NewRegistry()
	reg, _ := newRegistry(t, newVendor(t), ddblocal.WithMetricsRegisterer(promReg))
	ctx := context.Background()

	if _, err := reg.Launch(ctx, 8300); err != nil {
		t.Fatal(err)
	}
	if _, err := reg.Launch(ctx, 8301); err != nil {
		t.Fatal(err)
	}
	if err := reg.Stop(8300); err != nil {
		t.Fatal(err)
	}

	expected := `
		# HELP ddblocal_running_processes Number of emulator processes currently registered
		# TYPE ddblocal_running_processes gauge
		ddblocal_running_processes 1
		# HELP ddblocal_installs_total Total number of install checks by outcome
		# TYPE ddblocal_installs_total counter
		ddblocal_installs_total{outcome="cached"} 1
		ddblocal_installs_total{outcome="installed"} 1
	`
	if err := testutil.GatherAndCompare(promReg, strings.NewReader(expected),
		"ddblocal_running_processes", "ddblocal_installs_total"); err != nil {
		t.Error(err)
	}
}

func TestNewRegistryPanicsOnDuplicateMetrics(t *testing.T) {
	t.Parallel()

	promReg := prometheus.NewRegistry()
	first := ddblocal.NewRegistry(ddblocal.WithMetricsRegisterer(promReg))
	t.Cleanup(func() { _ = first.Shutdown() })

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("NewRegistry did not panic on duplicate metrics registration")
		}
		if msg := fmt.Sprint(r); !strings.HasPrefix(msg, "ddblocal: register metrics") {
			t.Errorf("panic = %q, want ddblocal: register metrics prefix", msg)
		}
	}()
	ddblocal.NewRegistry(ddblocal.WithMetricsRegisterer(promReg))
}
