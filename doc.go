// Package ddblocal downloads, installs, and supervises DynamoDB Local, the
// vendor-provided local DynamoDB emulator, as one child JVM per TCP port.
//
// The first launch fetches the vendor archive, unpacks it into a cache
// directory, and then spawns java with the emulator jar. Later launches reuse
// the unpacked files without touching the network.
//
// # Basic Usage
//
//	import "github.com/giantswarm/ddblocal"
//
//	ctx := context.Background()
//
//	reg := ddblocal.NewRegistry()
//	defer reg.Shutdown()
//
//	proc, err := reg.Launch(ctx, 8000)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	log.Printf("emulator pid %d", proc.PID())
//
//	// Point an AWS SDK client at http://localhost:8000 ...
//
//	// Restart with on-disk storage:
//	proc, err = reg.Relaunch(ctx, 8000, ddblocal.WithDBPath("/tmp/ddb"))
//
//	// Or let the registry pick an unused port:
//	other, err := reg.LaunchFreePort(ctx)
//	endpoint := fmt.Sprintf("http://127.0.0.1:%d", other.Port())
//
// # Lifecycle
//
// Each port is either absent or running. Launch on a running port returns
// the existing process without starting another, and concurrent launches on
// the same port spawn exactly once. Stop sends SIGKILL and forgets the port
// immediately; Relaunch additionally waits for the old process to exit so
// the port is free before starting the new one.
//
// The registry does not watch processes after launch. A child that crashes
// stays registered until Stop or Relaunch is called for its port.
//
// # Requirements
//
// A java binary must be on PATH (see WithJavaBinary). The first launch needs
// network access to the source URL (see WithSourceURL).
package ddblocal
