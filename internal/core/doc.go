// Package core provides the internal implementation of ddblocal.
// It contains the Registry (a port-keyed table of emulator processes with
// idempotent launch, per-port launch collapsing, relaunch, and parallel
// shutdown), the Handle wrapping a spawned JVM, the JVM argument builder,
// and the metrics collectors.
package core
