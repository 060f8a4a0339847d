// Package process spawns and terminates the emulator's child processes.
//
// Start launches a command with its stdout/stderr redirected to per-process
// log files and starts exactly one cmd.Wait goroutine whose completion is
// broadcast through Exited. Kill sends SIGKILL without waiting; Wait bounds
// the wait for exit after a kill. WaitListening polls the child's TCP address
// until it accepts a connection, the timeout expires, or the child dies.
package process
