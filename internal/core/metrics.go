package core

import "time"

// Install outcomes reported to MetricsCollector.InstallFinished.
const (
	InstallOutcomeInstalled = "installed"
	InstallOutcomeCached    = "cached"
	InstallOutcomeError     = "error"
)

// Launch outcomes reported to MetricsCollector.LaunchFinished.
const (
	LaunchOutcomeStarted = "started"
	LaunchOutcomeReused  = "reused"
	LaunchOutcomeError   = "error"
)

// MetricsCollector receives registry lifecycle observations.
// Implementations must be safe for concurrent use.
type MetricsCollector interface {
	// InstallFinished records one run of the acquisition pipeline.
	InstallFinished(outcome string, duration time.Duration)

	// LaunchFinished records one Launch call for port.
	LaunchFinished(port int, outcome string, duration time.Duration)

	// ProcessStopped records a kill issued for port.
	ProcessStopped(port int)

	// RunningProcesses records the number of registered processes.
	RunningProcesses(n int)
}

type noopMetricsCollector struct{}

func (noopMetricsCollector) InstallFinished(string, time.Duration)     {}
func (noopMetricsCollector) LaunchFinished(int, string, time.Duration) {}
func (noopMetricsCollector) ProcessStopped(int)                        {}
func (noopMetricsCollector) RunningProcesses(int)                      {}

// NewNoopMetricsCollector returns a MetricsCollector that discards everything.
func NewNoopMetricsCollector() MetricsCollector {
	return noopMetricsCollector{}
}
