package ddblocal

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/giantswarm/ddblocal/internal/core"
)

// registryConfig holds configuration for a Registry. This unexported type
// wraps core.RegistryConfig via embedding, keeping internal/core types out of
// the public API signature while avoiding field-by-field duplication.
type registryConfig struct {
	core.RegistryConfig

	// metricsRegisterer, when set, receives the Prometheus collectors
	// created by NewRegistry.
	metricsRegisterer prometheus.Registerer
}

// launchRequest wraps core.LaunchRequest for the same reason.
type launchRequest struct {
	core.LaunchRequest
}

// buildLaunchRequest applies opts to a request for port.
func buildLaunchRequest(port int, opts []LaunchOption) core.LaunchRequest {
	req := launchRequest{core.LaunchRequest{Port: port}}
	for _, opt := range opts {
		opt(&req)
	}
	return req.LaunchRequest
}
