package core

import (
	"fmt"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var _ MetricsCollector = (*PrometheusMetricsCollector)(nil)

// PrometheusMetricsCollector implements MetricsCollector with Prometheus
// metrics under the "ddblocal" namespace.
type PrometheusMetricsCollector struct {
	installs        *prometheus.CounterVec
	installDuration prometheus.Histogram
	launches        *prometheus.CounterVec
	launchDuration  *prometheus.HistogramVec
	stops           *prometheus.CounterVec
	running         prometheus.Gauge
}

// NewPrometheusMetricsCollector creates the collector and registers its
// metrics with reg.
func NewPrometheusMetricsCollector(reg prometheus.Registerer) (*PrometheusMetricsCollector, error) {
	const namespace = "ddblocal"

	pmc := &PrometheusMetricsCollector{
		installs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "installs_total",
				Help:      "Total number of install checks by outcome",
			},
			[]string{"outcome"},
		),
		installDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "install_duration_seconds",
				Help:      "Duration of archive downloads and extraction",
				Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300, 600},
			},
		),
		launches: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "launches_total",
				Help:      "Total number of launch calls by port and outcome",
			},
			[]string{"port", "outcome"},
		),
		launchDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "launch_duration_seconds",
				Help:      "Duration of launch calls that spawned a process",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"port"},
		),
		stops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "stops_total",
				Help:      "Total number of emulator processes killed",
			},
			[]string{"port"},
		),
		running: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "running_processes",
				Help:      "Number of emulator processes currently registered",
			},
		),
	}

	for _, c := range []prometheus.Collector{
		pmc.installs, pmc.installDuration, pmc.launches,
		pmc.launchDuration, pmc.stops, pmc.running,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}
	return pmc, nil
}

// InstallFinished implements MetricsCollector. Durations are only observed
// for runs that downloaded.
func (p *PrometheusMetricsCollector) InstallFinished(outcome string, duration time.Duration) {
	p.installs.WithLabelValues(outcome).Inc()
	if outcome == InstallOutcomeInstalled {
		p.installDuration.Observe(duration.Seconds())
	}
}

// LaunchFinished implements MetricsCollector.
func (p *PrometheusMetricsCollector) LaunchFinished(port int, outcome string, duration time.Duration) {
	label := strconv.Itoa(port)
	p.launches.WithLabelValues(label, outcome).Inc()
	if outcome == LaunchOutcomeStarted {
		p.launchDuration.WithLabelValues(label).Observe(duration.Seconds())
	}
}

// ProcessStopped implements MetricsCollector.
func (p *PrometheusMetricsCollector) ProcessStopped(port int) {
	p.stops.WithLabelValues(strconv.Itoa(port)).Inc()
}

// RunningProcesses implements MetricsCollector.
func (p *PrometheusMetricsCollector) RunningProcesses(n int) {
	p.running.Set(float64(n))
}
