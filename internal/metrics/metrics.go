package metrics

import (
	"net/http"

	"github.com/khanhnv2901/srvdiag/internal/checker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes diagnostic outcomes as Prometheus series on its own
// registry, so tests and multiple servers never collide on the global one.
type Collector struct {
	registry *prometheus.Registry
	runs     prometheus.Counter
	status   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "srvdiag",
			Name:      "runs_total",
			Help:      "Number of diagnostic runs executed.",
		}),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "srvdiag",
			Name:      "check_status",
			Help:      "Last outcome per check: 1 pass, 0.5 warn, 0 fail.",
		}, []string{"check"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "srvdiag",
			Name:      "check_duration_seconds",
			Help:      "Time spent running each check.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 8),
		}, []string{"check"}),
	}
	c.registry.MustRegister(c.runs, c.status, c.duration)
	return c
}

// ObserveResult records one check. It matches checker.ResultFunc.
func (c *Collector) ObserveResult(r checker.CheckResult) {
	c.status.WithLabelValues(r.Name).Set(StatusValue(r.Status))
	c.duration.WithLabelValues(r.Name).Observe(r.DurationMs / 1000)
}

// ObserveRun counts a completed run.
func (c *Collector) ObserveRun() {
	c.runs.Inc()
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// StatusValue maps a status onto the gauge scale.
func StatusValue(s checker.Status) float64 {
	switch s {
	case checker.StatusPass:
		return 1
	case checker.StatusWarn:
		return 0.5
	default:
		return 0
	}
}
