// Package metrics exposes Prometheus collectors for extraction and probing.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MrSnakeDoc/caddyboard/internal/domain"
)

const namespace = "caddyboard"

// Metrics groups the collectors. A nil *Metrics is valid and records nothing.
type Metrics struct {
	services     prometheus.Gauge
	extractions  *prometheus.CounterVec
	probes       *prometheus.CounterVec
	probeLatency prometheus.Histogram
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		services: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "services",
			Help:      "Number of services in the current snapshot.",
		}),
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Caddyfile extractions by result.",
		}, []string{"result"}),
		probes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "probes_total",
			Help:      "Reachability probes by terminal status.",
		}, []string{"status"}),
		probeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "probe_latency_seconds",
			Help:      "TCP connect latency of online probes.",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		}),
	}
	reg.MustRegister(m.services, m.extractions, m.probes, m.probeLatency)
	return m
}

// ObserveExtraction records one extraction run.
func (m *Metrics) ObserveExtraction(count int, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.extractions.WithLabelValues("error").Inc()
		return
	}
	m.extractions.WithLabelValues("success").Inc()
	m.services.Set(float64(count))
}

// ObserveProbe records the outcome of a single probe.
func (m *Metrics) ObserveProbe(status domain.Status, latency time.Duration) {
	if m == nil {
		return
	}
	m.probes.WithLabelValues(string(status)).Inc()
	if status == domain.StatusOnline {
		m.probeLatency.Observe(latency.Seconds())
	}
}

// Handler serves the gathered metrics in the Prometheus text format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
