// Package metrics holds the portal's Prometheus collectors on a private
// registry served at /metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ibportal"

var (
	Registry = prometheus.NewRegistry()

	// ExportsTotal counts finished exports by requested format and outcome
	// (ok, fallback, error).
	ExportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "export",
		Name:      "total",
		Help:      "Exports by requested format and outcome.",
	}, []string{"format", "outcome"})

	ExportDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "export",
		Name:      "duration_seconds",
		Help:      "Time spent rendering an export file.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"format"})

	// CapabilityLoads counts lazy writer loads by capability and result.
	CapabilityLoads = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "export",
		Name:      "capability_loads_total",
		Help:      "Lazy export writer loads by capability and result.",
	}, []string{"capability", "result"})

	SourceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "source",
		Name:      "fetches_total",
		Help:      "Dataset fetches by source kind and result.",
	}, []string{"source", "result"})

	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "view",
		Name:      "sessions_active",
		Help:      "Open table view sessions.",
	})

	TableActions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "view",
		Name:      "actions_total",
		Help:      "Table view actions by table and action.",
	}, []string{"table", "action"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		ExportsTotal,
		ExportDuration,
		CapabilityLoads,
		SourceFetches,
		ActiveSessions,
		TableActions,
	)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{Registry: Registry})
}

// Result turns an error into the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
