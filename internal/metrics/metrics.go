// Package metrics exposes Prometheus counters for the upsert pipeline:
// scenario classification, enrichment unit outcomes and search indexing.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector owns the service's Prometheus registry and counters.  It
// implements the enrichment and search outcome-recorder interfaces so the
// pipeline components stay free of Prometheus imports.
type Collector struct {
	registry    *prometheus.Registry
	upsertTotal *prometheus.CounterVec
	enrichTotal *prometheus.CounterVec
	indexTotal  *prometheus.CounterVec
}

// NewCollector constructs a collector with the pipeline counters
// registered on a private registry.
func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	upsertTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fairgrid",
		Subsystem: "lifecycle",
		Name:      "upserts_total",
		Help:      "Total upsert requests by classified scenario and outcome.",
	}, []string{"scenario", "outcome"})

	enrichTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fairgrid",
		Subsystem: "enrichment",
		Name:      "units_total",
		Help:      "Total enrichment unit executions by unit and outcome.",
	}, []string{"unit", "outcome"})

	indexTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fairgrid",
		Subsystem: "search",
		Name:      "index_writes_total",
		Help:      "Total search index writes by cluster, index and outcome.",
	}, []string{"cluster", "index", "outcome"})

	for _, c := range []prometheus.Collector{upsertTotal, enrichTotal, indexTotal} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:    registry,
		upsertTotal: upsertTotal,
		enrichTotal: enrichTotal,
		indexTotal:  indexTotal,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordUpsert counts one settled upsert request.
func (c *Collector) RecordUpsert(scenario string, err error) {
	c.upsertTotal.WithLabelValues(scenario, outcome(err)).Inc()
}

// RecordEnrichment counts one settled enrichment unit.
func (c *Collector) RecordEnrichment(unit string, err error) {
	c.enrichTotal.WithLabelValues(unit, outcome(err)).Inc()
}

// RecordIndexing counts one settled index write target.
func (c *Collector) RecordIndexing(cluster, index string, err error) {
	c.indexTotal.WithLabelValues(cluster, index, outcome(err)).Inc()
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
