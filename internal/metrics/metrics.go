package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "census_explorer"

// Collectors groups the Prometheus instruments used across the explorer.
// A nil *Collectors is valid and records nothing.
type Collectors struct {
	fetches       *prometheus.CounterVec
	fetchDuration prometheus.Histogram
	cacheLookups  *prometheus.CounterVec
	pipelineRows  *prometheus.GaugeVec
	httpRequests  *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetches_total",
			Help:      "Census API fetches by result.",
		}, []string{"result"}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Wall time of Census API fetches.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Fetch cache lookups by result.",
		}, []string{"result"}),
		pipelineRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_rows",
			Help:      "Row counts of the last pipeline run by stage.",
		}, []string{"stage"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Dashboard HTTP requests by route and status code.",
		}, []string{"route", "code"}),
	}
	if reg != nil {
		reg.MustRegister(c.fetches, c.fetchDuration, c.cacheLookups, c.pipelineRows, c.httpRequests)
	}
	return c
}

// ObserveFetch records one Census API call.
func (c *Collectors) ObserveFetch(d time.Duration, err error) {
	if c == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.fetches.WithLabelValues(result).Inc()
	c.fetchDuration.Observe(d.Seconds())
}

// CacheLookup records a cache hit or miss.
func (c *Collectors) CacheLookup(hit bool) {
	if c == nil {
		return
	}
	if hit {
		c.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	c.cacheLookups.WithLabelValues("miss").Inc()
}

// PipelineRows sets the row count observed at a pipeline stage.
func (c *Collectors) PipelineRows(stage string, n int) {
	if c == nil {
		return
	}
	c.pipelineRows.WithLabelValues(stage).Set(float64(n))
}

// HTTPRequest records one dashboard request.
func (c *Collectors) HTTPRequest(route, code string) {
	if c == nil {
		return
	}
	c.httpRequests.WithLabelValues(route, code).Inc()
}
