// Package metrics holds the Prometheus collectors of the gateway. A nil
// *Metrics is valid and records nothing.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the gateway collectors.
type Metrics struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	resolutions      *prometheus.CounterVec
	pagesFetched     prometheus.Histogram
	listOutcomes     *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them on reg.
func New(reg *prometheus.Registry) *Metrics {
	m := &Metrics{
		upstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rollcall_upstream_requests_total",
				Help: "Upstream open-data API requests by endpoint and status code",
			},
			[]string{"endpoint", "code"},
		),
		upstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rollcall_upstream_request_duration_seconds",
				Help:    "Latency of upstream open-data API requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		resolutions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rollcall_resolutions_total",
				Help: "Vote resolutions by the heuristic tier that produced them",
			},
			[]string{"tier"},
		),
		pagesFetched: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "rollcall_vote_pages_fetched",
				Help:    "Pages of nominal vote entries fetched per listing",
				Buckets: []float64{1, 2, 3, 5, 10, 20, 50},
			},
		),
		listOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rollcall_list_outcomes_total",
				Help: "Vote listing outcomes",
			},
			[]string{"outcome"},
		),
		gatherer: reg,
	}
	reg.MustRegister(m.upstreamRequests, m.upstreamDuration, m.resolutions, m.pagesFetched, m.listOutcomes)
	return m
}

// ObserveUpstream records one upstream request. A zero code means the
// request failed before a response arrived.
func (m *Metrics) ObserveUpstream(endpoint string, code int, d time.Duration) {
	if m == nil {
		return
	}
	label := "error"
	if code != 0 {
		label = strconv.Itoa(code)
	}
	m.upstreamRequests.WithLabelValues(endpoint, label).Inc()
	m.upstreamDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveResolution records the tier that settled a resolution.
func (m *Metrics) ObserveResolution(tier string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(tier).Inc()
}

// ObservePages records how many pages a listing took.
func (m *Metrics) ObservePages(n int) {
	if m == nil {
		return
	}
	m.pagesFetched.Observe(float64(n))
}

// ObserveList records the outcome of a vote listing.
func (m *Metrics) ObserveList(outcome string) {
	if m == nil {
		return
	}
	m.listOutcomes.WithLabelValues(outcome).Inc()
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
