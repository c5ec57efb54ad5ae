package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// External API labels.
const (
	APITextSearch = "textsearch"
	APIDetails    = "details"
	APICompletion = "completion"
)

// Metrics bundles Prometheus collectors for the search pipeline.
type Metrics struct {
	Registry           *prometheus.Registry
	SearchesTotal      *prometheus.CounterVec
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	PlacesFoundTotal   prometheus.Counter
	DetailFailures     prometheus.Counter
}

// New constructs and registers all metrics on a dedicated registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	searches := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geosearch_searches_total",
			Help: "Search submissions by outcome.",
		},
		[]string{"outcome"},
	)
	apiRequests := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "geosearch_api_requests_total",
			Help: "Outbound API requests by API and outcome.",
		},
		[]string{"api", "outcome"},
	)
	apiDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "geosearch_api_request_duration_seconds",
			Help:    "Latency of outbound API requests.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"api"},
	)
	placesFound := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geosearch_places_found_total",
			Help: "Places returned by completed searches.",
		},
	)
	detailFailures := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "geosearch_detail_failures_total",
			Help: "Place details lookups that failed and fell back to N/A.",
		},
	)

	registry.MustRegister(searches, apiRequests, apiDuration, placesFound, detailFailures)

	return &Metrics{
		Registry:           registry,
		SearchesTotal:      searches,
		APIRequestsTotal:   apiRequests,
		APIRequestDuration: apiDuration,
		PlacesFoundTotal:   placesFound,
		DetailFailures:     detailFailures,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// IncSearch counts a finished search submission.
func (m *Metrics) IncSearch(outcome string) {
	if m == nil {
		return
	}
	m.SearchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveAPICall records one outbound request.
func (m *Metrics) ObserveAPICall(api, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.APIRequestsTotal.WithLabelValues(api, outcome).Inc()
	m.APIRequestDuration.WithLabelValues(api).Observe(d.Seconds())
}

// AddPlaces adds to the found places counter.
func (m *Metrics) AddPlaces(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PlacesFoundTotal.Add(float64(n))
}

// IncDetailFailure counts an absorbed details lookup failure.
func (m *Metrics) IncDetailFailure() {
	if m == nil {
		return
	}
	m.DetailFailures.Inc()
}
