package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	Analyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksentinel_analyses_total",
			Help: "Level computations by result path",
		},
		[]string{"path"}, // ok|fallback
	)

	FetchErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksentinel_fetch_errors_total",
			Help: "Failed price source requests",
		},
		[]string{"source"},
	)

	FetchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stocksentinel_fetch_duration_seconds",
			Help:    "Price source request duration in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 15},
		},
		[]string{"source"},
	)

	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksentinel_cache_lookups_total",
			Help: "Quote cache lookups",
		},
		[]string{"result"}, // hit|miss|error
	)

	Commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stocksentinel_commands_total",
			Help: "Bot commands handled",
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(Analyses, FetchErrors, FetchDuration, CacheLookups, Commands)
}

// Handler returns the HTTP handler for /metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveFetch records a price source request.
func ObserveFetch(source string, start time.Time, err error) {
	FetchDuration.WithLabelValues(source).Observe(time.Since(start).Seconds())
	if err != nil {
		FetchErrors.WithLabelValues(source).Inc()
	}
}
