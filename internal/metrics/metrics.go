// Package metrics defines the scanner's Prometheus instruments.
package metrics

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Fetch outcomes.
const (
	OutcomeOK = "ok"
)

// Refresh triggers.
const (
	TriggerInterval = "interval"
	TriggerManual   = "manual"
)

var (
	FetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_fetch_total",
			Help: "Screener fetches by profile and outcome (ok or fetch error kind)",
		},
		[]string{"profile", "outcome"},
	)

	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scanner_fetch_duration_seconds",
			Help:    "Screener round-trip latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"profile"},
	)

	RowsDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_rows_dropped_total",
			Help: "Rows skipped because they could not be normalized",
		},
		[]string{"profile"},
	)

	Records = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scanner_records",
			Help: "Records in the latest successful scan result",
		},
		[]string{"profile"},
	)

	RefreshCycles = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scanner_refresh_cycles_total",
			Help: "Refresh cycles run, by what made them due",
		},
		[]string{"trigger"},
	)
)

// NewServer returns an HTTP server exposing /metrics on addr.
func NewServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// IsServerClosed reports whether err is the normal result of shutting a server down.
func IsServerClosed(err error) bool {
	return errors.Is(err, http.ErrServerClosed)
}
