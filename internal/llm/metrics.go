package llm

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	modeText   = "text"
	modeVision = "vision"
)

var (
	// genCalls counts provider calls by mode and outcome (ok|error).
	genCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "genai_requests_total",
			Help: "Total number of generative model calls.",
		},
		[]string{"mode", "outcome"},
	)

	// genLat records provider call duration in seconds by mode.
	genLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "genai_request_duration_seconds",
			Help:    "Duration of generative model calls in seconds.",
			Buckets: []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		},
		[]string{"mode"},
	)
)

func init() {
	prometheus.MustRegister(genCalls, genLat)
}

func observe(mode string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	genCalls.WithLabelValues(mode, outcome).Inc()
	genLat.WithLabelValues(mode).Observe(time.Since(start).Seconds())
}
