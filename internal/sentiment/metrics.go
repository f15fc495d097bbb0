package sentiment

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeTimeout     = "timeout"
	outcomeUnavailable = "unavailable"
)

var (
	// classifications counts Classify calls by outcome.
	classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sentiment_classifications_total",
			Help: "Total number of sentiment classifications by outcome.",
		},
		[]string{"outcome"},
	)

	// classifyDuration records backend latency, failures included.
	classifyDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sentiment_classify_duration_seconds",
			Help:    "Duration of sentiment backend calls in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// modelReady is 1 once the backend passed its startup probe.
	modelReady = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sentiment_model_ready",
			Help: "Whether the sentiment model is loaded (1) or degraded (0).",
		},
	)

	// breakerState mirrors the remote backend's circuit: 0 closed, 1 half-open, 2 open.
	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "sentiment_circuit_breaker_state",
			Help: "Circuit breaker state of the remote sentiment backend.",
		},
		[]string{"name"},
	)
)

func init() {
	prometheus.MustRegister(classifications, classifyDuration, modelReady, breakerState)
}
