// Package metrics exposes Prometheus counters for journal analyses.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "groundedgrowth"

// Analysis implements analysis.Observer on a Prometheus registry.
type Analysis struct {
	analyses *prometheus.CounterVec
	attempts *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewAnalysis registers the analysis collectors on reg.
func NewAnalysis(reg prometheus.Registerer) *Analysis {
	f := promauto.With(reg)
	return &Analysis{
		analyses: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analysis_total",
			Help:      "Completed analyses by the tier that produced the content.",
		}, []string{"provider_used"}),
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_attempts_total",
			Help:      "Backend invocations by outcome.",
		}, []string{"provider", "outcome"}),
		errors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Classified backend errors.",
		}, []string{"provider", "kind"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "analysis_duration_seconds",
			Help:      "Wall time of one analysis including every attempt.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}),
	}
}

func (m *Analysis) ObserveAnalysis(providerUsed string, elapsed time.Duration) {
	m.analyses.WithLabelValues(providerUsed).Inc()
	m.duration.Observe(elapsed.Seconds())
}

func (m *Analysis) ObserveAttempt(provider, outcome string) {
	m.attempts.WithLabelValues(provider, outcome).Inc()
}

func (m *Analysis) ObserveBackendError(provider, kind string) {
	m.errors.WithLabelValues(provider, kind).Inc()
}
