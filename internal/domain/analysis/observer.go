package analysis

import "time"

// Observer receives counters for every analysis and backend attempt.
// internal/metrics provides the Prometheus implementation.
type Observer interface {
	ObserveAnalysis(providerUsed string, elapsed time.Duration)
	ObserveAttempt(provider, outcome string)
	ObserveBackendError(provider, kind string)
}

type nopObserver struct{}

func (nopObserver) ObserveAnalysis(string, time.Duration) {}
func (nopObserver) ObserveAttempt(string, string)         {}
func (nopObserver) ObserveBackendError(string, string)    {}
