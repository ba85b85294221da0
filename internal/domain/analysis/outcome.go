package analysis

import "github.com/matiasleandrokruk/groundedgrowth/internal/infra/llm"

// OutcomeStatus tags the result of one adapter invocation.
type OutcomeStatus int

const (
	// OutcomeSuccess carries genuine backend content.
	OutcomeSuccess OutcomeStatus = iota + 1
	// OutcomeDegraded carries the backend's own placeholder and the reason it
	// was produced.
	OutcomeDegraded
	// OutcomeFailed carries only a reason; the call was abandoned.
	OutcomeFailed
)

func (s OutcomeStatus) String() string {
	switch s {
	case OutcomeSuccess:
		return "success"
	case OutcomeDegraded:
		return "degraded"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what an Adapter returns. Callers branch on Status only.
type Outcome struct {
	Status  OutcomeStatus
	Content string
	Reason  string
	// Kind is the classified backend error behind a Degraded outcome. Empty
	// for Success and for the unconfigured case.
	Kind llm.ErrorKind
}

// Success wraps genuine backend content.
func Success(content string) Outcome {
	return Outcome{Status: OutcomeSuccess, Content: content}
}

// Degraded wraps a placeholder produced in place of backend content.
func Degraded(content, reason string, kind llm.ErrorKind) Outcome {
	return Outcome{Status: OutcomeDegraded, Content: content, Reason: reason, Kind: kind}
}

// Failed reports an abandoned call.
func Failed(reason string) Outcome {
	return Outcome{Status: OutcomeFailed, Reason: reason}
}

// OK reports whether the outcome holds genuine content.
func (o Outcome) OK() bool { return o.Status == OutcomeSuccess }
