package ports

import (
	"time"

	"github.com/sairamandadi/emotion-based-Music-Recommender/internal/core/domain"
)

// Executor runs a job asynchronously. Submit must not block; it returns an
// error when the job cannot be accepted.
type Executor interface {
	Submit(job func()) error
}

// AnalysisRecorder receives pipeline events for metrics.
type AnalysisRecorder interface {
	TriggerAccepted()
	TriggerRejected(kind domain.ErrorKind)
	Outcome(status domain.Status, kind domain.ErrorKind)
	Superseded()
	ClassifyDuration(d time.Duration)
	InFlight(delta int)
}
