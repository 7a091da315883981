package domain

import (
	"errors"
	"time"

	trackingdomain "jamef-tracker/internal/features/tracking/domain"
)

// Status is the observable lifecycle state of a job.
type Status string

const (
	// StatusProcessing is the initial state: the fetch is still running.
	StatusProcessing Status = "processing"
	// StatusDone is terminal: Result carries the tracking outcome.
	StatusDone Status = "done"
	// StatusError is terminal: Error carries a human-readable message.
	StatusError Status = "error"
)

// ErrJobNotFound is returned when a job id is unknown to the registry,
// either because it was never issued or because eviction removed it.
// Callers cannot distinguish the two cases; that ambiguity is deliberate.
var ErrJobNotFound = errors.New("job not found or expired")

// Job is one unit of deferred tracking work and its outcome. Instances are
// owned by the registry; everything else sees snapshots.
type Job struct {
	// ID is the opaque identifier handed back to the submitting client.
	ID string `json:"job_id"`
	// Status is the lifecycle state. Terminal states are never left.
	Status Status `json:"status"`
	// Result is present iff Status is done.
	Result *trackingdomain.TrackingResult `json:"result,omitempty"`
	// Error is present iff Status is error.
	Error string `json:"error,omitempty"`
	// CreatedAt drives time-based eviction only.
	CreatedAt time.Time `json:"-"`
}
