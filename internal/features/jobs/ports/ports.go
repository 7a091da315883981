package ports

import (
	"time"

	"jamef-tracker/internal/features/jobs/domain"
	trackingdomain "jamef-tracker/internal/features/tracking/domain"
)

// Registry defines the secondary port for job state storage. All operations
// are safe for concurrent use; none of them performs I/O.
type Registry interface {
	// Create inserts a new job in the processing state and returns its id.
	// Concurrent creations always yield distinct ids.
	Create() string

	// Get returns a snapshot of the job's current state, or
	// domain.ErrJobNotFound when the id is absent.
	Get(id string) (*domain.Job, error)

	// Complete transitions the job to done with the given result. Callers
	// guarantee a single terminal call per job; a second terminal call on
	// the same job is a programming error.
	Complete(id string, result *trackingdomain.TrackingResult)

	// Fail transitions the job to error with a human-readable message.
	Fail(id string, message string)

	// EvictExpired removes every job older than the retention window and
	// returns how many were dropped. Non-expired jobs are unaffected.
	EvictExpired(retention time.Duration) int
}
