package adapters

import (
	"sync"
	"time"

	"jamef-tracker/internal/features/jobs/domain"
	trackingdomain "jamef-tracker/internal/features/tracking/domain"

	"github.com/google/uuid"
)

// MemoryRegistry implements ports.Registry with a mutex-guarded map.
// Jobs live only in process memory and disappear on restart; a single lock
// is enough because every operation is a short map access with no I/O.
type MemoryRegistry struct {
	mu   sync.Mutex
	jobs map[string]*domain.Job

	// now is swappable for tests.
	now func() time.Time
}

// NewMemoryRegistry creates an empty in-memory job registry.
func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{
		jobs: make(map[string]*domain.Job),
		now:  time.Now,
	}
}

// Create inserts a new processing job and returns its id.
func (r *MemoryRegistry) Create() string {
	id := uuid.NewString()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.jobs[id] = &domain.Job{
		ID:        id,
		Status:    domain.StatusProcessing,
		CreatedAt: r.now(),
	}

	return id
}

// Get returns a snapshot of the job, or domain.ErrJobNotFound.
func (r *MemoryRegistry) Get(id string) (*domain.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return nil, domain.ErrJobNotFound
	}

	// Copy so callers never observe a half-applied mutation.
	snapshot := *job
	return &snapshot, nil
}

// Complete transitions the job to done with the given result.
func (r *MemoryRegistry) Complete(id string, result *trackingdomain.TrackingResult) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		// The job was evicted while its fetch was still running; the
		// result is simply forgotten.
		return
	}

	job.Status = domain.StatusDone
	job.Result = result
	job.Error = ""
}

// Fail transitions the job to error with a human-readable message.
func (r *MemoryRegistry) Fail(id string, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	job, ok := r.jobs[id]
	if !ok {
		return
	}

	job.Status = domain.StatusError
	job.Error = message
	job.Result = nil
}

// EvictExpired removes every job older than the retention window.
func (r *MemoryRegistry) EvictExpired(retention time.Duration) int {
	cutoff := r.now().Add(-retention)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, job := range r.jobs {
		if job.CreatedAt.Before(cutoff) {
			delete(r.jobs, id)
			evicted++
		}
	}

	return evicted
}

// Len returns the number of live jobs. Used by eviction logging.
func (r *MemoryRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.jobs)
}
