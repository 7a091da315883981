package service

import (
	"context"
	"fmt"
	"time"

	"jamef-tracker/internal/core/logger"
	"jamef-tracker/internal/features/jobs/domain"
	"jamef-tracker/internal/features/jobs/ports"
	trackingdomain "jamef-tracker/internal/features/tracking/domain"
	trackingports "jamef-tracker/internal/features/tracking/ports"

	"go.uber.org/zap"
)

// JobService orchestrates asynchronous tracking lookups: it creates a job,
// schedules the fetch in the background and records exactly one terminal
// outcome per job in the registry.
type JobService struct {
	registry     ports.Registry
	fetcher      trackingports.Fetcher
	results      trackingports.ResultCache // optional, may be nil
	retention    time.Duration
	fetchTimeout time.Duration
	logger       *zap.Logger
}

// NewJobService creates a JobService. results may be nil when no result
// cache is configured.
func NewJobService(
	registry ports.Registry,
	fetcher trackingports.Fetcher,
	results trackingports.ResultCache,
	retention time.Duration,
	fetchTimeout time.Duration,
) *JobService {
	return &JobService{
		registry:     registry,
		fetcher:      fetcher,
		results:      results,
		retention:    retention,
		fetchTimeout: fetchTimeout,
		logger:       logger.Get(),
	}
}

// Submit registers a tracking request and returns its job id immediately.
// Eviction of expired jobs runs as a housekeeping step on every submission.
// Submission itself cannot fail: upstream problems only ever surface later,
// through the job's terminal state.
func (s *JobService) Submit(invoice, payerID string) string {
	if evicted := s.registry.EvictExpired(s.retention); evicted > 0 {
		s.logger.Debug("Evicted expired jobs", zap.Int("count", evicted))
	}

	jobID := s.registry.Create()

	go s.run(jobID, invoice, payerID)

	return jobID
}

// Poll returns a snapshot of the job, or domain.ErrJobNotFound when the id
// was never issued or the job has been evicted.
func (s *JobService) Poll(jobID string) (*domain.Job, error) {
	return s.registry.Get(jobID)
}

// run executes the fetch for one job. It always performs exactly one
// terminal write: every failure path, including a panicking fetcher, ends in
// Fail, and the success path ends in Complete.
func (s *JobService) run(jobID, invoice, payerID string) {
	defer func() {
		if rec := recover(); rec != nil {
			s.logger.Error("Fetch panicked",
				zap.String("job_id", jobID),
				zap.String("invoice", invoice),
				zap.Any("panic", rec),
			)
			s.registry.Fail(jobID, fmt.Sprintf("tracking lookup for invoice %s failed: internal error", invoice))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.fetchTimeout)
	defer cancel()

	if cached := s.cachedResult(ctx, invoice, payerID); cached != nil {
		s.logger.Debug("Serving tracking result from cache",
			zap.String("job_id", jobID),
			zap.String("invoice", invoice),
		)
		s.registry.Complete(jobID, cached)
		return
	}

	result, err := s.fetcher.Fetch(ctx, invoice, payerID)
	if err != nil {
		s.logger.Warn("Tracking fetch failed",
			zap.String("job_id", jobID),
			zap.String("invoice", invoice),
			zap.Error(err),
		)
		s.registry.Fail(jobID, fmt.Sprintf("tracking lookup for invoice %s failed: %v", invoice, err))
		return
	}

	s.registry.Complete(jobID, result)
	s.saveResult(invoice, payerID, result)
}

// cachedResult consults the optional result cache. Cache trouble is logged
// and treated as a miss; it must never fail a job.
func (s *JobService) cachedResult(ctx context.Context, invoice, payerID string) *trackingdomain.TrackingResult {
	if s.results == nil {
		return nil
	}

	cached, err := s.results.Get(ctx, invoice, payerID)
	if err != nil {
		s.logger.Warn("Result cache read failed",
			zap.String("invoice", invoice),
			zap.Error(err),
		)
		return nil
	}
	return cached
}

// saveResult writes a completed result into the optional cache on a fresh
// context, so a fetch that consumed its whole budget can still be cached.
func (s *JobService) saveResult(invoice, payerID string, result *trackingdomain.TrackingResult) {
	if s.results == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.results.Save(ctx, payerID, result); err != nil {
		s.logger.Warn("Result cache write failed",
			zap.String("invoice", invoice),
			zap.Error(err),
		)
	}
}
