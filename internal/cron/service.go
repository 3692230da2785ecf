package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/metrics"
)

const defaultResolution = 30 * time.Second

// LockFactory builds the exclusive lease guarding one job's run. Each job
// gets its own lease so a slow escalation poll never starves the cutoff sweep.
type LockFactory func(jobName string) (Lock, error)

// ServiceParams configure the cron service.
type ServiceParams struct {
	Logger     *logger.Logger
	Registry   *Registry
	Locks      LockFactory
	Metrics    *metrics.CronJobMetrics
	Resolution time.Duration
}

// Service executes registered cron jobs, each on its own cadence.
type Service struct {
	logg       *logger.Logger
	registry   *Registry
	locks      LockFactory
	metrics    *metrics.CronJobMetrics
	resolution time.Duration
	nextRun    map[string]time.Time
	now        func() time.Time
}

// NewService builds a cron service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Locks == nil {
		return nil, fmt.Errorf("lock factory required")
	}
	registry := params.Registry
	if registry == nil {
		registry = NewRegistry()
	}
	resolution := params.Resolution
	if resolution <= 0 {
		resolution = defaultResolution
	}
	return &Service{
		logg:       params.Logger,
		registry:   registry,
		locks:      params.Locks,
		metrics:    params.Metrics,
		resolution: resolution,
		nextRun:    make(map[string]time.Time),
		now:        time.Now,
	}, nil
}

// Run starts the cron loop until the context is canceled. Every job runs once
// on startup, then on its own cadence.
func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s.runDue(ctx)
	ticker := time.NewTicker(s.resolution)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "cron service context canceled")
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

func (s *Service) runDue(ctx context.Context) {
	now := s.now()
	for _, job := range s.registry.Jobs() {
		due, ok := s.nextRun[job.Name()]
		if ok && now.Before(due) {
			continue
		}
		s.nextRun[job.Name()] = now.Add(job.Every())
		s.runJob(ctx, job)
	}
}

func (s *Service) runJob(ctx context.Context, job Job) {
	jobCtx := s.logg.WithField(ctx, "job", job.Name())
	jobCtx = s.logg.WithField(jobCtx, "event", "cron.job")

	lock, err := s.locks(job.Name())
	if err != nil {
		s.logg.Error(jobCtx, "building job lock", err)
		return
	}
	locked, err := lock.Acquire(ctx)
	if err != nil {
		s.logg.Error(jobCtx, "acquiring job lock", err)
		return
	}
	if !locked {
		s.logg.Info(jobCtx, "another worker holds this job; skipping")
		return
	}
	defer func() {
		if relErr := lock.Release(ctx); relErr != nil {
			s.logg.Error(jobCtx, "failed to release job lock", relErr)
		}
	}()

	s.logg.Info(jobCtx, "job start")
	start := time.Now()
	err = job.Run(jobCtx)
	duration := time.Since(start)
	s.observeDuration(job.Name(), duration)
	jobCtx = s.logg.WithField(jobCtx, "duration_ms", duration.Milliseconds())
	if err != nil {
		s.logg.Error(jobCtx, "job failed", err)
		s.recordFailure(job.Name())
		return
	}
	s.logg.Info(jobCtx, "job completed")
	s.recordSuccess(job.Name())
}

func (s *Service) observeDuration(job string, duration time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.ObserveDuration(job, duration)
}

func (s *Service) recordSuccess(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncSuccess(job)
}

func (s *Service) recordFailure(job string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncFailure(job)
}
