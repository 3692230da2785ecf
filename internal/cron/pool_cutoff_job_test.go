package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quayside/quayside-backend/pkg/logger"
)

type fakeSweeper struct {
	calls  int
	lastAt time.Time
	err    error
}

func (f *fakeSweeper) SweepCutoffs(_ context.Context, now time.Time) (int, error) {
	f.calls++
	f.lastAt = now
	return 2, f.err
}

func TestPoolCutoffJobSweeps(t *testing.T) {
	sweeper := &fakeSweeper{}
	jobIface, err := NewPoolCutoffJob(PoolCutoffJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Pooling: sweeper,
		Every:   time.Minute,
	})
	if err != nil {
		t.Fatalf("NewPoolCutoffJob: %v", err)
	}
	job := jobIface.(*poolCutoffJob)
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if sweeper.calls != 1 {
		t.Fatalf("expected one sweep, got %d", sweeper.calls)
	}
	if !sweeper.lastAt.Equal(now) {
		t.Fatalf("expected sweep at %s, got %s", now, sweeper.lastAt)
	}
	if job.Every() != time.Minute {
		t.Fatalf("unexpected cadence %s", job.Every())
	}
}

func TestPoolCutoffJobPropagatesError(t *testing.T) {
	sweeper := &fakeSweeper{err: errors.New("boom")}
	job, err := NewPoolCutoffJob(PoolCutoffJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Pooling: sweeper,
	})
	if err != nil {
		t.Fatalf("NewPoolCutoffJob: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}
