package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quayside/quayside-backend/pkg/logger"
)

type fakeLock struct {
	acquired bool
	held     bool
}

func (f *fakeLock) Acquire(context.Context) (bool, error) {
	if f.held || f.acquired {
		return false, nil
	}
	f.acquired = true
	return true, nil
}

func (f *fakeLock) Release(context.Context) error { f.acquired = false; return nil }

type testJob struct {
	name  string
	every time.Duration
	err   error
	runs  int
}

func (t *testJob) Name() string         { return t.name }
func (t *testJob) Every() time.Duration { return t.every }

func (t *testJob) Run(context.Context) error {
	t.runs++
	return t.err
}

func newTestCronService(t *testing.T, registry *Registry, locks LockFactory) *Service {
	t.Helper()
	if locks == nil {
		locks = func(string) (Lock, error) { return &fakeLock{}, nil }
	}
	service, err := NewService(ServiceParams{
		Logger:   logger.New(logger.Options{ServiceName: "cron-test"}),
		Registry: registry,
		Locks:    locks,
	})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return service
}

func TestServiceRunsAllDueJobsEvenOnFailure(t *testing.T) {
	success := &testJob{name: "success", every: time.Minute}
	failure := &testJob{name: "fail", every: time.Minute, err: errors.New("boom")}
	service := newTestCronService(t, NewRegistry(success, failure), nil)

	service.runDue(context.Background())
	if success.runs != 1 {
		t.Fatalf("expected success job to run once, ran %d", success.runs)
	}
	if failure.runs != 1 {
		t.Fatalf("expected failure job to run once, ran %d", failure.runs)
	}
}

func TestServiceHonorsPerJobCadence(t *testing.T) {
	fast := &testJob{name: "fast", every: time.Minute}
	slow := &testJob{name: "slow", every: time.Hour}
	service := newTestCronService(t, NewRegistry(fast, slow), nil)

	base := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)
	clock := base
	service.now = func() time.Time { return clock }

	service.runDue(context.Background())
	clock = base.Add(2 * time.Minute)
	service.runDue(context.Background())

	if fast.runs != 2 {
		t.Fatalf("expected fast job to run twice, ran %d", fast.runs)
	}
	if slow.runs != 1 {
		t.Fatalf("expected slow job to wait its cadence, ran %d", slow.runs)
	}
}

func TestServiceSkipsJobWhenLockHeld(t *testing.T) {
	job := &testJob{name: "guarded", every: time.Minute}
	locks := func(string) (Lock, error) { return &fakeLock{held: true}, nil }
	service := newTestCronService(t, NewRegistry(job), locks)

	service.runDue(context.Background())
	if job.runs != 0 {
		t.Fatalf("expected job skipped while lock held, ran %d", job.runs)
	}
}
