package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/quayside/quayside-backend/pkg/logger"
)

const defaultCutoffSweepEvery = time.Minute

type poolSweeper interface {
	SweepCutoffs(ctx context.Context, now time.Time) (int, error)
}

// PoolCutoffJobParams configure the cutoff sweep.
type PoolCutoffJobParams struct {
	Logger  *logger.Logger
	Pooling poolSweeper
	Every   time.Duration
}

// NewPoolCutoffJob builds the job that locks pools whose target date has
// passed. The sweep is the safety net behind the event-driven lock path, so
// it runs on a tight cadence.
func NewPoolCutoffJob(params PoolCutoffJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pooling == nil {
		return nil, fmt.Errorf("pooling service required")
	}
	every := params.Every
	if every <= 0 {
		every = defaultCutoffSweepEvery
	}
	return &poolCutoffJob{
		logg:    params.Logger,
		pooling: params.Pooling,
		every:   every,
		now:     time.Now,
	}, nil
}

type poolCutoffJob struct {
	logg    *logger.Logger
	pooling poolSweeper
	every   time.Duration
	now     func() time.Time
}

func (j *poolCutoffJob) Name() string         { return "pool-cutoff-sweep" }
func (j *poolCutoffJob) Every() time.Duration { return j.every }

func (j *poolCutoffJob) Run(ctx context.Context) error {
	locked, err := j.pooling.SweepCutoffs(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("cutoff sweep: %w", err)
	}
	logCtx := j.logg.WithField(ctx, "pools_locked", locked)
	j.logg.Info(logCtx, "cutoff sweep complete")
	return nil
}
