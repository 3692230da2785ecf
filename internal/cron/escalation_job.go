package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/money"
)

const escalationScanLimit = 100

type stalePoolReader interface {
	ListOpenPoolsPastCutoff(ctx context.Context, now time.Time) ([]models.Pool, error)
}

type breachedDeliveryReader interface {
	ListBreached(ctx context.Context, now time.Time, limit int) ([]models.Delivery, error)
}

type failedLedgerReader interface {
	CountFailedSince(ctx context.Context, since time.Time) (int64, error)
	ListFailedSince(ctx context.Context, since time.Time, limit int) ([]models.FinanceLedgerEntry, error)
}

type exceptionRaiser interface {
	Raise(ctx context.Context, input exceptions.RaiseInput) (*models.OpsException, error)
}

// EscalationJobParams configure the threshold watcher.
type EscalationJobParams struct {
	Logger     *logger.Logger
	Pools      stalePoolReader
	Deliveries breachedDeliveryReader
	Ledger     failedLedgerReader
	Exceptions exceptionRaiser
	Config     config.EscalationConfig
}

// NewEscalationJob builds the job that opens auto-generated exceptions when
// watched counts cross their thresholds. Raise deduplicates per object, so
// re-running the poll escalates open exceptions instead of duplicating them.
func NewEscalationJob(params EscalationJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Pools == nil {
		return nil, fmt.Errorf("pool reader required")
	}
	if params.Deliveries == nil {
		return nil, fmt.Errorf("delivery reader required")
	}
	if params.Ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	if params.Exceptions == nil {
		return nil, fmt.Errorf("exception service required")
	}
	if params.Config.PollEvery <= 0 {
		return nil, fmt.Errorf("poll cadence must be positive")
	}
	return &escalationJob{
		logg:       params.Logger,
		pools:      params.Pools,
		deliveries: params.Deliveries,
		ledger:     params.Ledger,
		exceptions: params.Exceptions,
		cfg:        params.Config,
		now:        time.Now,
	}, nil
}

type escalationJob struct {
	logg       *logger.Logger
	pools      stalePoolReader
	deliveries breachedDeliveryReader
	ledger     failedLedgerReader
	exceptions exceptionRaiser
	cfg        config.EscalationConfig
	now        func() time.Time
}

func (j *escalationJob) Name() string         { return "exception-escalation" }
func (j *escalationJob) Every() time.Duration { return j.cfg.PollEvery }

func (j *escalationJob) Run(ctx context.Context) error {
	now := j.now().UTC()
	var errs error
	errs = multierr.Append(errs, j.escalateStalePools(ctx, now))
	errs = multierr.Append(errs, j.escalateSLABreaches(ctx, now))
	errs = multierr.Append(errs, j.escalateFailedLedger(ctx, now))
	return errs
}

func (j *escalationJob) escalateStalePools(ctx context.Context, now time.Time) error {
	pools, err := j.pools.ListOpenPoolsPastCutoff(ctx, now)
	if err != nil {
		return fmt.Errorf("list stale pools: %w", err)
	}
	if len(pools) < j.cfg.CriticalPoolThreshold {
		return nil
	}
	var errs error
	for _, pool := range pools {
		exceptionType := enums.ExceptionTypePoolOverdue
		summary := fmt.Sprintf("pool for %s is open past its %s cutoff with %d orders",
			pool.Port, pool.TargetDate.Format("2006-01-02"), pool.OrderCount)
		if pool.OrderCount < 2 {
			exceptionType = enums.ExceptionTypePoolUndersized
		}
		_, err := j.exceptions.Raise(ctx, exceptions.RaiseInput{
			ExceptionType: exceptionType,
			Severity:      enums.ExceptionSeverityCritical,
			ObjectType:    enums.AggregatePool,
			ObjectID:      pool.ID,
			Summary:       summary,
			AutoGenerated: true,
		})
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (j *escalationJob) escalateSLABreaches(ctx context.Context, now time.Time) error {
	breached, err := j.deliveries.ListBreached(ctx, now, escalationScanLimit)
	if err != nil {
		return fmt.Errorf("list breached deliveries: %w", err)
	}
	if len(breached) < j.cfg.SLABreachThreshold {
		return nil
	}
	var errs error
	for _, delivery := range breached {
		_, err := j.exceptions.Raise(ctx, exceptions.RaiseInput{
			ExceptionType: enums.ExceptionTypeSLABreach,
			Severity:      enums.ExceptionSeverityCritical,
			ObjectType:    enums.AggregateDelivery,
			ObjectID:      delivery.ID,
			Summary: fmt.Sprintf("delivery is %s past its %s SLA target",
				now.Sub(delivery.SLATargetTime).Round(time.Minute), delivery.SLATargetTime.Format(time.RFC3339)),
			AutoGenerated: true,
		})
		errs = multierr.Append(errs, err)
	}
	return errs
}

func (j *escalationJob) escalateFailedLedger(ctx context.Context, now time.Time) error {
	since := now.Add(-j.cfg.FailedLedgerLookback)
	count, err := j.ledger.CountFailedSince(ctx, since)
	if err != nil {
		return fmt.Errorf("count failed ledger entries: %w", err)
	}
	if count < int64(j.cfg.FailedLedgerThreshold) {
		return nil
	}
	entries, err := j.ledger.ListFailedSince(ctx, since, escalationScanLimit)
	if err != nil {
		return fmt.Errorf("list failed ledger entries: %w", err)
	}
	var errs error
	for _, entry := range entries {
		ref := ""
		if entry.ProcessorRef != nil {
			ref = *entry.ProcessorRef
		}
		_, err := j.exceptions.Raise(ctx, exceptions.RaiseInput{
			ExceptionType: enums.ExceptionTypeLedgerFailure,
			Severity:      enums.ExceptionSeverityHigh,
			ObjectType:    enums.AggregateLedgerEntry,
			ObjectID:      entry.ID,
			Summary: fmt.Sprintf("%s of %s failed at the payment processor (ref %s)",
				entry.LedgerType, money.FormatCents(entry.AmountMinor), ref),
			AutoGenerated: true,
		})
		errs = multierr.Append(errs, err)
	}
	return errs
}
