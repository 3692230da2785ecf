package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	"github.com/quayside/quayside-backend/pkg/logger"
)

type fakeStalePools struct {
	pools []models.Pool
}

func (f *fakeStalePools) ListOpenPoolsPastCutoff(context.Context, time.Time) ([]models.Pool, error) {
	return f.pools, nil
}

type fakeBreachedDeliveries struct {
	deliveries []models.Delivery
}

func (f *fakeBreachedDeliveries) ListBreached(context.Context, time.Time, int) ([]models.Delivery, error) {
	return f.deliveries, nil
}

type fakeFailedLedger struct {
	entries []models.FinanceLedgerEntry
}

func (f *fakeFailedLedger) CountFailedSince(context.Context, time.Time) (int64, error) {
	return int64(len(f.entries)), nil
}

func (f *fakeFailedLedger) ListFailedSince(context.Context, time.Time, int) ([]models.FinanceLedgerEntry, error) {
	return f.entries, nil
}

func ref(value string) *string { return &value }

type recordingRaiser struct {
	raised []exceptions.RaiseInput
}

func (r *recordingRaiser) Raise(_ context.Context, input exceptions.RaiseInput) (*models.OpsException, error) {
	r.raised = append(r.raised, input)
	return &models.OpsException{ID: uuid.New()}, nil
}

func newEscalationFixture(t *testing.T, pools *fakeStalePools, deliveries *fakeBreachedDeliveries, entries *fakeFailedLedger) (*escalationJob, *recordingRaiser) {
	t.Helper()
	raiser := &recordingRaiser{}
	jobIface, err := NewEscalationJob(EscalationJobParams{
		Logger:     logger.New(logger.Options{ServiceName: "test"}),
		Pools:      pools,
		Deliveries: deliveries,
		Ledger:     entries,
		Exceptions: raiser,
		Config: config.EscalationConfig{
			PollEvery:             5 * time.Minute,
			CriticalPoolThreshold: 1,
			SLABreachThreshold:    1,
			FailedLedgerThreshold: 2,
			FailedLedgerLookback:  24 * time.Hour,
		},
	})
	if err != nil {
		t.Fatalf("NewEscalationJob: %v", err)
	}
	return jobIface.(*escalationJob), raiser
}

func TestEscalationRaisesForStalePools(t *testing.T) {
	overdue := models.Pool{ID: uuid.New(), Port: "rotterdam", OrderCount: 3}
	undersized := models.Pool{ID: uuid.New(), Port: "rotterdam", OrderCount: 1}
	job, raiser := newEscalationFixture(t,
		&fakeStalePools{pools: []models.Pool{overdue, undersized}},
		&fakeBreachedDeliveries{},
		&fakeFailedLedger{},
	)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(raiser.raised) != 2 {
		t.Fatalf("expected 2 exceptions, got %d", len(raiser.raised))
	}
	if raiser.raised[0].ExceptionType != enums.ExceptionTypePoolOverdue {
		t.Fatalf("expected pool_overdue for the full pool, got %s", raiser.raised[0].ExceptionType)
	}
	if raiser.raised[1].ExceptionType != enums.ExceptionTypePoolUndersized {
		t.Fatalf("expected pool_undersized for the 1-order pool, got %s", raiser.raised[1].ExceptionType)
	}
	for _, raised := range raiser.raised {
		if !raised.AutoGenerated {
			t.Fatal("escalator exceptions must be auto-generated")
		}
		if raised.Severity != enums.ExceptionSeverityCritical {
			t.Fatalf("expected critical severity, got %s", raised.Severity)
		}
	}
}

func TestEscalationRaisesForSLABreaches(t *testing.T) {
	delivery := models.Delivery{
		ID:            uuid.New(),
		Status:        enums.DeliveryStatusInTransit,
		SLATargetTime: time.Now().Add(-2 * time.Hour),
	}
	job, raiser := newEscalationFixture(t,
		&fakeStalePools{},
		&fakeBreachedDeliveries{deliveries: []models.Delivery{delivery}},
		&fakeFailedLedger{},
	)

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(raiser.raised) != 1 {
		t.Fatalf("expected 1 exception, got %d", len(raiser.raised))
	}
	raised := raiser.raised[0]
	if raised.ExceptionType != enums.ExceptionTypeSLABreach || raised.ObjectID != delivery.ID {
		t.Fatalf("unexpected exception %+v", raised)
	}
}

func TestEscalationHonorsFailedLedgerThreshold(t *testing.T) {
	single := &fakeFailedLedger{entries: []models.FinanceLedgerEntry{
		{ID: uuid.New(), LedgerType: enums.LedgerEntryTypeCharge, AmountMinor: 1_000, ProcessorRef: ref("ch_1")},
	}}
	job, raiser := newEscalationFixture(t, &fakeStalePools{}, &fakeBreachedDeliveries{}, single)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(raiser.raised) != 0 {
		t.Fatalf("one failure is below the threshold, got %d exceptions", len(raiser.raised))
	}

	double := &fakeFailedLedger{entries: []models.FinanceLedgerEntry{
		{ID: uuid.New(), LedgerType: enums.LedgerEntryTypeCharge, AmountMinor: 1_000, ProcessorRef: ref("ch_1")},
		{ID: uuid.New(), LedgerType: enums.LedgerEntryTypePayout, AmountMinor: 5_000, ProcessorRef: ref("po_1")},
	}}
	job, raiser = newEscalationFixture(t, &fakeStalePools{}, &fakeBreachedDeliveries{}, double)
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(raiser.raised) != 2 {
		t.Fatalf("expected 2 ledger exceptions past the threshold, got %d", len(raiser.raised))
	}
	if raiser.raised[0].ObjectType != enums.AggregateLedgerEntry {
		t.Fatalf("expected ledger entry object, got %s", raiser.raised[0].ObjectType)
	}
}
