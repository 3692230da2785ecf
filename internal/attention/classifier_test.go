package attention

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

func testClassifier() *Classifier {
	return NewClassifier(config.SLAConfig{
		PoolCutoffWarnWindow: 24 * time.Hour,
		UnderwayWarnWindow:   time.Hour,
		ScheduledWarnWindow:  2 * time.Hour,
	})
}

func TestPoolTiers(t *testing.T) {
	classifier := testClassifier()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	deliveryID := uuid.New()

	cases := []struct {
		name string
		pool models.Pool
		want enums.AttentionLevel
	}{
		{
			name: "empty pool past cutoff",
			pool: models.Pool{Status: enums.PoolStatusOpen, TargetDate: now.Add(-time.Hour)},
			want: enums.AttentionCritical,
		},
		{
			name: "cancelled pool",
			pool: models.Pool{Status: enums.PoolStatusCancelled, TargetDate: now.Add(48 * time.Hour)},
			want: enums.AttentionCritical,
		},
		{
			name: "locked without delivery",
			pool: models.Pool{Status: enums.PoolStatusLocked, TargetDate: now.Add(time.Hour)},
			want: enums.AttentionCritical,
		},
		{
			name: "locked with delivery",
			pool: models.Pool{Status: enums.PoolStatusLocked, TargetDate: now.Add(time.Hour), DeliveryID: &deliveryID},
			want: enums.AttentionHealthy,
		},
		{
			name: "open approaching cutoff",
			pool: models.Pool{Status: enums.PoolStatusOpen, TargetDate: now.Add(6 * time.Hour)},
			want: enums.AttentionWarning,
		},
		{
			name: "open far from cutoff",
			pool: models.Pool{Status: enums.PoolStatusOpen, TargetDate: now.Add(72 * time.Hour)},
			want: enums.AttentionHealthy,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.Pool(tc.pool, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestDeliveryTiers(t *testing.T) {
	classifier := testClassifier()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		delivery models.Delivery
		want     enums.AttentionLevel
	}{
		{
			name:     "delayed",
			delivery: models.Delivery{Status: enums.DeliveryStatusDelayed, SLATargetTime: now.Add(12 * time.Hour)},
			want:     enums.AttentionCritical,
		},
		{
			name:     "underway past sla",
			delivery: models.Delivery{Status: enums.DeliveryStatusAtAnchorage, SLATargetTime: now.Add(-time.Minute)},
			want:     enums.AttentionCritical,
		},
		{
			name:     "exception flagged",
			delivery: models.Delivery{Status: enums.DeliveryStatusPreparing, SLATargetTime: now.Add(12 * time.Hour), ExceptionFlagCount: 2},
			want:     enums.AttentionCritical,
		},
		{
			name:     "in transit inside warn window",
			delivery: models.Delivery{Status: enums.DeliveryStatusInTransit, SLATargetTime: now.Add(30 * time.Minute)},
			want:     enums.AttentionWarning,
		},
		{
			name:     "scheduled inside warn window",
			delivery: models.Delivery{Status: enums.DeliveryStatusScheduled, SLATargetTime: now.Add(90 * time.Minute)},
			want:     enums.AttentionWarning,
		},
		{
			name:     "scheduled with slack",
			delivery: models.Delivery{Status: enums.DeliveryStatusScheduled, SLATargetTime: now.Add(8 * time.Hour)},
			want:     enums.AttentionHealthy,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.Delivery(tc.delivery, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestOrderTiers(t *testing.T) {
	classifier := testClassifier()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name  string
		order models.Order
		want  enums.AttentionLevel
	}{
		{
			name:  "disputed",
			order: models.Order{Status: enums.OrderStatusDisputed, PaymentStatus: enums.PaymentStatusPaid},
			want:  enums.AttentionCritical,
		},
		{
			name:  "unpaid and in delivery",
			order: models.Order{Status: enums.OrderStatusInDelivery, PaymentStatus: enums.PaymentStatusUnpaid, Priority: enums.OrderPriorityNormal},
			want:  enums.AttentionCritical,
		},
		{
			name:  "critical priority still moving",
			order: models.Order{Status: enums.OrderStatusPooled, PaymentStatus: enums.PaymentStatusPaid, Priority: enums.OrderPriorityCritical},
			want:  enums.AttentionCritical,
		},
		{
			name:  "urgent priority",
			order: models.Order{Status: enums.OrderStatusPooled, PaymentStatus: enums.PaymentStatusPaid, Priority: enums.OrderPriorityUrgent},
			want:  enums.AttentionWarning,
		},
		{
			name:  "unpaid but still pooled",
			order: models.Order{Status: enums.OrderStatusPooled, PaymentStatus: enums.PaymentStatusUnpaid, Priority: enums.OrderPriorityNormal},
			want:  enums.AttentionWarning,
		},
		{
			name:  "paid and delivered",
			order: models.Order{Status: enums.OrderStatusDelivered, PaymentStatus: enums.PaymentStatusPaid, Priority: enums.OrderPriorityNormal},
			want:  enums.AttentionHealthy,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := classifier.Order(tc.order, now); got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestVendorOrderTiers(t *testing.T) {
	classifier := testClassifier()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)

	lagging := models.VendorOrder{
		Status:            enums.VendorOrderStatusPreparing,
		ExpectedReadyDate: now.Add(6 * time.Hour),
		Items: []models.VendorOrderItem{
			{Quantity: 10, FulfilledQuantity: 2},
		},
	}
	if got := classifier.VendorOrder(lagging, now); got != enums.AttentionWarning {
		t.Fatalf("expected warning for lagging fulfillment, got %s", got)
	}

	overdue := lagging
	overdue.ExpectedReadyDate = now.Add(-time.Hour)
	if got := classifier.VendorOrder(overdue, now); got != enums.AttentionCritical {
		t.Fatalf("expected critical for overdue vendor order, got %s", got)
	}

	shipped := overdue
	shipped.Status = enums.VendorOrderStatusShipped
	if got := classifier.VendorOrder(shipped, now); got != enums.AttentionHealthy {
		t.Fatalf("expected healthy for shipped vendor order, got %s", got)
	}
}

func TestClassifierIsDeterministic(t *testing.T) {
	classifier := testClassifier()
	now := time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)
	pool := models.Pool{Status: enums.PoolStatusOpen, TargetDate: now.Add(3 * time.Hour)}

	first := classifier.Pool(pool, now)
	for i := 0; i < 100; i++ {
		if got := classifier.Pool(pool, now); got != first {
			t.Fatalf("classification drifted from %s to %s on repeat call", first, got)
		}
	}
}

func TestFulfillmentRatio(t *testing.T) {
	empty := models.VendorOrder{}
	if got := FulfillmentRatio(empty); got != 1 {
		t.Fatalf("expected ratio 1 for empty vendor order, got %f", got)
	}

	half := models.VendorOrder{Items: []models.VendorOrderItem{
		{Quantity: 6, FulfilledQuantity: 3},
		{Quantity: 2, FulfilledQuantity: 1},
	}}
	if got := FulfillmentRatio(half); got != 0.5 {
		t.Fatalf("expected ratio 0.5, got %f", got)
	}
}
