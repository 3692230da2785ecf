package attention

import (
	"time"

	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Classifier derives the ops urgency tier for an entity. Every method is a
// pure function of (entity, now): no clock reads, no persistence, safe to call
// concurrently. Tiers are re-derived on every read and never stored as
// authoritative state.
type Classifier struct {
	poolCutoffWarnWindow time.Duration
	underwayWarnWindow   time.Duration
	scheduledWarnWindow  time.Duration
}

// NewClassifier builds a classifier from the SLA thresholds.
func NewClassifier(cfg config.SLAConfig) *Classifier {
	return &Classifier{
		poolCutoffWarnWindow: cfg.PoolCutoffWarnWindow,
		underwayWarnWindow:   cfg.UnderwayWarnWindow,
		scheduledWarnWindow:  cfg.ScheduledWarnWindow,
	}
}

// Pool grades a pool against its cutoff and lock progress.
func (c *Classifier) Pool(pool models.Pool, now time.Time) enums.AttentionLevel {
	switch {
	case pool.Status == enums.PoolStatusCancelled || pool.Status == enums.PoolStatusFailed:
		return enums.AttentionCritical
	case pool.Status == enums.PoolStatusOpen && now.After(pool.TargetDate):
		return enums.AttentionCritical
	case pool.Status == enums.PoolStatusLocked && pool.DeliveryID == nil:
		return enums.AttentionCritical
	}
	if pool.Status == enums.PoolStatusOpen {
		until := pool.TargetDate.Sub(now)
		if until > 0 && until <= c.poolCutoffWarnWindow {
			return enums.AttentionWarning
		}
	}
	return enums.AttentionHealthy
}

// Delivery grades a delivery run against its SLA target.
func (c *Classifier) Delivery(delivery models.Delivery, now time.Time) enums.AttentionLevel {
	switch {
	case delivery.Status == enums.DeliveryStatusFailed || delivery.Status == enums.DeliveryStatusDelayed:
		return enums.AttentionCritical
	case delivery.Status.IsUnderway() && now.After(delivery.SLATargetTime):
		return enums.AttentionCritical
	case delivery.ExceptionFlagCount > 0:
		return enums.AttentionCritical
	}

	until := delivery.SLATargetTime.Sub(now)
	switch delivery.Status {
	case enums.DeliveryStatusDispatched, enums.DeliveryStatusInTransit:
		if until > 0 && until <= c.underwayWarnWindow {
			return enums.AttentionWarning
		}
	case enums.DeliveryStatusScheduled:
		if until > 0 && until <= c.scheduledWarnWindow {
			return enums.AttentionWarning
		}
	}
	return enums.AttentionHealthy
}

// Order grades a vessel order off priority and payment state relative to how
// far delivery has progressed.
func (c *Classifier) Order(order models.Order, now time.Time) enums.AttentionLevel {
	advanced := order.Status == enums.OrderStatusInDelivery || order.Status == enums.OrderStatusDelivered
	switch {
	case order.Status == enums.OrderStatusDisputed:
		return enums.AttentionCritical
	case order.PaymentStatus == enums.PaymentStatusUnpaid && advanced:
		return enums.AttentionCritical
	case order.Priority == enums.OrderPriorityCritical && !order.Status.IsTerminal():
		return enums.AttentionCritical
	}
	switch {
	case order.Priority == enums.OrderPriorityUrgent && !order.Status.IsTerminal():
		return enums.AttentionWarning
	case order.PaymentStatus == enums.PaymentStatusUnpaid && order.Status == enums.OrderStatusPooled:
		return enums.AttentionWarning
	}
	return enums.AttentionHealthy
}

// VendorOrder grades a vendor split against its expected-ready deadline and
// how much of the quantity has actually been fulfilled.
func (c *Classifier) VendorOrder(vendorOrder models.VendorOrder, now time.Time) enums.AttentionLevel {
	done := vendorOrder.Status == enums.VendorOrderStatusReady || vendorOrder.Status == enums.VendorOrderStatusShipped
	if done {
		return enums.AttentionHealthy
	}
	if now.After(vendorOrder.ExpectedReadyDate) {
		return enums.AttentionCritical
	}
	until := vendorOrder.ExpectedReadyDate.Sub(now)
	if until > 0 && until <= 24*time.Hour && FulfillmentRatio(vendorOrder) < 1 {
		return enums.AttentionWarning
	}
	return enums.AttentionHealthy
}

// FulfillmentRatio is fulfilled quantity over ordered quantity across all
// items. An order with no items counts as fully fulfilled.
func FulfillmentRatio(vendorOrder models.VendorOrder) float64 {
	var ordered, fulfilled int
	for _, item := range vendorOrder.Items {
		ordered += item.Quantity
		fulfilled += item.FulfilledQuantity
	}
	if ordered == 0 {
		return 1
	}
	return float64(fulfilled) / float64(ordered)
}
