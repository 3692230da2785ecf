package controllers

import (
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// View structs keep the wire shape stable while the gorm models evolve.

type orderView struct {
	ID                          uuid.UUID            `json:"id"`
	VesselID                    uuid.UUID            `json:"vessel_id"`
	Port                        string               `json:"port"`
	ETAWindowStart              time.Time            `json:"eta_window_start"`
	ETAWindowEnd                time.Time            `json:"eta_window_end"`
	Status                      enums.OrderStatus    `json:"status"`
	Priority                    enums.OrderPriority  `json:"priority"`
	PaymentStatus               enums.PaymentStatus  `json:"payment_status"`
	PoolID                      *uuid.UUID           `json:"pool_id,omitempty"`
	SubtotalCents               int64                `json:"subtotal_cents"`
	DeliveryFeeProvisionalCents int64                `json:"delivery_fee_provisional_cents"`
	DeliveryFeeFinalCents       *int64               `json:"delivery_fee_final_cents,omitempty"`
	RefundAmountCents           int64                `json:"refund_amount_cents"`
	Attention                   enums.AttentionLevel `json:"attention,omitempty"`
	CreatedAt                   time.Time            `json:"created_at"`
}

func newOrderView(order models.Order, attention enums.AttentionLevel) orderView {
	return orderView{
		ID:                          order.ID,
		VesselID:                    order.VesselID,
		Port:                        order.Port,
		ETAWindowStart:              order.ETAWindowStart,
		ETAWindowEnd:                order.ETAWindowEnd,
		Status:                      order.Status,
		Priority:                    order.Priority,
		PaymentStatus:               order.PaymentStatus,
		PoolID:                      order.PoolID,
		SubtotalCents:               order.SubtotalCents,
		DeliveryFeeProvisionalCents: order.DeliveryFeeProvisionalCents,
		DeliveryFeeFinalCents:       order.DeliveryFeeFinalCents,
		RefundAmountCents:           order.RefundAmountCents,
		Attention:                   attention,
		CreatedAt:                   order.CreatedAt,
	}
}

type poolView struct {
	ID               uuid.UUID            `json:"id"`
	Port             string               `json:"port"`
	TargetDate       string               `json:"target_date"`
	Status           enums.PoolStatus     `json:"status"`
	OrderCount       int                  `json:"order_count"`
	TotalValueCents  int64                `json:"total_value_cents"`
	DeliveryID       *uuid.UUID           `json:"delivery_id,omitempty"`
	LockTrigger      *enums.LockTrigger   `json:"lock_trigger,omitempty"`
	LockedAt         *time.Time           `json:"locked_at,omitempty"`
	FeesReconciledAt *time.Time           `json:"fees_reconciled_at,omitempty"`
	Attention        enums.AttentionLevel `json:"attention,omitempty"`
	CreatedAt        time.Time            `json:"created_at"`
}

func newPoolView(pool models.Pool, attention enums.AttentionLevel) poolView {
	return poolView{
		ID:               pool.ID,
		Port:             pool.Port,
		TargetDate:       pool.TargetDate.UTC().Format("2006-01-02"),
		Status:           pool.Status,
		OrderCount:       pool.OrderCount,
		TotalValueCents:  pool.TotalValueCents,
		DeliveryID:       pool.DeliveryID,
		LockTrigger:      pool.LockTrigger,
		LockedAt:         pool.LockedAt,
		FeesReconciledAt: pool.FeesReconciledAt,
		Attention:        attention,
		CreatedAt:        pool.CreatedAt,
	}
}

type deliveryView struct {
	ID                 uuid.UUID            `json:"id"`
	PoolID             uuid.UUID            `json:"pool_id"`
	Status             enums.DeliveryStatus `json:"status"`
	ScheduledDate      string               `json:"scheduled_date"`
	SLATargetTime      time.Time            `json:"sla_target_time"`
	DeliveredAt        *time.Time           `json:"delivered_at,omitempty"`
	SLAVarianceMinutes *int                 `json:"sla_variance_minutes,omitempty"`
	DeliveryFeeCents   int64                `json:"delivery_fee_cents"`
	ExceptionFlagCount int                  `json:"exception_flag_count"`
	Attention          enums.AttentionLevel `json:"attention,omitempty"`
}

func newDeliveryView(delivery models.Delivery, attention enums.AttentionLevel) deliveryView {
	return deliveryView{
		ID:                 delivery.ID,
		PoolID:             delivery.PoolID,
		Status:             delivery.Status,
		ScheduledDate:      delivery.ScheduledDate.UTC().Format("2006-01-02"),
		SLATargetTime:      delivery.SLATargetTime,
		DeliveredAt:        delivery.DeliveredAt,
		SLAVarianceMinutes: delivery.SLAVarianceMinutes,
		DeliveryFeeCents:   delivery.DeliveryFeeCents,
		ExceptionFlagCount: delivery.ExceptionFlagCount,
		Attention:          attention,
	}
}

type exceptionView struct {
	ID              uuid.UUID                 `json:"id"`
	ExceptionType   enums.ExceptionType       `json:"exception_type"`
	Severity        enums.ExceptionSeverity   `json:"severity"`
	Status          enums.ExceptionStatus     `json:"status"`
	ObjectType      enums.OutboxAggregateType `json:"object_type"`
	ObjectID        uuid.UUID                 `json:"object_id"`
	Summary         string                    `json:"summary"`
	AutoGenerated   bool                      `json:"auto_generated"`
	EscalationCount int                       `json:"escalation_count"`
	DetectedAt      time.Time                 `json:"detected_at"`
	ResolvedAt      *time.Time                `json:"resolved_at,omitempty"`
}

func newExceptionView(exception models.OpsException) exceptionView {
	return exceptionView{
		ID:              exception.ID,
		ExceptionType:   exception.ExceptionType,
		Severity:        exception.Severity,
		Status:          exception.Status,
		ObjectType:      exception.ObjectType,
		ObjectID:        exception.ObjectID,
		Summary:         exception.Summary,
		AutoGenerated:   exception.AutoGenerated,
		EscalationCount: exception.EscalationCount,
		DetectedAt:      exception.DetectedAt,
		ResolvedAt:      exception.ResolvedAt,
	}
}

type ledgerEntryView struct {
	ID               uuid.UUID               `json:"id"`
	LedgerType       enums.LedgerEntryType   `json:"ledger_type"`
	Status           enums.LedgerEntryStatus `json:"status"`
	AmountMinor      int64                   `json:"amount_minor"`
	Currency         string                  `json:"currency"`
	OccurredAt       time.Time               `json:"occurred_at"`
	OrderID          *uuid.UUID              `json:"order_id,omitempty"`
	VendorID         *uuid.UUID              `json:"vendor_id,omitempty"`
	VesselID         *uuid.UUID              `json:"vessel_id,omitempty"`
	ProcessorRef     *string                 `json:"processor_ref,omitempty"`
	StripeFeeMinor   int64                   `json:"stripe_fee_minor"`
	PlatformFeeMinor int64                   `json:"platform_fee_minor"`
}

func newLedgerEntryView(entry models.FinanceLedgerEntry) ledgerEntryView {
	return ledgerEntryView{
		ID:               entry.ID,
		LedgerType:       entry.LedgerType,
		Status:           entry.Status,
		AmountMinor:      entry.AmountMinor,
		Currency:         entry.Currency,
		OccurredAt:       entry.OccurredAt,
		OrderID:          entry.OrderID,
		VendorID:         entry.VendorID,
		VesselID:         entry.VesselID,
		ProcessorRef:     entry.ProcessorRef,
		StripeFeeMinor:   entry.StripeFeeMinor,
		PlatformFeeMinor: entry.PlatformFeeMinor,
	}
}
