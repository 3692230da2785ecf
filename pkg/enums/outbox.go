package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateOrder       OutboxAggregateType = "order"
	AggregatePool        OutboxAggregateType = "pool"
	AggregateDelivery    OutboxAggregateType = "delivery"
	AggregateVendorOrder OutboxAggregateType = "vendor_order"
	AggregateLedgerEntry OutboxAggregateType = "ledger_entry"
	AggregateException   OutboxAggregateType = "exception"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateOrder,
	AggregatePool,
	AggregateDelivery,
	AggregateVendorOrder,
	AggregateLedgerEntry,
	AggregateException,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventOrderPooled       OutboxEventType = "order_pooled"
	EventPoolCreated       OutboxEventType = "pool_created"
	EventPoolLocked        OutboxEventType = "pool_locked"
	EventFeesReconciled    OutboxEventType = "fees_reconciled"
	EventRefundSucceeded   OutboxEventType = "refund_succeeded"
	EventRefundFailed      OutboxEventType = "refund_failed"
	EventSLAOverridden     OutboxEventType = "sla_overridden"
	EventExceptionOpened   OutboxEventType = "exception_opened"
	EventExceptionEscalate OutboxEventType = "exception_escalated"
)

var validOutboxEventTypes = []OutboxEventType{
	EventOrderPooled,
	EventPoolCreated,
	EventPoolLocked,
	EventFeesReconciled,
	EventRefundSucceeded,
	EventRefundFailed,
	EventSLAOverridden,
	EventExceptionOpened,
	EventExceptionEscalate,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid outbox event type %q", value)
}
