package enums

import "fmt"

// DeliveryStatus tracks the physical progress of a pooled delivery.
type DeliveryStatus string

const (
	DeliveryStatusScheduled   DeliveryStatus = "scheduled"
	DeliveryStatusPreparing   DeliveryStatus = "preparing"
	DeliveryStatusDispatched  DeliveryStatus = "dispatched"
	DeliveryStatusInTransit   DeliveryStatus = "in_transit"
	DeliveryStatusAtAnchorage DeliveryStatus = "at_anchorage"
	DeliveryStatusDelivered   DeliveryStatus = "delivered"
	DeliveryStatusDelayed     DeliveryStatus = "delayed"
	DeliveryStatusFailed      DeliveryStatus = "failed"
	DeliveryStatusCancelled   DeliveryStatus = "cancelled"
)

var validDeliveryStatuses = []DeliveryStatus{
	DeliveryStatusScheduled,
	DeliveryStatusPreparing,
	DeliveryStatusDispatched,
	DeliveryStatusInTransit,
	DeliveryStatusAtAnchorage,
	DeliveryStatusDelivered,
	DeliveryStatusDelayed,
	DeliveryStatusFailed,
	DeliveryStatusCancelled,
}

// String implements fmt.Stringer.
func (s DeliveryStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known DeliveryStatus.
func (s DeliveryStatus) IsValid() bool {
	for _, candidate := range validDeliveryStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsUnderway reports whether the delivery has left the warehouse and is racing its SLA.
func (s DeliveryStatus) IsUnderway() bool {
	return s == DeliveryStatusDispatched || s == DeliveryStatusInTransit || s == DeliveryStatusAtAnchorage
}

// ParseDeliveryStatus converts raw input into a DeliveryStatus.
func ParseDeliveryStatus(value string) (DeliveryStatus, error) {
	for _, candidate := range validDeliveryStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid delivery status %q", value)
}
