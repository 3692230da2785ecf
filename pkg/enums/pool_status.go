package enums

import "fmt"

// PoolStatus tracks the lifecycle of a delivery pool.
type PoolStatus string

const (
	PoolStatusOpen       PoolStatus = "open"
	PoolStatusLocked     PoolStatus = "locked"
	PoolStatusInDelivery PoolStatus = "in_delivery"
	PoolStatusDelivered  PoolStatus = "delivered"
	PoolStatusCancelled  PoolStatus = "cancelled"
	PoolStatusFailed     PoolStatus = "failed"
)

var validPoolStatuses = []PoolStatus{
	PoolStatusOpen,
	PoolStatusLocked,
	PoolStatusInDelivery,
	PoolStatusDelivered,
	PoolStatusCancelled,
	PoolStatusFailed,
}

// String implements fmt.Stringer.
func (s PoolStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known PoolStatus.
func (s PoolStatus) IsValid() bool {
	for _, candidate := range validPoolStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status absorbs further transitions.
func (s PoolStatus) IsTerminal() bool {
	return s == PoolStatusDelivered || s == PoolStatusCancelled || s == PoolStatusFailed
}

// ParsePoolStatus converts raw input into a PoolStatus.
func ParsePoolStatus(value string) (PoolStatus, error) {
	for _, candidate := range validPoolStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid pool status %q", value)
}
