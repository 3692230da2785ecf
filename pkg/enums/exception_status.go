package enums

import "fmt"

// ExceptionStatus tracks the ops triage lifecycle of an exception.
type ExceptionStatus string

const (
	ExceptionStatusOpen          ExceptionStatus = "open"
	ExceptionStatusAcknowledged  ExceptionStatus = "acknowledged"
	ExceptionStatusInvestigating ExceptionStatus = "investigating"
	ExceptionStatusResolved      ExceptionStatus = "resolved"
	ExceptionStatusClosed        ExceptionStatus = "closed"
)

var validExceptionStatuses = []ExceptionStatus{
	ExceptionStatusOpen,
	ExceptionStatusAcknowledged,
	ExceptionStatusInvestigating,
	ExceptionStatusResolved,
	ExceptionStatusClosed,
}

// exceptionStatusOrder maps each status to its position in the triage pipeline.
var exceptionStatusOrder = map[ExceptionStatus]int{
	ExceptionStatusOpen:          0,
	ExceptionStatusAcknowledged:  1,
	ExceptionStatusInvestigating: 2,
	ExceptionStatusResolved:      3,
	ExceptionStatusClosed:        4,
}

// String implements fmt.Stringer.
func (s ExceptionStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ExceptionStatus.
func (s ExceptionStatus) IsValid() bool {
	for _, candidate := range validExceptionStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the triage pipeline allows moving to target.
// Transitions only move forward; closed is absorbing.
func (s ExceptionStatus) CanTransitionTo(target ExceptionStatus) bool {
	from, ok := exceptionStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := exceptionStatusOrder[target]
	if !ok {
		return false
	}
	return to == from+1
}

// ParseExceptionStatus converts raw input into an ExceptionStatus.
func ParseExceptionStatus(value string) (ExceptionStatus, error) {
	for _, candidate := range validExceptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid exception status %q", value)
}
