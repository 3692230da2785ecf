package enums

import "fmt"

// ExceptionType names the condition that opened an exception.
type ExceptionType string

const (
	ExceptionTypeRefundFailure     ExceptionType = "refund_failure"
	ExceptionTypePoolOverdue       ExceptionType = "pool_overdue"
	ExceptionTypePoolUndersized    ExceptionType = "pool_undersized"
	ExceptionTypeSLABreach         ExceptionType = "sla_breach"
	ExceptionTypeLedgerFailure     ExceptionType = "ledger_failure"
	ExceptionTypeCriticalAttention ExceptionType = "critical_attention"
)

var validExceptionTypes = []ExceptionType{
	ExceptionTypeRefundFailure,
	ExceptionTypePoolOverdue,
	ExceptionTypePoolUndersized,
	ExceptionTypeSLABreach,
	ExceptionTypeLedgerFailure,
	ExceptionTypeCriticalAttention,
}

// String implements fmt.Stringer.
func (t ExceptionType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known ExceptionType.
func (t ExceptionType) IsValid() bool {
	for _, candidate := range validExceptionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseExceptionType converts raw input into an ExceptionType.
func ParseExceptionType(value string) (ExceptionType, error) {
	for _, candidate := range validExceptionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid exception type %q", value)
}
