package enums

import "fmt"

// ExceptionSeverity ranks an operational exception for triage.
type ExceptionSeverity string

const (
	ExceptionSeverityLow      ExceptionSeverity = "low"
	ExceptionSeverityMedium   ExceptionSeverity = "medium"
	ExceptionSeverityHigh     ExceptionSeverity = "high"
	ExceptionSeverityCritical ExceptionSeverity = "critical"
)

var validExceptionSeverities = []ExceptionSeverity{
	ExceptionSeverityLow,
	ExceptionSeverityMedium,
	ExceptionSeverityHigh,
	ExceptionSeverityCritical,
}

// String implements fmt.Stringer.
func (s ExceptionSeverity) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ExceptionSeverity.
func (s ExceptionSeverity) IsValid() bool {
	for _, candidate := range validExceptionSeverities {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseExceptionSeverity converts raw input into an ExceptionSeverity.
func ParseExceptionSeverity(value string) (ExceptionSeverity, error) {
	for _, candidate := range validExceptionSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid exception severity %q", value)
}
