package enums

import "fmt"

// LockTrigger records which path initiated a pool lock. Both paths share the
// same lease discipline; the trigger is audit metadata only.
type LockTrigger string

const (
	LockTriggerCutoff LockTrigger = "cutoff"
	LockTriggerManual LockTrigger = "manual"
)

var validLockTriggers = []LockTrigger{
	LockTriggerCutoff,
	LockTriggerManual,
}

// String implements fmt.Stringer.
func (t LockTrigger) String() string {
	return string(t)
}

// IsValid reports whether the value is a known LockTrigger.
func (t LockTrigger) IsValid() bool {
	for _, candidate := range validLockTriggers {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLockTrigger converts raw input into a LockTrigger.
func ParseLockTrigger(value string) (LockTrigger, error) {
	for _, candidate := range validLockTriggers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid lock trigger %q", value)
}
