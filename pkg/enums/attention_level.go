package enums

import "fmt"

// AttentionLevel is the derived ops urgency tier. It is computed on read and
// never persisted as authoritative state.
type AttentionLevel string

const (
	AttentionHealthy  AttentionLevel = "healthy"
	AttentionWarning  AttentionLevel = "warning"
	AttentionCritical AttentionLevel = "critical"
)

var validAttentionLevels = []AttentionLevel{
	AttentionHealthy,
	AttentionWarning,
	AttentionCritical,
}

// String implements fmt.Stringer.
func (l AttentionLevel) String() string {
	return string(l)
}

// IsValid reports whether the value is a known AttentionLevel.
func (l AttentionLevel) IsValid() bool {
	for _, candidate := range validAttentionLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseAttentionLevel converts raw input into an AttentionLevel.
func ParseAttentionLevel(value string) (AttentionLevel, error) {
	for _, candidate := range validAttentionLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid attention level %q", value)
}
