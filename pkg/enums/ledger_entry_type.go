package enums

import "fmt"

// LedgerEntryType classifies a financial ledger entry.
type LedgerEntryType string

const (
	LedgerEntryTypeCharge LedgerEntryType = "charge"
	LedgerEntryTypeRefund LedgerEntryType = "refund"
	LedgerEntryTypePayout LedgerEntryType = "payout"
)

var validLedgerEntryTypes = []LedgerEntryType{
	LedgerEntryTypeCharge,
	LedgerEntryTypeRefund,
	LedgerEntryTypePayout,
}

// String implements fmt.Stringer.
func (t LedgerEntryType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known LedgerEntryType.
func (t LedgerEntryType) IsValid() bool {
	for _, candidate := range validLedgerEntryTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerEntryType converts raw input into a LedgerEntryType.
func ParseLedgerEntryType(value string) (LedgerEntryType, error) {
	for _, candidate := range validLedgerEntryTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger entry type %q", value)
}
