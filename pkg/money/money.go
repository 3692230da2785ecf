package money

import "github.com/shopspring/decimal"

// Amounts are stored as integer minor units (cents). Decimal conversion only
// happens at presentation boundaries such as reports and CSV exports.

// FromCents converts integer minor units to a decimal major-unit amount.
func FromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// FormatCents renders minor units as a fixed two-decimal string, e.g. "1234.50".
func FormatCents(cents int64) string {
	return FromCents(cents).StringFixed(2)
}

// SplitEvenly divides total cents across n recipients. The remainder cents go
// to the first positions so the parts always sum to the total.
func SplitEvenly(totalCents int64, n int) []int64 {
	if n <= 0 {
		return nil
	}
	base := totalCents / int64(n)
	remainder := totalCents % int64(n)
	parts := make([]int64, n)
	for i := range parts {
		parts[i] = base
		if int64(i) < remainder {
			parts[i]++
		}
	}
	return parts
}
