package ledger

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Metrics is the rolled-up view of a ledger partition. All sums are integer
// minor units; GrossMargin is the only derived ratio and is nil when GMV is
// zero rather than a divide-by-zero.
type Metrics struct {
	GMVMinor          int64            `json:"gmv_minor"`
	RefundsMinor      int64            `json:"refunds_minor"`
	NetRevenueMinor   int64            `json:"net_revenue_minor"`
	PayoutsMinor      int64            `json:"payouts_minor"`
	StripeFeesMinor   int64            `json:"stripe_fees_minor"`
	PlatformFeesMinor int64            `json:"platform_fees_minor"`
	EntryCount        int              `json:"entry_count"`
	GrossMargin       *decimal.Decimal `json:"gross_margin,omitempty"`
}

// Fold aggregates ledger entries into metrics. Pure function over immutable
// entries, safe to call concurrently.
func Fold(entries []models.FinanceLedgerEntry) Metrics {
	var m Metrics
	for _, entry := range entries {
		m.EntryCount++
		switch entry.LedgerType {
		case enums.LedgerEntryTypeCharge:
			if entry.Status == enums.LedgerEntryStatusSucceeded {
				m.GMVMinor += entry.AmountMinor
			}
		case enums.LedgerEntryTypeRefund:
			if entry.Status == enums.LedgerEntryStatusSucceeded {
				m.RefundsMinor += entry.AmountMinor
			}
		case enums.LedgerEntryTypePayout:
			m.PayoutsMinor += entry.AmountMinor
		}
		m.StripeFeesMinor += entry.StripeFeeMinor
		m.PlatformFeesMinor += entry.PlatformFeeMinor
	}
	m.NetRevenueMinor = m.GMVMinor - m.RefundsMinor
	if m.GMVMinor != 0 {
		margin := decimal.New(m.NetRevenueMinor-m.PayoutsMinor-m.StripeFeesMinor-m.PlatformFeesMinor, 0).
			Div(decimal.New(m.GMVMinor, 0)).
			Round(4)
		m.GrossMargin = &margin
	}
	return m
}

// FoldBy groups entries by the provided key and folds each group. Entries
// lacking the key are excluded from the breakdown, never coerced into a
// default bucket.
func FoldBy(entries []models.FinanceLedgerEntry, key func(models.FinanceLedgerEntry) *uuid.UUID) map[uuid.UUID]Metrics {
	groups := make(map[uuid.UUID][]models.FinanceLedgerEntry)
	for _, entry := range entries {
		id := key(entry)
		if id == nil {
			continue
		}
		groups[*id] = append(groups[*id], entry)
	}
	out := make(map[uuid.UUID]Metrics, len(groups))
	for id, group := range groups {
		out[id] = Fold(group)
	}
	return out
}
