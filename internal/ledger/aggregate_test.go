package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

func entry(ledgerType enums.LedgerEntryType, status enums.LedgerEntryStatus, amount int64) models.FinanceLedgerEntry {
	return models.FinanceLedgerEntry{
		ID:         uuid.New(),
		LedgerType: ledgerType,
		Status:     status,
		AmountMinor: amount,
		OccurredAt: time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestFoldComputesCoreMetrics(t *testing.T) {
	entries := []models.FinanceLedgerEntry{
		entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusSucceeded, 10_000),
		entry(enums.LedgerEntryTypeRefund, enums.LedgerEntryStatusSucceeded, 2_000),
	}

	m := Fold(entries)
	if m.GMVMinor != 10_000 || m.RefundsMinor != 2_000 || m.NetRevenueMinor != 8_000 {
		t.Fatalf("unexpected metrics %+v", m)
	}
}

func TestFoldIgnoresUnsettledMoney(t *testing.T) {
	entries := []models.FinanceLedgerEntry{
		entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusSucceeded, 10_000),
		entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusPending, 5_000),
		entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusFailed, 7_000),
		entry(enums.LedgerEntryTypeRefund, enums.LedgerEntryStatusPending, 1_000),
	}

	m := Fold(entries)
	if m.GMVMinor != 10_000 {
		t.Fatalf("expected GMV 10000, got %d", m.GMVMinor)
	}
	if m.RefundsMinor != 0 {
		t.Fatalf("expected refunds 0, got %d", m.RefundsMinor)
	}
	if m.EntryCount != 4 {
		t.Fatalf("expected 4 entries counted, got %d", m.EntryCount)
	}
}

func TestFoldGrossMargin(t *testing.T) {
	charge := entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusSucceeded, 10_000)
	charge.StripeFeeMinor = 300
	charge.PlatformFeeMinor = 200
	entries := []models.FinanceLedgerEntry{
		charge,
		entry(enums.LedgerEntryTypeRefund, enums.LedgerEntryStatusSucceeded, 2_000),
		entry(enums.LedgerEntryTypePayout, enums.LedgerEntryStatusSucceeded, 5_000),
	}

	m := Fold(entries)
	if m.GrossMargin == nil {
		t.Fatal("expected gross margin to be computed")
	}
	// (8000 - 5000 - 300 - 200) / 10000 = 0.25
	if !m.GrossMargin.Equal(decimal.NewFromFloat(0.25)) {
		t.Fatalf("expected margin 0.25, got %s", m.GrossMargin)
	}
}

func TestFoldGrossMarginNilOnZeroGMV(t *testing.T) {
	entries := []models.FinanceLedgerEntry{
		entry(enums.LedgerEntryTypeRefund, enums.LedgerEntryStatusSucceeded, 2_000),
	}
	if m := Fold(entries); m.GrossMargin != nil {
		t.Fatalf("expected nil margin with zero GMV, got %s", m.GrossMargin)
	}
	if m := Fold(nil); m.GrossMargin != nil || m.EntryCount != 0 {
		t.Fatal("expected empty fold to be zero-valued")
	}
}

func TestFoldByExcludesEntriesWithoutKey(t *testing.T) {
	vendorA := uuid.New()
	vendorB := uuid.New()

	withVendor := func(e models.FinanceLedgerEntry, id uuid.UUID) models.FinanceLedgerEntry {
		e.VendorID = &id
		return e
	}
	entries := []models.FinanceLedgerEntry{
		withVendor(entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusSucceeded, 4_000), vendorA),
		withVendor(entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusSucceeded, 6_000), vendorB),
		entry(enums.LedgerEntryTypeCharge, enums.LedgerEntryStatusSucceeded, 99_000),
	}

	byVendor := FoldBy(entries, func(e models.FinanceLedgerEntry) *uuid.UUID { return e.VendorID })
	if len(byVendor) != 2 {
		t.Fatalf("expected 2 vendor buckets, got %d", len(byVendor))
	}
	if byVendor[vendorA].GMVMinor != 4_000 || byVendor[vendorB].GMVMinor != 6_000 {
		t.Fatalf("unexpected vendor breakdown %+v", byVendor)
	}

	var total int64
	for _, m := range byVendor {
		total += m.GMVMinor
	}
	if total == 109_000 {
		t.Fatal("keyless entry leaked into the breakdown")
	}
}
