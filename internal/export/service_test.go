package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

type stubExportRepo struct {
	orders  []models.Order
	pools   []models.Pool
	entries []models.FinanceLedgerEntry
}

func (s *stubExportRepo) ListOrders(context.Context, Filter) ([]models.Order, error) {
	return s.orders, nil
}

func (s *stubExportRepo) ListPools(context.Context, Filter) ([]models.Pool, error) {
	return s.pools, nil
}

func (s *stubExportRepo) ListDeliveries(context.Context, Filter) ([]models.Delivery, error) {
	return nil, nil
}

func (s *stubExportRepo) ListVendorOrders(context.Context, Filter) ([]models.VendorOrder, error) {
	return nil, nil
}

func (s *stubExportRepo) ListLedgerEntries(context.Context, Filter) ([]models.FinanceLedgerEntry, error) {
	return s.entries, nil
}

func TestWriteCSVOrdersFormatsMoneyFromMinorUnits(t *testing.T) {
	final := int64(1250)
	order := models.Order{
		ID:                          uuid.New(),
		VesselID:                    uuid.New(),
		Port:                        "rotterdam",
		Status:                      enums.OrderStatusPooled,
		Priority:                    enums.OrderPriorityNormal,
		PaymentStatus:               enums.PaymentStatusPaid,
		SubtotalCents:               125_000,
		DeliveryFeeProvisionalCents: 1670,
		DeliveryFeeFinalCents:       &final,
		RefundAmountCents:           420,
		CreatedAt:                   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
	}
	service, err := NewService(&stubExportRepo{orders: []models.Order{order}})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	var buf bytes.Buffer
	if err := service.WriteCSV(context.Background(), &buf, ViewOrders, Filter{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header + 1 row, got %d records", len(records))
	}
	row := records[1]
	if row[7] != "1250.00" {
		t.Fatalf("expected subtotal 1250.00, got %q", row[7])
	}
	if row[8] != "16.70" {
		t.Fatalf("expected provisional 16.70, got %q", row[8])
	}
	if row[9] != "12.50" {
		t.Fatalf("expected final 12.50, got %q", row[9])
	}
	if row[10] != "4.20" {
		t.Fatalf("expected refund 4.20, got %q", row[10])
	}
}

func TestWriteCSVOrdersLeavesUnsettledFinalEmpty(t *testing.T) {
	order := models.Order{
		ID:       uuid.New(),
		VesselID: uuid.New(),
		Port:     "rotterdam",
		Status:   enums.OrderStatusPooled,
	}
	service, _ := NewService(&stubExportRepo{orders: []models.Order{order}})

	var buf bytes.Buffer
	if err := service.WriteCSV(context.Background(), &buf, ViewOrders, Filter{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("parse csv: %v", err)
	}
	if records[1][9] != "" {
		t.Fatalf("expected empty final fee before settlement, got %q", records[1][9])
	}
}

func TestWriteCSVLedgerView(t *testing.T) {
	ref := "ch_123"
	entry := models.FinanceLedgerEntry{
		ID:           uuid.New(),
		LedgerType:   enums.LedgerEntryTypeCharge,
		Status:       enums.LedgerEntryStatusSucceeded,
		AmountMinor:  10_000,
		Currency:     "USD",
		OccurredAt:   time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC),
		ProcessorRef: &ref,
	}
	service, _ := NewService(&stubExportRepo{entries: []models.FinanceLedgerEntry{entry}})

	var buf bytes.Buffer
	if err := service.WriteCSV(context.Background(), &buf, ViewLedger, Filter{}); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "100.00") {
		t.Fatalf("expected formatted amount in output:\n%s", out)
	}
	if !strings.Contains(out, "ch_123") {
		t.Fatalf("expected processor ref in output:\n%s", out)
	}
}

func TestWriteCSVRejectsUnknownView(t *testing.T) {
	service, _ := NewService(&stubExportRepo{})
	var buf bytes.Buffer
	if err := service.WriteCSV(context.Background(), &buf, View("ships"), Filter{}); err == nil {
		t.Fatal("expected error for unknown view")
	}
}

func TestParseView(t *testing.T) {
	if _, err := ParseView("ledger"); err != nil {
		t.Fatalf("ParseView(ledger): %v", err)
	}
	if _, err := ParseView("nonsense"); err == nil {
		t.Fatal("expected error for unknown view name")
	}
}
