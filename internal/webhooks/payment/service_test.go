package paymentwebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

type stubLedger struct {
	appended []ledger.AppendInput
}

func (s *stubLedger) Append(_ context.Context, input ledger.AppendInput) (*models.FinanceLedgerEntry, error) {
	s.appended = append(s.appended, input)
	return &models.FinanceLedgerEntry{ID: uuid.New()}, nil
}

func chargeEvent(t *testing.T, eventType stripe.EventType, charge *stripe.Charge) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(charge)
	if err != nil {
		t.Fatalf("marshal charge: %v", err)
	}
	return &stripe.Event{Type: eventType, Data: &stripe.EventData{Raw: raw}}
}

func TestHandleChargeSucceededAppendsChargeEntry(t *testing.T) {
	ledgerStub := &stubLedger{}
	service, err := NewService(ledgerStub)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	orderID := uuid.New()
	vendorID := uuid.New()
	event := chargeEvent(t, stripe.EventTypeChargeSucceeded, &stripe.Charge{
		ID:       "ch_123",
		Amount:   10_000,
		Currency: stripe.CurrencyUSD,
		Created:  time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC).Unix(),
		Metadata: map[string]string{
			"order_id":  orderID.String(),
			"vendor_id": vendorID.String(),
		},
		ApplicationFeeAmount: 200,
	})

	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(ledgerStub.appended) != 1 {
		t.Fatalf("expected 1 ledger append, got %d", len(ledgerStub.appended))
	}
	got := ledgerStub.appended[0]
	if got.LedgerType != enums.LedgerEntryTypeCharge || got.Status != enums.LedgerEntryStatusSucceeded {
		t.Fatalf("unexpected entry %+v", got)
	}
	if got.AmountMinor != 10_000 || got.ProcessorRef != "ch_123" {
		t.Fatalf("unexpected amount/ref %+v", got)
	}
	if got.OrderID == nil || *got.OrderID != orderID {
		t.Fatal("expected order dimension from charge metadata")
	}
	if got.VendorID == nil || *got.VendorID != vendorID {
		t.Fatal("expected vendor dimension from charge metadata")
	}
	if got.VesselID != nil {
		t.Fatal("expected missing vessel metadata to stay nil")
	}
	if got.PlatformFeeMinor != 200 {
		t.Fatalf("expected platform fee 200, got %d", got.PlatformFeeMinor)
	}
}

func TestHandleChargeFailedAppendsFailedEntry(t *testing.T) {
	ledgerStub := &stubLedger{}
	service, _ := NewService(ledgerStub)

	event := chargeEvent(t, stripe.EventTypeChargeFailed, &stripe.Charge{
		ID:       "ch_fail",
		Amount:   3_000,
		Currency: stripe.CurrencyUSD,
		Created:  time.Now().Unix(),
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if got := ledgerStub.appended[0].Status; got != enums.LedgerEntryStatusFailed {
		t.Fatalf("expected failed status, got %s", got)
	}
}

func TestHandleChargeRefundedAppendsRefundEntry(t *testing.T) {
	ledgerStub := &stubLedger{}
	service, _ := NewService(ledgerStub)

	event := chargeEvent(t, stripe.EventTypeChargeRefunded, &stripe.Charge{
		ID:             "ch_refunded",
		Amount:         10_000,
		AmountRefunded: 2_000,
		Currency:       stripe.CurrencyUSD,
		Created:        time.Now().Unix(),
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	got := ledgerStub.appended[0]
	if got.LedgerType != enums.LedgerEntryTypeRefund {
		t.Fatalf("expected refund entry, got %s", got.LedgerType)
	}
	if got.AmountMinor != 2_000 {
		t.Fatalf("expected refunded amount, got %d", got.AmountMinor)
	}
	if got.ProcessorRef != "ch_refunded:refund" {
		t.Fatalf("refund ref must not collide with the charge ref, got %q", got.ProcessorRef)
	}
}

func TestHandlePayoutEvents(t *testing.T) {
	ledgerStub := &stubLedger{}
	service, _ := NewService(ledgerStub)

	vendorID := uuid.New()
	payout := &stripe.Payout{
		ID:       "po_1",
		Amount:   5_000,
		Currency: stripe.CurrencyUSD,
		Created:  time.Now().Unix(),
		Metadata: map[string]string{"vendor_id": vendorID.String()},
	}
	raw, _ := json.Marshal(payout)

	for _, eventType := range []stripe.EventType{stripe.EventTypePayoutPaid, stripe.EventTypePayoutFailed} {
		event := &stripe.Event{Type: eventType, Data: &stripe.EventData{Raw: raw}}
		if err := service.HandleEvent(context.Background(), event); err != nil {
			t.Fatalf("handle %s: %v", eventType, err)
		}
	}

	if len(ledgerStub.appended) != 2 {
		t.Fatalf("expected 2 payout entries, got %d", len(ledgerStub.appended))
	}
	if ledgerStub.appended[0].Status != enums.LedgerEntryStatusSucceeded {
		t.Fatal("payout.paid should append a succeeded entry")
	}
	if ledgerStub.appended[1].Status != enums.LedgerEntryStatusFailed {
		t.Fatal("payout.failed should append a failed entry")
	}
	if ledgerStub.appended[0].VendorID == nil || *ledgerStub.appended[0].VendorID != vendorID {
		t.Fatal("expected vendor dimension on the payout")
	}
}

func TestHandleUnknownEventIsAcknowledged(t *testing.T) {
	ledgerStub := &stubLedger{}
	service, _ := NewService(ledgerStub)

	event := &stripe.Event{Type: "customer.created", Data: &stripe.EventData{Raw: []byte(`{}`)}}
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("unknown events must be acknowledged: %v", err)
	}
	if len(ledgerStub.appended) != 0 {
		t.Fatal("unknown events must not touch the ledger")
	}
}
