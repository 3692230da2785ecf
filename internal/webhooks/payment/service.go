package paymentwebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
)

type ledgerAppender interface {
	Append(ctx context.Context, input ledger.AppendInput) (*models.FinanceLedgerEntry, error)
}

// Service translates Payment Processor webhook events into append-only
// finance ledger entries, one entry per charge/refund/payout event.
type Service struct {
	ledger ledgerAppender
}

// NewService wires the payment webhook handler.
func NewService(ledgerSvc ledgerAppender) (*Service, error) {
	if ledgerSvc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "ledger service required")
	}
	return &Service{ledger: ledgerSvc}, nil
}

// HandleEvent appends the ledger entry for a verified processor event.
// Unrecognized event types are acknowledged and skipped.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "event data required")
	}

	switch event.Type {
	case stripe.EventTypeChargeSucceeded, stripe.EventTypeChargeFailed:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode charge event")
		}
		status := enums.LedgerEntryStatusSucceeded
		if event.Type == stripe.EventTypeChargeFailed {
			status = enums.LedgerEntryStatusFailed
		}
		return s.append(ctx, ledger.AppendInput{
			LedgerType:       enums.LedgerEntryTypeCharge,
			Status:           status,
			AmountMinor:      charge.Amount,
			Currency:         string(charge.Currency),
			OccurredAt:       time.Unix(charge.Created, 0).UTC(),
			OrderID:          metadataID(charge.Metadata, "order_id"),
			VendorID:         metadataID(charge.Metadata, "vendor_id"),
			VesselID:         metadataID(charge.Metadata, "vessel_id"),
			ProcessorRef:     charge.ID,
			PlatformFeeMinor: charge.ApplicationFeeAmount,
		})

	case stripe.EventTypeChargeRefunded:
		var charge stripe.Charge
		if err := json.Unmarshal(event.Data.Raw, &charge); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode refund event")
		}
		return s.append(ctx, ledger.AppendInput{
			LedgerType:   enums.LedgerEntryTypeRefund,
			Status:       enums.LedgerEntryStatusSucceeded,
			AmountMinor:  charge.AmountRefunded,
			Currency:     string(charge.Currency),
			OccurredAt:   time.Unix(charge.Created, 0).UTC(),
			OrderID:      metadataID(charge.Metadata, "order_id"),
			VendorID:     metadataID(charge.Metadata, "vendor_id"),
			VesselID:     metadataID(charge.Metadata, "vessel_id"),
			ProcessorRef: charge.ID + ":refund",
		})

	case stripe.EventTypePayoutPaid, stripe.EventTypePayoutFailed:
		var payout stripe.Payout
		if err := json.Unmarshal(event.Data.Raw, &payout); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payout event")
		}
		status := enums.LedgerEntryStatusSucceeded
		if event.Type == stripe.EventTypePayoutFailed {
			status = enums.LedgerEntryStatusFailed
		}
		return s.append(ctx, ledger.AppendInput{
			LedgerType:   enums.LedgerEntryTypePayout,
			Status:       status,
			AmountMinor:  payout.Amount,
			Currency:     string(payout.Currency),
			OccurredAt:   time.Unix(payout.Created, 0).UTC(),
			VendorID:     metadataID(payout.Metadata, "vendor_id"),
			ProcessorRef: payout.ID,
		})

	default:
		return nil
	}
}

func (s *Service) append(ctx context.Context, input ledger.AppendInput) error {
	_, err := s.ledger.Append(ctx, input)
	return err
}

func metadataID(metadata map[string]string, key string) *uuid.UUID {
	raw, ok := metadata[key]
	if !ok || raw == "" {
		return nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil
	}
	return &id
}
