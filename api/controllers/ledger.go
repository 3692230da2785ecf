package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quayside/quayside-backend/api/responses"
	"github.com/quayside/quayside-backend/api/validators"
	"github.com/quayside/quayside-backend/internal/ledger"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
)

type ledgerAppendRequest struct {
	LedgerType       string    `json:"ledger_type" validate:"required"`
	Status           string    `json:"status" validate:"omitempty"`
	AmountMinor      int64     `json:"amount_minor" validate:"required"`
	Currency         string    `json:"currency" validate:"omitempty,len=3"`
	OccurredAt       time.Time `json:"occurred_at" validate:"required"`
	OrderID          *string   `json:"order_id" validate:"omitempty,uuid4"`
	VendorID         *string   `json:"vendor_id" validate:"omitempty,uuid4"`
	VesselID         *string   `json:"vessel_id" validate:"omitempty,uuid4"`
	ProcessorRef     string    `json:"processor_ref"`
	StripeFeeMinor   int64     `json:"stripe_fee_minor"`
	PlatformFeeMinor int64     `json:"platform_fee_minor"`
}

// LedgerAppend records a manual financial event, typically a correction that
// never flowed through the Payment Processor webhook.
func LedgerAppend(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		var body ledgerAppendRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ledgerType, err := enums.ParseLedgerEntryType(body.LedgerType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ledger type"))
			return
		}

		status := enums.LedgerEntryStatusSucceeded
		if body.Status != "" {
			status, err = enums.ParseLedgerEntryStatus(body.Status)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ledger status"))
				return
			}
		}

		orderID, err := optionalUUID(body.OrderID, "order_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vendorID, err := optionalUUID(body.VendorID, "vendor_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		vesselID, err := optionalUUID(body.VesselID, "vessel_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.Append(r.Context(), ledger.AppendInput{
			LedgerType:       ledgerType,
			Status:           status,
			AmountMinor:      body.AmountMinor,
			Currency:         body.Currency,
			OccurredAt:       body.OccurredAt,
			OrderID:          orderID,
			VendorID:         vendorID,
			VesselID:         vesselID,
			ProcessorRef:     body.ProcessorRef,
			StripeFeeMinor:   body.StripeFeeMinor,
			PlatformFeeMinor: body.PlatformFeeMinor,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newLedgerEntryView(*entry))
	}
}

// LedgerEntries lists raw ledger entries inside a reporting window.
func LedgerEntries(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		filter, err := rangeFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entries, err := svc.ListEntries(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		views := make([]ledgerEntryView, 0, len(entries))
		for _, entry := range entries {
			views = append(views, newLedgerEntryView(entry))
		}
		responses.WriteSuccess(w, views)
	}
}

// FinanceReport aggregates the ledger over a window, overall and per vendor
// and vessel.
func FinanceReport(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}

		filter, err := rangeFilterFromQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		report, err := svc.Aggregate(r.Context(), ledger.AggregateQuery{
			From:     filter.From,
			To:       filter.To,
			VendorID: filter.VendorID,
			VesselID: filter.VesselID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, report)
	}
}

func rangeFilterFromQuery(r *http.Request) (ledger.RangeFilter, error) {
	now := time.Now().UTC()
	from, err := parseQueryTime(r, "from", now.AddDate(0, 0, -30))
	if err != nil {
		return ledger.RangeFilter{}, err
	}
	to, err := parseQueryTime(r, "to", now)
	if err != nil {
		return ledger.RangeFilter{}, err
	}
	vendorID, err := parseQueryUUID(r, "vendor_id")
	if err != nil {
		return ledger.RangeFilter{}, err
	}
	vesselID, err := parseQueryUUID(r, "vessel_id")
	if err != nil {
		return ledger.RangeFilter{}, err
	}
	return ledger.RangeFilter{From: from, To: to, VendorID: vendorID, VesselID: vesselID}, nil
}

func optionalUUID(raw *string, field string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "field must be a uuid").
			WithDetails(map[string]any{"field": field})
	}
	return &id, nil
}
