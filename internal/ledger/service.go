package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	dbpkg "github.com/quayside/quayside-backend/pkg/db"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AppendInput captures one financial event from the Payment Processor.
type AppendInput struct {
	LedgerType       enums.LedgerEntryType
	Status           enums.LedgerEntryStatus
	AmountMinor      int64
	Currency         string
	OccurredAt       time.Time
	OrderID          *uuid.UUID
	VendorID         *uuid.UUID
	VesselID         *uuid.UUID
	ProcessorRef     string
	StripeFeeMinor   int64
	PlatformFeeMinor int64
}

// AggregateQuery bounds a reporting window with optional dimension filters.
type AggregateQuery struct {
	From     time.Time
	To       time.Time
	VendorID *uuid.UUID
	VesselID *uuid.UUID
}

// Report is the aggregate rollup plus per-dimension breakdowns.
type Report struct {
	Totals   Metrics               `json:"totals"`
	ByVendor map[uuid.UUID]Metrics `json:"by_vendor,omitempty"`
	ByVessel map[uuid.UUID]Metrics `json:"by_vessel,omitempty"`
}

// Service owns ledger ingestion and reporting rollups.
type Service interface {
	Append(ctx context.Context, input AppendInput) (*models.FinanceLedgerEntry, error)
	Aggregate(ctx context.Context, query AggregateQuery) (*Report, error)
	ListEntries(ctx context.Context, filter RangeFilter) ([]models.FinanceLedgerEntry, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires the ledger aggregator.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// Append writes one immutable ledger entry. Appends are idempotent per
// processor_ref: replaying the same processor event returns the stored entry.
func (s *service) Append(ctx context.Context, input AppendInput) (*models.FinanceLedgerEntry, error) {
	if !input.LedgerType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger type %q", input.LedgerType))
	}
	if !input.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid ledger status %q", input.Status))
	}
	if input.AmountMinor <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount_minor must be positive")
	}
	if input.OccurredAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "occurred_at is required")
	}
	currency := input.Currency
	if currency == "" {
		currency = "USD"
	}

	if input.ProcessorRef != "" {
		existing, err := s.repo.GetByProcessorRef(ctx, input.ProcessorRef)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}

	entry := &models.FinanceLedgerEntry{
		LedgerType:       input.LedgerType,
		Status:           input.Status,
		AmountMinor:      input.AmountMinor,
		Currency:         currency,
		OccurredAt:       input.OccurredAt.UTC(),
		OrderID:          input.OrderID,
		VendorID:         input.VendorID,
		VesselID:         input.VesselID,
		StripeFeeMinor:   input.StripeFeeMinor,
		PlatformFeeMinor: input.PlatformFeeMinor,
	}
	if input.ProcessorRef != "" {
		ref := input.ProcessorRef
		entry.ProcessorRef = &ref
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, entry)
	})
	if err != nil {
		// A replayed webhook raced us; return the entry that won.
		if input.ProcessorRef != "" && dbpkg.IsUniqueViolation(err, "ux_finance_ledger_entries_processor_ref") {
			existing, findErr := s.repo.GetByProcessorRef(ctx, input.ProcessorRef)
			if findErr != nil {
				return nil, findErr
			}
			if existing != nil {
				return existing, nil
			}
		}
		return nil, err
	}
	return entry, nil
}

func (s *service) Aggregate(ctx context.Context, query AggregateQuery) (*Report, error) {
	if query.From.IsZero() || query.To.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is required")
	}
	if !query.To.After(query.From) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "range end must be after start")
	}

	entries, err := s.repo.ListRange(ctx, RangeFilter{
		From:     query.From,
		To:       query.To,
		VendorID: query.VendorID,
		VesselID: query.VesselID,
	})
	if err != nil {
		return nil, err
	}

	report := &Report{
		Totals: Fold(entries),
		ByVendor: FoldBy(entries, func(entry models.FinanceLedgerEntry) *uuid.UUID {
			return entry.VendorID
		}),
		ByVessel: FoldBy(entries, func(entry models.FinanceLedgerEntry) *uuid.UUID {
			return entry.VesselID
		}),
	}
	return report, nil
}

func (s *service) ListEntries(ctx context.Context, filter RangeFilter) ([]models.FinanceLedgerEntry, error) {
	if filter.From.IsZero() || filter.To.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date range is required")
	}
	return s.repo.ListRange(ctx, filter)
}
