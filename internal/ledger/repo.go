package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
)

// Repository manages persistence for finance ledger entries. Entries are
// append-only; there is deliberately no update or delete surface.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, entry *models.FinanceLedgerEntry) error
	GetByProcessorRef(ctx context.Context, processorRef string) (*models.FinanceLedgerEntry, error)
	ListRange(ctx context.Context, filter RangeFilter) ([]models.FinanceLedgerEntry, error)
	CountFailedSince(ctx context.Context, since time.Time) (int64, error)
	ListFailedSince(ctx context.Context, since time.Time, limit int) ([]models.FinanceLedgerEntry, error)
}

// RangeFilter bounds an aggregation window. From is inclusive, To exclusive.
type RangeFilter struct {
	From     time.Time
	To       time.Time
	VendorID *uuid.UUID
	VesselID *uuid.UUID
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a ledger repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, entry *models.FinanceLedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) GetByProcessorRef(ctx context.Context, processorRef string) (*models.FinanceLedgerEntry, error) {
	var entry models.FinanceLedgerEntry
	err := r.db.WithContext(ctx).
		Where("processor_ref = ?", processorRef).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *repository) ListRange(ctx context.Context, filter RangeFilter) ([]models.FinanceLedgerEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.FinanceLedgerEntry{}).
		Where("occurred_at >= ? AND occurred_at < ?", filter.From, filter.To)
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.VesselID != nil {
		query = query.Where("vessel_id = ?", *filter.VesselID)
	}
	var entries []models.FinanceLedgerEntry
	if err := query.Order("occurred_at ASC").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *repository) CountFailedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.FinanceLedgerEntry{}).
		Where("status = ? AND occurred_at >= ?", enums.LedgerEntryStatusFailed, since).
		Count(&count).Error
	return count, err
}

func (r *repository) ListFailedSince(ctx context.Context, since time.Time, limit int) ([]models.FinanceLedgerEntry, error) {
	var entries []models.FinanceLedgerEntry
	err := r.db.WithContext(ctx).
		Where("status = ? AND occurred_at >= ?", enums.LedgerEntryStatusFailed, since).
		Order("occurred_at ASC").
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
