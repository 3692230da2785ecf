package export

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/db/models"
)

const defaultExportLimit = 10_000

// Filter narrows an export. Zero values mean "no constraint"; Limit caps the
// row count so a careless export cannot stream the whole table.
type Filter struct {
	Port   string
	Status string
	From   time.Time
	To     time.Time
	Limit  int
}

// Repository provides the read-only listings behind tabular exports.
type Repository interface {
	ListOrders(ctx context.Context, filter Filter) ([]models.Order, error)
	ListPools(ctx context.Context, filter Filter) ([]models.Pool, error)
	ListDeliveries(ctx context.Context, filter Filter) ([]models.Delivery, error)
	ListVendorOrders(ctx context.Context, filter Filter) ([]models.VendorOrder, error)
	ListLedgerEntries(ctx context.Context, filter Filter) ([]models.FinanceLedgerEntry, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an export repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (f Filter) limit() int {
	if f.Limit > 0 && f.Limit < defaultExportLimit {
		return f.Limit
	}
	return defaultExportLimit
}

func (r *repository) ListOrders(ctx context.Context, filter Filter) ([]models.Order, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{})
	if filter.Port != "" {
		query = query.Where("port = ?", filter.Port)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("created_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("created_at < ?", filter.To)
	}
	var orders []models.Order
	if err := query.Order("created_at ASC").Limit(filter.limit()).Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) ListPools(ctx context.Context, filter Filter) ([]models.Pool, error) {
	query := r.db.WithContext(ctx).Model(&models.Pool{})
	if filter.Port != "" {
		query = query.Where("port = ?", filter.Port)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("target_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("target_date < ?", filter.To)
	}
	var pools []models.Pool
	if err := query.Order("target_date ASC").Limit(filter.limit()).Find(&pools).Error; err != nil {
		return nil, err
	}
	return pools, nil
}

func (r *repository) ListDeliveries(ctx context.Context, filter Filter) ([]models.Delivery, error) {
	query := r.db.WithContext(ctx).Model(&models.Delivery{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("scheduled_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("scheduled_date < ?", filter.To)
	}
	var deliveries []models.Delivery
	if err := query.Order("scheduled_date ASC").Limit(filter.limit()).Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

func (r *repository) ListVendorOrders(ctx context.Context, filter Filter) ([]models.VendorOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.VendorOrder{}).Preload("Items")
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("expected_ready_date >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("expected_ready_date < ?", filter.To)
	}
	var vendorOrders []models.VendorOrder
	if err := query.Order("expected_ready_date ASC").Limit(filter.limit()).Find(&vendorOrders).Error; err != nil {
		return nil, err
	}
	return vendorOrders, nil
}

func (r *repository) ListLedgerEntries(ctx context.Context, filter Filter) ([]models.FinanceLedgerEntry, error) {
	query := r.db.WithContext(ctx).Model(&models.FinanceLedgerEntry{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if !filter.From.IsZero() {
		query = query.Where("occurred_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		query = query.Where("occurred_at < ?", filter.To)
	}
	var entries []models.FinanceLedgerEntry
	if err := query.Order("occurred_at ASC").Limit(filter.limit()).Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
