package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/money"
)

// View selects which table an export renders.
type View string

const (
	ViewOrders       View = "orders"
	ViewPools        View = "pools"
	ViewDeliveries   View = "deliveries"
	ViewVendorOrders View = "vendor_orders"
	ViewLedger       View = "ledger"
)

var validViews = []View{ViewOrders, ViewPools, ViewDeliveries, ViewVendorOrders, ViewLedger}

// ParseView converts raw input into a View.
func ParseView(value string) (View, error) {
	for _, candidate := range validViews {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown export view %q", value))
}

// Service streams filtered table views as CSV. All money columns render from
// integer minor units via money.FormatCents, never a pre-rounded value.
type Service interface {
	WriteCSV(ctx context.Context, w io.Writer, view View, filter Filter) error
}

type service struct {
	repo Repository
}

// NewService wires the export service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("export repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) WriteCSV(ctx context.Context, w io.Writer, view View, filter Filter) error {
	writer := csv.NewWriter(w)
	var err error
	switch view {
	case ViewOrders:
		err = s.writeOrders(ctx, writer, filter)
	case ViewPools:
		err = s.writePools(ctx, writer, filter)
	case ViewDeliveries:
		err = s.writeDeliveries(ctx, writer, filter)
	case ViewVendorOrders:
		err = s.writeVendorOrders(ctx, writer, filter)
	case ViewLedger:
		err = s.writeLedger(ctx, writer, filter)
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown export view %q", view))
	}
	if err != nil {
		return err
	}
	writer.Flush()
	return writer.Error()
}

func (s *service) writeOrders(ctx context.Context, w *csv.Writer, filter Filter) error {
	orders, err := s.repo.ListOrders(ctx, filter)
	if err != nil {
		return err
	}
	header := []string{
		"order_id", "vessel_id", "port", "status", "priority", "payment_status",
		"pool_id", "subtotal", "delivery_fee_provisional", "delivery_fee_final",
		"refund_amount", "created_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, order := range orders {
		record := []string{
			order.ID.String(),
			order.VesselID.String(),
			order.Port,
			order.Status.String(),
			order.Priority.String(),
			order.PaymentStatus.String(),
			uuidOrEmpty(order.PoolID),
			money.FormatCents(order.SubtotalCents),
			money.FormatCents(order.DeliveryFeeProvisionalCents),
			centsOrEmpty(order.DeliveryFeeFinalCents),
			money.FormatCents(order.RefundAmountCents),
			order.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writePools(ctx context.Context, w *csv.Writer, filter Filter) error {
	pools, err := s.repo.ListPools(ctx, filter)
	if err != nil {
		return err
	}
	header := []string{
		"pool_id", "port", "target_date", "status", "order_count", "total_value",
		"delivery_id", "lock_trigger", "locked_at", "fees_reconciled_at",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, pool := range pools {
		trigger := ""
		if pool.LockTrigger != nil {
			trigger = pool.LockTrigger.String()
		}
		record := []string{
			pool.ID.String(),
			pool.Port,
			pool.TargetDate.UTC().Format("2006-01-02"),
			pool.Status.String(),
			strconv.Itoa(pool.OrderCount),
			money.FormatCents(pool.TotalValueCents),
			uuidOrEmpty(pool.DeliveryID),
			trigger,
			timeOrEmpty(pool.LockedAt),
			timeOrEmpty(pool.FeesReconciledAt),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeDeliveries(ctx context.Context, w *csv.Writer, filter Filter) error {
	deliveries, err := s.repo.ListDeliveries(ctx, filter)
	if err != nil {
		return err
	}
	header := []string{
		"delivery_id", "pool_id", "status", "scheduled_date", "sla_target_time",
		"delivered_at", "sla_variance_minutes", "delivery_fee", "exception_flags",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, delivery := range deliveries {
		variance := ""
		if delivery.SLAVarianceMinutes != nil {
			variance = strconv.Itoa(*delivery.SLAVarianceMinutes)
		}
		record := []string{
			delivery.ID.String(),
			delivery.PoolID.String(),
			delivery.Status.String(),
			delivery.ScheduledDate.UTC().Format("2006-01-02"),
			delivery.SLATargetTime.UTC().Format(time.RFC3339),
			timeOrEmpty(delivery.DeliveredAt),
			variance,
			money.FormatCents(delivery.DeliveryFeeCents),
			strconv.Itoa(delivery.ExceptionFlagCount),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeVendorOrders(ctx context.Context, w *csv.Writer, filter Filter) error {
	vendorOrders, err := s.repo.ListVendorOrders(ctx, filter)
	if err != nil {
		return err
	}
	header := []string{
		"vendor_order_id", "order_id", "vendor_id", "status",
		"expected_ready_date", "item_count", "fulfilled_quantity", "total_quantity",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, vendorOrder := range vendorOrders {
		var fulfilled, total int
		for _, item := range vendorOrder.Items {
			fulfilled += item.FulfilledQuantity
			total += item.Quantity
		}
		record := []string{
			vendorOrder.ID.String(),
			vendorOrder.OrderID.String(),
			vendorOrder.VendorID.String(),
			vendorOrder.Status.String(),
			vendorOrder.ExpectedReadyDate.UTC().Format("2006-01-02"),
			strconv.Itoa(len(vendorOrder.Items)),
			strconv.Itoa(fulfilled),
			strconv.Itoa(total),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) writeLedger(ctx context.Context, w *csv.Writer, filter Filter) error {
	entries, err := s.repo.ListLedgerEntries(ctx, filter)
	if err != nil {
		return err
	}
	header := []string{
		"entry_id", "ledger_type", "status", "amount", "currency", "occurred_at",
		"order_id", "vendor_id", "vessel_id", "processor_ref", "stripe_fee", "platform_fee",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, entry := range entries {
		ref := ""
		if entry.ProcessorRef != nil {
			ref = *entry.ProcessorRef
		}
		record := []string{
			entry.ID.String(),
			entry.LedgerType.String(),
			entry.Status.String(),
			money.FormatCents(entry.AmountMinor),
			entry.Currency,
			entry.OccurredAt.UTC().Format(time.RFC3339),
			uuidOrEmpty(entry.OrderID),
			uuidOrEmpty(entry.VendorID),
			uuidOrEmpty(entry.VesselID),
			ref,
			money.FormatCents(entry.StripeFeeMinor),
			money.FormatCents(entry.PlatformFeeMinor),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

func uuidOrEmpty(id *uuid.UUID) string {
	if id == nil {
		return ""
	}
	return id.String()
}

func centsOrEmpty(cents *int64) string {
	if cents == nil {
		return ""
	}
	return money.FormatCents(*cents)
}

func timeOrEmpty(value *time.Time) string {
	if value == nil {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}
