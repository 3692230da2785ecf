package pooling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/metrics"
	"github.com/quayside/quayside-backend/pkg/outbox"
	"github.com/quayside/quayside-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// leaseStore is the redis surface used for per-pool lock leases.
type leaseStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	PoolLockKey(poolID string) string
}

// feeSettler settles final delivery fees for a locked pool. Settlement runs
// after the lock transaction commits so a fee failure never unwinds a lock.
type feeSettler interface {
	ReconcilePool(ctx context.Context, poolID uuid.UUID) error
}

// IntakeOrderInput carries a confirmed checkout into pool assignment.
type IntakeOrderInput struct {
	VesselID       uuid.UUID
	Port           string
	ETAWindowStart time.Time
	ETAWindowEnd   time.Time
	Priority       enums.OrderPriority
	SubtotalCents  int64
	PaymentRef     string
}

// Service owns order intake, pool assignment, and the lock lifecycle.
type Service interface {
	IntakeOrder(ctx context.Context, input IntakeOrderInput) (*models.Order, error)
	LockPool(ctx context.Context, poolID uuid.UUID, trigger enums.LockTrigger, actor *outbox.ActorRef) (*models.Pool, error)
	SweepCutoffs(ctx context.Context, now time.Time) (int, error)
	GetPool(ctx context.Context, poolID uuid.UUID) (*models.Pool, error)
	GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	ListPools(ctx context.Context, filter PoolFilter) ([]models.Pool, error)
	ListPoolOrders(ctx context.Context, poolID uuid.UUID) ([]models.Order, error)
}

type service struct {
	repo    Repository
	tx      txRunner
	outbox  outboxPublisher
	lease   leaseStore
	fees    feeSettler
	planner slaPlanner
	cfg     config.PoolingConfig
	metrics *metrics.ReconcilerMetrics
	logg    *logger.Logger
	now     func() time.Time
}

// slaPlanner derives the delivery SLA target frozen at lock time.
type slaPlanner interface {
	Target(scheduledDate time.Time) time.Time
}

// NewService wires the pool manager. The fee settler may be nil when fees are
// settled by a separate sweep.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	lease leaseStore,
	fees feeSettler,
	planner slaPlanner,
	cfg config.PoolingConfig,
	reconcilerMetrics *metrics.ReconcilerMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pooling repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if lease == nil {
		return nil, fmt.Errorf("lease store required")
	}
	if planner == nil {
		return nil, fmt.Errorf("sla planner required")
	}
	if cfg.LockLeaseTTL <= 0 {
		return nil, fmt.Errorf("lock lease ttl must be positive")
	}
	return &service{
		repo:    repo,
		tx:      tx,
		outbox:  outboxSvc,
		lease:   lease,
		fees:    fees,
		planner: planner,
		cfg:     cfg,
		metrics: reconcilerMetrics,
		logg:    logg,
		now:     time.Now,
	}, nil
}

func paymentRef(ref string) *string {
	if ref == "" {
		return nil
	}
	return &ref
}

// targetDateFor maps an order's arrival window onto its pool day. The day is
// both the grouping key and the lock cutoff.
func targetDateFor(etaWindowStart time.Time) time.Time {
	return etaWindowStart.UTC().Truncate(24 * time.Hour)
}

func (s *service) IntakeOrder(ctx context.Context, input IntakeOrderInput) (*models.Order, error) {
	if input.VesselID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "vessel id is required")
	}
	if input.Port == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "port is required")
	}
	if input.ETAWindowStart.IsZero() || input.ETAWindowEnd.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "eta window is required")
	}
	if !input.ETAWindowEnd.After(input.ETAWindowStart) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "eta window end must be after start")
	}
	if input.SubtotalCents < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "subtotal must not be negative")
	}
	priority := input.Priority
	if priority == "" {
		priority = enums.OrderPriorityNormal
	}
	if !priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", input.Priority))
	}

	coverage, err := s.repo.GetPortCoverage(ctx, input.Port)
	if err != nil {
		return nil, err
	}
	if coverage == nil {
		// No coverage row means no pool can exist for this port. The order is
		// still persisted so ops can assign it manually once coverage lands.
		order := &models.Order{
			VesselID:       input.VesselID,
			Port:           input.Port,
			ETAWindowStart: input.ETAWindowStart,
			ETAWindowEnd:   input.ETAWindowEnd,
			Status:         enums.OrderStatusConfirmed,
			Priority:       priority,
			PaymentStatus:  enums.PaymentStatusUnpaid,
			PaymentRef:     paymentRef(input.PaymentRef),
			SubtotalCents:  input.SubtotalCents,
		}
		if err := s.repo.CreateOrder(ctx, order); err != nil {
			return nil, err
		}
		return order, pkgerrors.New(pkgerrors.CodeNoEligiblePort, fmt.Sprintf("no active delivery coverage for port %q", input.Port)).
			WithDetails(map[string]string{"order_id": order.ID.String()})
	}

	targetDate := targetDateFor(input.ETAWindowStart)

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// The open-pool read takes a row lock, so a concurrent lock
		// transaction on the same pool waits until this one commits.
		pool, err := repo.FindOpenPool(ctx, input.Port, targetDate)
		if err != nil {
			return err
		}
		if pool == nil {
			pool, err = s.openPool(ctx, tx, repo, input.Port, targetDate)
			if err != nil {
				return err
			}
		}

		order = &models.Order{
			VesselID:                    input.VesselID,
			Port:                        input.Port,
			ETAWindowStart:              input.ETAWindowStart,
			ETAWindowEnd:                input.ETAWindowEnd,
			Status:                      enums.OrderStatusPooled,
			Priority:                    priority,
			PaymentStatus:               enums.PaymentStatusUnpaid,
			PaymentRef:                  paymentRef(input.PaymentRef),
			PoolID:                      &pool.ID,
			SubtotalCents:               input.SubtotalCents,
			DeliveryFeeProvisionalCents: coverage.TotalDeliveryCostCents,
		}
		if err := repo.CreateOrder(ctx, order); err != nil {
			return err
		}

		joined, err := joinPool(ctx, repo, pool, order)
		if err != nil {
			return err
		}
		if !joined {
			// The pool left open between the read and the write. The order
			// starts the next pool for the same port and day rather than
			// touching the frozen one.
			fresh, err := s.openPool(ctx, tx, repo, input.Port, targetDate)
			if err != nil {
				return err
			}
			order.PoolID = &fresh.ID
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			joined, err := joinPool(ctx, repo, fresh, order)
			if err != nil {
				return err
			}
			if !joined {
				return pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "pool membership changed during intake")
			}
			pool = fresh
		}

		pooled := outbox.DomainEvent{
			EventType:     enums.EventOrderPooled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.OrderPooledEvent{
				OrderID:    order.ID,
				PoolID:     pool.ID,
				Port:       pool.Port,
				TargetDate: pool.TargetDate,
			},
		}
		return s.outbox.Emit(ctx, tx, pooled)
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

// openPool creates a fresh open pool for the port and day and emits its
// creation event in the same transaction.
func (s *service) openPool(ctx context.Context, tx *gorm.DB, repo Repository, port string, targetDate time.Time) (*models.Pool, error) {
	pool := &models.Pool{
		Port:       port,
		TargetDate: targetDate,
		Status:     enums.PoolStatusOpen,
	}
	if err := repo.CreatePool(ctx, pool); err != nil {
		return nil, err
	}
	created := outbox.DomainEvent{
		EventType:     enums.EventPoolCreated,
		AggregateType: enums.AggregatePool,
		AggregateID:   pool.ID,
		Version:       1,
		Data: payloads.PoolCreatedEvent{
			PoolID:     pool.ID,
			Port:       pool.Port,
			TargetDate: pool.TargetDate,
		},
	}
	if err := s.outbox.Emit(ctx, tx, created); err != nil {
		return nil, err
	}
	return pool, nil
}

// joinPool appends the order to the pool's membership aggregates with a
// status-guarded write. False means the pool is no longer open.
func joinPool(ctx context.Context, repo Repository, pool *models.Pool, order *models.Order) (bool, error) {
	pool.OrderIDs = append(pool.OrderIDs, order.ID)
	pool.OrderCount = len(pool.OrderIDs)
	pool.TotalValueCents += order.SubtotalCents
	return repo.UpdatePoolMembership(ctx, pool)
}

func (s *service) LockPool(ctx context.Context, poolID uuid.UUID, trigger enums.LockTrigger, actor *outbox.ActorRef) (*models.Pool, error) {
	if poolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pool id is required")
	}
	if !trigger.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid lock trigger %q", trigger))
	}

	leaseKey := s.lease.PoolLockKey(poolID.String())
	leaseToken := uuid.NewString()
	acquired, err := s.lease.SetNX(ctx, leaseKey, leaseToken, s.cfg.LockLeaseTTL)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "acquiring pool lock lease")
	}
	if !acquired {
		s.metrics.IncLockConflict()
		return nil, pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "pool lock is held by another worker")
	}
	defer s.releaseLease(ctx, leaseKey, leaseToken)

	lockedAt := s.now().UTC()
	var locked *models.Pool
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		// Row lock on the pool serializes this lock against in-flight intake
		// transactions on the same pool.
		pool, err := repo.GetPoolByIDForUpdate(ctx, poolID)
		if err != nil {
			return err
		}
		if pool.Status != enums.PoolStatusOpen {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("pool is %s, only open pools can be locked", pool.Status))
		}

		coverage, err := repo.GetPortCoverage(ctx, pool.Port)
		if err != nil {
			return err
		}
		if coverage == nil {
			return pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("no active delivery coverage for port %q", pool.Port))
		}

		// Re-read membership under the lease; order_ids is frozen from what is
		// in the database now, not from the pool row's running copy.
		orders, err := repo.ListOrdersByPoolID(ctx, pool.ID)
		if err != nil {
			return err
		}
		orderIDs := make([]uuid.UUID, 0, len(orders))
		var totalValue int64
		for _, order := range orders {
			orderIDs = append(orderIDs, order.ID)
			totalValue += order.SubtotalCents
		}

		ok, err := repo.LockPoolCAS(ctx, pool.ID, trigger, lockedAt)
		if err != nil {
			return err
		}
		if !ok {
			return pkgerrors.New(pkgerrors.CodeConcurrencyConflict, "pool was locked by a concurrent writer")
		}

		delivery := &models.Delivery{
			PoolID:           pool.ID,
			Status:           enums.DeliveryStatusScheduled,
			ScheduledDate:    pool.TargetDate,
			SLATargetTime:    s.planner.Target(pool.TargetDate),
			DeliveryFeeCents: coverage.TotalDeliveryCostCents,
		}
		if err := repo.CreateDelivery(ctx, delivery); err != nil {
			return err
		}

		pool.Status = enums.PoolStatusLocked
		pool.LockTrigger = &trigger
		pool.LockedAt = &lockedAt
		pool.OrderIDs = orderIDs
		pool.OrderCount = len(orderIDs)
		pool.TotalValueCents = totalValue
		pool.DeliveryID = &delivery.ID
		if err := repo.UpdatePool(ctx, pool); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPoolLocked,
			AggregateType: enums.AggregatePool,
			AggregateID:   pool.ID,
			Actor:         actor,
			Version:       1,
			Data: payloads.PoolLockedEvent{
				PoolID:      pool.ID,
				Port:        pool.Port,
				OrderCount:  pool.OrderCount,
				LockTrigger: trigger,
				LockedAt:    lockedAt,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		locked = pool
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncPoolLocked(trigger.String())
	s.settleFees(ctx, locked.ID)
	return locked, nil
}

// settleFees runs fee reconciliation after a successful lock. Failures are
// logged, never propagated; the cutoff sweep retries unsettled pools.
func (s *service) settleFees(ctx context.Context, poolID uuid.UUID) {
	if s.fees == nil {
		return
	}
	if err := s.fees.ReconcilePool(ctx, poolID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithPoolID(ctx, poolID.String()), "fee reconciliation deferred to sweep", err)
	}
}

func (s *service) releaseLease(ctx context.Context, key, token string) {
	value, err := s.lease.Get(ctx, key)
	if err != nil || value != token {
		// Lease expired or was taken over; deleting would clobber the new owner.
		return
	}
	if err := s.lease.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(s.logg.WithField(ctx, "lease_key", key), "failed to release pool lock lease")
	}
}

func (s *service) SweepCutoffs(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListOpenPoolsPastCutoff(ctx, now)
	if err != nil {
		return 0, err
	}

	locked := 0
	for _, pool := range due {
		// Pools below the minimum stay open past cutoff; the attention feed
		// surfaces them for manual resolution.
		if pool.OrderCount < 2 {
			continue
		}
		if _, err := s.LockPool(ctx, pool.ID, enums.LockTriggerCutoff, nil); err != nil {
			if appErr := pkgerrors.As(err); appErr != nil &&
				(appErr.Code() == pkgerrors.CodeConcurrencyConflict || appErr.Code() == pkgerrors.CodeStateConflict) {
				continue
			}
			return locked, err
		}
		locked++
	}

	// Retry fee settlement for pools whose post-lock reconciliation failed.
	if s.fees != nil {
		unsettled, err := s.repo.ListLockedPoolsUnreconciled(ctx, 50)
		if err != nil {
			return locked, err
		}
		for _, pool := range unsettled {
			s.settleFees(ctx, pool.ID)
		}
	}
	return locked, nil
}

func (s *service) GetPool(ctx context.Context, poolID uuid.UUID) (*models.Pool, error) {
	if poolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pool id is required")
	}
	return s.repo.GetPoolByID(ctx, poolID)
}

func (s *service) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.repo.GetOrderByID(ctx, orderID)
}

func (s *service) ListPools(ctx context.Context, filter PoolFilter) ([]models.Pool, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid pool status %q", filter.Status))
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.ListPools(ctx, filter)
}

func (s *service) ListPoolOrders(ctx context.Context, poolID uuid.UUID) ([]models.Order, error) {
	if poolID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pool id is required")
	}
	return s.repo.ListOrdersByPoolID(ctx, poolID)
}
