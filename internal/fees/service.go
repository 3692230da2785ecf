package fees

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/internal/exceptions"
	"github.com/quayside/quayside-backend/pkg/config"
	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/metrics"
	"github.com/quayside/quayside-backend/pkg/money"
	"github.com/quayside/quayside-backend/pkg/outbox"
	"github.com/quayside/quayside-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type exceptionRaiser interface {
	Raise(ctx context.Context, input exceptions.RaiseInput) (*models.OpsException, error)
}

// Service settles final delivery fees for locked pools and issues the refund
// deltas to the Payment Processor.
type Service interface {
	ReconcilePool(ctx context.Context, poolID uuid.UUID) error
}

type service struct {
	repo       Repository
	tx         txRunner
	outbox     outboxPublisher
	refunds    RefundClient
	exceptions exceptionRaiser
	poolCfg    config.PoolingConfig
	feeCfg     config.FeesConfig
	metrics    *metrics.ReconcilerMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService wires the fee reconciler.
func NewService(
	repo Repository,
	tx txRunner,
	outboxSvc outboxPublisher,
	refunds RefundClient,
	exceptionSvc exceptionRaiser,
	poolCfg config.PoolingConfig,
	feeCfg config.FeesConfig,
	reconcilerMetrics *metrics.ReconcilerMetrics,
	logg *logger.Logger,
) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("fees repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if refunds == nil {
		return nil, fmt.Errorf("refund client required")
	}
	if exceptionSvc == nil {
		return nil, fmt.Errorf("exception service required")
	}
	if poolCfg.FreeDeliveryCount <= 0 {
		return nil, fmt.Errorf("free delivery count must be positive")
	}
	if feeCfg.RefundMaxAttempts <= 0 {
		return nil, fmt.Errorf("refund max attempts must be positive")
	}
	return &service{
		repo:       repo,
		tx:         tx,
		outbox:     outboxSvc,
		refunds:    refunds,
		exceptions: exceptionSvc,
		poolCfg:    poolCfg,
		feeCfg:     feeCfg,
		metrics:    reconcilerMetrics,
		logg:       logg,
		now:        time.Now,
	}, nil
}

type refundInstruction struct {
	orderID uuid.UUID
	amount  int64
}

// ReconcilePool freezes each member order's final fee exactly once, then
// issues refund deltas. Refunds run after the settlement transaction commits
// and outside any pool lock; a refund failure never unwinds the settled fees.
func (s *service) ReconcilePool(ctx context.Context, poolID uuid.UUID) error {
	if poolID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "pool id is required")
	}

	pool, err := s.repo.GetPoolByID(ctx, poolID)
	if err != nil {
		return err
	}
	if pool.FeesReconciledAt != nil {
		return nil
	}
	if pool.Status != enums.PoolStatusLocked {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			fmt.Sprintf("pool is %s, fees settle only on locked pools", pool.Status))
	}

	var plan []refundInstruction
	settled := false
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		ok, err := repo.SettleFeesCAS(ctx, pool.ID, s.now().UTC())
		if err != nil {
			return err
		}
		if !ok {
			// Another worker settled between our read and the CAS.
			return nil
		}
		settled = true

		orders, err := repo.ListOrdersByPoolID(ctx, pool.ID)
		if err != nil {
			return err
		}
		ordered := orderByFrozenMembership(orders, pool.OrderIDs)
		count := len(ordered)
		if count == 0 {
			return nil
		}

		free := count >= s.poolCfg.FreeDeliveryCount
		var shares []int64
		if !free {
			if pool.DeliveryID == nil {
				return pkgerrors.New(pkgerrors.CodeStateConflict, "locked pool has no delivery")
			}
			delivery, err := repo.GetDeliveryByID(ctx, *pool.DeliveryID)
			if err != nil {
				return err
			}
			shares = money.SplitEvenly(delivery.DeliveryFeeCents, count)
		}

		finals := make(map[string]int64, count)
		for i := range ordered {
			order := ordered[i]
			var final int64
			if !free {
				final = shares[i]
			}
			order.DeliveryFeeFinalCents = &final
			finals[order.ID.String()] = final
			if err := repo.UpdateOrder(ctx, order); err != nil {
				return err
			}
			if delta := order.DeliveryFeeProvisionalCents - final; delta > 0 {
				plan = append(plan, refundInstruction{orderID: order.ID, amount: delta})
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventFeesReconciled,
			AggregateType: enums.AggregatePool,
			AggregateID:   pool.ID,
			Version:       1,
			Data: payloads.FeesReconciledEvent{
				PoolID:        pool.ID,
				FreeDelivery:  free,
				FinalFeeCents: finals,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return err
	}
	if !settled {
		return nil
	}

	for _, instruction := range plan {
		s.executeRefund(ctx, pool.ID, instruction)
	}
	return nil
}

// orderByFrozenMembership arranges orders in the pool's frozen order_ids
// sequence so remainder cents land deterministically on the first positions.
func orderByFrozenMembership(orders []models.Order, frozen []uuid.UUID) []*models.Order {
	byID := make(map[uuid.UUID]*models.Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	if len(frozen) == 0 {
		ordered := make([]*models.Order, 0, len(orders))
		for i := range orders {
			ordered = append(ordered, &orders[i])
		}
		return ordered
	}
	ordered := make([]*models.Order, 0, len(frozen))
	for _, id := range frozen {
		if order, ok := byID[id]; ok {
			ordered = append(ordered, order)
		}
	}
	return ordered
}

// executeRefund calls the Payment Processor with retry/backoff inside a
// bounded deadline. The order's refund_amount is credited only after the
// processor confirms; exhaustion becomes a critical exception, never a
// rollback of the settled fees.
func (s *service) executeRefund(ctx context.Context, poolID uuid.UUID, instruction refundInstruction) {
	order, err := s.repo.GetOrderByID(ctx, instruction.orderID)
	if err != nil {
		s.failRefund(ctx, poolID, instruction, 0, err)
		return
	}
	if order.RefundReference != nil {
		// Already credited on a previous attempt.
		return
	}
	if order.PaymentRef == nil {
		s.failRefund(ctx, poolID, instruction, 0,
			fmt.Errorf("order %s has no payment reference to refund against", order.ID))
		return
	}

	callCtx, cancel := context.WithTimeout(ctx, s.feeCfg.RefundCallDeadline)
	defer cancel()

	backoffCfg := backoff.NewExponentialBackOff()
	backoffCfg.InitialInterval = s.feeCfg.RefundBackoffBase

	var confirmed *stripe.Refund
	var lastErr error
	attempts := 0
	for attempts < s.feeCfg.RefundMaxAttempts {
		attempts++
		s.metrics.IncRefundAttempt()

		params := &stripe.RefundParams{
			PaymentIntent: stripe.String(*order.PaymentRef),
			Amount:        stripe.Int64(instruction.amount),
		}
		params.SetIdempotencyKey("refund-" + order.ID.String())

		confirmed, lastErr = s.refunds.Refund(callCtx, params)
		if lastErr == nil {
			break
		}

		sleep := backoffCfg.NextBackOff()
		if sleep == backoff.Stop {
			break
		}
		select {
		case <-callCtx.Done():
			lastErr = callCtx.Err()
			attempts = s.feeCfg.RefundMaxAttempts
		case <-time.After(sleep):
		}
	}

	if confirmed == nil {
		s.failRefund(ctx, poolID, instruction, attempts, lastErr)
		return
	}
	if err := s.creditRefund(ctx, poolID, instruction, confirmed.ID); err != nil && s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, instruction.orderID.String()), "crediting confirmed refund", err)
	}
}

// creditRefund records the processor-confirmed refund. Idempotent per order:
// a second credit for the same order is a no-op.
func (s *service) creditRefund(ctx context.Context, poolID uuid.UUID, instruction refundInstruction, reference string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := repo.GetOrderByID(ctx, instruction.orderID)
		if err != nil {
			return err
		}
		if order.RefundReference != nil {
			return nil
		}
		order.RefundAmountCents += instruction.amount
		order.RefundReference = &reference
		if err := repo.UpdateOrder(ctx, order); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventRefundSucceeded,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Data: payloads.RefundSucceededEvent{
				OrderID:         order.ID,
				PoolID:          poolID,
				AmountCents:     instruction.amount,
				RefundReference: reference,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) failRefund(ctx context.Context, poolID uuid.UUID, instruction refundInstruction, attempts int, cause error) {
	s.metrics.IncRefundFailure()
	if s.logg != nil {
		s.logg.Error(s.logg.WithOrderID(ctx, instruction.orderID.String()), "refund retries exhausted", cause)
	}

	lastError := ""
	if cause != nil {
		lastError = cause.Error()
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		event := outbox.DomainEvent{
			EventType:     enums.EventRefundFailed,
			AggregateType: enums.AggregateOrder,
			AggregateID:   instruction.orderID,
			Version:       1,
			Data: payloads.RefundFailedEvent{
				OrderID:     instruction.orderID,
				PoolID:      poolID,
				AmountCents: instruction.amount,
				Attempts:    attempts,
				LastError:   lastError,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "emitting refund_failed event", err)
	}

	_, err = s.exceptions.Raise(ctx, exceptions.RaiseInput{
		ExceptionType: enums.ExceptionTypeRefundFailure,
		Severity:      enums.ExceptionSeverityCritical,
		ObjectType:    enums.AggregateOrder,
		ObjectID:      instruction.orderID,
		Summary: fmt.Sprintf("refund of %s for order %s failed after %d attempts",
			money.FormatCents(instruction.amount), instruction.orderID, attempts),
		AutoGenerated: true,
	})
	if err != nil && s.logg != nil {
		s.logg.Error(ctx, "raising refund failure exception", err)
	}
}
