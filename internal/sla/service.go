package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/quayside/quayside-backend/pkg/db/models"
	"github.com/quayside/quayside-backend/pkg/enums"
	pkgerrors "github.com/quayside/quayside-backend/pkg/errors"
	"github.com/quayside/quayside-backend/pkg/outbox"
	"github.com/quayside/quayside-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// Service tracks delivery SLA outcomes and audited target overrides.
type Service interface {
	RecordDelivered(ctx context.Context, deliveryID uuid.UUID, deliveredAt time.Time) (*models.Delivery, error)
	Override(ctx context.Context, input OverrideInput) (*models.Delivery, error)
}

// OverrideInput captures an explicit, audited SLA target change.
type OverrideInput struct {
	DeliveryID   uuid.UUID
	NewSLATarget time.Time
	Reason       string
	ActorUserID  uuid.UUID
	ActorRole    string
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
}

// NewService wires the SLA tracker.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sla repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc}, nil
}

func (s *service) RecordDelivered(ctx context.Context, deliveryID uuid.UUID, deliveredAt time.Time) (*models.Delivery, error) {
	if deliveryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id is required")
	}
	if deliveredAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivered_at is required")
	}

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		delivery, err := repo.GetDeliveryByID(ctx, deliveryID)
		if err != nil {
			return err
		}
		if delivery.DeliveredAt != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "delivery already recorded")
		}

		variance := VarianceMinutes(deliveredAt, delivery.SLATargetTime)
		delivery.DeliveredAt = &deliveredAt
		delivery.SLAVarianceMinutes = &variance
		delivery.Status = enums.DeliveryStatusDelivered
		if err := repo.UpdateDelivery(ctx, delivery); err != nil {
			return err
		}
		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Override(ctx context.Context, input OverrideInput) (*models.Delivery, error) {
	if input.DeliveryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery id is required")
	}
	if input.NewSLATarget.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "new sla target is required")
	}

	var updated *models.Delivery
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		delivery, err := repo.GetDeliveryByID(ctx, input.DeliveryID)
		if err != nil {
			return err
		}
		if delivery.DeliveredAt != nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "delivery already completed")
		}

		oldTarget := delivery.SLATargetTime
		delivery.SLATargetTime = input.NewSLATarget
		if err := repo.UpdateDelivery(ctx, delivery); err != nil {
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventSLAOverridden,
			AggregateType: enums.AggregateDelivery,
			AggregateID:   delivery.ID,
			Actor:         &outbox.ActorRef{UserID: input.ActorUserID, Role: input.ActorRole},
			Version:       1,
			Data: payloads.SLAOverriddenEvent{
				DeliveryID:   delivery.ID,
				OldSLATarget: oldTarget,
				NewSLATarget: input.NewSLATarget,
				Reason:       input.Reason,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		updated = delivery
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
