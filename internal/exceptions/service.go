package exceptions

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
	"github.com/quayside/quayside-backend/pkg/outbox"
	"github.com/quayside/quayside-backend/pkg/outbox/payloads"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// RaiseInput describes a detected condition worth ops attention.
type RaiseInput struct {
	ExceptionType enums.ExceptionType
	Severity      enums.ExceptionSeverity
	ObjectType    enums.OutboxAggregateType
	ObjectID      uuid.UUID
	Summary       string
	AutoGenerated bool
}

// TransitionInput moves an exception one step through the triage pipeline.
type TransitionInput struct {
	ExceptionID uuid.UUID
	Target      enums.ExceptionStatus
	ActorUserID uuid.UUID
	ActorRole   string
}

// Service owns the exception feed: dedupe on raise, forward-only triage.
type Service interface {
	Raise(ctx context.Context, input RaiseInput) (*models.OpsException, error)
	Transition(ctx context.Context, input TransitionInput) (*models.OpsException, error)
	Get(ctx context.Context, exceptionID uuid.UUID) (*models.OpsException, error)
	List(ctx context.Context, filter Filter) ([]models.OpsException, error)
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	now    func() time.Time
}

// NewService wires the exception escalator's write path.
func NewService(repo Repository, tx txRunner, outboxSvc outboxPublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("exceptions repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if outboxSvc == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{repo: repo, tx: tx, outbox: outboxSvc, now: time.Now}, nil
}

// Raise opens an exception, or escalates the already-open one for the same
// (object_type, object_id, exception_type) key instead of duplicating it.
func (s *service) Raise(ctx context.Context, input RaiseInput) (*models.OpsException, error) {
	if !input.ExceptionType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid exception type %q", input.ExceptionType))
	}
	if !input.Severity.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid severity %q", input.Severity))
	}
	if !input.ObjectType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid object type %q", input.ObjectType))
	}
	if input.ObjectID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "object id is required")
	}
	if input.Summary == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "summary is required")
	}

	var result *models.OpsException
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		existing, err := repo.FindOpenByObject(ctx, input.ObjectType, input.ObjectID, input.ExceptionType)
		if err != nil {
			return err
		}
		if existing != nil {
			return s.escalate(ctx, tx, repo, existing, &result)
		}

		exception := &models.OpsException{
			ExceptionType: input.ExceptionType,
			Severity:      input.Severity,
			Status:        enums.ExceptionStatusOpen,
			ObjectType:    input.ObjectType,
			ObjectID:      input.ObjectID,
			Summary:       input.Summary,
			AutoGenerated: input.AutoGenerated,
			DetectedAt:    s.now().UTC(),
		}
		if err := repo.Create(ctx, exception); err != nil {
			// A concurrent raise won the partial unique index; escalate theirs.
			if dbpkg.IsUniqueViolation(err, "ux_ops_exceptions_open_object") {
				winner, findErr := repo.FindOpenByObject(ctx, input.ObjectType, input.ObjectID, input.ExceptionType)
				if findErr != nil {
					return findErr
				}
				if winner != nil {
					return s.escalate(ctx, tx, repo, winner, &result)
				}
			}
			return err
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventExceptionOpened,
			AggregateType: enums.AggregateException,
			AggregateID:   exception.ID,
			Version:       1,
			Data: payloads.ExceptionOpenedEvent{
				ExceptionID:   exception.ID,
				ExceptionType: exception.ExceptionType,
				Severity:      exception.Severity,
				ObjectType:    exception.ObjectType,
				ObjectID:      exception.ObjectID,
				Summary:       exception.Summary,
			},
		}
		if err := s.outbox.Emit(ctx, tx, event); err != nil {
			return err
		}
		result = exception
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) escalate(ctx context.Context, tx *gorm.DB, repo Repository, exception *models.OpsException, out **models.OpsException) error {
	exception.EscalationCount++
	if err := repo.Update(ctx, exception); err != nil {
		return err
	}
	event := outbox.DomainEvent{
		EventType:     enums.EventExceptionEscalate,
		AggregateType: enums.AggregateException,
		AggregateID:   exception.ID,
		Version:       1,
		Data: payloads.ExceptionEscalatedEvent{
			ExceptionID:     exception.ID,
			EscalationCount: exception.EscalationCount,
		},
	}
	if err := s.outbox.Emit(ctx, tx, event); err != nil {
		return err
	}
	*out = exception
	return nil
}

func (s *service) Transition(ctx context.Context, input TransitionInput) (*models.OpsException, error) {
	if input.ExceptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exception id is required")
	}
	if !input.Target.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.Target))
	}

	var updated *models.OpsException
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		exception, err := repo.GetByID(ctx, input.ExceptionID)
		if err != nil {
			return err
		}
		if !exception.Status.CanTransitionTo(input.Target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				fmt.Sprintf("cannot transition exception from %s to %s", exception.Status, input.Target))
		}

		exception.Status = input.Target
		if input.Target == enums.ExceptionStatusResolved {
			resolvedAt := s.now().UTC()
			exception.ResolvedAt = &resolvedAt
		}
		if err := repo.Update(ctx, exception); err != nil {
			return err
		}
		updated = exception
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, exceptionID uuid.UUID) (*models.OpsException, error) {
	if exceptionID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "exception id is required")
	}
	return s.repo.GetByID(ctx, exceptionID)
}

func (s *service) List(ctx context.Context, filter Filter) ([]models.OpsException, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", filter.Status))
	}
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 50
	}
	return s.repo.List(ctx, filter)
}
