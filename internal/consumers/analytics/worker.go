package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"

	"github.com/quayside/quayside-backend/pkg/enums"
	"github.com/quayside/quayside-backend/pkg/logger"
	"github.com/quayside/quayside-backend/pkg/outbox"
)

type processor interface {
	Process(ctx context.Context, eventType enums.OutboxEventType, envelope outbox.PayloadEnvelope) error
}

// Worker pumps domain events from Pub/Sub into the processor. Malformed
// messages are acked and dropped; transient processor failures nack so
// Pub/Sub redelivers.
type Worker struct {
	subscription *gcppubsub.Subscriber
	processor    processor
	logg         *logger.Logger
}

// NewWorker creates a new analytics worker.
func NewWorker(subscription *gcppubsub.Subscriber, proc processor, logg *logger.Logger) (*Worker, error) {
	if subscription == nil {
		return nil, errors.New("domain subscription is required")
	}
	if proc == nil {
		return nil, errors.New("processor is required")
	}
	if logg == nil {
		return nil, errors.New("logger is required")
	}
	return &Worker{
		subscription: subscription,
		processor:    proc,
		logg:         logg,
	}, nil
}

type processResult struct {
	nack bool
}

// Run consumes messages until the context is canceled.
func (w *Worker) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return w.subscription.Receive(ctx, func(innerCtx context.Context, msg *gcppubsub.Message) {
		if w.process(innerCtx, msg).nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

func (w *Worker) process(ctx context.Context, msg *gcppubsub.Message) processResult {
	fields := map[string]any{"message_id": msg.ID}

	eventType, envelope, err := decodeMessage(msg)
	if err != nil {
		fields["error"] = err.Error()
		w.logg.Warn(w.logg.WithFields(ctx, fields), "invalid domain event message")
		return processResult{}
	}

	fields["event_id"] = envelope.EventID
	fields["event_type"] = eventType
	fields["occurred_at"] = envelope.OccurredAt.Format(time.RFC3339Nano)
	logCtx := w.logg.WithFields(ctx, fields)

	if err := w.processor.Process(logCtx, eventType, envelope); err != nil {
		w.logg.Error(logCtx, "domain event processing failed", err)
		return processResult{nack: true}
	}
	return processResult{}
}

func decodeMessage(msg *gcppubsub.Message) (enums.OutboxEventType, outbox.PayloadEnvelope, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		return "", outbox.PayloadEnvelope{}, fmt.Errorf("decode payload envelope: %w", err)
	}
	eventType, err := enums.ParseOutboxEventType(strings.TrimSpace(msg.Attributes["event_type"]))
	if err != nil {
		return "", outbox.PayloadEnvelope{}, fmt.Errorf("event_type: %w", err)
	}
	return eventType, envelope, nil
}
