// internal/events/publisher.go
package events

import (
	"context"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v5"
	jsoniter "github.com/json-iterator/go"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Publisher is the outbound side of the component. Every caller that has
// already committed its local state change treats publication as
// fire-and-forget relative to that change.
type Publisher interface {
	Publish(ctx context.Context, event Event)
}

// Sink is the subset of kafka.Writer the publisher needs. Satisfied by
// *kafka.Writer and by fakes in tests.
type Sink interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

// envelope is the wire shape: a type discriminator around the variant body.
type envelope struct {
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       Event     `json:"data"`
}

// KafkaPublisher appends loan events to a single topic keyed by loan ID.
// Transport errors are retried with exponential backoff; a failure that
// survives the retry budget is logged, never returned, because the state
// change the event describes is already committed.
type KafkaPublisher struct {
	sink       Sink
	logger     *slog.Logger
	tracer     trace.Tracer
	maxElapsed time.Duration
}

func NewKafkaPublisher(sink Sink, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{
		sink:       sink,
		logger:     logger,
		tracer:     otel.Tracer("lendflow/events"),
		maxElapsed: 30 * time.Second,
	}
}

func (p *KafkaPublisher) Publish(ctx context.Context, event Event) {
	ctx, span := p.tracer.Start(ctx, "events.publish",
		trace.WithAttributes(
			attribute.String("event.type", event.EventType()),
			attribute.String("loan.id", event.PartitionKey().String()),
		),
	)
	defer span.End()

	payload, err := json.Marshal(envelope{
		Type:       event.EventType(),
		OccurredAt: time.Now().UTC(),
		Data:       event,
	})
	if err != nil {
		span.RecordError(err)
		p.logger.Error("failed to marshal loan event",
			slog.String("event_type", event.EventType()),
			slog.String("loan_id", event.PartitionKey().String()),
			slog.Any("error", err),
		)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.PartitionKey().String()),
		Value: payload,
	}

	operation := func() (struct{}, error) {
		return struct{}{}, p.sink.WriteMessages(ctx, msg)
	}

	_, err = backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(p.maxElapsed),
	)
	if err != nil {
		span.RecordError(err)
		p.logger.Error("giving up publishing loan event",
			slog.String("event_type", event.EventType()),
			slog.String("loan_id", event.PartitionKey().String()),
			slog.Any("error", err),
		)
		return
	}

	span.SetAttributes(attribute.Bool("publish.success", true))
}
