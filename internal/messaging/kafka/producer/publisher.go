package producer

import (
	"context"
	"time"

	"go-leave/internal/messaging/kafka"

	kafkago "github.com/segmentio/kafka-go"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// MessageWriter is the subset of *kafkago.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// BreakerWriter stops hammering a broker that keeps failing. While open,
// writes fail fast with gobreaker.ErrOpenState and the outbox row is retried
// on a later poll.
type BreakerWriter struct {
	next MessageWriter
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerWriter(next MessageWriter, logger *zap.Logger) *BreakerWriter {
	log := logger.Named("kafka.producer.breaker")
	settings := gobreaker.Settings{
		Name:        "kafka-writer",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
	}

	return &BreakerWriter{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

func (w *BreakerWriter) WriteMessages(ctx context.Context, msgs ...kafkago.Message) error {
	_, err := w.cb.Execute(func() (interface{}, error) {
		return nil, w.next.WriteMessages(ctx, msgs...)
	})
	return err
}

func (w *BreakerWriter) State() gobreaker.State {
	return w.cb.State()
}

func publishEvent(ctx context.Context, writer MessageWriter, event kafka.OutboxEvent) error {
	headers := []kafkago.Header{
		{Key: "event_type", Value: []byte(event.EventType)},
		{Key: "aggregate_type", Value: []byte(event.AggregateType)},
		{Key: "outbox_id", Value: []byte(event.ID)},
	}
	if event.RequestID != "" {
		headers = append(headers, kafkago.Header{Key: "request_id", Value: []byte(event.RequestID)})
	}

	msg := kafkago.Message{
		Topic:   event.Topic,
		Key:     []byte(event.AggregateID),
		Value:   event.Payload,
		Headers: headers,
	}

	return writer.WriteMessages(ctx, msg)
}
