package consumer

import (
	"context"
	"encoding/json"

	"go-leave/internal/events"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageReader is the subset of *kafkago.Reader the consumers need.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafkago.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafkago.Message) error
}

// Notifier delivers lifecycle facts to people. Delivery channels live
// outside this service.
type Notifier interface {
	Notify(ctx context.Context, event events.LeaveLifecycleEvent) error
}

// LogNotifier writes each fact to the log. It is the default Notifier.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

func (n *LogNotifier) Notify(_ context.Context, event events.LeaveLifecycleEvent) error {
	n.logger.Info("leave lifecycle notification",
		zap.String("event_type", event.EventType),
		zap.String("leave_id", event.LeaveID),
		zap.String("employee_id", event.EmployeeID),
		zap.String("actor_id", event.ActorID),
		zap.String("status", event.Status),
		zap.Int("days", event.Days),
	)
	return nil
}

// ConsumeLeaveLifecycle hands every leave lifecycle event to notifier. A
// message is committed once notified or once found undecodable; a notifier
// error leaves it uncommitted for redelivery.
func ConsumeLeaveLifecycle(
	ctx context.Context,
	reader MessageReader,
	notifier Notifier,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.leave_lifecycle")
	log.Info("leave lifecycle consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("leave lifecycle consumer stopped")
				return
			}
			log.Error("fetch leave lifecycle message failed", zap.Error(err))
			continue
		}

		handleLeaveLifecycleMessage(ctx, reader, notifier, log, msg)
	}
}

func handleLeaveLifecycleMessage(
	ctx context.Context,
	reader MessageReader,
	notifier Notifier,
	log *zap.Logger,
	msg kafkago.Message,
) {
	var event events.LeaveLifecycleEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Error("decode leave lifecycle event failed", zap.Int64("offset", msg.Offset), zap.Error(err))
		_ = reader.CommitMessages(ctx, msg)
		return
	}

	if err := notifier.Notify(ctx, event); err != nil {
		log.Error("notify leave lifecycle event failed",
			zap.String("leave_id", event.LeaveID),
			zap.String("event_type", event.EventType),
			zap.Error(err),
		)
		return
	}

	if err := reader.CommitMessages(ctx, msg); err != nil {
		log.Error("commit leave lifecycle message failed", zap.Error(err))
		return
	}

	log.Debug("leave lifecycle event handled",
		zap.String("leave_id", event.LeaveID),
		zap.String("event_type", event.EventType),
	)
}
