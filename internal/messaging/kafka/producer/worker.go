package producer

import (
	"context"
	"time"

	"go-leave/internal/messaging/kafka"

	"go.uber.org/zap"
)

const (
	outboxBatchSize = 50
	// outboxLease covers one batch publish; unmarked rows are reclaimed after it.
	outboxLease = time.Minute
)

// ProcessOutboxEvents relays pending outbox rows to Kafka until ctx is done.
func ProcessOutboxEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
	pollInterval time.Duration,
) {
	if pollInterval <= 0 {
		pollInterval = 3 * time.Second
	}

	log := logger.Named("kafka.producer.worker")
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	log.Info("outbox worker started", zap.Duration("poll_interval", pollInterval))

	for {
		select {
		case <-ctx.Done():
			log.Info("outbox worker stopped")
			return
		case <-ticker.C:
			if err := ProcessPendingEvents(ctx, repo, writer, log); err != nil {
				log.Error("process outbox events failed", zap.Error(err))
			}
		}
	}
}

// ProcessPendingEvents publishes one claimed batch. Publish failures are
// recorded on the row and do not stop the batch, but later events of the
// failed aggregate are left unmarked so they never overtake it.
func ProcessPendingEvents(
	ctx context.Context,
	repo kafka.OutboxRepository,
	writer MessageWriter,
	logger *zap.Logger,
) error {
	events, err := repo.ClaimPending(ctx, outboxBatchSize, outboxLease)
	if err != nil {
		return err
	}

	if len(events) == 0 {
		return nil
	}

	logger.Info("processing pending outbox events", zap.Int("count", len(events)))

	blocked := make(map[string]struct{})
	for _, event := range events {
		if _, ok := blocked[event.AggregateID]; ok {
			logger.Warn("outbox event held behind failed aggregate event",
				zap.String("outbox_id", event.ID),
				zap.String("aggregate_id", event.AggregateID),
			)
			continue
		}

		if err := publishEvent(ctx, writer, event); err != nil {
			blocked[event.AggregateID] = struct{}{}
			logger.Error("publish outbox event failed",
				zap.String("outbox_id", event.ID),
				zap.String("event_type", event.EventType),
				zap.String("topic", event.Topic),
				zap.Int("attempt", event.RetryCount+1),
				zap.Error(err),
			)
			if event.RetryCount+1 >= kafka.MaxOutboxAttempts {
				logger.Warn("outbox event parked after max attempts", zap.String("outbox_id", event.ID))
			}
			if markErr := repo.MarkFailed(ctx, event.ID, err.Error()); markErr != nil {
				logger.Error("mark outbox failed failed", zap.String("outbox_id", event.ID), zap.Error(markErr))
			}
			continue
		}

		if err := repo.MarkSent(ctx, event.ID); err != nil {
			logger.Error("mark outbox sent failed",
				zap.String("outbox_id", event.ID),
				zap.Error(err),
			)
			continue
		}

		logger.Info("outbox event sent",
			zap.String("outbox_id", event.ID),
			zap.String("event_type", event.EventType),
			zap.String("topic", event.Topic),
		)
	}

	return nil
}
