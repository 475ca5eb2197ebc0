package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/colabsdev/colabs-be/internal/notifier/domain"
)

// spawnWorkerPool spawns N worker goroutines based on concurrency configuration
func (n *Notifier) spawnWorkerPool(ctx context.Context) {
	n.logger.Info("Spawning worker pool",
		slog.Int("concurrency", n.concurrency),
		slog.String("notifier_id", n.notifierID),
	)

	for i := 0; i < n.concurrency; i++ {
		n.wg.Add(1)
		go n.workerLoop(ctx, i)
	}
}

// workerLoop is the main processing loop for each worker goroutine
func (n *Notifier) workerLoop(ctx context.Context, workerNum int) {
	defer n.wg.Done()

	workerName := fmt.Sprintf("%s-%d", n.notifierID, workerNum)
	n.logger.Info("Worker goroutine started",
		slog.String("worker_name", workerName),
	)

	for {
		select {
		case <-n.stopChan:
			n.logger.Info("Worker goroutine stopping - stopChan closed",
				slog.String("worker_name", workerName),
			)
			return

		case <-ctx.Done():
			n.logger.Info("Worker goroutine stopping - context canceled",
				slog.String("worker_name", workerName),
			)
			return

		case msg, ok := <-n.eventsChan:
			if !ok {
				n.logger.Info("Worker goroutine stopping - events channel closed",
					slog.String("worker_name", workerName),
				)
				return
			}

			err := n.processEvent(ctx, msg)

			channel := n.rabbitClient.GetChannel()
			if channel == nil {
				n.logger.Error("Failed to get RabbitMQ channel for ACK/NACK",
					slog.String("worker_name", workerName),
					slog.String("event_id", msg.Envelope.EventID),
				)
				continue
			}

			if err != nil {
				n.logger.Error("Event processing failed",
					slog.String("worker_name", workerName),
					slog.String("event_id", msg.Envelope.EventID),
					slog.String("type", msg.Envelope.Type),
					slog.String("error", err.Error()),
				)

				requeue := n.shouldRequeueEvent(err)

				if nackErr := channel.Nack(msg.DeliveryTag, false, requeue); nackErr != nil {
					n.logger.Error("Failed to NACK message",
						slog.String("worker_name", workerName),
						slog.String("event_id", msg.Envelope.EventID),
						slog.String("error", nackErr.Error()),
					)
				} else {
					n.logger.Info("Message NACKed",
						slog.String("worker_name", workerName),
						slog.String("event_id", msg.Envelope.EventID),
						slog.Bool("requeue", requeue),
					)
				}
			} else {
				if ackErr := channel.Ack(msg.DeliveryTag, false); ackErr != nil {
					n.logger.Error("Failed to ACK message",
						slog.String("worker_name", workerName),
						slog.String("event_id", msg.Envelope.EventID),
						slog.String("error", ackErr.Error()),
					)
				} else {
					n.logger.Debug("Event processed",
						slog.String("worker_name", workerName),
						slog.String("event_id", msg.Envelope.EventID),
						slog.String("type", msg.Envelope.Type),
					)
				}
			}
		}
	}
}

// shouldRequeueEvent determines if an event should be requeued based on the
// error type
func (n *Notifier) shouldRequeueEvent(err error) bool {
	// Don't requeue events the notifier can never handle
	if errors.Is(err, domain.ErrInvalidPayload) {
		return false
	}

	if errors.Is(err, domain.ErrUnknownEventType) {
		return false
	}

	// Requeue for transient/retryable errors
	var retryableErr *domain.RetryableError
	if errors.As(err, &retryableErr) {
		return true
	}

	// Default: don't requeue for unknown errors
	return false
}
