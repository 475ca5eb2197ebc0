package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/colabsdev/colabs-be/shared/rabbitmq"
)

// Publisher sends event envelopes to the notifications exchange. Publishing
// is best-effort: callers log failures and never roll back the state change
// that produced the event.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		logger: logger,
	}
}

// Publish marshals the envelope and hands it to RabbitMQ with the client's
// retry policy.
func (p *Publisher) Publish(ctx context.Context, evt Envelope) error {
	body, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	p.logger.Debug("Event published",
		slog.String("event_id", evt.EventID),
		slog.String("type", evt.Type),
	)

	return nil
}
