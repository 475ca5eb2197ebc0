package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/colabsdev/colabs-be/internal/events"
	"github.com/colabsdev/colabs-be/internal/notifier/domain"
	"github.com/colabsdev/colabs-be/internal/telemetry"
)

// processEvent handles a single event envelope with a per-event timeout.
// Database failures are retryable; payload and type failures are not.
func (n *Notifier) processEvent(ctx context.Context, msg *domain.EventMessage) error {
	eventCtx, cancel := context.WithTimeout(ctx, n.eventTimeout)
	defer cancel()

	envelope := msg.Envelope

	n.logger.Info("Processing event",
		slog.String("event_id", envelope.EventID),
		slog.String("type", envelope.Type),
	)

	switch envelope.Type {
	case events.TypeApplicationSubmitted:
		return n.handleApplicationSubmitted(eventCtx, envelope.Payload)
	case events.TypeApplicationAccepted:
		return n.handleApplicationDecided(eventCtx, envelope.Payload, true)
	case events.TypeApplicationRejected:
		return n.handleApplicationDecided(eventCtx, envelope.Payload, false)
	case events.TypeJobReady:
		return n.handleJobReady(eventCtx, envelope.Payload)
	case events.TypeJobCompleted:
		return n.handleJobCompleted(eventCtx, envelope.Payload)
	case events.TypeTeamJoined:
		return n.handleTeamJoined(eventCtx, envelope.Payload)
	case events.TypePaymentSettled:
		return n.handlePaymentSettled(eventCtx, envelope.Payload)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownEventType, envelope.Type)
	}
}

func (n *Notifier) handleApplicationSubmitted(ctx context.Context, payload json.RawMessage) error {
	var evt events.ApplicationSubmitted
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	message := fmt.Sprintf("%s applied to %s", evt.WorkerName, evt.JobTitle)
	if err := n.storage.InsertNotification(ctx, evt.OwnerID, "Your job has new application", message); err != nil {
		return domain.NewRetryableError(err)
	}

	telemetry.NotificationsWritten.Inc()
	return nil
}

func (n *Notifier) handleApplicationDecided(ctx context.Context, payload json.RawMessage, accepted bool) error {
	var evt events.ApplicationDecided
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	var title, decision, subject, body string
	if accepted {
		title = "Proposal accepted"
		decision = "accepted"
		subject, body = acceptanceMail(evt.JobTitle, evt.JobID, n.frontendURL)
	} else {
		title = "Proposal declined"
		decision = "declined"
		subject, body = rejectionMail(evt.JobTitle, evt.JobID, n.frontendURL)
	}

	message := fmt.Sprintf("Your proposal for %s has been %s", evt.JobTitle, decision)
	if err := n.storage.InsertNotification(ctx, evt.WorkerID, title, message); err != nil {
		return domain.NewRetryableError(err)
	}
	telemetry.NotificationsWritten.Inc()

	email := evt.WorkerEmail
	if email == "" {
		looked, err := n.storage.GetUserEmail(ctx, evt.WorkerID)
		if err != nil {
			// Notification row is already written; mail is best effort
			n.logger.Warn("Failed to resolve applicant email, skipping mail",
				slog.String("worker_id", evt.WorkerID),
				slog.String("error", err.Error()),
			)
			return nil
		}
		email = looked
	}

	if err := n.mailer.Send(ctx, email, subject, body); err != nil {
		n.logger.Warn("Failed to send decision mail",
			slog.String("worker_id", evt.WorkerID),
			slog.String("error", err.Error()),
		)
	}

	return nil
}

func (n *Notifier) handleJobReady(ctx context.Context, payload json.RawMessage) error {
	var evt events.JobReady
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	message := fmt.Sprintf("%s has delivered files waiting for your review", evt.JobTitle)
	if err := n.storage.InsertNotification(ctx, evt.OwnerID, "Files Ready", message); err != nil {
		return domain.NewRetryableError(err)
	}

	telemetry.NotificationsWritten.Inc()
	return nil
}

func (n *Notifier) handleJobCompleted(ctx context.Context, payload json.RawMessage) error {
	var evt events.JobCompleted
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	title := fmt.Sprintf("%s Completed", evt.JobTitle)
	message := fmt.Sprintf("%s has been marked completed and paid out", evt.JobTitle)
	if err := n.storage.InsertNotifications(ctx, evt.WorkerIDs, title, message); err != nil {
		return domain.NewRetryableError(err)
	}

	telemetry.NotificationsWritten.Add(float64(len(evt.WorkerIDs)))
	return nil
}

func (n *Notifier) handleTeamJoined(ctx context.Context, payload json.RawMessage) error {
	var evt events.TeamJoined
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	message := fmt.Sprintf("%s added you to the team for %s", evt.OwnerName, evt.JobTitle)
	if err := n.storage.InsertNotifications(ctx, evt.WorkerIDs, "Joined a job team", message); err != nil {
		return domain.NewRetryableError(err)
	}

	telemetry.NotificationsWritten.Add(float64(len(evt.WorkerIDs)))
	return nil
}

func (n *Notifier) handlePaymentSettled(ctx context.Context, payload json.RawMessage) error {
	var evt events.PaymentSettled
	if err := json.Unmarshal(payload, &evt); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}

	message := fmt.Sprintf("Payment of %d ETB for %s has been settled", evt.Amount, evt.JobTitle)
	if err := n.storage.InsertNotification(ctx, evt.FreelancerID, "Payment received", message); err != nil {
		return domain.NewRetryableError(err)
	}

	telemetry.NotificationsWritten.Inc()
	return nil
}
