// Package service implements the marketplace workflows: job lifecycle,
// application decisions, and payment settlement. Services validate
// preconditions, delegate conditional writes to storage, and emit
// best-effort notification events.
package service

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/colabsdev/colabs-be/internal/api/model"
	"github.com/colabsdev/colabs-be/internal/events"
	"github.com/colabsdev/colabs-be/internal/gateway/chapa"
)

// JobStore is the job persistence surface used by the services.
type JobStore interface {
	CreateJob(ctx context.Context, job *model.Job) error
	GetJobByID(ctx context.Context, jobID string) (*model.Job, error)
	ListAvailableJobs(ctx context.Context, limit, offset int) ([]model.Job, int, error)
	AdvanceJobToPending(ctx context.Context, jobID, workerID string) error
	ActivateJob(ctx context.Context, jobID, workerID string) error
	MarkJobReady(ctx context.Context, jobID string, files []string) (bool, error)
	CompleteJob(ctx context.Context, jobID string) (*model.Job, bool, error)
	AddTeamMembers(ctx context.Context, jobID string, members []string) (*model.Job, error)
	DeleteJob(ctx context.Context, jobID string) (bool, error)
}

// ApplicationStore is the application persistence surface.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *model.JobApplication) error
	GetApplicationByID(ctx context.Context, applicationID string) (*model.JobApplication, error)
	DecideApplication(ctx context.Context, applicationID, status string) (bool, error)
	ListApplicationsByJob(ctx context.Context, jobID string) ([]model.JobApplication, error)
	ListApplicationsByWorker(ctx context.Context, workerID string) ([]model.JobApplication, error)
}

// PaymentStore is the payment persistence surface. SettlePayment carries the
// compare-and-swap that keeps settlement exactly-once.
type PaymentStore interface {
	CreatePayment(ctx context.Context, p *model.Payment) error
	GetPaymentByTxRef(ctx context.Context, txRef string) (*model.Payment, error)
	SettlePayment(ctx context.Context, txRef string) (*model.Payment, bool, error)
}

// UserStore is the user lookup surface. User provisioning itself lives
// outside this service.
type UserStore interface {
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	UpdateBankInfo(ctx context.Context, userID, subAccountID, bankCode, accountNumber, accountName, businessName string) error
}

// EventPublisher delivers fire-and-forget notification events.
type EventPublisher interface {
	Publish(ctx context.Context, evt events.Envelope) error
}

// Gateway is the payment gateway surface used by the settlement coordinator.
type Gateway interface {
	InitializeTransaction(ctx context.Context, req chapa.InitializeRequest) (*chapa.Checkout, error)
	VerifyTransaction(ctx context.Context, txRef string) (json.RawMessage, error)
	CreateSubAccount(ctx context.Context, req chapa.SubAccountRequest) (string, error)
	ListBanks(ctx context.Context) (json.RawMessage, error)
}

// publishEvent builds and publishes an envelope, logging failures instead of
// propagating them: notification dispatch never rolls back a state change.
func publishEvent(ctx context.Context, publisher EventPublisher, logger *slog.Logger, eventType string, payload interface{}) {
	evt, err := events.NewEnvelope(eventType, payload)
	if err != nil {
		logger.Error("Failed to build event",
			slog.String("type", eventType),
			slog.Any("error", err),
		)
		return
	}

	if err := publisher.Publish(ctx, evt); err != nil {
		logger.Error("Failed to publish event",
			slog.String("type", eventType),
			slog.String("event_id", evt.EventID),
			slog.Any("error", err),
		)
	}
}
