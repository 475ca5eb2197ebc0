// Package events defines the marketplace event envelope exchanged between
// the API service and the notifier service over RabbitMQ.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Event types consumed by the notifier service.
const (
	TypeApplicationSubmitted = "application.submitted"
	TypeApplicationAccepted  = "application.accepted"
	TypeApplicationRejected  = "application.rejected"
	TypeJobReady             = "job.ready"
	TypeJobCompleted         = "job.completed"
	TypeTeamJoined           = "job.team_joined"
	TypePaymentSettled       = "payment.settled"
)

// Envelope wraps one event on the wire.
type Envelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope builds an envelope with a fresh event id around the given
// payload.
func NewEnvelope(eventType string, payload interface{}) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, fmt.Errorf("failed to marshal event payload: %w", err)
	}

	return Envelope{
		EventID:    uuid.New().String(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// ApplicationSubmitted notifies a job owner of a new application.
type ApplicationSubmitted struct {
	JobID      string `json:"job_id"`
	JobTitle   string `json:"job_title"`
	OwnerID    string `json:"owner_id"`
	WorkerID   string `json:"worker_id"`
	WorkerName string `json:"worker_name"`
}

// ApplicationDecided notifies an applicant of an accept or reject decision.
// The notifier sends the e-mail with a deep link to the job.
type ApplicationDecided struct {
	ApplicationID string `json:"application_id"`
	JobID         string `json:"job_id"`
	JobTitle      string `json:"job_title"`
	WorkerID      string `json:"worker_id"`
	WorkerEmail   string `json:"worker_email"`
}

// JobReady notifies the owner that delivered files are ready for review.
type JobReady struct {
	JobID    string `json:"job_id"`
	JobTitle string `json:"job_title"`
	OwnerID  string `json:"owner_id"`
}

// JobCompleted notifies every worker on the job of its completion.
type JobCompleted struct {
	JobID     string   `json:"job_id"`
	JobTitle  string   `json:"job_title"`
	WorkerIDs []string `json:"worker_ids"`
}

// TeamJoined notifies workers added to a job's team.
type TeamJoined struct {
	JobID     string   `json:"job_id"`
	JobTitle  string   `json:"job_title"`
	OwnerName string   `json:"owner_name"`
	WorkerIDs []string `json:"worker_ids"`
}

// PaymentSettled records a finished settlement for downstream consumers.
type PaymentSettled struct {
	TxRef        string `json:"tx_ref"`
	JobID        string `json:"job_id"`
	JobTitle     string `json:"job_title"`
	FreelancerID string `json:"freelancer_id"`
	Amount       int64  `json:"amount"`
}
