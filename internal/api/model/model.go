package model

import (
	"time"

	"github.com/lib/pq"
)

// Job is a unit of paid work posted by an employer.
type Job struct {
	JobID           string         `db:"job_id"`
	OwnerID         string         `db:"owner_id"`
	Title           string         `db:"title"`
	Description     string         `db:"description"`
	Earnings        int64          `db:"earnings"`
	Requirements    pq.StringArray `db:"requirements"`
	Workers         pq.StringArray `db:"workers"`
	PendingWorkers  pq.StringArray `db:"pending_workers"`
	FilesReady      pq.StringArray `db:"files_ready"`
	Status          string         `db:"status"`
	PaymentVerified bool           `db:"payment_verified"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

// JobApplication is a worker's request to perform a specific job.
type JobApplication struct {
	ApplicationID string    `db:"application_id"`
	JobID         string    `db:"job_id"`
	WorkerID      string    `db:"worker_id"`
	CoverLetter   string    `db:"cover_letter"`
	Status        string    `db:"status"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Payment records one financial settlement tied to a job/worker pair and a
// gateway transaction reference.
type Payment struct {
	PaymentID    string     `db:"payment_id"`
	TxRef        string     `db:"tx_ref"`
	JobID        string     `db:"job_id"`
	FreelancerID string     `db:"freelancer_id"`
	EmployerID   string     `db:"employer_id"`
	Amount       int64      `db:"amount"`
	Currency     string     `db:"currency"`
	Status       string     `db:"status"`
	PaidAt       *time.Time `db:"paid_at"`
	CreatedAt    time.Time  `db:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at"`
}

// User is a marketplace participant. Earnings is a monotonically increasing
// accumulator credited only by a first-time payment settlement.
type User struct {
	UserID        string    `db:"user_id"`
	FirstName     string    `db:"first_name"`
	LastName      string    `db:"last_name"`
	Email         string    `db:"email"`
	Role          string    `db:"role"`
	Earnings      int64     `db:"earnings"`
	SubAccountID  string    `db:"sub_account_id"`
	BankCode      string    `db:"bank_code"`
	AccountNumber string    `db:"account_number"`
	AccountName   string    `db:"account_name"`
	BusinessName  string    `db:"business_name"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// Notification is a best-effort message to a user, written by the notifier
// service when it consumes a marketplace event.
type Notification struct {
	NotificationID string    `db:"notification_id"`
	UserID         string    `db:"user_id"`
	Title          string    `db:"title"`
	Message        string    `db:"message"`
	Read           bool      `db:"read"`
	CreatedAt      time.Time `db:"created_at"`
}
