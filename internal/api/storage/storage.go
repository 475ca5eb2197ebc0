package storage

import (
	"errors"

	"github.com/colabsdev/colabs-be/shared/postgresql"
	"github.com/jmoiron/sqlx"
)

var (
	ErrJobNotFound         = errors.New("job not found")
	ErrApplicationNotFound = errors.New("job application not found")
	ErrPaymentNotFound     = errors.New("payment not found")
	ErrUserNotFound        = errors.New("user not found")

	// ErrDuplicateApplication maps the partial unique index on
	// (job_id, worker_id) for non-cancelled applications.
	ErrDuplicateApplication = errors.New("already applied for this job")
)

// Storage bundles all repository operations for the API service.
type Storage struct {
	db *sqlx.DB
}

func NewStorage(pg *postgresql.Client) *Storage {
	return &Storage{db: pg.GetDB()}
}
