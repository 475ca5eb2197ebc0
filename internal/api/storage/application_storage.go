package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/api/model"
	"github.com/lib/pq"
)

const applicationColumns = `
	application_id, job_id, worker_id, cover_letter, status, created_at, updated_at
`

func (s *Storage) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	query := `
		INSERT INTO job_applications (
			application_id, job_id, worker_id, cover_letter, status, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		app.ApplicationID,
		app.JobID,
		app.WorkerID,
		app.CoverLetter,
		app.Status,
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("failed to create application: %w", err)
	}

	return nil
}

func (s *Storage) GetApplicationByID(ctx context.Context, applicationID string) (*model.JobApplication, error) {
	var app model.JobApplication
	query := `SELECT ` + applicationColumns + ` FROM job_applications WHERE application_id = $1`

	err := s.db.GetContext(ctx, &app, query, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrApplicationNotFound
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	return &app, nil
}

// DecideApplication writes a terminal status onto a Pending application. The
// Pending guard sits in the WHERE clause, so of two near-simultaneous
// decisions only one sees a row updated; the boolean reports whether this
// caller won.
func (s *Storage) DecideApplication(ctx context.Context, applicationID, status string) (bool, error) {
	query := `
		UPDATE job_applications
		SET status = $1,
		    updated_at = NOW()
		WHERE application_id = $2
		  AND status = $3
	`

	result, err := s.db.ExecContext(ctx, query, status, applicationID, domain.ApplicationStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to decide application: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

func (s *Storage) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE job_id = $1
		ORDER BY created_at DESC
	`

	if err := s.db.SelectContext(ctx, &apps, query, jobID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}

func (s *Storage) ListApplicationsByWorker(ctx context.Context, workerID string) ([]model.JobApplication, error) {
	var apps []model.JobApplication
	query := `
		SELECT ` + applicationColumns + `
		FROM job_applications
		WHERE worker_id = $1
		ORDER BY created_at DESC
	`

	if err := s.db.SelectContext(ctx, &apps, query, workerID); err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	return apps, nil
}
