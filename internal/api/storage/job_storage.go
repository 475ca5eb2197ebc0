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

const jobColumns = `
	job_id, owner_id, title, description, earnings, requirements,
	workers, pending_workers, files_ready, status, payment_verified,
	created_at, updated_at
`

func (s *Storage) CreateJob(ctx context.Context, job *model.Job) error {
	query := `
		INSERT INTO jobs (
			job_id, owner_id, title, description, earnings, requirements,
			workers, pending_workers, files_ready, status, payment_verified,
			created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11,
			$12, $13
		)
	`

	_, err := s.db.ExecContext(
		ctx,
		query,
		job.JobID,
		job.OwnerID,
		job.Title,
		job.Description,
		job.Earnings,
		job.Requirements,
		job.Workers,
		job.PendingWorkers,
		job.FilesReady,
		job.Status,
		job.PaymentVerified,
		job.CreatedAt,
		job.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create job: %w", err)
	}

	return nil
}

func (s *Storage) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	var job model.Job
	query := `SELECT ` + jobColumns + ` FROM jobs WHERE job_id = $1`

	err := s.db.GetContext(ctx, &job, query, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	return &job, nil
}

// ListAvailableJobs returns the public listing of jobs open for applications,
// along with the total count for the caller's pagination.
func (s *Storage) ListAvailableJobs(ctx context.Context, limit, offset int) ([]model.Job, int, error) {
	var jobs []model.Job
	query := `
		SELECT ` + jobColumns + `
		FROM jobs
		WHERE status = $1
		ORDER BY created_at DESC, job_id DESC
		LIMIT $2 OFFSET $3
	`

	err := s.db.SelectContext(ctx, &jobs, query, domain.JobStatusAvailable, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list jobs: %w", err)
	}

	var total int
	err = s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM jobs WHERE status = $1`, domain.JobStatusAvailable)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count jobs: %w", err)
	}

	return jobs, total, nil
}

// AdvanceJobToPending moves a job to Pending when an application arrives and
// appends the worker to pending_workers. The write is guarded so it is
// idempotent per worker: a second application attempt changes nothing.
func (s *Storage) AdvanceJobToPending(ctx context.Context, jobID, workerID string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    pending_workers = array_append(pending_workers, $2),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status IN ($1, $4)
		  AND NOT ($2 = ANY(pending_workers))
	`

	result, err := s.db.ExecContext(ctx, query, domain.JobStatusPending, workerID, jobID, domain.JobStatusAvailable)
	if err != nil {
		return fmt.Errorf("failed to advance job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		// Either the job is gone or the worker is already queued; only the
		// former is an error.
		if _, err := s.GetJobByID(ctx, jobID); err != nil {
			return err
		}
	}

	return nil
}

// ActivateJob promotes a worker from pending_workers to workers when their
// application is accepted and moves the job to Active.
func (s *Storage) ActivateJob(ctx context.Context, jobID, workerID string) error {
	query := `
		UPDATE jobs
		SET status = $1,
		    workers = array_append(workers, $2),
		    pending_workers = array_remove(pending_workers, $2),
		    updated_at = NOW()
		WHERE job_id = $3
		  AND NOT ($2 = ANY(workers))
	`

	result, err := s.db.ExecContext(ctx, query, domain.JobStatusActive, workerID, jobID)
	if err != nil {
		return fmt.Errorf("failed to activate job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		if _, err := s.GetJobByID(ctx, jobID); err != nil {
			return err
		}
	}

	return nil
}

// MarkJobReady records delivered artifacts and moves the job to Ready. The
// status is re-checked in the WHERE clause; the boolean reports whether this
// call performed the transition.
func (s *Storage) MarkJobReady(ctx context.Context, jobID string, files []string) (bool, error) {
	query := `
		UPDATE jobs
		SET status = $1,
		    files_ready = $2,
		    updated_at = NOW()
		WHERE job_id = $3
		  AND status IN ($4, $5)
	`

	result, err := s.db.ExecContext(ctx, query,
		domain.JobStatusReady, pq.StringArray(files), jobID,
		domain.JobStatusPending, domain.JobStatusActive,
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark job ready: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}

// CompleteJob sets the terminal Completed status and returns the job. The
// status guard in the WHERE clause makes the write idempotent and tells the
// caller whether this call performed the transition: a replayed settlement
// trigger gets the job back with transitioned=false.
func (s *Storage) CompleteJob(ctx context.Context, jobID string) (*model.Job, bool, error) {
	var job model.Job
	query := `
		UPDATE jobs
		SET status = $1,
		    payment_verified = TRUE,
		    updated_at = NOW()
		WHERE job_id = $2
		  AND status <> $1
		RETURNING ` + jobColumns

	err := s.db.GetContext(ctx, &job, query, domain.JobStatusCompleted, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Already completed or missing; only the latter is an error.
			existing, getErr := s.GetJobByID(ctx, jobID)
			if getErr != nil {
				return nil, false, getErr
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to complete job: %w", err)
	}

	return &job, true, nil
}

// AddTeamMembers appends workers to an active job's team, skipping members
// already present.
func (s *Storage) AddTeamMembers(ctx context.Context, jobID string, members []string) (*model.Job, error) {
	var job model.Job
	query := `
		UPDATE jobs
		SET workers = (
			SELECT ARRAY(SELECT DISTINCT unnest(workers || $1::text[]))
		),
		    updated_at = NOW()
		WHERE job_id = $2
		RETURNING ` + jobColumns

	err := s.db.GetContext(ctx, &job, query, pq.StringArray(members), jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to add team members: %w", err)
	}

	return &job, nil
}

// DeleteJob removes a job only while its status permits deletion. The status
// guard lives in the WHERE clause so a concurrent transition cannot be lost;
// the boolean reports whether a row was deleted.
func (s *Storage) DeleteJob(ctx context.Context, jobID string) (bool, error) {
	query := `
		DELETE FROM jobs
		WHERE job_id = $1
		  AND status IN ($2, $3, $4)
	`

	result, err := s.db.ExecContext(ctx, query, jobID,
		domain.JobStatusAvailable, domain.JobStatusPending, domain.JobStatusCompleted,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rows == 1, nil
}
