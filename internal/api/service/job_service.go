package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/api/model"
	"github.com/colabsdev/colabs-be/internal/api/storage"
	"github.com/colabsdev/colabs-be/internal/events"
	"github.com/colabsdev/colabs-be/internal/telemetry"
	"github.com/google/uuid"
)

// JobService owns the job state machine:
// Available -> Pending -> Active -> Ready -> Completed.
type JobService struct {
	jobs      JobStore
	users     UserStore
	publisher EventPublisher
	logger    *slog.Logger
}

func NewJobService(jobs JobStore, users UserStore, publisher EventPublisher, logger *slog.Logger) *JobService {
	return &JobService{
		jobs:      jobs,
		users:     users,
		publisher: publisher,
		logger:    logger,
	}
}

// PostJobParams collects inputs for a new job posting.
type PostJobParams struct {
	Title        string
	Description  string
	Earnings     int64
	Requirements []string
}

// PostJob creates a job in Available. Only callers with the job-owning
// capability may post.
func (s *JobService) PostJob(ctx context.Context, ownerID string, params PostJobParams) (*model.Job, error) {
	owner, err := s.users.GetUserByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, domain.NewNotFound("User not found")
		}
		return nil, err
	}

	if !domain.CapabilitiesFor(owner.Role).CanOwnJobs {
		return nil, domain.NewUnauthorized("only employers can post jobs")
	}

	now := time.Now().UTC()
	job := &model.Job{
		JobID:          uuid.New().String(),
		OwnerID:        ownerID,
		Title:          params.Title,
		Description:    params.Description,
		Earnings:       params.Earnings,
		Requirements:   params.Requirements,
		Workers:        []string{},
		PendingWorkers: []string{},
		FilesReady:     []string{},
		Status:         domain.JobStatusAvailable,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.jobs.CreateJob(ctx, job); err != nil {
		return nil, err
	}

	telemetry.JobsPosted.Inc()

	s.logger.Info("Job posted",
		slog.String("job_id", job.JobID),
		slog.String("owner_id", ownerID),
		slog.Int64("earnings", job.Earnings),
	)

	return job, nil
}

// ListAvailable returns the public job listing.
func (s *JobService) ListAvailable(ctx context.Context, limit, offset int) ([]model.Job, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	return s.jobs.ListAvailableJobs(ctx, limit, offset)
}

// GetJob fetches one job.
func (s *JobService) GetJob(ctx context.Context, jobID string) (*model.Job, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, domain.NewNotFound("Job not found")
		}
		return nil, err
	}
	return job, nil
}

// MarkReady records delivered artifacts and moves the job to Ready, then
// notifies the owner. Valid only from Pending or Active; the status is
// re-checked by the conditional write.
func (s *JobService) MarkReady(ctx context.Context, jobID string, files []string) (*model.Job, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if !domain.JobReadyable(job.Status) {
		return nil, domain.NewConflict("job cannot be marked ready from " + job.Status)
	}

	advanced, err := s.jobs.MarkJobReady(ctx, jobID, files)
	if err != nil {
		return nil, err
	}
	if !advanced {
		// A concurrent transition moved the job out of Pending/Active
		// between the read and the write.
		return nil, domain.NewConflict("job cannot be marked ready from its current status")
	}

	publishEvent(ctx, s.publisher, s.logger, events.TypeJobReady, events.JobReady{
		JobID:    job.JobID,
		JobTitle: job.Title,
		OwnerID:  job.OwnerID,
	})

	return s.GetJob(ctx, jobID)
}

// Complete sets the terminal Completed status and notifies every worker on
// the job. Called by the settlement coordinator once payment has been
// swapped to paid, or administratively. Completion events fire only when
// this call performed the transition, so a replayed settlement trigger does
// not re-notify the team.
func (s *JobService) Complete(ctx context.Context, jobID string) (*model.Job, error) {
	job, transitioned, err := s.jobs.CompleteJob(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, domain.NewNotFound("Job not found")
		}
		return nil, err
	}

	if transitioned {
		publishEvent(ctx, s.publisher, s.logger, events.TypeJobCompleted, events.JobCompleted{
			JobID:     job.JobID,
			JobTitle:  job.Title,
			WorkerIDs: job.Workers,
		})
	}

	return job, nil
}

// AddTeamMembers appends workers to the job's team. Only the owner may add
// members.
func (s *JobService) AddTeamMembers(ctx context.Context, actorID, jobID string, members []string) (*model.Job, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.OwnerID != actorID {
		return nil, domain.NewForbidden("only the job owner can add team members")
	}

	owner, err := s.users.GetUserByID(ctx, actorID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		return nil, err
	}

	updated, err := s.jobs.AddTeamMembers(ctx, jobID, members)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, domain.NewNotFound("Job not found")
		}
		return nil, err
	}

	ownerName := ""
	if owner != nil {
		ownerName = owner.FirstName
	}
	publishEvent(ctx, s.publisher, s.logger, events.TypeTeamJoined, events.TeamJoined{
		JobID:     updated.JobID,
		JobTitle:  updated.Title,
		OwnerName: ownerName,
		WorkerIDs: members,
	})

	return updated, nil
}

// Delete removes a job while its status permits it. Active and Ready jobs
// are refused: they may be referenced by an in-flight payment.
func (s *JobService) Delete(ctx context.Context, actorID, jobID string) (*model.Job, error) {
	job, err := s.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}

	if job.OwnerID != actorID {
		return nil, domain.NewForbidden("only the job owner can delete a job")
	}

	if !domain.JobDeletable(job.Status) {
		return nil, domain.NewConflict("job is currently being worked on")
	}

	deleted, err := s.jobs.DeleteJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if !deleted {
		// The status guard in the delete lost to a concurrent transition.
		return nil, domain.NewConflict("job is currently being worked on")
	}

	s.logger.Info("Job deleted",
		slog.String("job_id", jobID),
		slog.String("actor_id", actorID),
	)

	return job, nil
}
