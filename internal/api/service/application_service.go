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

// ApplicationService owns the application state machine: Pending moves to
// exactly one of Accepted, Rejected, or Cancelled, and the first decision
// wins.
type ApplicationService struct {
	applications ApplicationStore
	jobs         JobStore
	users        UserStore
	publisher    EventPublisher
	logger       *slog.Logger
}

func NewApplicationService(applications ApplicationStore, jobs JobStore, users UserStore, publisher EventPublisher, logger *slog.Logger) *ApplicationService {
	return &ApplicationService{
		applications: applications,
		jobs:         jobs,
		users:        users,
		publisher:    publisher,
		logger:       logger,
	}
}

// Submit creates a Pending application, advances the job to Pending, and
// notifies the job owner.
func (s *ApplicationService) Submit(ctx context.Context, workerID, jobID, coverLetter string) (*model.JobApplication, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, domain.NewNotFound("Job not found")
		}
		return nil, err
	}

	worker, err := s.users.GetUserByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, domain.NewNotFound("User not found")
		}
		return nil, err
	}

	if !domain.CapabilitiesFor(worker.Role).CanApply {
		return nil, domain.NewForbidden("user is not eligible to apply for jobs")
	}

	if job.OwnerID == workerID {
		return nil, domain.NewForbidden("you cannot apply to your own job")
	}

	now := time.Now().UTC()
	app := &model.JobApplication{
		ApplicationID: uuid.New().String(),
		JobID:         jobID,
		WorkerID:      workerID,
		CoverLetter:   coverLetter,
		Status:        domain.ApplicationStatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.applications.CreateApplication(ctx, app); err != nil {
		if errors.Is(err, storage.ErrDuplicateApplication) {
			return nil, domain.NewConflict("already applied for this job")
		}
		return nil, err
	}

	if err := s.jobs.AdvanceJobToPending(ctx, jobID, workerID); err != nil {
		// The application row exists; the job advance is idempotent and a
		// later submission attempt for another worker will retry it.
		s.logger.Error("Failed to advance job to pending",
			slog.String("job_id", jobID),
			slog.String("worker_id", workerID),
			slog.Any("error", err),
		)
	}

	telemetry.ApplicationsSubmitted.Inc()

	publishEvent(ctx, s.publisher, s.logger, events.TypeApplicationSubmitted, events.ApplicationSubmitted{
		JobID:      job.JobID,
		JobTitle:   job.Title,
		OwnerID:    job.OwnerID,
		WorkerID:   workerID,
		WorkerName: worker.FirstName,
	})

	s.logger.Info("Application submitted",
		slog.String("application_id", app.ApplicationID),
		slog.String("job_id", jobID),
		slog.String("worker_id", workerID),
	)

	return app, nil
}

// Decide writes a terminal status onto a Pending application. Accept and
// reject belong to the job owner; cancel belongs to the applicant. The
// Pending check is repeated inside the conditional write, so of two
// near-simultaneous decisions exactly one succeeds.
func (s *ApplicationService) Decide(ctx context.Context, actorID, applicationID, action string) (*model.JobApplication, error) {
	if !domain.ValidApplicationAction(action) {
		return nil, domain.NewValidation("invalid application action")
	}

	app, err := s.applications.GetApplicationByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, storage.ErrApplicationNotFound) {
			return nil, domain.NewNotFound("Job application not found")
		}
		return nil, err
	}

	job, err := s.jobs.GetJobByID(ctx, app.JobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, domain.NewNotFound("Job not found")
		}
		return nil, err
	}

	if app.Status != domain.ApplicationStatusPending {
		return nil, domain.NewConflict("job application already " + app.Status)
	}

	switch action {
	case domain.ApplicationStatusAccepted, domain.ApplicationStatusRejected:
		if actorID == app.WorkerID {
			return nil, domain.NewForbidden("you cannot decide your own application")
		}
		if actorID != job.OwnerID {
			return nil, domain.NewForbidden("only the job owner can decide an application")
		}
	case domain.ApplicationStatusCancelled:
		if actorID != app.WorkerID {
			return nil, domain.NewForbidden("only the applicant can cancel their application")
		}
	}

	won, err := s.applications.DecideApplication(ctx, applicationID, action)
	if err != nil {
		return nil, err
	}
	if !won {
		// Lost to a concurrent decision; report the status that got there
		// first.
		current, getErr := s.applications.GetApplicationByID(ctx, applicationID)
		if getErr == nil {
			return nil, domain.NewConflict("job application already " + current.Status)
		}
		return nil, domain.NewConflict("job application already decided")
	}

	app.Status = action
	telemetry.ApplicationsDecided.Inc()

	switch action {
	case domain.ApplicationStatusAccepted:
		if err := s.jobs.ActivateJob(ctx, app.JobID, app.WorkerID); err != nil {
			s.logger.Error("Failed to activate job after acceptance",
				slog.String("job_id", app.JobID),
				slog.String("worker_id", app.WorkerID),
				slog.Any("error", err),
			)
		}
		s.publishDecision(ctx, events.TypeApplicationAccepted, app, job)
	case domain.ApplicationStatusRejected:
		s.publishDecision(ctx, events.TypeApplicationRejected, app, job)
	}

	s.logger.Info("Application decided",
		slog.String("application_id", applicationID),
		slog.String("action", action),
		slog.String("actor_id", actorID),
	)

	return app, nil
}

func (s *ApplicationService) publishDecision(ctx context.Context, eventType string, app *model.JobApplication, job *model.Job) {
	workerEmail := ""
	if worker, err := s.users.GetUserByID(ctx, app.WorkerID); err == nil {
		workerEmail = worker.Email
	}

	publishEvent(ctx, s.publisher, s.logger, eventType, events.ApplicationDecided{
		ApplicationID: app.ApplicationID,
		JobID:         app.JobID,
		JobTitle:      job.Title,
		WorkerID:      app.WorkerID,
		WorkerEmail:   workerEmail,
	})
}

// ListForJob returns a job's applications; only the owner may see them.
func (s *ApplicationService) ListForJob(ctx context.Context, actorID, jobID string) ([]model.JobApplication, error) {
	job, err := s.jobs.GetJobByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, storage.ErrJobNotFound) {
			return nil, domain.NewNotFound("Job not found")
		}
		return nil, err
	}

	if job.OwnerID != actorID {
		return nil, domain.NewForbidden("only the job owner can view its applications")
	}

	return s.applications.ListApplicationsByJob(ctx, jobID)
}

// ListOwn returns the calling worker's applications.
func (s *ApplicationService) ListOwn(ctx context.Context, workerID string) ([]model.JobApplication, error) {
	return s.applications.ListApplicationsByWorker(ctx, workerID)
}
