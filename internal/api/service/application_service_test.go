package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/events"
)

func newApplicationFixture() (*ApplicationService, *fakeStore, *fakePublisher) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	svc := NewApplicationService(store, store, store, publisher, testLogger())
	return svc, store, publisher
}

func TestSubmit(t *testing.T) {
	t.Run("freelancer applies to available job", func(t *testing.T) {
		svc, store, publisher := newApplicationFixture()
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)

		app, err := svc.Submit(context.Background(), "fl-1", "job-1", "I can do this")

		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusPending, app.Status)
		assert.Equal(t, "fl-1", app.WorkerID)
		assert.NotEmpty(t, app.ApplicationID)

		// The job follows the application into Pending
		job, err := store.GetJobByID(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusPending, job.Status)
		assert.Contains(t, []string(job.PendingWorkers), "fl-1")

		assert.Contains(t, publisher.typesPublished(), events.TypeApplicationSubmitted)
	})

	t.Run("owner cannot apply to own job", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "fl-1", domain.JobStatusAvailable)

		_, err := svc.Submit(context.Background(), "fl-1", "job-1", "")

		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
		assert.Equal(t, "you cannot apply to your own job", domain.MessageOf(err))
	})

	t.Run("employer role cannot apply", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("emp-2", domain.RoleEmployer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)

		_, err := svc.Submit(context.Background(), "emp-2", "job-1", "")

		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("second application to the same job conflicts", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)

		_, err := svc.Submit(context.Background(), "fl-1", "job-1", "")
		require.NoError(t, err)

		_, err = svc.Submit(context.Background(), "fl-1", "job-1", "")
		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, "already applied for this job", domain.MessageOf(err))
	})

	t.Run("cancelled application can be replaced", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)

		first, err := svc.Submit(context.Background(), "fl-1", "job-1", "")
		require.NoError(t, err)

		_, err = svc.Decide(context.Background(), "fl-1", first.ApplicationID, domain.ApplicationStatusCancelled)
		require.NoError(t, err)

		_, err = svc.Submit(context.Background(), "fl-1", "job-1", "second try")
		require.NoError(t, err)
	})

	t.Run("unknown job", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		store.addUser("fl-1", domain.RoleFreelancer)

		_, err := svc.Submit(context.Background(), "fl-1", "nope", "")

		require.Error(t, err)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		assert.Equal(t, "Job not found", domain.MessageOf(err))
	})
}

func TestDecide(t *testing.T) {
	submit := func(t *testing.T) (*ApplicationService, *fakeStore, *fakePublisher, string) {
		t.Helper()
		svc, store, publisher := newApplicationFixture()
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)
		app, err := svc.Submit(context.Background(), "fl-1", "job-1", "")
		require.NoError(t, err)
		return svc, store, publisher, app.ApplicationID
	}

	t.Run("owner accepts", func(t *testing.T) {
		svc, store, publisher, appID := submit(t)

		app, err := svc.Decide(context.Background(), "emp-1", appID, domain.ApplicationStatusAccepted)

		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusAccepted, app.Status)

		// Acceptance activates the job and promotes the worker
		job, err := store.GetJobByID(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusActive, job.Status)
		assert.Contains(t, []string(job.Workers), "fl-1")
		assert.NotContains(t, []string(job.PendingWorkers), "fl-1")

		assert.Contains(t, publisher.typesPublished(), events.TypeApplicationAccepted)
	})

	t.Run("owner rejects", func(t *testing.T) {
		svc, store, publisher, appID := submit(t)

		app, err := svc.Decide(context.Background(), "emp-1", appID, domain.ApplicationStatusRejected)

		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusRejected, app.Status)

		// Rejection does not touch the job
		job, err := store.GetJobByID(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusPending, job.Status)
		assert.Empty(t, []string(job.Workers))

		assert.Contains(t, publisher.typesPublished(), events.TypeApplicationRejected)
	})

	t.Run("applicant cannot accept own application", func(t *testing.T) {
		svc, _, _, appID := submit(t)

		_, err := svc.Decide(context.Background(), "fl-1", appID, domain.ApplicationStatusAccepted)

		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("stranger cannot decide", func(t *testing.T) {
		svc, store, _, appID := submit(t)
		store.addUser("emp-2", domain.RoleEmployer)

		_, err := svc.Decide(context.Background(), "emp-2", appID, domain.ApplicationStatusAccepted)

		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})

	t.Run("only the applicant can cancel", func(t *testing.T) {
		svc, _, _, appID := submit(t)

		_, err := svc.Decide(context.Background(), "emp-1", appID, domain.ApplicationStatusCancelled)
		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))

		app, err := svc.Decide(context.Background(), "fl-1", appID, domain.ApplicationStatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, domain.ApplicationStatusCancelled, app.Status)
	})

	t.Run("first decision wins", func(t *testing.T) {
		svc, _, _, appID := submit(t)

		_, err := svc.Decide(context.Background(), "emp-1", appID, domain.ApplicationStatusAccepted)
		require.NoError(t, err)

		_, err = svc.Decide(context.Background(), "emp-1", appID, domain.ApplicationStatusRejected)
		require.Error(t, err)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
		assert.Equal(t, "job application already Accepted", domain.MessageOf(err))
	})

	t.Run("invalid action", func(t *testing.T) {
		svc, _, _, appID := submit(t)

		_, err := svc.Decide(context.Background(), "emp-1", appID, "Approved")

		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("unknown application", func(t *testing.T) {
		svc, _, _, _ := submit(t)

		_, err := svc.Decide(context.Background(), "emp-1", "nope", domain.ApplicationStatusAccepted)

		require.Error(t, err)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestListForJob(t *testing.T) {
	t.Run("owner sees applications", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)
		_, err := svc.Submit(context.Background(), "fl-1", "job-1", "")
		require.NoError(t, err)

		apps, err := svc.ListForJob(context.Background(), "emp-1", "job-1")

		require.NoError(t, err)
		assert.Len(t, apps, 1)
	})

	t.Run("non-owner is refused", func(t *testing.T) {
		svc, store, _ := newApplicationFixture()
		seedJob(store, "job-1", "emp-1", domain.JobStatusAvailable)

		_, err := svc.ListForJob(context.Background(), "fl-1", "job-1")

		require.Error(t, err)
		assert.Equal(t, domain.KindForbidden, domain.KindOf(err))
	})
}
