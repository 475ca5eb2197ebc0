package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/api/model"
	"github.com/colabsdev/colabs-be/internal/api/storage"
	"github.com/colabsdev/colabs-be/internal/events"
	"github.com/colabsdev/colabs-be/internal/gateway/chapa"
)

// fakeStore is an in-memory stand-in for the SQL storage layer. Its
// conditional writes mirror the status guards of the real queries so the
// services' race-handling paths can be exercised.
type fakeStore struct {
	mu       sync.Mutex
	jobs     map[string]*model.Job
	apps     map[string]*model.JobApplication
	payments map[string]*model.Payment
	users    map[string]*model.User
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		jobs:     make(map[string]*model.Job),
		apps:     make(map[string]*model.JobApplication),
		payments: make(map[string]*model.Payment),
		users:    make(map[string]*model.User),
	}
}

func (f *fakeStore) CreateJob(ctx context.Context, job *model.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *job
	f.jobs[job.JobID] = &cp
	return nil
}

func (f *fakeStore) GetJobByID(ctx context.Context, jobID string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, storage.ErrJobNotFound
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) ListAvailableJobs(ctx context.Context, limit, offset int) ([]model.Job, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var available []model.Job
	for _, job := range f.jobs {
		if job.Status == domain.JobStatusAvailable {
			available = append(available, *job)
		}
	}
	total := len(available)
	if offset >= len(available) {
		return []model.Job{}, total, nil
	}
	available = available[offset:]
	if len(available) > limit {
		available = available[:limit]
	}
	return available, total, nil
}

func (f *fakeStore) AdvanceJobToPending(ctx context.Context, jobID, workerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return storage.ErrJobNotFound
	}
	if job.Status == domain.JobStatusAvailable {
		job.Status = domain.JobStatusPending
	}
	for _, w := range job.PendingWorkers {
		if w == workerID {
			return nil
		}
	}
	job.PendingWorkers = append(job.PendingWorkers, workerID)
	return nil
}

func (f *fakeStore) ActivateJob(ctx context.Context, jobID, workerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return storage.ErrJobNotFound
	}
	job.Status = domain.JobStatusActive
	var pending []string
	for _, w := range job.PendingWorkers {
		if w != workerID {
			pending = append(pending, w)
		}
	}
	job.PendingWorkers = pending
	for _, w := range job.Workers {
		if w == workerID {
			return nil
		}
	}
	job.Workers = append(job.Workers, workerID)
	return nil
}

func (f *fakeStore) MarkJobReady(ctx context.Context, jobID string, files []string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return false, storage.ErrJobNotFound
	}
	if job.Status != domain.JobStatusPending && job.Status != domain.JobStatusActive {
		return false, nil
	}
	job.Status = domain.JobStatusReady
	job.FilesReady = files
	return true, nil
}

func (f *fakeStore) CompleteJob(ctx context.Context, jobID string) (*model.Job, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, false, storage.ErrJobNotFound
	}
	if job.Status == domain.JobStatusCompleted {
		cp := *job
		return &cp, false, nil
	}
	job.Status = domain.JobStatusCompleted
	job.PaymentVerified = true
	cp := *job
	return &cp, true, nil
}

func (f *fakeStore) AddTeamMembers(ctx context.Context, jobID string, members []string) (*model.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, storage.ErrJobNotFound
	}
	for _, m := range members {
		seen := false
		for _, w := range job.Workers {
			if w == m {
				seen = true
				break
			}
		}
		if !seen {
			job.Workers = append(job.Workers, m)
		}
	}
	cp := *job
	return &cp, nil
}

func (f *fakeStore) DeleteJob(ctx context.Context, jobID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[jobID]
	if !ok {
		return false, nil
	}
	if !domain.JobDeletable(job.Status) {
		return false, nil
	}
	delete(f.jobs, jobID)
	return true, nil
}

func (f *fakeStore) CreateApplication(ctx context.Context, app *model.JobApplication) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.apps {
		if existing.JobID == app.JobID && existing.WorkerID == app.WorkerID &&
			existing.Status != domain.ApplicationStatusCancelled {
			return storage.ErrDuplicateApplication
		}
	}
	cp := *app
	f.apps[app.ApplicationID] = &cp
	return nil
}

func (f *fakeStore) GetApplicationByID(ctx context.Context, applicationID string) (*model.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[applicationID]
	if !ok {
		return nil, storage.ErrApplicationNotFound
	}
	cp := *app
	return &cp, nil
}

func (f *fakeStore) DecideApplication(ctx context.Context, applicationID, status string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.apps[applicationID]
	if !ok {
		return false, nil
	}
	if app.Status != domain.ApplicationStatusPending {
		return false, nil
	}
	app.Status = status
	return true, nil
}

func (f *fakeStore) ListApplicationsByJob(ctx context.Context, jobID string) ([]model.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JobApplication
	for _, app := range f.apps {
		if app.JobID == jobID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (f *fakeStore) ListApplicationsByWorker(ctx context.Context, workerID string) ([]model.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.JobApplication
	for _, app := range f.apps {
		if app.WorkerID == workerID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (f *fakeStore) CreatePayment(ctx context.Context, p *model.Payment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *p
	f.payments[p.TxRef] = &cp
	return nil
}

func (f *fakeStore) GetPaymentByTxRef(ctx context.Context, txRef string) (*model.Payment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[txRef]
	if !ok {
		return nil, storage.ErrPaymentNotFound
	}
	cp := *p
	return &cp, nil
}

// SettlePayment mirrors the real compare-and-swap: only the transition from
// pending to paid wins, and the winner credits the freelancer atomically.
func (f *fakeStore) SettlePayment(ctx context.Context, txRef string) (*model.Payment, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.payments[txRef]
	if !ok {
		return nil, false, storage.ErrPaymentNotFound
	}
	if p.Status == domain.PaymentStatusPaid {
		cp := *p
		return &cp, false, nil
	}
	now := time.Now().UTC()
	p.Status = domain.PaymentStatusPaid
	p.PaidAt = &now
	if u, ok := f.users[p.FreelancerID]; ok {
		u.Earnings += p.Amount
	}
	cp := *p
	return &cp, true, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return nil, storage.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeStore) UpdateBankInfo(ctx context.Context, userID, subAccountID, bankCode, accountNumber, accountName, businessName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[userID]
	if !ok {
		return storage.ErrUserNotFound
	}
	u.SubAccountID = subAccountID
	u.BankCode = bankCode
	u.AccountNumber = accountNumber
	u.AccountName = accountName
	u.BusinessName = businessName
	return nil
}

func (f *fakeStore) addUser(userID, role string) *model.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := &model.User{
		UserID:    userID,
		FirstName: "Test",
		LastName:  "User",
		Email:     userID + "@example.com",
		Role:      role,
	}
	f.users[userID] = u
	return u
}

// fakePublisher records published envelopes.
type fakePublisher struct {
	mu        sync.Mutex
	published []events.Envelope
	failWith  error
}

func (f *fakePublisher) Publish(ctx context.Context, evt events.Envelope) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.published = append(f.published, evt)
	return nil
}

func (f *fakePublisher) typesPublished() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, evt := range f.published {
		out = append(out, evt.Type)
	}
	return out
}

func (f *fakePublisher) countType(evtType string) int {
	n := 0
	for _, published := range f.typesPublished() {
		if published == evtType {
			n++
		}
	}
	return n
}

// fakeGateway is a scriptable gateway double.
type fakeGateway struct {
	mu           sync.Mutex
	initErr      error
	checkoutURL  string
	initRequests []chapa.InitializeRequest
	verifyBody   json.RawMessage
	verifyErr    error
	subAccountID string
	banksBody    json.RawMessage
	banksErr     error
}

func (f *fakeGateway) InitializeTransaction(ctx context.Context, req chapa.InitializeRequest) (*chapa.Checkout, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.initErr != nil {
		return nil, f.initErr
	}
	f.initRequests = append(f.initRequests, req)
	return &chapa.Checkout{CheckoutURL: f.checkoutURL}, nil
}

func (f *fakeGateway) VerifyTransaction(ctx context.Context, txRef string) (json.RawMessage, error) {
	if f.verifyErr != nil {
		return nil, f.verifyErr
	}
	return f.verifyBody, nil
}

func (f *fakeGateway) CreateSubAccount(ctx context.Context, req chapa.SubAccountRequest) (string, error) {
	return f.subAccountID, nil
}

func (f *fakeGateway) ListBanks(ctx context.Context) (json.RawMessage, error) {
	if f.banksErr != nil {
		return nil, f.banksErr
	}
	return f.banksBody, nil
}

var errTransient = errors.New("transient failure")

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
