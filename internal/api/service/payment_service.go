package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/api/model"
	"github.com/colabsdev/colabs-be/internal/api/storage"
	"github.com/colabsdev/colabs-be/internal/events"
	"github.com/colabsdev/colabs-be/internal/gateway/chapa"
	"github.com/colabsdev/colabs-be/internal/telemetry"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	banksCacheKey = "chapa:banks"
	banksCacheTTL = time.Hour
)

// PaymentService coordinates settlement between three independent triggers:
// the employer's init call, the gateway webhook, and the manual confirmation
// endpoint. Exactly-once settlement rests on the conditional update inside
// PaymentStore.SettlePayment; this service never holds in-process locks.
type PaymentService struct {
	payments      PaymentStore
	users         UserStore
	jobService    *JobService
	gateway       Gateway
	publisher     EventPublisher
	cache         *goredis.Client
	logger        *slog.Logger
	webhookSecret string
	frontendURL   string
	backendURL    string
}

// PaymentConfig carries the settlement coordinator's wiring.
type PaymentConfig struct {
	WebhookSecret string
	FrontendURL   string
	BackendURL    string
}

func NewPaymentService(
	payments PaymentStore,
	users UserStore,
	jobService *JobService,
	gateway Gateway,
	publisher EventPublisher,
	cache *goredis.Client,
	cfg PaymentConfig,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{
		payments:      payments,
		users:         users,
		jobService:    jobService,
		gateway:       gateway,
		publisher:     publisher,
		cache:         cache,
		logger:        logger,
		webhookSecret: cfg.WebhookSecret,
		frontendURL:   cfg.FrontendURL,
		backendURL:    cfg.BackendURL,
	}
}

// Initialize requests a hosted checkout from the gateway and records exactly
// one pending payment keyed by the fresh transaction reference. A failed
// gateway call aborts the whole operation; no payment row is left behind.
func (s *PaymentService) Initialize(ctx context.Context, actorID, jobID, freelancerID string) (*model.Payment, *chapa.Checkout, error) {
	job, err := s.jobService.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}

	if job.OwnerID != actorID {
		return nil, nil, domain.NewUnauthorized("Unauthorized")
	}

	owner, err := s.users.GetUserByID(ctx, job.OwnerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, domain.NewNotFound("Job owner not found")
		}
		return nil, nil, err
	}

	freelancer, err := s.users.GetUserByID(ctx, freelancerID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return nil, nil, domain.NewNotFound("Freelancer not found")
		}
		return nil, nil, err
	}

	txRef := chapa.GenerateTxRef()

	initReq := chapa.InitializeRequest{
		FirstName:   owner.FirstName,
		LastName:    owner.LastName,
		Email:       owner.Email,
		Amount:      job.Earnings,
		TxRef:       txRef,
		Currency:    domain.PaymentCurrency,
		ReturnURL:   s.frontendURL + "/thankyou",
		CallbackURL: s.backendURL + "/api/v1/chapa/update/" + txRef,
	}
	if freelancer.SubAccountID != "" {
		initReq.SubAccounts = []chapa.SubAccount{{
			ID:                freelancer.SubAccountID,
			SplitType:         "percentage",
			TransactionCharge: 0.5,
		}}
	}

	checkout, err := s.gateway.InitializeTransaction(ctx, initReq)
	if err != nil {
		return nil, nil, domain.NewUpstream("payment gateway initialization failed", err)
	}

	now := time.Now().UTC()
	payment := &model.Payment{
		PaymentID:    uuid.New().String(),
		TxRef:        txRef,
		JobID:        job.JobID,
		FreelancerID: freelancerID,
		EmployerID:   job.OwnerID,
		Amount:       job.Earnings,
		Currency:     domain.PaymentCurrency,
		Status:       domain.PaymentStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.payments.CreatePayment(ctx, payment); err != nil {
		return nil, nil, err
	}

	telemetry.PaymentsInitialized.Inc()

	s.logger.Info("Payment initialized",
		slog.String("tx_ref", txRef),
		slog.String("job_id", jobID),
		slog.String("freelancer_id", freelancerID),
		slog.Int64("amount", payment.Amount),
	)

	return payment, checkout, nil
}

// Confirm is the manual settlement path. Settling an already-paid payment is
// a successful no-op.
func (s *PaymentService) Confirm(ctx context.Context, txRef string) (*model.Payment, error) {
	return s.settle(ctx, txRef)
}

// HandleWebhook is the asynchronous settlement path. The raw body's
// HMAC-SHA256 digest must match the signature header, and the reported
// status must be success; anything else is rejected without touching
// payment state.
func (s *PaymentService) HandleWebhook(ctx context.Context, rawBody []byte, signature string) (*model.Payment, error) {
	if !chapa.VerifySignature(s.webhookSecret, rawBody, signature) {
		telemetry.WebhookRejects.Inc()
		s.logger.Warn("Webhook rejected: signature mismatch")
		return nil, domain.NewValidation("invalid webhook signature")
	}

	var body struct {
		Status string `json:"status"`
		TxRef  string `json:"tx_ref"`
	}
	if err := json.Unmarshal(rawBody, &body); err != nil {
		telemetry.WebhookRejects.Inc()
		return nil, domain.NewValidation("malformed webhook payload")
	}

	if body.Status != domain.WebhookStatusSuccess {
		telemetry.WebhookRejects.Inc()
		s.logger.Warn("Webhook rejected: non-success status",
			slog.String("status", body.Status),
			slog.String("tx_ref", body.TxRef),
		)
		return nil, domain.NewValidation("unhandled webhook status: " + body.Status)
	}

	return s.settle(ctx, body.TxRef)
}

// settle is the shared settlement effect. The conditional update inside
// SettlePayment decides the winner when the webhook and the manual endpoint
// race for the same tx_ref: the winner's transaction also credits the
// freelancer's earnings. Job completion is re-asserted on every trigger so a
// retry heals a crash between the payment swap and the job write; the
// completion event fires only from the call that actually transitions the
// job, so replays stay side-effect free.
func (s *PaymentService) settle(ctx context.Context, txRef string) (*model.Payment, error) {
	payment, won, err := s.payments.SettlePayment(ctx, txRef)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			return nil, domain.NewNotFound("Payment not found")
		}
		return nil, err
	}

	job, err := s.jobService.Complete(ctx, payment.JobID)
	if err != nil {
		// The money has moved; completion will be re-asserted by the next
		// settlement trigger for this tx_ref.
		s.logger.Error("Failed to complete job after settlement",
			slog.String("tx_ref", txRef),
			slog.String("job_id", payment.JobID),
			slog.Any("error", err),
		)
	}

	if !won {
		telemetry.SettlementReplays.Inc()
		s.logger.Info("Settlement replayed, payment already paid",
			slog.String("tx_ref", txRef),
		)
		return payment, nil
	}

	telemetry.PaymentsSettled.Inc()

	jobTitle := ""
	if job != nil {
		jobTitle = job.Title
	}
	publishEvent(ctx, s.publisher, s.logger, events.TypePaymentSettled, events.PaymentSettled{
		TxRef:        payment.TxRef,
		JobID:        payment.JobID,
		JobTitle:     jobTitle,
		FreelancerID: payment.FreelancerID,
		Amount:       payment.Amount,
	})

	s.logger.Info("Payment settled",
		slog.String("tx_ref", txRef),
		slog.String("freelancer_id", payment.FreelancerID),
		slog.Int64("amount", payment.Amount),
	)

	return payment, nil
}

// Verify returns the stored payment next to the gateway's own view of the
// transaction, for dispute resolution.
func (s *PaymentService) Verify(ctx context.Context, txRef string) (*model.Payment, json.RawMessage, error) {
	payment, err := s.payments.GetPaymentByTxRef(ctx, txRef)
	if err != nil {
		if errors.Is(err, storage.ErrPaymentNotFound) {
			return nil, nil, domain.NewNotFound("No payment with this tnxRef found.")
		}
		return nil, nil, err
	}

	remote, err := s.gateway.VerifyTransaction(ctx, txRef)
	if err != nil {
		return nil, nil, domain.NewUpstream("payment gateway verification failed", err)
	}

	return payment, remote, nil
}

// AddBankInfo registers the user's bank account as a gateway sub-account and
// persists the returned handle for future split payments.
func (s *PaymentService) AddBankInfo(ctx context.Context, userID, bankCode, accountNumber, accountName, businessName string) error {
	if _, err := s.users.GetUserByID(ctx, userID); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return domain.NewNotFound("User not found")
		}
		return err
	}

	subAccountID, err := s.gateway.CreateSubAccount(ctx, chapa.SubAccountRequest{
		SplitType:     "percentage",
		SplitValue:    0.5,
		BusinessName:  businessName,
		BankCode:      bankCode,
		AccountNumber: accountNumber,
		AccountName:   accountName,
	})
	if err != nil {
		return domain.NewUpstream("bank account registration failed", err)
	}

	if err := s.users.UpdateBankInfo(ctx, userID, subAccountID, bankCode, accountNumber, accountName, businessName); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return domain.NewNotFound("User not found")
		}
		return err
	}

	s.logger.Info("Bank account info updated",
		slog.String("user_id", userID),
		slog.String("sub_account_id", subAccountID),
	)

	return nil
}

// ListBanks proxies the gateway's bank list, cached in Redis. Cache trouble
// falls through to the gateway.
func (s *PaymentService) ListBanks(ctx context.Context) (json.RawMessage, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, banksCacheKey).Bytes()
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, goredis.Nil) {
			s.logger.Warn("Bank list cache read failed",
				slog.Any("error", err),
			)
		}
	}

	banks, err := s.gateway.ListBanks(ctx)
	if err != nil {
		return nil, domain.NewUpstream("failed to list banks", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, banksCacheKey, []byte(banks), banksCacheTTL).Err(); err != nil {
			s.logger.Warn("Bank list cache write failed",
				slog.Any("error", err),
			)
		}
	}

	return banks, nil
}
