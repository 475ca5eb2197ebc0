package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/colabsdev/colabs-be/internal/api/domain"
	"github.com/colabsdev/colabs-be/internal/events"
	"github.com/colabsdev/colabs-be/internal/gateway/chapa"
)

const testWebhookSecret = "whsec-test"

func newPaymentFixture(gateway *fakeGateway) (*PaymentService, *fakeStore, *fakePublisher) {
	store := newFakeStore()
	publisher := &fakePublisher{}
	jobService := NewJobService(store, store, publisher, testLogger())
	svc := NewPaymentService(store, store, jobService, gateway, publisher, nil, PaymentConfig{
		WebhookSecret: testWebhookSecret,
		FrontendURL:   "https://colabs.example.com",
		BackendURL:    "https://api.colabs.example.com",
	}, testLogger())
	return svc, store, publisher
}

func seedSettlement(t *testing.T, svc *PaymentService, store *fakeStore) string {
	t.Helper()
	store.addUser("emp-1", domain.RoleEmployer)
	store.addUser("fl-1", domain.RoleFreelancer)
	seedJob(store, "job-1", "emp-1", domain.JobStatusReady)

	payment, checkout, err := svc.Initialize(context.Background(), "emp-1", "job-1", "fl-1")
	require.NoError(t, err)
	require.NotNil(t, checkout)
	require.Equal(t, domain.PaymentStatusPending, payment.Status)
	return payment.TxRef
}

func webhookBody(txRef, status string) []byte {
	return []byte(fmt.Sprintf(`{"status":%q,"tx_ref":%q}`, status, txRef))
}

func TestInitialize(t *testing.T) {
	t.Run("creates one pending payment with checkout", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusReady)

		payment, checkout, err := svc.Initialize(context.Background(), "emp-1", "job-1", "fl-1")

		require.NoError(t, err)
		assert.Equal(t, "https://checkout.chapa.co/pay/abc", checkout.CheckoutURL)
		assert.Equal(t, domain.PaymentStatusPending, payment.Status)
		assert.Equal(t, int64(500), payment.Amount)
		assert.Equal(t, domain.PaymentCurrency, payment.Currency)
		assert.NotEmpty(t, payment.TxRef)

		stored, err := store.GetPaymentByTxRef(context.Background(), payment.TxRef)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, stored.Status)

		// The callback URL embeds the tx_ref for the manual confirm path
		require.Len(t, gateway.initRequests, 1)
		assert.Contains(t, gateway.initRequests[0].CallbackURL, payment.TxRef)
	})

	t.Run("gateway failure leaves no payment row", func(t *testing.T) {
		gateway := &fakeGateway{initErr: errTransient}
		svc, store, _ := newPaymentFixture(gateway)
		store.addUser("emp-1", domain.RoleEmployer)
		store.addUser("fl-1", domain.RoleFreelancer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusReady)

		_, _, err := svc.Initialize(context.Background(), "emp-1", "job-1", "fl-1")

		require.Error(t, err)
		assert.Equal(t, domain.KindUpstream, domain.KindOf(err))
		assert.Empty(t, store.payments)
	})

	t.Run("non-owner cannot initialize", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc, store, _ := newPaymentFixture(gateway)
		store.addUser("emp-1", domain.RoleEmployer)
		seedJob(store, "job-1", "emp-1", domain.JobStatusReady)

		_, _, err := svc.Initialize(context.Background(), "emp-2", "job-1", "fl-1")

		require.Error(t, err)
		assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))
		assert.Empty(t, store.payments)
	})

	t.Run("registered sub-account is attached to the checkout", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		store.addUser("emp-1", domain.RoleEmployer)
		fl := store.addUser("fl-1", domain.RoleFreelancer)
		fl.SubAccountID = "sub-99"
		seedJob(store, "job-1", "emp-1", domain.JobStatusReady)

		_, _, err := svc.Initialize(context.Background(), "emp-1", "job-1", "fl-1")

		require.NoError(t, err)
		require.Len(t, gateway.initRequests, 1)
		require.Len(t, gateway.initRequests[0].SubAccounts, 1)
		assert.Equal(t, "sub-99", gateway.initRequests[0].SubAccounts[0].ID)
	})
}

func TestHandleWebhook(t *testing.T) {
	t.Run("valid signature settles payment and completes job", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, publisher := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, domain.WebhookStatusSuccess)
		payment, err := svc.HandleWebhook(context.Background(), body, chapa.SignPayload(testWebhookSecret, body))

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, payment.Status)
		require.NotNil(t, payment.PaidAt)

		job, err := store.GetJobByID(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, job.Status)
		assert.True(t, job.PaymentVerified)

		freelancer, err := store.GetUserByID(context.Background(), "fl-1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), freelancer.Earnings)

		assert.Contains(t, publisher.typesPublished(), events.TypePaymentSettled)
	})

	t.Run("invalid signature leaves payment untouched", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, domain.WebhookStatusSuccess)
		_, err := svc.HandleWebhook(context.Background(), body, "deadbeef")

		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))

		stored, err := store.GetPaymentByTxRef(context.Background(), txRef)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, stored.Status)

		freelancer, err := store.GetUserByID(context.Background(), "fl-1")
		require.NoError(t, err)
		assert.Zero(t, freelancer.Earnings)
	})

	t.Run("signature over a different body is rejected", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, domain.WebhookStatusSuccess)
		otherBody := webhookBody("tx-other", domain.WebhookStatusSuccess)
		_, err := svc.HandleWebhook(context.Background(), body, chapa.SignPayload(testWebhookSecret, otherBody))

		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	})

	t.Run("non-success status is rejected", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, "failed")
		_, err := svc.HandleWebhook(context.Background(), body, chapa.SignPayload(testWebhookSecret, body))

		require.Error(t, err)
		assert.Equal(t, domain.KindValidation, domain.KindOf(err))

		stored, err := store.GetPaymentByTxRef(context.Background(), txRef)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPending, stored.Status)
	})

	t.Run("duplicate webhook settles once", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, publisher := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, domain.WebhookStatusSuccess)
		sig := chapa.SignPayload(testWebhookSecret, body)

		_, err := svc.HandleWebhook(context.Background(), body, sig)
		require.NoError(t, err)

		// The replay succeeds but must not credit twice
		payment, err := svc.HandleWebhook(context.Background(), body, sig)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, payment.Status)

		freelancer, err := store.GetUserByID(context.Background(), "fl-1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), freelancer.Earnings)

		assert.Equal(t, 1, publisher.countType(events.TypePaymentSettled), "settlement event fires only for the winning trigger")
		assert.Equal(t, 1, publisher.countType(events.TypeJobCompleted), "the replay must not re-notify the team of completion")
	})

	t.Run("concurrent webhook and manual confirm settle once", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, publisher := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, domain.WebhookStatusSuccess)
		sig := chapa.SignPayload(testWebhookSecret, body)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, errs[0] = svc.HandleWebhook(context.Background(), body, sig)
		}()
		go func() {
			defer wg.Done()
			_, errs[1] = svc.Confirm(context.Background(), txRef)
		}()
		wg.Wait()

		// Both triggers succeed; exactly one wins the swap.
		require.NoError(t, errs[0])
		require.NoError(t, errs[1])

		freelancer, err := store.GetUserByID(context.Background(), "fl-1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), freelancer.Earnings)

		job, err := store.GetJobByID(context.Background(), "job-1")
		require.NoError(t, err)
		assert.Equal(t, domain.JobStatusCompleted, job.Status)

		assert.Equal(t, 1, publisher.countType(events.TypePaymentSettled))
		assert.Equal(t, 1, publisher.countType(events.TypeJobCompleted))
	})
}

func TestConfirm(t *testing.T) {
	t.Run("manual confirm settles pending payment", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		payment, err := svc.Confirm(context.Background(), txRef)

		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, payment.Status)

		freelancer, err := store.GetUserByID(context.Background(), "fl-1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), freelancer.Earnings)
	})

	t.Run("confirm after webhook is a no-op", func(t *testing.T) {
		gateway := &fakeGateway{checkoutURL: "https://checkout.chapa.co/pay/abc"}
		svc, store, _ := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		body := webhookBody(txRef, domain.WebhookStatusSuccess)
		_, err := svc.HandleWebhook(context.Background(), body, chapa.SignPayload(testWebhookSecret, body))
		require.NoError(t, err)

		payment, err := svc.Confirm(context.Background(), txRef)
		require.NoError(t, err)
		assert.Equal(t, domain.PaymentStatusPaid, payment.Status)

		freelancer, err := store.GetUserByID(context.Background(), "fl-1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), freelancer.Earnings, "the race loser must not credit again")
	})

	t.Run("unknown tx_ref", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc, _, _ := newPaymentFixture(gateway)

		_, err := svc.Confirm(context.Background(), "tx-ghost")

		require.Error(t, err)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
	})
}

func TestVerify(t *testing.T) {
	t.Run("returns stored and remote views", func(t *testing.T) {
		gateway := &fakeGateway{
			checkoutURL: "https://checkout.chapa.co/pay/abc",
			verifyBody:  json.RawMessage(`{"status":"success"}`),
		}
		svc, store, _ := newPaymentFixture(gateway)
		txRef := seedSettlement(t, svc, store)

		payment, remote, err := svc.Verify(context.Background(), txRef)

		require.NoError(t, err)
		assert.Equal(t, txRef, payment.TxRef)
		assert.JSONEq(t, `{"status":"success"}`, string(remote))
	})

	t.Run("unknown tx_ref", func(t *testing.T) {
		gateway := &fakeGateway{}
		svc, _, _ := newPaymentFixture(gateway)

		_, _, err := svc.Verify(context.Background(), "tx-ghost")

		require.Error(t, err)
		assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
		assert.Equal(t, "No payment with this tnxRef found.", domain.MessageOf(err))
	})
}

func TestAddBankInfo(t *testing.T) {
	gateway := &fakeGateway{subAccountID: "sub-42"}
	svc, store, _ := newPaymentFixture(gateway)
	store.addUser("fl-1", domain.RoleFreelancer)

	err := svc.AddBankInfo(context.Background(), "fl-1", "001", "100012345", "Test User", "Test Studio")

	require.NoError(t, err)
	user, err := store.GetUserByID(context.Background(), "fl-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-42", user.SubAccountID)
	assert.Equal(t, "001", user.BankCode)
	assert.Equal(t, "100012345", user.AccountNumber)
}

func TestListBanks(t *testing.T) {
	gateway := &fakeGateway{banksBody: json.RawMessage(`[{"id":1,"name":"Awash Bank"}]`)}
	svc, _, _ := newPaymentFixture(gateway)

	banks, err := svc.ListBanks(context.Background())

	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":1,"name":"Awash Bank"}]`, string(banks))
}
