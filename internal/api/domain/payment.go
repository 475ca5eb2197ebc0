package domain

// Payment status constants. A payment transitions pending -> paid at most
// once, enforced by a conditional update on the payment row.
const (
	PaymentStatusPending = "pending"
	PaymentStatusPaid    = "paid"
)

// PaymentCurrency is the settlement currency issued to the gateway.
const PaymentCurrency = "ETB"

// WebhookStatusSuccess is the gateway's terminal success marker; any other
// webhook status must not touch payment state.
const WebhookStatusSuccess = "success"
