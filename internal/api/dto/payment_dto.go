package dto

type InitPaymentRequest struct {
	JobID        string `json:"jobId" binding:"required"`
	FreelancerID string `json:"freelancerId" binding:"required"`
}

type InitPaymentResponse struct {
	TxRef       string `json:"txRef"`
	CheckoutURL string `json:"checkoutUrl"`
}

type AddBankInfoRequest struct {
	BankCode      string `json:"bankCode" binding:"required"`
	AccountNumber string `json:"accountNumber" binding:"required"`
	AccountName   string `json:"accountName" binding:"required"`
	BusinessName  string `json:"businessName" binding:"required"`
}

type PaymentDTO struct {
	PaymentID    string `json:"paymentId"`
	TxRef        string `json:"txRef"`
	JobID        string `json:"jobId"`
	FreelancerID string `json:"freelancerId"`
	EmployerID   string `json:"employerId"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
}

type VerifyPaymentResponse struct {
	Message string      `json:"message"`
	Payment PaymentDTO  `json:"payment"`
	Data    interface{} `json:"data"`
}
