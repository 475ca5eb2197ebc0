package handler

import (
	"io"
	"net/http"

	"github.com/colabsdev/colabs-be/internal/api/dto"
	"github.com/gin-gonic/gin"
)

// SignatureHeader carries the gateway's HMAC digest of the webhook body.
const SignatureHeader = "x-chapa-signature"

// InitPayment handles POST /api/v1/chapa/init
func (h *PaymentHandler) InitPayment(c *gin.Context) {
	var req dto.InitPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	payment, checkout, err := h.payments.Initialize(c.Request.Context(), ActorID(c), req.JobID, req.FreelancerID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, dto.InitPaymentResponse{
		TxRef:       payment.TxRef,
		CheckoutURL: checkout.CheckoutURL,
	})
}

// ConfirmPayment handles GET /api/v1/chapa/update/:tnxRef, the manual
// confirmation path. Confirming an already-paid payment succeeds without
// side effects.
func (h *PaymentHandler) ConfirmPayment(c *gin.Context) {
	payment, err := h.payments.Confirm(c.Request.Context(), c.Param("tnxRef"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "success",
		"payment": toPaymentDTO(payment),
	})
}

// Webhook handles POST /api/v1/chapa/webhook. The signature is computed
// over the raw body, so the body is read before any JSON binding.
func (h *PaymentHandler) Webhook(c *gin.Context) {
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Failed to read request body",
		})
		return
	}

	payment, err := h.payments.HandleWebhook(c.Request.Context(), rawBody, c.GetHeader(SignatureHeader))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "success",
		"payment": toPaymentDTO(payment),
	})
}

// VerifyPayment handles GET /api/v1/chapa/verify/:tnxRef
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	payment, remote, err := h.payments.Verify(c.Request.Context(), c.Param("tnxRef"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, dto.VerifyPaymentResponse{
		Message: "success",
		Payment: toPaymentDTO(payment),
		Data:    remote,
	})
}

// AddBankInfo handles PUT /api/v1/chapa/add-bank-info
func (h *PaymentHandler) AddBankInfo(c *gin.Context) {
	var req dto.AddBankInfoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "Invalid request body",
		})
		return
	}

	err := h.payments.AddBankInfo(c.Request.Context(), ActorID(c), req.BankCode, req.AccountNumber, req.AccountName, req.BusinessName)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Bank account info updated",
	})
}

// ListBanks handles GET /api/v1/chapa/banks
func (h *PaymentHandler) ListBanks(c *gin.Context) {
	banks, err := h.payments.ListBanks(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Data(http.StatusOK, "application/json", banks)
}
