// Package chapa is a thin client for the Chapa payment gateway's hosted
// checkout, verification, sub-account, and bank listing endpoints.
package chapa

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Config holds gateway credentials and endpoints. The secret key and the
// webhook secret come from environment configuration at process start.
type Config struct {
	BaseURL       string
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

// Client calls the Chapa HTTP API.
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(config *Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// GenerateTxRef issues a fresh transaction reference for one checkout
// attempt.
func GenerateTxRef() string {
	return "tx-" + uuid.New().String()
}

// SubAccount identifies a split-payment recipient registered with the
// gateway.
type SubAccount struct {
	ID                string  `json:"id"`
	SplitType         string  `json:"split_type"`
	TransactionCharge float64 `json:"transaction_charge"`
}

// InitializeRequest starts a hosted checkout for one transaction reference.
type InitializeRequest struct {
	FirstName   string       `json:"first_name"`
	LastName    string       `json:"last_name"`
	Email       string       `json:"email"`
	Amount      int64        `json:"amount"`
	TxRef       string       `json:"tx_ref"`
	Currency    string       `json:"currency"`
	ReturnURL   string       `json:"return_url"`
	CallbackURL string       `json:"callback_url"`
	SubAccounts []SubAccount `json:"subaccounts,omitempty"`
}

// Checkout is the gateway's handle for a started transaction.
type Checkout struct {
	CheckoutURL string `json:"checkout_url"`
}

type apiResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// InitializeTransaction requests a hosted-checkout handle for the given
// transaction reference.
func (c *Client) InitializeTransaction(ctx context.Context, req InitializeRequest) (*Checkout, error) {
	data, err := c.do(ctx, http.MethodPost, "/transaction/initialize", req)
	if err != nil {
		return nil, err
	}

	var checkout Checkout
	if err := json.Unmarshal(data, &checkout); err != nil {
		return nil, fmt.Errorf("failed to decode checkout response: %w", err)
	}

	return &checkout, nil
}

// VerifyTransaction fetches the gateway's view of a transaction for dispute
// resolution.
func (c *Client) VerifyTransaction(ctx context.Context, txRef string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/transaction/verify/"+txRef, nil)
}

// SubAccountRequest registers a bank account for split payouts.
type SubAccountRequest struct {
	SplitType     string  `json:"split_type"`
	SplitValue    float64 `json:"split_value"`
	BusinessName  string  `json:"business_name"`
	BankCode      string  `json:"bank_code"`
	AccountNumber string  `json:"account_number"`
	AccountName   string  `json:"account_name"`
}

// CreateSubAccount registers the bank account with the gateway and returns
// the sub-account id to key future split payments by.
func (c *Client) CreateSubAccount(ctx context.Context, req SubAccountRequest) (string, error) {
	data, err := c.do(ctx, http.MethodPost, "/subaccount", req)
	if err != nil {
		return "", err
	}

	var resp struct {
		SubAccountID string `json:"subaccount_id"`
	}
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("failed to decode subaccount response: %w", err)
	}

	return resp.SubAccountID, nil
}

// ListBanks fetches the gateway's supported banks.
func (c *Client) ListBanks(ctx context.Context) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/banks", nil)
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.config.SecretKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read gateway response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("Gateway returned error status",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("gateway returned status %d: %s", resp.StatusCode, string(raw))
	}

	var parsed apiResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}
	if parsed.Status != "success" {
		return nil, fmt.Errorf("gateway rejected request: %s", parsed.Message)
	}

	return parsed.Data, nil
}
