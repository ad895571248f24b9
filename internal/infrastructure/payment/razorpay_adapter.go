package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/anuraga/backend/internal/domain/payment"
	"github.com/anuraga/backend/internal/domain/shared/valueobject"
	"github.com/anuraga/backend/internal/infrastructure/config"
)

// RazorpayAdapter implements the payment.Gateway port against the Razorpay
// Orders API. Amounts go over the wire in minor units (paise).
type RazorpayAdapter struct {
	cfg        config.GatewayConfig
	httpClient *http.Client
}

// NewRazorpayAdapter creates a new Razorpay adapter
func NewRazorpayAdapter(cfg config.GatewayConfig) (*RazorpayAdapter, error) {
	if cfg.KeyID == "" || cfg.KeySecret == "" {
		return nil, fmt.Errorf("razorpay: key_id and key_secret are required")
	}
	return &RazorpayAdapter{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}, nil
}

// razorpayCreateOrderRequest is the Orders API request body
type razorpayCreateOrderRequest struct {
	Amount   int64  `json:"amount"` // minor units
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

// razorpayOrderResponse is the Orders API response body
type razorpayOrderResponse struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status"`
}

type razorpayErrorResponse struct {
	Error struct {
		Code        string `json:"code"`
		Description string `json:"description"`
	} `json:"error"`
}

// CreateOrder opens a payment order at the gateway
func (a *RazorpayAdapter) CreateOrder(ctx context.Context, req payment.CreateGatewayOrderRequest) (*payment.GatewayOrder, error) {
	currency := req.Amount.Currency()
	if currency == "" {
		currency = valueobject.DefaultCurrency
	}

	body := razorpayCreateOrderRequest{
		Amount:   req.Amount.MinorUnits(),
		Currency: string(currency),
		Receipt:  req.Receipt,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("razorpay: marshal order request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("razorpay: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.SetBasicAuth(a.cfg.KeyID, a.cfg.KeySecret)

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("razorpay: create order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("razorpay: read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr razorpayErrorResponse
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr == nil && apiErr.Error.Description != "" {
			return nil, fmt.Errorf("razorpay: create order failed (%d): %s", resp.StatusCode, apiErr.Error.Description)
		}
		return nil, fmt.Errorf("razorpay: create order failed with status %d", resp.StatusCode)
	}

	var order razorpayOrderResponse
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("razorpay: decode order response: %w", err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("razorpay: order response missing id")
	}

	return &payment.GatewayOrder{
		GatewayOrderID: order.ID,
		AmountMinor:    order.Amount,
		Currency:       order.Currency,
		RawPayload:     string(raw),
	}, nil
}

// VerifySignature checks the HMAC-SHA256 signature Razorpay computes over
// "<gateway_order_id>|<gateway_payment_id>" with the key secret.
func (a *RazorpayAdapter) VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool {
	return VerifySignature(a.cfg.KeySecret, gatewayOrderID, gatewayPaymentID, signature)
}

// VerifySignature checks a Razorpay payment signature against the shared
// secret. Exposed at package level so tests can produce valid signatures.
func VerifySignature(secret, gatewayOrderID, gatewayPaymentID, signature string) bool {
	expected := Sign(secret, gatewayOrderID, gatewayPaymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Sign computes the hex HMAC-SHA256 signature over "<orderID>|<paymentID>"
func Sign(secret, gatewayOrderID, gatewayPaymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + gatewayPaymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

var _ payment.Gateway = (*RazorpayAdapter)(nil)
