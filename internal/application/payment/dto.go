package payment

import (
	"time"

	"github.com/anuraga/backend/internal/domain/payment"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateIntentRequest asks the gateway to open a payment order for an
// existing internal order.
type CreateIntentRequest struct {
	OrderID uuid.UUID `json:"order_id" binding:"required"`
}

// IntentResponse carries what the client needs to drive the payment widget
type IntentResponse struct {
	PaymentRecordID uuid.UUID `json:"payment_record_id"`
	OrderID         uuid.UUID `json:"order_id"`
	GatewayOrderID  string    `json:"gateway_order_id"`
	// AmountMinor is the charge amount in minor units (paise for INR)
	AmountMinor int64  `json:"amount_minor"`
	Currency    string `json:"currency"`
}

// VerifyRequest carries the gateway's payment confirmation for verification
type VerifyRequest struct {
	GatewayOrderID   string `json:"gateway_order_id" binding:"required"`
	GatewayPaymentID string `json:"gateway_payment_id" binding:"required"`
	Signature        string `json:"signature" binding:"required"`
}

// VerifyResponse reports the outcome of a verification
type VerifyResponse struct {
	OrderID          uuid.UUID `json:"order_id"`
	GatewayOrderID   string    `json:"gateway_order_id"`
	GatewayPaymentID string    `json:"gateway_payment_id"`
	Status           string    `json:"status"`
	// AlreadyProcessed is true when this confirmation had been applied
	// before and the call changed nothing.
	AlreadyProcessed bool `json:"already_processed,omitempty"`
}

// ListFilter represents filter options for the admin payment list
type ListFilter struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// RecordResponse represents a payment record in API responses
type RecordResponse struct {
	ID               uuid.UUID       `json:"id"`
	OrderID          uuid.UUID       `json:"order_id"`
	GatewayOrderID   string          `json:"gateway_order_id"`
	GatewayPaymentID string          `json:"gateway_payment_id,omitempty"`
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	FailureReason    string          `json:"failure_reason,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// ToRecordResponse converts a payment record to its response representation
func ToRecordResponse(r *payment.Record) RecordResponse {
	return RecordResponse{
		ID:               r.ID,
		OrderID:          r.OrderID,
		GatewayOrderID:   r.GatewayOrderID,
		GatewayPaymentID: r.GatewayPaymentID,
		Amount:           r.Amount,
		Currency:         r.Currency,
		Status:           r.Status.String(),
		FailureReason:    r.FailureReason,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
	}
}

// ToRecordResponses converts a slice of payment records
func ToRecordResponses(records []payment.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for i := range records {
		out = append(out, ToRecordResponse(&records[i]))
	}
	return out
}
