package payment

import (
	"time"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Status represents the state of a payment attempt
type Status string

const (
	// StatusCreated means a gateway order was created and awaits the client
	StatusCreated Status = "CREATED"
	// StatusAttempted means the client initiated payment at the gateway
	StatusAttempted Status = "ATTEMPTED"
	// StatusPaid means the payment was verified and applied
	StatusPaid Status = "PAID"
	// StatusFailed means verification or reconciliation failed
	StatusFailed Status = "FAILED"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusCreated, StatusAttempted, StatusPaid, StatusFailed:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// Record is one payment-gateway order attempt for an internal order.
// At most one record per order ever reaches PAID.
type Record struct {
	shared.BaseAggregateRoot
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	GatewayOrderID   string          `gorm:"type:varchar(100);not null;uniqueIndex"`
	GatewayPaymentID string          `gorm:"type:varchar(100)"` // set once confirmed
	Amount           decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'INR'"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'CREATED';index"`
	RawPayload       string          `gorm:"type:jsonb"` // raw gateway response
	FailureReason    string          `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (Record) TableName() string {
	return "payment_records"
}

// NewRecord creates a payment record in CREATED state for a gateway order
func NewRecord(orderID uuid.UUID, gatewayOrderID string, amount decimal.Decimal, currency, rawPayload string) (*Record, error) {
	if orderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ORDER", "Order ID cannot be empty")
	}
	if gatewayOrderID == "" {
		return nil, shared.NewDomainError("INVALID_GATEWAY_ORDER", "Gateway order ID cannot be empty")
	}
	if amount.IsNegative() || amount.IsZero() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if currency == "" {
		currency = string(valueobject.DefaultCurrency)
	}
	if rawPayload == "" {
		rawPayload = "{}"
	}

	return &Record{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		OrderID:           orderID,
		GatewayOrderID:    gatewayOrderID,
		Amount:            amount,
		Currency:          currency,
		Status:            StatusCreated,
		RawPayload:        rawPayload,
	}, nil
}

// MarkPaid transitions the record to PAID with the gateway payment ID.
// PAID and FAILED are terminal for the record.
func (r *Record) MarkPaid(gatewayPaymentID string) error {
	if r.Status == StatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Payment record is already paid")
	}
	if r.Status == StatusFailed {
		return shared.NewDomainError("INVALID_STATE", "Cannot pay a failed payment record")
	}
	if gatewayPaymentID == "" {
		return shared.NewDomainError("INVALID_PAYMENT", "Gateway payment ID is required")
	}

	r.Status = StatusPaid
	r.GatewayPaymentID = gatewayPaymentID
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}

// MarkFailed records a failure with its reason. Failing an already-paid
// record is rejected.
func (r *Record) MarkFailed(gatewayPaymentID, reason string) error {
	if r.Status == StatusPaid {
		return shared.NewDomainError("INVALID_STATE", "Cannot fail a paid payment record")
	}

	r.Status = StatusFailed
	if gatewayPaymentID != "" {
		r.GatewayPaymentID = gatewayPaymentID
	}
	r.FailureReason = reason
	r.UpdatedAt = time.Now()
	r.IncrementVersion()

	return nil
}
