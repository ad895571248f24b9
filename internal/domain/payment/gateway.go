package payment

import (
	"context"

	"github.com/anuraga/backend/internal/domain/shared/valueobject"
)

// CreateGatewayOrderRequest carries what the gateway needs to open a
// payment order. Amounts are in major units; adapters convert to the
// gateway's minor-unit representation.
type CreateGatewayOrderRequest struct {
	// Receipt is our internal order ID, echoed back by the gateway
	Receipt string
	Amount  valueobject.Money
}

// GatewayOrder is the gateway's view of a created payment order
type GatewayOrder struct {
	// GatewayOrderID is the gateway-assigned order identifier the client
	// uses to drive the payment widget
	GatewayOrderID string
	// AmountMinor is the amount in the currency's minor units (paise for INR)
	AmountMinor int64
	Currency    string
	// RawPayload is the gateway's raw response, kept for audit
	RawPayload string
}

// Gateway is the port interface for the external payment gateway. It is
// defined in the domain layer; the HTTP adapter lives in infrastructure.
type Gateway interface {
	// CreateOrder opens a payment order at the gateway for the given amount
	CreateOrder(ctx context.Context, req CreateGatewayOrderRequest) (*GatewayOrder, error)

	// VerifySignature checks the gateway's HMAC signature over the
	// (gatewayOrderID, gatewayPaymentID) pair using the shared secret.
	// The comparison is constant-time.
	VerifySignature(gatewayOrderID, gatewayPaymentID, signature string) bool
}
