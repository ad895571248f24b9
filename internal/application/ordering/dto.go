package ordering

import (
	"time"

	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShippingAddressInput is the delivery address submitted at checkout
type ShippingAddressInput struct {
	Name         string `json:"name" binding:"required,min=1,max=100"`
	Phone        string `json:"phone" binding:"required,min=6,max=20"`
	AddressLine1 string `json:"address_line1" binding:"required,min=1,max=300"`
	City         string `json:"city" binding:"required,min=1,max=100"`
	State        string `json:"state" binding:"required,min=1,max=100"`
	Pincode      string `json:"pincode" binding:"required,min=4,max=10"`
}

// CheckoutRequest represents a request to convert the cart into an order
type CheckoutRequest struct {
	ShippingAddress ShippingAddressInput `json:"shipping_address" binding:"required"`
	PaymentMethod   string               `json:"payment_method" binding:"required,oneof=COD ONLINE"`
}

// CancelOrderRequest represents a request to cancel an order
type CancelOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// UpdateStatusRequest represents an admin request to move an order's status
type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=PENDING CONFIRMED SHIPPED DELIVERED CANCELLED"`
	Note   string `json:"note" binding:"max=500"`
}

// ListFilter represents filter options for order lists
type ListFilter struct {
	Status        *ordering.OrderStatus   `form:"status"`
	PaymentStatus *ordering.PaymentStatus `form:"payment_status"`
	Page          int                     `form:"page"`
	PageSize      int                     `form:"page_size"`
}

// OrderLineResponse represents an order line in API responses
type OrderLineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	VariantID    uuid.UUID       `json:"variant_id"`
	Name         string          `json:"name"`
	VariantLabel string          `json:"variant_label"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// StatusHistoryResponse represents one status history entry
type StatusHistoryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note"`
	Timestamp time.Time `json:"timestamp"`
}

// ShippingAddressResponse represents the address snapshot on an order
type ShippingAddressResponse struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	State        string `json:"state"`
	Pincode      string `json:"pincode"`
}

// OrderResponse represents an order in API responses
type OrderResponse struct {
	ID              uuid.UUID               `json:"id"`
	UserID          uuid.UUID               `json:"user_id"`
	Lines           []OrderLineResponse     `json:"lines"`
	ShippingAddress ShippingAddressResponse `json:"shipping_address"`
	PaymentMethod   string                  `json:"payment_method"`
	PaymentStatus   string                  `json:"payment_status"`
	Status          string                  `json:"status"`
	TotalAmount     decimal.Decimal         `json:"total_amount"`
	TransactionID   string                  `json:"transaction_id,omitempty"`
	CancelReason    string                  `json:"cancel_reason,omitempty"`
	History         []StatusHistoryResponse `json:"history"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// ToOrderResponse converts an order aggregate to its response representation
func ToOrderResponse(o *ordering.Order) OrderResponse {
	lines := make([]OrderLineResponse, 0, len(o.Lines))
	for i := range o.Lines {
		l := &o.Lines[i]
		lines = append(lines, OrderLineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			VariantID:    l.VariantID,
			Name:         l.Name,
			VariantLabel: l.VariantLabel,
			UnitPrice:    l.UnitPrice,
			Quantity:     l.Quantity,
			LineTotal:    l.LineTotal,
		})
	}

	history := make([]StatusHistoryResponse, 0, len(o.History))
	for i := range o.History {
		h := &o.History[i]
		history = append(history, StatusHistoryResponse{
			Status:    h.Status.String(),
			Note:      h.Note,
			Timestamp: h.CreatedAt,
		})
	}

	return OrderResponse{
		ID:     o.ID,
		UserID: o.UserID,
		Lines:  lines,
		ShippingAddress: ShippingAddressResponse{
			Name:         o.ShippingAddress.Name(),
			Phone:        o.ShippingAddress.Phone(),
			AddressLine1: o.ShippingAddress.AddressLine1(),
			City:         o.ShippingAddress.City(),
			State:        o.ShippingAddress.State(),
			Pincode:      o.ShippingAddress.Pincode(),
		},
		PaymentMethod: string(o.PaymentMethod),
		PaymentStatus: string(o.PaymentStatus),
		Status:        o.Status.String(),
		TotalAmount:   o.TotalAmount,
		TransactionID: o.TransactionID,
		CancelReason:  o.CancelReason,
		History:       history,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
}

// ToOrderResponses converts a slice of orders
func ToOrderResponses(orders []ordering.Order) []OrderResponse {
	out := make([]OrderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, ToOrderResponse(&orders[i]))
	}
	return out
}
