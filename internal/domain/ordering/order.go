package ordering

import (
	"time"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/anuraga/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus represents the fulfilment status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status.
// Transitions are monotonic: once past PENDING an order never returns to it.
func (s OrderStatus) CanTransitionTo(target OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return target == OrderStatusConfirmed || target == OrderStatusCancelled
	case OrderStatusConfirmed:
		return target == OrderStatusShipped || target == OrderStatusCancelled
	case OrderStatusShipped:
		return target == OrderStatusDelivered
	case OrderStatusDelivered, OrderStatusCancelled:
		return false // terminal states
	}
	return false
}

// PaymentStatus represents the payment state of an order
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "PENDING"
	PaymentStatusPaid    PaymentStatus = "PAID"
	PaymentStatusFailed  PaymentStatus = "FAILED"
)

// IsValid checks if the status is a valid PaymentStatus
func (s PaymentStatus) IsValid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed:
		return true
	}
	return false
}

// PaymentMethod represents how an order is paid
type PaymentMethod string

const (
	PaymentMethodCOD    PaymentMethod = "COD"
	PaymentMethodOnline PaymentMethod = "ONLINE"
)

// IsValid checks if the method is a valid PaymentMethod
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCOD, PaymentMethodOnline:
		return true
	}
	return false
}

// OrderLine represents a line item in an order. All fields are snapshots
// taken at checkout time and never change afterwards.
type OrderLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID    uuid.UUID       `gorm:"type:uuid;not null"`
	Name         string          `gorm:"type:varchar(200);not null"`
	VariantLabel string          `gorm:"type:varchar(100)"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity     int             `gorm:"not null"`
	LineTotal    decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	CreatedAt    time.Time
}

// TableName returns the table name for GORM
func (OrderLine) TableName() string {
	return "order_lines"
}

// NewOrderLine creates an order line with a computed line total
func NewOrderLine(orderID, productID, variantID uuid.UUID, name, variantLabel string, unitPrice decimal.Decimal, quantity int) (*OrderLine, error) {
	if productID == uuid.Nil || variantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Product and variant IDs are required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	return &OrderLine{
		ID:           uuid.New(),
		OrderID:      orderID,
		ProductID:    productID,
		VariantID:    variantID,
		Name:         name,
		VariantLabel: variantLabel,
		UnitPrice:    unitPrice,
		Quantity:     quantity,
		LineTotal:    unitPrice.Mul(decimal.NewFromInt(int64(quantity))),
		CreatedAt:    time.Now(),
	}, nil
}

// StatusHistoryEntry is one append-only record of an order status change
type StatusHistoryEntry struct {
	ID        uuid.UUID   `gorm:"type:uuid;primaryKey"`
	OrderID   uuid.UUID   `gorm:"type:uuid;not null;index"`
	Status    OrderStatus `gorm:"type:varchar(20);not null"`
	Note      string      `gorm:"type:varchar(500)"`
	CreatedAt time.Time
}

// TableName returns the table name for GORM
func (StatusHistoryEntry) TableName() string {
	return "order_status_history"
}

// Order is the aggregate root for a customer order. It is created exactly
// once at checkout; afterwards only its statuses, transaction ID, and history
// change. TotalAmount is fixed at creation and never recomputed.
type Order struct {
	shared.BaseAggregateRoot
	UserID          uuid.UUID                   `gorm:"type:uuid;not null;index"`
	Lines           []OrderLine                 `gorm:"foreignKey:OrderID;references:ID"`
	ShippingAddress valueobject.ShippingAddress `gorm:"type:jsonb"`
	PaymentMethod   PaymentMethod               `gorm:"type:varchar(20);not null;default:'COD'"`
	PaymentStatus   PaymentStatus               `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	Status          OrderStatus                 `gorm:"type:varchar(20);not null;default:'PENDING';index"`
	TotalAmount     decimal.Decimal             `gorm:"type:decimal(18,2);not null"`
	TransactionID   string                      `gorm:"type:varchar(100)"` // gateway payment id once paid
	CancelReason    string                      `gorm:"type:varchar(500)"`
	History         []StatusHistoryEntry        `gorm:"foreignKey:OrderID;references:ID"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new pending order from pre-built lines. The initial
// history entry "Order Placed" is appended and the total is the sum of line
// totals.
func NewOrder(userID uuid.UUID, lines []OrderLine, address valueobject.ShippingAddress, method PaymentMethod) (*Order, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if len(lines) == 0 {
		return nil, shared.ErrEmptyCart
	}
	if address.IsEmpty() {
		return nil, shared.NewDomainError("INVALID_ADDRESS", "Shipping address is required")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Unknown payment method")
	}

	order := &Order{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		ShippingAddress:   address,
		PaymentMethod:     method,
		PaymentStatus:     PaymentStatusPending,
		Status:            OrderStatusPending,
	}

	total := decimal.Zero
	order.Lines = make([]OrderLine, 0, len(lines))
	for i := range lines {
		line := lines[i]
		line.OrderID = order.ID
		order.Lines = append(order.Lines, line)
		total = total.Add(line.LineTotal)
	}
	order.TotalAmount = total

	order.appendHistory(OrderStatusPending, "Order Placed")
	order.AddDomainEvent(NewOrderPlacedEvent(order))

	return order, nil
}

func (o *Order) appendHistory(status OrderStatus, note string) {
	o.History = append(o.History, StatusHistoryEntry{
		ID:        uuid.New(),
		OrderID:   o.ID,
		Status:    status,
		Note:      note,
		CreatedAt: time.Now(),
	})
}

// FindLine returns the order line with the given ID, or nil if absent
func (o *Order) FindLine(lineID uuid.UUID) *OrderLine {
	for i := range o.Lines {
		if o.Lines[i].ID == lineID {
			return &o.Lines[i]
		}
	}
	return nil
}

// TransitionTo moves the order to the target status if the transition table
// allows it, appending a history entry.
func (o *Order) TransitionTo(target OrderStatus, note string) error {
	if !target.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", "Unknown order status")
	}
	if !o.Status.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_STATE",
			"Cannot transition order from "+o.Status.String()+" to "+target.String())
	}

	o.Status = target
	o.appendHistory(target, note)
	o.UpdatedAt = time.Now()
	o.IncrementVersion()

	return nil
}

// CanCancel reports whether the order may still be cancelled
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusPending || o.Status == OrderStatusConfirmed
}

// Cancel marks the order cancelled with a reason and a history entry
func (o *Order) Cancel(reason string) error {
	if !o.CanCancel() {
		return shared.NewDomainError("INVALID_STATE",
			"Only pending or confirmed orders can be cancelled")
	}
	if err := o.TransitionTo(OrderStatusCancelled, reason); err != nil {
		return err
	}
	o.CancelReason = reason
	o.AddDomainEvent(NewOrderCancelledEvent(o, reason))
	return nil
}

// IsPaid returns true if the order has been paid
func (o *Order) IsPaid() bool {
	return o.PaymentStatus == PaymentStatusPaid
}

// MarkPaid records a successful online payment: the payment status moves to
// PAID exactly once, the method becomes ONLINE, the gateway payment ID is kept
// as the transaction ID, and a history entry is appended.
func (o *Order) MarkPaid(gatewayPaymentID string) error {
	if o.IsPaid() {
		return shared.NewDomainError("INVALID_STATE", "Order is already paid")
	}
	if gatewayPaymentID == "" {
		return shared.NewDomainError("INVALID_PAYMENT", "Gateway payment ID is required")
	}

	o.PaymentStatus = PaymentStatusPaid
	o.PaymentMethod = PaymentMethodOnline
	o.TransactionID = gatewayPaymentID
	o.appendHistory(o.Status, "Payment received")
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	o.AddDomainEvent(NewOrderPaidEvent(o, gatewayPaymentID))

	return nil
}
