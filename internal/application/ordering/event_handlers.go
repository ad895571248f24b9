package ordering

import (
	"context"

	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderActivityHandler records order lifecycle events in the application log.
// It stands in for downstream consumers (notifications, analytics) that react
// to placed, paid, and cancelled orders.
type OrderActivityHandler struct {
	logger *zap.Logger
}

// NewOrderActivityHandler creates a new OrderActivityHandler
func NewOrderActivityHandler(logger *zap.Logger) *OrderActivityHandler {
	return &OrderActivityHandler{logger: logger}
}

// EventTypes returns the event types this handler subscribes to
func (h *OrderActivityHandler) EventTypes() []string {
	return []string{
		ordering.EventTypeOrderPlaced,
		ordering.EventTypeOrderPaid,
		ordering.EventTypeOrderCancelled,
	}
}

// Handle processes one order lifecycle event
func (h *OrderActivityHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	switch e := event.(type) {
	case *ordering.OrderPlacedEvent:
		h.logger.Info("order placed",
			zap.String("order_id", e.OrderID.String()),
			zap.String("user_id", e.UserID.String()),
			zap.String("total_amount", e.TotalAmount.String()),
			zap.Int("line_count", e.LineCount),
		)
	case *ordering.OrderPaidEvent:
		h.logger.Info("order paid",
			zap.String("order_id", e.OrderID.String()),
			zap.String("user_id", e.UserID.String()),
			zap.String("gateway_payment_id", e.GatewayPaymentID),
		)
	case *ordering.OrderCancelledEvent:
		h.logger.Info("order cancelled",
			zap.String("order_id", e.OrderID.String()),
			zap.String("user_id", e.UserID.String()),
			zap.String("reason", e.Reason),
		)
	default:
		h.logger.Debug("unhandled order event", zap.String("event_type", event.EventType()))
	}
	return nil
}

var _ shared.EventHandler = (*OrderActivityHandler)(nil)
