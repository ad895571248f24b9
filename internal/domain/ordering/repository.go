package ordering

import (
	"context"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for the Order aggregate
type Repository interface {
	// FindByID loads an order with its lines and history
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, int64, error)
	// FindAll lists orders for the admin surface.
	// Supported filter keys: "status", "payment_status".
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, int64, error)

	// Create persists a new order with its lines and initial history entry
	Create(ctx context.Context, order *Order) error

	// Save persists status, payment, and history changes with an optimistic
	// version check; returns shared.ErrConcurrencyConflict on a stale version.
	Save(ctx context.Context, order *Order) error

	// MarkPaid applies the PAID transition conditionally: the update only
	// succeeds when the order's payment status is not already PAID, so two
	// concurrent verifications cannot both apply it. Returns
	// shared.ErrInvalidState when the guard rejects the update.
	MarkPaid(ctx context.Context, order *Order) error
}
