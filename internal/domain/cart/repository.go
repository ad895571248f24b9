package cart

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines persistence operations for the Cart aggregate
type Repository interface {
	// FindByUser loads the user's cart with its lines.
	// Returns shared.ErrNotFound when the user has no cart yet.
	FindByUser(ctx context.Context, userID uuid.UUID) (*Cart, error)
	Save(ctx context.Context, cart *Cart) error
	// ClearByUser deletes all lines of the user's cart without deleting the
	// cart row itself. Clearing a non-existent cart is a no-op.
	ClearByUser(ctx context.Context, userID uuid.UUID) error
}
