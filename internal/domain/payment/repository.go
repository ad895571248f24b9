package payment

import (
	"context"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines persistence operations for payment records
type Repository interface {
	Create(ctx context.Context, record *Record) error
	FindByID(ctx context.Context, id uuid.UUID) (*Record, error)
	// FindByGatewayOrderID looks up the record tied to a gateway order
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*Record, error)
	FindByOrder(ctx context.Context, orderID uuid.UUID) ([]Record, error)

	// MarkPaid persists the PAID transition conditionally: the update only
	// succeeds when the record is not already in a terminal state, so at most
	// one record per order reaches PAID. Returns shared.ErrInvalidState when
	// the guard rejects the update.
	MarkPaid(ctx context.Context, record *Record) error

	// SaveFailure persists a FAILED record. Callers invoke this outside an
	// aborted transaction so failed-payment evidence survives the rollback.
	SaveFailure(ctx context.Context, record *Record) error

	// FindPaid lists PAID records for the admin surface, newest first
	FindPaid(ctx context.Context, filter shared.Filter) ([]Record, int64, error)
}
