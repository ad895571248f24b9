package inventory

import (
	"context"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// LedgerRepository is the append-only store for stock ledger entries.
// There are deliberately no update or delete operations.
type LedgerRepository interface {
	// Record appends an entry and returns its ID
	Record(ctx context.Context, entry *LedgerEntry) (uuid.UUID, error)

	// FindHistory returns entries matching the filter, newest first.
	// Supported filter keys: "product_id", "variant_id", "direction".
	FindHistory(ctx context.Context, filter shared.Filter) ([]LedgerEntry, int64, error)

	// ExistsForReference reports whether an entry already exists for the given
	// order line reference and direction. Used to keep per-line restock
	// idempotent across cancel retries.
	ExistsForReference(ctx context.Context, orderID, lineID uuid.UUID, direction Direction) (bool, error)
}
