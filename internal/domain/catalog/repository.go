package catalog

import (
	"context"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ProductRepository defines persistence operations for the Product aggregate
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)
	FindBySlug(ctx context.Context, slug string) (*Product, error)
	// FindVariant loads a single variant together with its parent product name
	// and combo flag, without loading sibling variants.
	FindVariant(ctx context.Context, productID, variantID uuid.UUID) (*Product, *Variant, error)
	// FindVariantByID is FindVariant without a known product ID, used by
	// administrative corrections that reference variants directly.
	FindVariantByID(ctx context.Context, variantID uuid.UUID) (*Product, *Variant, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, product *Product) error

	// DecrementVariantStock atomically decrements a variant's stock by quantity,
	// guarded so the stock can never go negative. Returns
	// shared.ErrInsufficientStock when the guard rejects the update and the
	// remaining stock at decision time.
	DecrementVariantStock(ctx context.Context, variantID uuid.UUID, quantity int) (remaining int, err error)

	// IncrementVariantStock atomically increments a variant's stock by quantity
	// and returns the new stock count.
	IncrementVariantStock(ctx context.Context, variantID uuid.UUID, quantity int) (current int, err error)
}
