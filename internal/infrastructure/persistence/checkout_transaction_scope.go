package persistence

import (
	"context"

	appordering "github.com/anuraga/backend/internal/application/ordering"
	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/inventory"
	"github.com/anuraga/backend/internal/domain/ordering"
	"gorm.io/gorm"
)

// GormCheckoutTransactionScope implements the checkout TransactionScope using
// GORM transactions. The order insert, stock decrements, ledger entries, and
// cart clear commit or roll back as one unit.
type GormCheckoutTransactionScope struct {
	db *gorm.DB
}

// NewGormCheckoutTransactionScope creates a new GormCheckoutTransactionScope
func NewGormCheckoutTransactionScope(db *gorm.DB) *GormCheckoutTransactionScope {
	return &GormCheckoutTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormCheckoutTransactionScope) Execute(ctx context.Context, fn func(repos appordering.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&checkoutTxRepositories{tx: tx})
	})
}

// checkoutTxRepositories provides repositories bound to one transaction
type checkoutTxRepositories struct {
	tx *gorm.DB
}

func (r *checkoutTxRepositories) Orders() ordering.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *checkoutTxRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.tx)
}

func (r *checkoutTxRepositories) Carts() cart.Repository {
	return NewGormCartRepository(r.tx)
}

func (r *checkoutTxRepositories) Ledger() inventory.LedgerRepository {
	return NewGormLedgerRepository(r.tx)
}

var _ appordering.TransactionScope = (*GormCheckoutTransactionScope)(nil)
var _ appordering.Repositories = (*checkoutTxRepositories)(nil)
