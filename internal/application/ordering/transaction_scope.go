package ordering

import (
	"context"

	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/inventory"
	"github.com/anuraga/backend/internal/domain/ordering"
)

// TransactionScope provides transactional access to the repositories the
// checkout lifecycle touches. A function executed within a scope sees all
// repository operations as part of one database transaction, committed or
// rolled back atomically.
type TransactionScope interface {
	// Execute runs the given function within a database transaction.
	// If the function returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to the checkout repositories within a
// transaction. All repositories share the same underlying transaction.
type Repositories interface {
	Orders() ordering.Repository
	Products() catalog.ProductRepository
	Carts() cart.Repository
	Ledger() inventory.LedgerRepository
}

// NoOpTransactionScope runs functions without a real transaction.
// Used in tests where the backing repositories are mocks.
type NoOpTransactionScope struct {
	orderRepo   ordering.Repository
	productRepo catalog.ProductRepository
	cartRepo    cart.Repository
	ledgerRepo  inventory.LedgerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(
	orderRepo ordering.Repository,
	productRepo catalog.ProductRepository,
	cartRepo cart.Repository,
	ledgerRepo inventory.LedgerRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		cartRepo:    cartRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() ordering.Repository { return s.orderRepo }

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.productRepo }

// Carts returns the cart repository
func (s *NoOpTransactionScope) Carts() cart.Repository { return s.cartRepo }

// Ledger returns the stock ledger repository
func (s *NoOpTransactionScope) Ledger() inventory.LedgerRepository { return s.ledgerRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
