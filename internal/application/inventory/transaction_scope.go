package inventory

import (
	"context"

	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/inventory"
)

// TransactionScope provides transactional access to the repositories stock
// adjustments touch: the variant stock update and its ledger entry commit or
// roll back together.
type TransactionScope interface {
	// Execute runs the given function within a database transaction
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Repositories provides access to the adjustment repositories within a
// transaction
type Repositories interface {
	Products() catalog.ProductRepository
	Ledger() inventory.LedgerRepository
}

// NoOpTransactionScope runs functions without a real transaction (for tests)
type NoOpTransactionScope struct {
	productRepo catalog.ProductRepository
	ledgerRepo  inventory.LedgerRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(productRepo catalog.ProductRepository, ledgerRepo inventory.LedgerRepository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		productRepo: productRepo,
		ledgerRepo:  ledgerRepo,
	}
}

// Execute runs the function without a real transaction
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Products returns the product repository
func (s *NoOpTransactionScope) Products() catalog.ProductRepository { return s.productRepo }

// Ledger returns the stock ledger repository
func (s *NoOpTransactionScope) Ledger() inventory.LedgerRepository { return s.ledgerRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
