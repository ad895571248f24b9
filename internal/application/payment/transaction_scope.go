package payment

import (
	"context"

	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/payment"
)

// Repositories provides access to the repositories a payment verification
// touches inside one transaction.
type Repositories interface {
	Orders() ordering.Repository
	Payments() payment.Repository
}

// TransactionScope executes a function within a database transaction. The
// payment record and order PAID transitions commit or roll back together.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// NoOpTransactionScope runs functions without a real transaction (for tests)
type NoOpTransactionScope struct {
	orderRepo   ordering.Repository
	paymentRepo payment.Repository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope over the given repositories
func NewNoOpTransactionScope(orderRepo ordering.Repository, paymentRepo payment.Repository) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		orderRepo:   orderRepo,
		paymentRepo: paymentRepo,
	}
}

// Execute runs the function directly, without transaction semantics
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos Repositories) error) error {
	return fn(s)
}

// Orders returns the order repository
func (s *NoOpTransactionScope) Orders() ordering.Repository { return s.orderRepo }

// Payments returns the payment record repository
func (s *NoOpTransactionScope) Payments() payment.Repository { return s.paymentRepo }

var _ TransactionScope = (*NoOpTransactionScope)(nil)
var _ Repositories = (*NoOpTransactionScope)(nil)
