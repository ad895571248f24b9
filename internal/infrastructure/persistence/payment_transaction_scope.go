package persistence

import (
	"context"

	apppayment "github.com/anuraga/backend/internal/application/payment"
	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormPaymentTransactionScope implements the payment TransactionScope using
// GORM transactions. The payment record and order PAID transitions commit or
// roll back together.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&paymentTxRepositories{tx: tx})
	})
}

// paymentTxRepositories provides repositories bound to one transaction
type paymentTxRepositories struct {
	tx *gorm.DB
}

func (r *paymentTxRepositories) Orders() ordering.Repository {
	return NewGormOrderRepository(r.tx)
}

func (r *paymentTxRepositories) Payments() payment.Repository {
	return NewGormPaymentRepository(r.tx)
}

var _ apppayment.TransactionScope = (*GormPaymentTransactionScope)(nil)
var _ apppayment.Repositories = (*paymentTxRepositories)(nil)
