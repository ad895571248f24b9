package persistence

import (
	"context"
	"errors"

	"github.com/anuraga/backend/internal/domain/ordering"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements ordering.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// FindByID loads an order with its lines and history
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*ordering.Order, error) {
	var order ordering.Order
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindByUser lists a user's orders, newest first
func (r *GormOrderRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]ordering.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&ordering.Order{}).Where("user_id = ?", userID)
	return r.list(base, filter)
}

// FindAll lists orders for the admin surface.
// Supported filter keys: "status", "payment_status".
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]ordering.Order, int64, error) {
	base := r.db.WithContext(ctx).Model(&ordering.Order{})
	if status, ok := filter.Filters["status"]; ok {
		base = base.Where("status = ?", status)
	}
	if paymentStatus, ok := filter.Filters["payment_status"]; ok {
		base = base.Where("payment_status = ?", paymentStatus)
	}
	return r.list(base, filter)
}

func (r *GormOrderRepository) list(base *gorm.DB, filter shared.Filter) ([]ordering.Order, int64, error) {
	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []ordering.Order
	if err := base.Session(&gorm.Session{}).
		Preload("Lines").
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// Create persists a new order with its lines and initial history entry
func (r *GormOrderRepository) Create(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// Save persists status, payment, and history changes with an optimistic
// version check. The order's fixed fields (lines, total, address) are never
// updated here.
func (r *GormOrderRepository) Save(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ordering.Order{}).
			Where("id = ? AND version = ?", order.ID, order.Version-1).
			Updates(map[string]interface{}{
				"status":         order.Status,
				"payment_status": order.PaymentStatus,
				"payment_method": order.PaymentMethod,
				"transaction_id": order.TransactionID,
				"cancel_reason":  order.CancelReason,
				"version":        order.Version,
				"updated_at":     order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}

		if len(order.History) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&order.History).Error
	})
}

// MarkPaid applies the PAID transition conditionally: the update only matches
// when the payment status is not already PAID, so two concurrent
// verifications cannot both apply it.
func (r *GormOrderRepository) MarkPaid(ctx context.Context, order *ordering.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ordering.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, ordering.PaymentStatusPaid).
			Updates(map[string]interface{}{
				"payment_status": ordering.PaymentStatusPaid,
				"payment_method": ordering.PaymentMethodOnline,
				"transaction_id": order.TransactionID,
				"version":        gorm.Expr("version + 1"),
				"updated_at":     order.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrInvalidState
		}

		if len(order.History) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&order.History).Error
	})
}

var _ ordering.Repository = (*GormOrderRepository)(nil)
