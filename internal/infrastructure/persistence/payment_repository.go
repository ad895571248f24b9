package persistence

import (
	"context"
	"errors"

	"github.com/anuraga/backend/internal/domain/payment"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPaymentRepository implements payment.Repository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// Create persists a new payment record
func (r *GormPaymentRepository) Create(ctx context.Context, record *payment.Record) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// FindByID finds a payment record by its ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*payment.Record, error) {
	var record payment.Record
	if err := r.db.WithContext(ctx).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByGatewayOrderID looks up the record tied to a gateway order
func (r *GormPaymentRepository) FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*payment.Record, error) {
	var record payment.Record
	if err := r.db.WithContext(ctx).First(&record, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByOrder lists all payment attempts for one order, newest first
func (r *GormPaymentRepository) FindByOrder(ctx context.Context, orderID uuid.UUID) ([]payment.Record, error) {
	var records []payment.Record
	if err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// MarkPaid persists the PAID transition conditionally: the update only
// matches when the record is not in a terminal state, so at most one record
// per order reaches PAID.
func (r *GormPaymentRepository) MarkPaid(ctx context.Context, record *payment.Record) error {
	result := r.db.WithContext(ctx).
		Model(&payment.Record{}).
		Where("id = ? AND status NOT IN ?", record.ID, []payment.Status{payment.StatusPaid, payment.StatusFailed}).
		Updates(map[string]interface{}{
			"status":             payment.StatusPaid,
			"gateway_payment_id": record.GatewayPaymentID,
			"version":            gorm.Expr("version + 1"),
			"updated_at":         record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidState
	}
	return nil
}

// SaveFailure persists a FAILED record. Paid records are never overwritten.
func (r *GormPaymentRepository) SaveFailure(ctx context.Context, record *payment.Record) error {
	result := r.db.WithContext(ctx).
		Model(&payment.Record{}).
		Where("id = ? AND status <> ?", record.ID, payment.StatusPaid).
		Updates(map[string]interface{}{
			"status":             payment.StatusFailed,
			"gateway_payment_id": record.GatewayPaymentID,
			"failure_reason":     record.FailureReason,
			"version":            gorm.Expr("version + 1"),
			"updated_at":         record.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrInvalidState
	}
	return nil
}

// FindPaid lists PAID records for the admin surface, newest first
func (r *GormPaymentRepository) FindPaid(ctx context.Context, filter shared.Filter) ([]payment.Record, int64, error) {
	base := r.db.WithContext(ctx).Model(&payment.Record{}).Where("status = ?", payment.StatusPaid)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var records []payment.Record
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

var _ payment.Repository = (*GormPaymentRepository)(nil)
