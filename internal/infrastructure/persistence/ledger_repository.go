package persistence

import (
	"context"

	"github.com/anuraga/backend/internal/domain/inventory"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLedgerRepository implements inventory.LedgerRepository using GORM.
// The ledger is append-only; no update or delete paths exist.
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Record appends an entry and returns its ID
func (r *GormLedgerRepository) Record(ctx context.Context, entry *inventory.LedgerEntry) (uuid.UUID, error) {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return uuid.Nil, err
	}
	return entry.ID, nil
}

// FindHistory returns entries matching the filter, newest first
func (r *GormLedgerRepository) FindHistory(ctx context.Context, filter shared.Filter) ([]inventory.LedgerEntry, int64, error) {
	base := r.db.WithContext(ctx).Model(&inventory.LedgerEntry{})
	if productID, ok := filter.Filters["product_id"]; ok {
		base = base.Where("product_id = ?", productID)
	}
	if variantID, ok := filter.Filters["variant_id"]; ok {
		base = base.Where("variant_id = ?", variantID)
	}
	if direction, ok := filter.Filters["direction"]; ok {
		base = base.Where("direction = ?", direction)
	}

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []inventory.LedgerEntry
	if err := base.Session(&gorm.Session{}).
		Order("created_at DESC").
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// ExistsForReference reports whether an entry exists for the given order line
// reference and direction
func (r *GormLedgerRepository) ExistsForReference(ctx context.Context, orderID, lineID uuid.UUID, direction inventory.Direction) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&inventory.LedgerEntry{}).
		Where("reference_id = ? AND reference_line = ? AND direction = ?", orderID, lineID, direction).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

var _ inventory.LedgerRepository = (*GormLedgerRepository)(nil)
