package persistence

import (
	"context"
	"errors"

	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCartRepository implements cart.Repository using GORM
type GormCartRepository struct {
	db *gorm.DB
}

// NewGormCartRepository creates a new GormCartRepository
func NewGormCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// FindByUser loads the user's cart with its lines
func (r *GormCartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var c cart.Cart
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		First(&c, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// Save persists the cart and replaces its lines with the current set.
// Lines removed from the aggregate are deleted from the database.
func (r *GormCartRepository) Save(ctx context.Context, c *cart.Cart) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&cart.Cart{
			BaseAggregateRoot: c.BaseAggregateRoot,
			UserID:            c.UserID,
		}).Error; err != nil {
			return err
		}

		keep := make([]uuid.UUID, 0, len(c.Lines))
		for i := range c.Lines {
			keep = append(keep, c.Lines[i].ID)
		}
		query := tx.Where("cart_id = ?", c.ID)
		if len(keep) > 0 {
			query = query.Where("id NOT IN ?", keep)
		}
		if err := query.Delete(&cart.CartLine{}).Error; err != nil {
			return err
		}

		if len(c.Lines) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"variant_label", "price", "quantity", "updated_at",
			}),
		}).Create(&c.Lines).Error
	})
}

// ClearByUser deletes all lines of the user's cart. A missing cart is a no-op.
func (r *GormCartRepository) ClearByUser(ctx context.Context, userID uuid.UUID) error {
	var c cart.Cart
	if err := r.db.WithContext(ctx).Select("id").First(&c, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	return r.db.WithContext(ctx).Where("cart_id = ?", c.ID).Delete(&cart.CartLine{}).Error
}

var _ cart.Repository = (*GormCartRepository)(nil)
