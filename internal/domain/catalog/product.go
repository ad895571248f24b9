package catalog

import (
	"strings"
	"time"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Variant represents a purchasable unit of a product (a specific pack size)
// with its own price and stock. It is a child entity of the Product aggregate;
// the stock count on the variant is the authoritative stock figure for the
// product+variant combination.
type Variant struct {
	ID        uuid.UUID        `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Label     string           `gorm:"type:varchar(100);not null"` // e.g. "250g", "500g", "200g x 2"
	Price     decimal.Decimal  `gorm:"type:decimal(18,2);not null"`
	ListPrice *decimal.Decimal `gorm:"type:decimal(18,2)"` // MRP / strike-through price
	Stock     int              `gorm:"not null;default:0"`
	IsDefault bool             `gorm:"not null;default:false"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (Variant) TableName() string {
	return "product_variants"
}

// HasStock returns true if the variant can satisfy the requested quantity
func (v *Variant) HasStock(quantity int) bool {
	return quantity > 0 && v.Stock >= quantity
}

// Product represents a catalog product with its sellable variants.
// It is the aggregate root for variant and stock operations; product
// metadata (name, description, images) is owned by the catalog collaborator
// and only read here.
type Product struct {
	shared.BaseAggregateRoot
	Name        string    `gorm:"type:varchar(200);not null"`
	Slug        string    `gorm:"type:varchar(200);not null;uniqueIndex"`
	Description string    `gorm:"type:text"`
	Images      string    `gorm:"type:jsonb"` // JSON array of image URLs
	IsCombo     bool      `gorm:"not null;default:false"`
	IsActive    bool      `gorm:"not null;default:true"`
	Variants    []Variant `gorm:"foreignKey:ProductID;references:ID"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product with at least one variant
func NewProduct(name, slug string) (*Product, error) {
	name = strings.TrimSpace(name)
	slug = strings.ToLower(strings.TrimSpace(slug))
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_NAME", "Product name cannot be empty")
	}
	if slug == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT_SLUG", "Product slug cannot be empty")
	}

	return &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              slug,
		Images:            "[]",
		IsActive:          true,
		Variants:          make([]Variant, 0),
	}, nil
}

// AddVariant adds a variant to the product. The first variant added becomes
// the default; at most one variant may be the default.
func (p *Product) AddVariant(label string, price decimal.Decimal, listPrice *decimal.Decimal, stock int, isDefault bool) (*Variant, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return nil, shared.NewDomainError("INVALID_VARIANT_LABEL", "Variant label cannot be empty")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Variant price cannot be negative")
	}
	if stock < 0 {
		return nil, shared.NewDomainError("INVALID_STOCK", "Variant stock cannot be negative")
	}

	if isDefault {
		for i := range p.Variants {
			p.Variants[i].IsDefault = false
		}
	} else if len(p.Variants) == 0 {
		isDefault = true
	}

	now := time.Now()
	variant := Variant{
		ID:        uuid.New(),
		ProductID: p.ID,
		Label:     label,
		Price:     price,
		ListPrice: listPrice,
		Stock:     stock,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	p.Variants = append(p.Variants, variant)
	p.UpdatedAt = now

	return &p.Variants[len(p.Variants)-1], nil
}

// FindVariant returns the variant with the given ID, or nil if absent
func (p *Product) FindVariant(variantID uuid.UUID) *Variant {
	for i := range p.Variants {
		if p.Variants[i].ID == variantID {
			return &p.Variants[i]
		}
	}
	return nil
}

// DefaultVariant returns the default variant, or the first variant when no
// default is flagged. Returns nil for a product without variants.
func (p *Product) DefaultVariant() *Variant {
	for i := range p.Variants {
		if p.Variants[i].IsDefault {
			return &p.Variants[i]
		}
	}
	if len(p.Variants) > 0 {
		return &p.Variants[0]
	}
	return nil
}

// MaxQuantityPerOrder returns the maximum quantity of this product a single
// order line may carry. Combo products are restricted to exactly one.
func (p *Product) MaxQuantityPerOrder() int {
	if p.IsCombo {
		return 1
	}
	return 0 // unlimited
}

// Deactivate removes the product from sale without deleting it
func (p *Product) Deactivate() {
	p.IsActive = false
	p.UpdatedAt = time.Now()
}
