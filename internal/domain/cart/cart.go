package cart

import (
	"time"

	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CartLine is a single product variant in a user's cart. The price is a
// snapshot taken when the line was added; checkout re-prices from the live
// variant.
type CartLine struct {
	ID           uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CartID       uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null"`
	VariantID    uuid.UUID       `gorm:"type:uuid;not null"`
	VariantLabel string          `gorm:"type:varchar(100);not null"`
	Price        decimal.Decimal `gorm:"type:decimal(18,2);not null"`
	Quantity     int             `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TableName returns the table name for GORM
func (CartLine) TableName() string {
	return "cart_lines"
}

// LineTotal returns price * quantity for this line
func (l *CartLine) LineTotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Matches reports whether the line references the given product variant
func (l *CartLine) Matches(productID, variantID uuid.UUID) bool {
	return l.ProductID == productID && l.VariantID == variantID
}

// Cart is the aggregate root for a user's shopping cart. One cart exists per
// user; it is ephemeral and cleared on successful checkout.
type Cart struct {
	shared.BaseAggregateRoot
	UserID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex"`
	Lines  []CartLine `gorm:"foreignKey:CartID;references:ID"`
}

// TableName returns the table name for GORM
func (Cart) TableName() string {
	return "carts"
}

// NewCart creates an empty cart for the given user
func NewCart(userID uuid.UUID) (*Cart, error) {
	if userID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	return &Cart{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            userID,
		Lines:             make([]CartLine, 0),
	}, nil
}

// IsEmpty returns true if the cart has no lines
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}

// FindLine returns the line with the given ID, or nil if absent
func (c *Cart) FindLine(lineID uuid.UUID) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			return &c.Lines[i]
		}
	}
	return nil
}

// FindLineByVariant returns the line referencing the given product variant,
// or nil if absent
func (c *Cart) FindLineByVariant(productID, variantID uuid.UUID) *CartLine {
	for i := range c.Lines {
		if c.Lines[i].Matches(productID, variantID) {
			return &c.Lines[i]
		}
	}
	return nil
}

// AddLine adds a new line or merges quantity into an existing line for the
// same variant. The caller is responsible for stock and combo-quantity checks
// against the live variant.
func (c *Cart) AddLine(productID, variantID uuid.UUID, variantLabel string, price decimal.Decimal, quantity int) (*CartLine, error) {
	if quantity < 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}

	if existing := c.FindLineByVariant(productID, variantID); existing != nil {
		existing.Quantity += quantity
		existing.UpdatedAt = time.Now()
		c.UpdatedAt = existing.UpdatedAt
		return existing, nil
	}

	now := time.Now()
	line := CartLine{
		ID:           uuid.New(),
		CartID:       c.ID,
		ProductID:    productID,
		VariantID:    variantID,
		VariantLabel: variantLabel,
		Price:        price,
		Quantity:     quantity,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	c.Lines = append(c.Lines, line)
	c.UpdatedAt = now

	return &c.Lines[len(c.Lines)-1], nil
}

// UpdateLineQuantity sets the quantity on an existing line
func (c *Cart) UpdateLineQuantity(lineID uuid.UUID, quantity int) error {
	if quantity < 1 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be at least 1")
	}
	line := c.FindLine(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	line.Quantity = quantity
	line.UpdatedAt = time.Now()
	c.UpdatedAt = line.UpdatedAt
	return nil
}

// RemoveLine removes the line with the given ID
func (c *Cart) RemoveLine(lineID uuid.UUID) error {
	for i := range c.Lines {
		if c.Lines[i].ID == lineID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// Clear removes all lines from the cart
func (c *Cart) Clear() {
	c.Lines = make([]CartLine, 0)
	c.UpdatedAt = time.Now()
}

// EstimatedTotal returns the sum of line totals at snapshot prices
func (c *Cart) EstimatedTotal() decimal.Decimal {
	total := decimal.Zero
	for i := range c.Lines {
		total = total.Add(c.Lines[i].LineTotal())
	}
	return total
}
