package cart

import (
	"time"

	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AddLineRequest represents a request to add a product variant to the cart
type AddLineRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// UpdateLineRequest represents a request to change a cart line's quantity
type UpdateLineRequest struct {
	Quantity int `json:"quantity" binding:"required,min=1"`
}

// SyncLineInput is one line of a client-side guest cart to merge
type SyncLineInput struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,min=1"`
}

// SyncRequest represents a request to merge a guest cart into the user's cart
type SyncRequest struct {
	Lines []SyncLineInput `json:"lines" binding:"required"`
}

// LineResponse represents a cart line in API responses
type LineResponse struct {
	ID           uuid.UUID       `json:"id"`
	ProductID    uuid.UUID       `json:"product_id"`
	VariantID    uuid.UUID       `json:"variant_id"`
	VariantLabel string          `json:"variant_label"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
}

// CartResponse represents a cart in API responses
type CartResponse struct {
	ID             uuid.UUID       `json:"id"`
	UserID         uuid.UUID       `json:"user_id"`
	Lines          []LineResponse  `json:"lines"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SnapshotLine is a priced, stock-checked cart line at snapshot time
type SnapshotLine struct {
	ProductID      uuid.UUID       `json:"product_id"`
	VariantID      uuid.UUID       `json:"variant_id"`
	ProductName    string          `json:"product_name"`
	VariantLabel   string          `json:"variant_label"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	Quantity       int             `json:"quantity"`
	LineTotal      decimal.Decimal `json:"line_total"`
	AvailableStock int             `json:"available_stock"`
}

// SnapshotResponse is the read-only projection of a cart into priced,
// stock-checked lines at the moment before order creation. It is advisory:
// checkout re-validates at commit time.
type SnapshotResponse struct {
	Lines          []SnapshotLine  `json:"lines"`
	EstimatedTotal decimal.Decimal `json:"estimated_total"`
}

// ToCartResponse converts a cart aggregate to its response representation
func ToCartResponse(c *cart.Cart) CartResponse {
	lines := make([]LineResponse, 0, len(c.Lines))
	for i := range c.Lines {
		l := &c.Lines[i]
		lines = append(lines, LineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			VariantID:    l.VariantID,
			VariantLabel: l.VariantLabel,
			Price:        l.Price,
			Quantity:     l.Quantity,
			LineTotal:    l.LineTotal(),
		})
	}
	return CartResponse{
		ID:             c.ID,
		UserID:         c.UserID,
		Lines:          lines,
		EstimatedTotal: c.EstimatedTotal(),
		UpdatedAt:      c.UpdatedAt,
	}
}
