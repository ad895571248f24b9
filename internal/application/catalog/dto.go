package catalog

import (
	"time"

	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VariantInput describes one variant in a create or update request
type VariantInput struct {
	Label     string           `json:"label" binding:"required,min=1,max=100"`
	Price     decimal.Decimal  `json:"price" binding:"required"`
	ListPrice *decimal.Decimal `json:"list_price"`
	Stock     int              `json:"stock" binding:"min=0"`
	IsDefault bool             `json:"is_default"`
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string         `json:"name" binding:"required,min=1,max=200"`
	Slug        string         `json:"slug" binding:"required,min=1,max=200"`
	Description string         `json:"description" binding:"max=5000"`
	Images      []string       `json:"images"`
	IsCombo     bool           `json:"is_combo"`
	Variants    []VariantInput `json:"variants" binding:"required,min=1,dive"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name        *string  `json:"name" binding:"omitempty,min=1,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=5000"`
	Images      []string `json:"images"`
	IsActive    *bool    `json:"is_active"`
}

// ListFilter represents catalog listing options
type ListFilter struct {
	Search     string `form:"search"`
	ActiveOnly bool   `form:"active_only"`
	Page       int    `form:"page"`
	PageSize   int    `form:"page_size"`
}

// VariantResponse represents a variant in API responses
type VariantResponse struct {
	ID        uuid.UUID        `json:"id"`
	Label     string           `json:"label"`
	Price     decimal.Decimal  `json:"price"`
	ListPrice *decimal.Decimal `json:"list_price,omitempty"`
	Stock     int              `json:"stock"`
	IsDefault bool             `json:"is_default"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID         `json:"id"`
	Name        string            `json:"name"`
	Slug        string            `json:"slug"`
	Description string            `json:"description,omitempty"`
	Images      string            `json:"images"`
	IsCombo     bool              `json:"is_combo"`
	IsActive    bool              `json:"is_active"`
	Variants    []VariantResponse `json:"variants"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
}

// ToProductResponse converts a product aggregate to its response representation
func ToProductResponse(p *catalog.Product) *ProductResponse {
	variants := make([]VariantResponse, 0, len(p.Variants))
	for i := range p.Variants {
		v := &p.Variants[i]
		variants = append(variants, VariantResponse{
			ID:        v.ID,
			Label:     v.Label,
			Price:     v.Price,
			ListPrice: v.ListPrice,
			Stock:     v.Stock,
			IsDefault: v.IsDefault,
		})
	}
	return &ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Images:      p.Images,
		IsCombo:     p.IsCombo,
		IsActive:    p.IsActive,
		Variants:    variants,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ToProductResponses converts a slice of products
func ToProductResponses(products []catalog.Product) []ProductResponse {
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, *ToProductResponse(&products[i]))
	}
	return out
}
