package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Service handles cart operations: line management while the user shops and
// the read-only snapshot consumed by checkout.
type Service struct {
	cartRepo    cart.Repository
	productRepo catalog.ProductRepository
}

// NewService creates a new cart Service
func NewService(cartRepo cart.Repository, productRepo catalog.ProductRepository) *Service {
	return &Service{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// getOrCreate loads the user's cart, creating an empty one on first use
func (s *Service) getOrCreate(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	c, err = cart.NewCart(userID)
	if err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// GetCart returns the user's cart, creating it on first access
func (s *Service) GetCart(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// AddLine adds a product variant to the cart after checking live stock.
// Combo products are restricted to quantity exactly 1.
func (s *Service) AddLine(ctx context.Context, userID uuid.UUID, req AddLineRequest) (*CartResponse, error) {
	product, variant, err := s.productRepo.FindVariant(ctx, req.ProductID, req.VariantID)
	if err != nil {
		return nil, err
	}

	if product.IsCombo && req.Quantity != 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Combo product quantity must be 1")
	}

	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Stock check covers the merged quantity when the variant is already in
	// the cart.
	requested := req.Quantity
	if existing := c.FindLineByVariant(req.ProductID, req.VariantID); existing != nil {
		requested += existing.Quantity
	}
	if !variant.HasStock(requested) {
		return nil, insufficientStockError(product.Name, variant.Label, variant.Stock)
	}

	if _, err := c.AddLine(req.ProductID, req.VariantID, variant.Label, variant.Price, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCartResponse(c)
	return &resp, nil
}

// UpdateLine changes a line's quantity after re-checking live stock
func (s *Service) UpdateLine(ctx context.Context, userID, lineID uuid.UUID, req UpdateLineRequest) (*CartResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	line := c.FindLine(lineID)
	if line == nil {
		return nil, shared.ErrNotFound
	}

	product, variant, err := s.productRepo.FindVariant(ctx, line.ProductID, line.VariantID)
	if err != nil {
		return nil, err
	}
	if product.IsCombo && req.Quantity != 1 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Combo product quantity must be 1")
	}
	if !variant.HasStock(req.Quantity) {
		return nil, insufficientStockError(product.Name, variant.Label, variant.Stock)
	}

	if err := c.UpdateLineQuantity(lineID, req.Quantity); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	resp := ToCartResponse(c)
	return &resp, nil
}

// RemoveLine removes a line from the cart
func (s *Service) RemoveLine(ctx context.Context, userID, lineID uuid.UUID) (*CartResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := c.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Clear empties the user's cart
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) error {
	return s.cartRepo.ClearByUser(ctx, userID)
}

// Sync merges a client-side guest cart into the user's server cart.
// Quantities are summed and capped at available stock; lines referencing
// unknown products or variants are skipped.
func (s *Service) Sync(ctx context.Context, userID uuid.UUID, req SyncRequest) (*CartResponse, error) {
	c, err := s.getOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, input := range req.Lines {
		product, variant, err := s.productRepo.FindVariant(ctx, input.ProductID, input.VariantID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				continue
			}
			return nil, err
		}

		quantity := input.Quantity
		if product.IsCombo {
			quantity = 1
		}

		if existing := c.FindLineByVariant(input.ProductID, input.VariantID); existing != nil {
			merged := existing.Quantity + quantity
			if merged > variant.Stock {
				merged = variant.Stock
			}
			if merged < 1 {
				continue
			}
			if err := c.UpdateLineQuantity(existing.ID, merged); err != nil {
				return nil, err
			}
			continue
		}

		if quantity > variant.Stock {
			quantity = variant.Stock
		}
		if quantity < 1 {
			continue
		}
		if _, err := c.AddLine(input.ProductID, input.VariantID, variant.Label, variant.Price, quantity); err != nil {
			return nil, err
		}
	}

	if err := s.cartRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	resp := ToCartResponse(c)
	return &resp, nil
}

// Snapshot projects the user's cart into priced, stock-checked lines at this
// moment. Every line is re-validated against the live variant; the result is
// advisory because stock can change before checkout commits.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) (*SnapshotResponse, error) {
	c, err := s.cartRepo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.ErrEmptyCart
		}
		return nil, err
	}
	if c.IsEmpty() {
		return nil, shared.ErrEmptyCart
	}

	snapshot := &SnapshotResponse{Lines: make([]SnapshotLine, 0, len(c.Lines))}
	for i := range c.Lines {
		line := &c.Lines[i]

		product, variant, err := s.productRepo.FindVariant(ctx, line.ProductID, line.VariantID)
		if err != nil {
			return nil, err
		}

		quantity := line.Quantity
		if product.IsCombo {
			quantity = 1
		}
		if !variant.HasStock(quantity) {
			return nil, insufficientStockError(product.Name, variant.Label, variant.Stock)
		}

		snap := SnapshotLine{
			ProductID:      line.ProductID,
			VariantID:      line.VariantID,
			ProductName:    product.Name,
			VariantLabel:   variant.Label,
			UnitPrice:      line.Price,
			Quantity:       quantity,
			LineTotal:      line.Price.Mul(decimal.NewFromInt(int64(quantity))),
			AvailableStock: variant.Stock,
		}
		snapshot.Lines = append(snapshot.Lines, snap)
		snapshot.EstimatedTotal = snapshot.EstimatedTotal.Add(snap.LineTotal)
	}

	if len(snapshot.Lines) == 0 {
		return nil, shared.ErrEmptyCart
	}

	return snapshot, nil
}

// insufficientStockError builds the user-facing conflict error with the
// available quantity included.
func insufficientStockError(productName, variantLabel string, available int) *shared.DomainError {
	return shared.NewDomainError("INSUFFICIENT_STOCK",
		fmt.Sprintf("Insufficient stock for %s (%s). Only %d available.", productName, variantLabel, available))
}
