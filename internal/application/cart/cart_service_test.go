package cart

import (
	"context"
	"testing"

	"github.com/anuraga/backend/internal/domain/cart"
	"github.com/anuraga/backend/internal/domain/catalog"
	"github.com/anuraga/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	service     *Service
	cartRepo    *MockCartRepository
	productRepo *MockProductRepository
}

func newCartFixture() *cartFixture {
	cartRepo := new(MockCartRepository)
	productRepo := new(MockProductRepository)
	return &cartFixture{
		service:     NewService(cartRepo, productRepo),
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

func createTestCatalogEntry(t *testing.T, stock int, isCombo bool) (*catalog.Product, *catalog.Variant) {
	t.Helper()
	product, err := catalog.NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)
	product.IsCombo = isCombo
	variant, err := product.AddVariant("250g", decimal.NewFromInt(240), nil, stock, true)
	require.NoError(t, err)
	return product, variant
}

func createTestCart(t *testing.T, userID uuid.UUID) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart(userID)
	require.NoError(t, err)
	return c
}

func TestCartService_GetCart_CreatesOnFirstAccess(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(nil, shared.ErrNotFound)
	f.cartRepo.On("Save", mock.Anything, mock.AnythingOfType("*cart.Cart")).Return(nil)

	resp, err := f.service.GetCart(context.Background(), userID)

	require.NoError(t, err)
	assert.Equal(t, userID, resp.UserID)
	assert.Empty(t, resp.Lines)
	f.cartRepo.AssertExpectations(t)
}

func TestCartService_AddLine_Success(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 10, false)
	c := createTestCart(t, userID)

	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)
	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.cartRepo.On("Save", mock.Anything, c).Return(nil)

	resp, err := f.service.AddLine(context.Background(), userID, AddLineRequest{
		ProductID: product.ID,
		VariantID: variant.ID,
		Quantity:  2,
	})

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	assert.Equal(t, 2, resp.Lines[0].Quantity)
	assert.True(t, resp.Lines[0].Price.Equal(variant.Price))
	assert.True(t, resp.EstimatedTotal.Equal(decimal.NewFromInt(480)))
}

func TestCartService_AddLine_MergedQuantityExceedsStock(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 5, false)
	c := createTestCart(t, userID)
	_, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 4)
	require.NoError(t, err)

	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)
	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)

	_, err = f.service.AddLine(context.Background(), userID, AddLineRequest{
		ProductID: product.ID,
		VariantID: variant.ID,
		Quantity:  2,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
	f.cartRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCartService_AddLine_ComboRequiresQuantityOne(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 10, true)

	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)

	_, err := f.service.AddLine(context.Background(), userID, AddLineRequest{
		ProductID: product.ID,
		VariantID: variant.ID,
		Quantity:  2,
	})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
}

func TestCartService_UpdateLine_RechecksStock(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 5, false)
	c := createTestCart(t, userID)
	line, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 2)
	require.NoError(t, err)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)

	_, err = f.service.UpdateLine(context.Background(), userID, line.ID, UpdateLineRequest{Quantity: 6})

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
}

func TestCartService_UpdateLine_Success(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 5, false)
	c := createTestCart(t, userID)
	line, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 2)
	require.NoError(t, err)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)
	f.cartRepo.On("Save", mock.Anything, c).Return(nil)

	resp, err := f.service.UpdateLine(context.Background(), userID, line.ID, UpdateLineRequest{Quantity: 4})

	require.NoError(t, err)
	assert.Equal(t, 4, resp.Lines[0].Quantity)
}

func TestCartService_UpdateLine_UnknownLine(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	c := createTestCart(t, userID)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)

	_, err := f.service.UpdateLine(context.Background(), userID, uuid.New(), UpdateLineRequest{Quantity: 1})

	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCartService_RemoveLine(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 5, false)
	c := createTestCart(t, userID)
	line, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 2)
	require.NoError(t, err)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.cartRepo.On("Save", mock.Anything, c).Return(nil)

	resp, err := f.service.RemoveLine(context.Background(), userID, line.ID)

	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
}

func TestCartService_Sync_MergesAndCapsAtStock(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 5, false)
	c := createTestCart(t, userID)
	_, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 3)
	require.NoError(t, err)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)
	f.cartRepo.On("Save", mock.Anything, c).Return(nil)

	resp, err := f.service.Sync(context.Background(), userID, SyncRequest{
		Lines: []SyncLineInput{{ProductID: product.ID, VariantID: variant.ID, Quantity: 4}},
	})

	require.NoError(t, err)
	require.Len(t, resp.Lines, 1)
	// 3 + 4 capped at the 5 in stock
	assert.Equal(t, 5, resp.Lines[0].Quantity)
}

func TestCartService_Sync_SkipsUnknownVariants(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	c := createTestCart(t, userID)
	missingProduct := uuid.New()
	missingVariant := uuid.New()

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.productRepo.On("FindVariant", mock.Anything, missingProduct, missingVariant).Return(nil, nil, shared.ErrNotFound)
	f.cartRepo.On("Save", mock.Anything, c).Return(nil)

	resp, err := f.service.Sync(context.Background(), userID, SyncRequest{
		Lines: []SyncLineInput{{ProductID: missingProduct, VariantID: missingVariant, Quantity: 2}},
	})

	require.NoError(t, err)
	assert.Empty(t, resp.Lines)
}

func TestCartService_Snapshot_Success(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 5, false)
	c := createTestCart(t, userID)
	_, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 2)
	require.NoError(t, err)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)

	snap, err := f.service.Snapshot(context.Background(), userID)

	require.NoError(t, err)
	require.Len(t, snap.Lines, 1)
	assert.Equal(t, "Filter Coffee", snap.Lines[0].ProductName)
	assert.Equal(t, 5, snap.Lines[0].AvailableStock)
	assert.True(t, snap.EstimatedTotal.Equal(decimal.NewFromInt(480)))
}

func TestCartService_Snapshot_EmptyCart(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(nil, shared.ErrNotFound)

	_, err := f.service.Snapshot(context.Background(), userID)

	assert.ErrorIs(t, err, shared.ErrEmptyCart)
}

func TestCartService_Snapshot_StaleStock(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()
	product, variant := createTestCatalogEntry(t, 1, false)
	c := createTestCart(t, userID)
	_, err := c.AddLine(product.ID, variant.ID, variant.Label, variant.Price, 2)
	require.NoError(t, err)

	f.cartRepo.On("FindByUser", mock.Anything, userID).Return(c, nil)
	f.productRepo.On("FindVariant", mock.Anything, product.ID, variant.ID).Return(product, variant, nil)

	_, err = f.service.Snapshot(context.Background(), userID)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
}

func TestCartService_Clear(t *testing.T) {
	f := newCartFixture()
	userID := uuid.New()

	f.cartRepo.On("ClearByUser", mock.Anything, userID).Return(nil)

	require.NoError(t, f.service.Clear(context.Background(), userID))
	f.cartRepo.AssertExpectations(t)
}
