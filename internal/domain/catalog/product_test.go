package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("  Filter Coffee  ", "  Filter-Coffee  ")

	require.NoError(t, err)
	assert.Equal(t, "Filter Coffee", p.Name)
	assert.Equal(t, "filter-coffee", p.Slug)
	assert.True(t, p.IsActive)
	assert.Equal(t, "[]", p.Images)
	assert.Empty(t, p.Variants)
}

func TestNewProduct_Validation(t *testing.T) {
	_, err := NewProduct("", "slug")
	assert.Error(t, err)

	_, err = NewProduct("Name", "   ")
	assert.Error(t, err)
}

func TestProduct_AddVariant_FirstBecomesDefault(t *testing.T) {
	p, err := NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)

	v, err := p.AddVariant("250g", decimal.NewFromInt(240), nil, 10, false)

	require.NoError(t, err)
	assert.True(t, v.IsDefault)
	assert.Equal(t, p.ID, v.ProductID)
	assert.Equal(t, 10, v.Stock)
}

func TestProduct_AddVariant_NewDefaultReplacesOld(t *testing.T) {
	p, err := NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)
	first, err := p.AddVariant("250g", decimal.NewFromInt(240), nil, 10, false)
	require.NoError(t, err)
	firstID := first.ID

	second, err := p.AddVariant("500g", decimal.NewFromInt(450), nil, 5, true)

	require.NoError(t, err)
	assert.True(t, second.IsDefault)
	assert.False(t, p.FindVariant(firstID).IsDefault)
	assert.Equal(t, second.ID, p.DefaultVariant().ID)
}

func TestProduct_AddVariant_Validation(t *testing.T) {
	p, err := NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)

	_, err = p.AddVariant("  ", decimal.NewFromInt(240), nil, 10, false)
	assert.Error(t, err)

	_, err = p.AddVariant("250g", decimal.NewFromInt(-1), nil, 10, false)
	assert.Error(t, err)

	_, err = p.AddVariant("250g", decimal.NewFromInt(240), nil, -1, false)
	assert.Error(t, err)
}

func TestVariant_HasStock(t *testing.T) {
	v := Variant{Stock: 5}

	assert.True(t, v.HasStock(1))
	assert.True(t, v.HasStock(5))
	assert.False(t, v.HasStock(6))
	assert.False(t, v.HasStock(0))
	assert.False(t, v.HasStock(-1))
}

func TestProduct_DefaultVariant_FallsBackToFirst(t *testing.T) {
	p, err := NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)
	assert.Nil(t, p.DefaultVariant())

	v, err := p.AddVariant("250g", decimal.NewFromInt(240), nil, 10, false)
	require.NoError(t, err)

	// clear the flag; first variant still wins
	p.Variants[0].IsDefault = false
	assert.Equal(t, v.ID, p.DefaultVariant().ID)
}

func TestProduct_FindVariant(t *testing.T) {
	p, err := NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)
	v, err := p.AddVariant("250g", decimal.NewFromInt(240), nil, 10, false)
	require.NoError(t, err)

	assert.NotNil(t, p.FindVariant(v.ID))
	assert.Nil(t, p.FindVariant(uuid.New()))
}

func TestProduct_MaxQuantityPerOrder(t *testing.T) {
	p, err := NewProduct("Tasting Combo", "tasting-combo")
	require.NoError(t, err)

	assert.Equal(t, 0, p.MaxQuantityPerOrder())

	p.IsCombo = true
	assert.Equal(t, 1, p.MaxQuantityPerOrder())
}

func TestProduct_Deactivate(t *testing.T) {
	p, err := NewProduct("Filter Coffee", "filter-coffee")
	require.NoError(t, err)

	p.Deactivate()
	assert.False(t, p.IsActive)
}
