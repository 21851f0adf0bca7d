package catalog

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProduct(t *testing.T) *Product {
	t.Helper()
	product, err := NewProduct("Widget", "A widget", decimal.NewFromInt(100), 5, "parts")
	require.NoError(t, err)
	return product
}

func TestNewProduct(t *testing.T) {
	t.Run("creates product with zero stock", func(t *testing.T) {
		product := newTestProduct(t)
		assert.Equal(t, "Widget", product.Name)
		assert.Equal(t, 0, product.StockQuantity)
		assert.Equal(t, 5, product.SafetyStock)
		assert.Equal(t, "parts", product.Category)
	})

	t.Run("fails with empty name", func(t *testing.T) {
		_, err := NewProduct("", "", decimal.NewFromInt(1), 0, "")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name cannot be empty")
	})

	t.Run("fails with negative price", func(t *testing.T) {
		_, err := NewProduct("Widget", "", decimal.NewFromInt(-1), 0, "")
		require.Error(t, err)
	})

	t.Run("fails with negative safety stock", func(t *testing.T) {
		_, err := NewProduct("Widget", "", decimal.NewFromInt(1), -1, "")
		require.Error(t, err)
	})
}

func TestProductStockMutation(t *testing.T) {
	t.Run("increase adds to cached quantity", func(t *testing.T) {
		product := newTestProduct(t)
		require.NoError(t, product.IncreaseStock(10))
		assert.Equal(t, 10, product.StockQuantity)
	})

	t.Run("increase rejects non-positive quantity", func(t *testing.T) {
		product := newTestProduct(t)
		require.Error(t, product.IncreaseStock(0))
		require.Error(t, product.IncreaseStock(-3))
	})

	t.Run("decrease subtracts from cached quantity", func(t *testing.T) {
		product := newTestProduct(t)
		require.NoError(t, product.IncreaseStock(10))
		require.NoError(t, product.DecreaseStock(4))
		assert.Equal(t, 6, product.StockQuantity)
	})

	t.Run("decrease fails when stock would go negative", func(t *testing.T) {
		product := newTestProduct(t)
		require.NoError(t, product.IncreaseStock(3))

		err := product.DecreaseStock(4)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Insufficient stock")
		assert.Equal(t, 3, product.StockQuantity)
	})
}

func TestProductSafetyLevel(t *testing.T) {
	tests := []struct {
		name        string
		stock       int
		safetyStock int
		want        SafetyLevel
	}{
		{"no threshold is always good", 0, 0, SafetyLevelGood},
		{"at threshold is critical", 5, 5, SafetyLevelCritical},
		{"below threshold is critical", 2, 5, SafetyLevelCritical},
		{"within 1.5x threshold is warning", 7, 5, SafetyLevelWarning},
		{"exactly 1.5x threshold is warning", 6, 4, SafetyLevelWarning},
		{"above 1.5x threshold is good", 8, 5, SafetyLevelGood},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product := newTestProduct(t)
			require.NoError(t, product.SetSafetyStock(tt.safetyStock))
			product.SetStockQuantity(tt.stock)
			assert.Equal(t, tt.want, product.SafetyLevel())
		})
	}
}

func TestProductTransactionValue(t *testing.T) {
	product, err := NewProduct("Widget", "", decimal.NewFromInt(100), 0, "")
	require.NoError(t, err)

	assert.True(t, product.TransactionValue(5).Equal(decimal.NewFromInt(500)))
}
