package persistence

import (
	"context"
	"testing"

	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	t.Run("saves and reloads a product", func(t *testing.T) {
		product, err := catalog.NewProduct("Widget", "A basic widget", decimal.NewFromFloat(12.50), 5, "tools")
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, product))

		found, err := repo.FindByID(ctx, product.ID)
		require.NoError(t, err)
		assert.Equal(t, "Widget", found.Name)
		assert.True(t, found.Price.Equal(decimal.NewFromFloat(12.50)))
		assert.Equal(t, 5, found.SafetyStock)
		assert.Equal(t, "tools", found.Category)
		assert.Equal(t, 0, found.StockQuantity)
	})

	t.Run("finds by exact name", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "Widget")
		require.NoError(t, err)
		assert.Equal(t, "Widget", found.Name)

		_, err = repo.FindByName(ctx, "No Such Product")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("persists stock updates through save", func(t *testing.T) {
		found, err := repo.FindByName(ctx, "Widget")
		require.NoError(t, err)
		require.NoError(t, found.IncreaseStock(10))
		require.NoError(t, repo.Save(ctx, found))

		reloaded, err := repo.FindByID(ctx, found.ID)
		require.NoError(t, err)
		assert.Equal(t, 10, reloaded.StockQuantity)
	})
}

func TestProductRepository_FindAll(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	seed := func(name, category string, sortOrder int) {
		product, err := catalog.NewProduct(name, "", decimal.NewFromInt(10), 0, category)
		require.NoError(t, err)
		product.SortOrder = sortOrder
		require.NoError(t, repo.Save(ctx, product))
	}
	seed("Bolt", "hardware", 2)
	seed("Anchor", "hardware", 1)
	seed("Cable", "electrical", 3)

	t.Run("orders by sort order then name by default", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, products, 3)
		assert.Equal(t, "Anchor", products[0].Name)
		assert.Equal(t, "Bolt", products[1].Name)
		assert.Equal(t, "Cable", products[2].Name)
	})

	t.Run("filters by category", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.Filter{
			Filters: map[string]interface{}{"category": "hardware"},
		})
		require.NoError(t, err)
		assert.Len(t, products, 2)
	})

	t.Run("searches name case-insensitively", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.Filter{Search: "bOlT"})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Bolt", products[0].Name)
	})

	t.Run("paginates when page and size are set", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Cable", products[0].Name)
	})

	t.Run("zero filter returns every product", func(t *testing.T) {
		products, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Len(t, products, 3)
	})

	t.Run("counts matches without pagination", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.Filter{
			Filters: map[string]interface{}{"category": "hardware"},
			Page:    1, PageSize: 1,
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}

func TestProductRepository_SafetyStockAndLocking(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormProductRepository(db)
	ctx := context.Background()

	monitored, err := catalog.NewProduct("Monitored", "", decimal.NewFromInt(10), 3, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, monitored))

	unmonitored, err := catalog.NewProduct("Unmonitored", "", decimal.NewFromInt(10), 0, "")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, unmonitored))

	t.Run("lists only products with a safety threshold", func(t *testing.T) {
		products, err := repo.FindWithSafetyStock(ctx)
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, "Monitored", products[0].Name)
	})

	t.Run("locking reads load the row", func(t *testing.T) {
		found, err := repo.FindByIDForUpdate(ctx, monitored.ID)
		require.NoError(t, err)
		assert.Equal(t, monitored.ID, found.ID)
	})

	t.Run("bulk locking reads come back in ID order", func(t *testing.T) {
		products, err := repo.FindByIDsForUpdate(ctx, []uuid.UUID{unmonitored.ID, monitored.ID})
		require.NoError(t, err)
		require.Len(t, products, 2)
		assert.True(t, products[0].ID.String() <= products[1].ID.String())
	})

	t.Run("empty ID list is a no-op", func(t *testing.T) {
		products, err := repo.FindByIDsForUpdate(ctx, nil)
		require.NoError(t, err)
		assert.Empty(t, products)
	})

	t.Run("save batch persists every product", func(t *testing.T) {
		require.NoError(t, monitored.IncreaseStock(4))
		require.NoError(t, unmonitored.IncreaseStock(2))
		require.NoError(t, repo.SaveBatch(ctx, []*catalog.Product{monitored, unmonitored}))

		reloaded, err := repo.FindByID(ctx, monitored.ID)
		require.NoError(t, err)
		assert.Equal(t, 4, reloaded.StockQuantity)
	})
}
