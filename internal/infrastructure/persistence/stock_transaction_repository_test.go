package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appendMovement(t *testing.T, repo *GormStockTransactionRepository, productID, userID uuid.UUID, supplierID *uuid.UUID, txType ledger.TransactionType, quantity int, lot string, occurredAt time.Time) *ledger.StockTransaction {
	t.Helper()
	var lotNumber *string
	if lot != "" {
		lotNumber = &lot
	}
	tx, err := ledger.NewStockTransaction(productID, userID, supplierID, txType, quantity, lotNumber, "", "", occurredAt)
	require.NoError(t, err)
	require.NoError(t, repo.Append(context.Background(), tx))
	return tx
}

func TestStockTransactionRepository_AppendAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "clerk")
	product := seedProduct(t, db, "Widget", decimal.NewFromInt(100))

	t.Run("appends and loads a movement with associations", func(t *testing.T) {
		tx := appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 5, "LOT-1", time.Now())

		found, err := repo.FindByID(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, tx.ID, found.ID)
		assert.Equal(t, ledger.TransactionTypeIn, found.TransactionType)
		assert.Equal(t, 5, found.Quantity)
		require.NotNil(t, found.LotNumber)
		assert.Equal(t, "LOT-1", *found.LotNumber)
		require.NotNil(t, found.Product)
		assert.Equal(t, "Widget", found.Product.Name)
		require.NotNil(t, found.User)
		assert.Equal(t, "clerk", found.User.Username)
	})

	t.Run("returns not found for unknown ID", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("lists product movements in business-time order", func(t *testing.T) {
		other := seedProduct(t, db, "Gadget", decimal.NewFromInt(50))
		base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		appendMovement(t, repo, other.ID, user.ID, nil, ledger.TransactionTypeIn, 3, "", base.Add(time.Hour))
		appendMovement(t, repo, other.ID, user.ID, nil, ledger.TransactionTypeIn, 7, "", base)

		txs, err := repo.FindByProduct(ctx, other.ID)
		require.NoError(t, err)
		require.Len(t, txs, 2)
		assert.Equal(t, 7, txs[0].Quantity)
		assert.Equal(t, 3, txs[1].Quantity)
	})
}

func TestStockTransactionRepository_FindFiltered(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "clerk")
	widget := seedProduct(t, db, "Widget", decimal.NewFromInt(100))
	gadget := seedProduct(t, db, "Gadget", decimal.NewFromInt(50))
	supplier := seedSupplier(t, db, "Acme", "in")

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	appendMovement(t, repo, widget.ID, user.ID, &supplier.ID, ledger.TransactionTypeIn, 10, "LOT-1", base)
	appendMovement(t, repo, widget.ID, user.ID, nil, ledger.TransactionTypeOut, 4, "LOT-1", base.AddDate(0, 0, 1))
	appendMovement(t, repo, gadget.ID, user.ID, nil, ledger.TransactionTypeIn, 2, "", base.AddDate(0, 0, 2))

	t.Run("filters by product", func(t *testing.T) {
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{ProductID: &widget.ID})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
		assert.Len(t, page.Items, 2)
	})

	t.Run("filters by direction", func(t *testing.T) {
		out := ledger.TransactionTypeOut
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{Type: &out})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, 4, page.Items[0].Quantity)
	})

	t.Run("filters by supplier", func(t *testing.T) {
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{SupplierID: &supplier.ID})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, 10, page.Items[0].Quantity)
	})

	t.Run("filters by LOT number", func(t *testing.T) {
		lot := "LOT-1"
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{LotNumber: &lot})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)
	})

	t.Run("searches product names case-insensitively", func(t *testing.T) {
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{ProductSearch: "gadg"})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, gadget.ID, page.Items[0].ProductID)
	})

	t.Run("date bounds are inclusive", func(t *testing.T) {
		from := base.AddDate(0, 0, 1)
		to := base.AddDate(0, 0, 1)
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{DateFrom: &from, DateTo: &to})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, 4, page.Items[0].Quantity)
	})

	t.Run("paginates with totals over the full match", func(t *testing.T) {
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Items, 1)
	})

	t.Run("newest business time first", func(t *testing.T) {
		page, err := repo.FindFiltered(ctx, ledger.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, page.Items, 3)
		assert.Equal(t, gadget.ID, page.Items[0].ProductID)
	})
}

func TestStockTransactionRepository_LotQuantity(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "clerk")
	product := seedProduct(t, db, "Widget", decimal.NewFromInt(100))

	appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 10, "LOT-1", time.Now())
	appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 5, "LOT-1", time.Now())
	appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeOut, 4, "LOT-1", time.Now())
	appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 7, "LOT-2", time.Now())
	appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 100, "", time.Now())

	t.Run("sums the exact LOT and direction", func(t *testing.T) {
		in, err := repo.LotQuantity(ctx, product.ID, "LOT-1", ledger.TransactionTypeIn)
		require.NoError(t, err)
		assert.Equal(t, 15, in)

		out, err := repo.LotQuantity(ctx, product.ID, "LOT-1", ledger.TransactionTypeOut)
		require.NoError(t, err)
		assert.Equal(t, 4, out)
	})

	t.Run("different LOT strings are distinct balances", func(t *testing.T) {
		in, err := repo.LotQuantity(ctx, product.ID, "LOT-2", ledger.TransactionTypeIn)
		require.NoError(t, err)
		assert.Equal(t, 7, in)
	})

	t.Run("unknown LOT sums to zero", func(t *testing.T) {
		in, err := repo.LotQuantity(ctx, product.ID, "LOT-9", ledger.TransactionTypeIn)
		require.NoError(t, err)
		assert.Equal(t, 0, in)
	})
}

func TestStockTransactionRepository_NetQuantities(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "clerk")
	widget := seedProduct(t, db, "Widget", decimal.NewFromInt(100))
	gadget := seedProduct(t, db, "Gadget", decimal.NewFromInt(50))

	appendMovement(t, repo, widget.ID, user.ID, nil, ledger.TransactionTypeIn, 10, "", time.Now())
	appendMovement(t, repo, widget.ID, user.ID, nil, ledger.TransactionTypeOut, 3, "", time.Now())
	appendMovement(t, repo, gadget.ID, user.ID, nil, ledger.TransactionTypeIn, 2, "", time.Now())

	t.Run("nets in minus out for one product", func(t *testing.T) {
		net, err := repo.NetQuantity(ctx, widget.ID)
		require.NoError(t, err)
		assert.Equal(t, 7, net)
	})

	t.Run("product without movements nets to zero", func(t *testing.T) {
		net, err := repo.NetQuantity(ctx, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, 0, net)
	})

	t.Run("groups totals per product", func(t *testing.T) {
		nets, err := repo.NetQuantities(ctx)
		require.NoError(t, err)
		require.Len(t, nets, 2)

		byProduct := make(map[uuid.UUID]int, len(nets))
		for _, n := range nets {
			byProduct[n.ProductID] = n.Net
		}
		assert.Equal(t, 7, byProduct[widget.ID])
		assert.Equal(t, 2, byProduct[gadget.ID])
	})
}

func TestStockTransactionRepository_Mutations(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormStockTransactionRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "clerk")
	product := seedProduct(t, db, "Widget", decimal.NewFromInt(100))
	supplier := seedSupplier(t, db, "Acme", "in")

	t.Run("saves a quantity correction", func(t *testing.T) {
		tx := appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 5, "", time.Now())

		_, err := tx.CorrectQuantity(8)
		require.NoError(t, err)
		require.NoError(t, repo.Save(ctx, tx))

		found, err := repo.FindByID(ctx, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, 8, found.Quantity)
	})

	t.Run("deletes a movement", func(t *testing.T) {
		tx := appendMovement(t, repo, product.ID, user.ID, nil, ledger.TransactionTypeIn, 5, "", time.Now())

		require.NoError(t, repo.Delete(ctx, tx.ID))

		_, err := repo.FindByID(ctx, tx.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("delete of a missing movement reports not found", func(t *testing.T) {
		err := repo.Delete(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("append batch inserts all movements", func(t *testing.T) {
		other := seedProduct(t, db, "Gizmo", decimal.NewFromInt(10))
		lot := "LOT-B"
		var txs []*ledger.StockTransaction
		for i := 0; i < 3; i++ {
			tx, err := ledger.NewStockTransaction(other.ID, user.ID, &supplier.ID, ledger.TransactionTypeIn, i+1, &lot, "", "", time.Now())
			require.NoError(t, err)
			txs = append(txs, tx)
		}
		require.NoError(t, repo.AppendBatch(ctx, txs))

		in, err := repo.LotQuantity(ctx, other.ID, "LOT-B", ledger.TransactionTypeIn)
		require.NoError(t, err)
		assert.Equal(t, 6, in)
	})

	t.Run("reports supplier references", func(t *testing.T) {
		exists, err := repo.ExistsBySupplier(ctx, supplier.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsBySupplier(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("reports product references", func(t *testing.T) {
		exists, err := repo.ExistsByProduct(ctx, product.ID)
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = repo.ExistsByProduct(ctx, uuid.New())
		require.NoError(t, err)
		assert.False(t, exists)
	})
}
