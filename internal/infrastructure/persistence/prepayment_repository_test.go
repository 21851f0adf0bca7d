package persistence

import (
	"context"
	"testing"

	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepaymentRepository_Balance(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPrepaymentRepository(db)
	ctx := context.Background()

	supplier := seedSupplier(t, db, "Acme", "in")

	t.Run("missing balance reports not found", func(t *testing.T) {
		_, err := repo.FindBySupplier(ctx, supplier.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindBySupplierForUpdate(ctx, supplier.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("saves and reloads a balance", func(t *testing.T) {
		balance, err := partner.NewPrepaymentBalance(supplier.ID)
		require.NoError(t, err)
		require.NoError(t, balance.Add(decimal.NewFromInt(1000)))
		require.NoError(t, repo.SaveBalance(ctx, balance))

		found, err := repo.FindBySupplier(ctx, supplier.ID)
		require.NoError(t, err)
		assert.True(t, found.Balance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, found.TotalPrepaid.Equal(decimal.NewFromInt(1000)))
		assert.True(t, found.TotalUsed.IsZero())
	})

	t.Run("persists a deduction", func(t *testing.T) {
		balance, err := repo.FindBySupplierForUpdate(ctx, supplier.ID)
		require.NoError(t, err)

		deducted, err := balance.Deduct(decimal.NewFromInt(400))
		require.NoError(t, err)
		assert.True(t, deducted.Equal(decimal.NewFromInt(400)))
		require.NoError(t, repo.SaveBalance(ctx, balance))

		found, err := repo.FindBySupplier(ctx, supplier.ID)
		require.NoError(t, err)
		assert.True(t, found.Balance.Equal(decimal.NewFromInt(600)))
		assert.True(t, found.TotalUsed.Equal(decimal.NewFromInt(400)))
	})
}

func TestPrepaymentRepository_Entries(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormPrepaymentRepository(db)
	ctx := context.Background()

	supplier := seedSupplier(t, db, "Acme", "in")
	user := seedUser(t, db, "clerk")

	addition := partner.NewPrepaymentAddition(supplier.ID, user.ID, decimal.NewFromInt(1000), "initial credit")
	require.NoError(t, repo.AppendEntry(ctx, addition))

	stockTxID := uuid.New()
	deduction := partner.NewPrepaymentDeduction(supplier.ID, user.ID, stockTxID, decimal.NewFromInt(400))
	require.NoError(t, repo.AppendEntry(ctx, deduction))

	t.Run("lists a supplier's entries", func(t *testing.T) {
		entries, err := repo.FindEntriesBySupplier(ctx, supplier.ID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, entries, 2)
	})

	t.Run("deductions carry a negative amount and the stock reference", func(t *testing.T) {
		entries, err := repo.FindEntriesBySupplier(ctx, supplier.ID, shared.Filter{})
		require.NoError(t, err)

		var found *partner.PrepaymentEntry
		for i := range entries {
			if entries[i].StockTransactionID != nil {
				found = &entries[i]
			}
		}
		require.NotNil(t, found)
		assert.True(t, found.Amount.Equal(decimal.NewFromInt(-400)))
		assert.Equal(t, stockTxID, *found.StockTransactionID)
	})

	t.Run("other suppliers see no entries", func(t *testing.T) {
		entries, err := repo.FindEntriesBySupplier(ctx, uuid.New(), shared.Filter{})
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("paginates entries", func(t *testing.T) {
		entries, err := repo.FindEntriesBySupplier(ctx, supplier.ID, shared.Filter{Page: 1, PageSize: 1})
		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}
