package partner_test

import (
	"context"
	"testing"
	"time"

	apppartner "github.com/Cho-Jaehwan/erp/internal/application/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/identity"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type noopAudit struct{}

func (noopAudit) Record(context.Context, audit.Entry) {}

type partnerFixture struct {
	db           *gorm.DB
	suppliers    *apppartner.SupplierService
	prepayments  *apppartner.PrepaymentService
	transactions *persistence.GormStockTransactionRepository
	user         *identity.User
}

func newPartnerFixture(t *testing.T) *partnerFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&identity.User{},
		&catalog.Product{},
		&partner.Supplier{},
		&partner.PrepaymentBalance{},
		&partner.PrepaymentEntry{},
		&ledger.StockTransaction{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderLine{},
		&audit.AuditLog{},
	))

	user, err := identity.NewUser("clerk", "clerk@example.com", "Test Clerk", "hashed")
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)

	supplierRepo := persistence.NewGormSupplierRepository(db)
	transactionRepo := persistence.NewGormStockTransactionRepository(db)
	orderRepo := persistence.NewGormPurchaseOrderRepository(db)
	prepaymentRepo := persistence.NewGormPrepaymentRepository(db)
	scope := persistence.NewGormTransactionScope(db)

	return &partnerFixture{
		db:           db,
		suppliers:    apppartner.NewSupplierService(supplierRepo, transactionRepo, orderRepo, noopAudit{}, zap.NewNop()),
		prepayments:  apppartner.NewPrepaymentService(scope, prepaymentRepo, zap.NewNop()),
		transactions: transactionRepo,
		user:         user,
	}
}

func supplierErrCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok, "expected domain error, got %T: %v", err, err)
	return de.Code
}

func TestSupplierService_CreateAndUpdate(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	t.Run("creates a supplier", func(t *testing.T) {
		resp, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Acme",
			SupplierType: "in",
		})
		require.NoError(t, err)
		assert.Equal(t, "Acme", resp.Name)
		assert.True(t, resp.IsActive)
	})

	t.Run("duplicate names are rejected", func(t *testing.T) {
		_, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Acme",
			SupplierType: "in",
		})
		assert.Equal(t, "ALREADY_EXISTS", supplierErrCode(t, err))
	})

	t.Run("updates edit attributes and active state", func(t *testing.T) {
		created, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Globex",
			SupplierType: "in",
		})
		require.NoError(t, err)

		inactive := false
		updated, err := f.suppliers.Update(ctx, created.ID, apppartner.UpdateSupplierRequest{
			Name:          "Globex Corp",
			ContactPerson: "Hank",
			SupplierType:  "out",
			IsActive:      &inactive,
		})
		require.NoError(t, err)
		assert.Equal(t, "Globex Corp", updated.Name)
		assert.Equal(t, "out", updated.SupplierType)
		assert.False(t, updated.IsActive)
	})

	t.Run("update cannot steal another supplier's name", func(t *testing.T) {
		created, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Initech",
			SupplierType: "in",
		})
		require.NoError(t, err)

		_, err = f.suppliers.Update(ctx, created.ID, apppartner.UpdateSupplierRequest{
			Name:         "Acme",
			SupplierType: "in",
		})
		assert.Equal(t, "ALREADY_EXISTS", supplierErrCode(t, err))
	})
}

func TestSupplierService_Delete(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	t.Run("deletes an unreferenced supplier", func(t *testing.T) {
		created, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Ephemeral",
			SupplierType: "in",
		})
		require.NoError(t, err)

		require.NoError(t, f.suppliers.Delete(ctx, created.ID, f.user.ID, "clerk", "", ""))

		_, err = f.suppliers.Get(ctx, created.ID)
		assert.Equal(t, "NOT_FOUND", supplierErrCode(t, err))
	})

	t.Run("a supplier with ledger history cannot be deleted", func(t *testing.T) {
		created, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Acme",
			SupplierType: "in",
		})
		require.NoError(t, err)

		product, err := catalog.NewProduct("Widget", "", decimal.NewFromInt(10), 0, "")
		require.NoError(t, err)
		require.NoError(t, f.db.Create(product).Error)

		tx, err := ledger.NewStockTransaction(product.ID, f.user.ID, &created.ID,
			ledger.TransactionTypeIn, 1, nil, "", "", time.Now())
		require.NoError(t, err)
		require.NoError(t, f.transactions.Append(ctx, tx))

		err = f.suppliers.Delete(ctx, created.ID, f.user.ID, "clerk", "", "")
		assert.Equal(t, "CONFLICT", supplierErrCode(t, err))
	})
}

func TestSupplierService_ListAndReorder(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	var ids []uuid.UUID
	for _, name := range []string{"Beta", "Alpha", "Gamma"} {
		created, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         name,
			SupplierType: "in",
		})
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}

	t.Run("lists alphabetically within equal sort order", func(t *testing.T) {
		suppliers, total, err := f.suppliers.List(ctx, apppartner.SupplierListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), total)
		require.Len(t, suppliers, 3)
		assert.Equal(t, "Alpha", suppliers[0].Name)
	})

	t.Run("reorder overrides the display positions", func(t *testing.T) {
		err := f.suppliers.Reorder(ctx, apppartner.ReorderRequest{
			Items: []apppartner.ReorderItem{
				{SupplierID: ids[2], SortOrder: 1},
				{SupplierID: ids[0], SortOrder: 2},
				{SupplierID: ids[1], SortOrder: 3},
			},
		})
		require.NoError(t, err)

		suppliers, _, err := f.suppliers.List(ctx, apppartner.SupplierListFilter{})
		require.NoError(t, err)
		assert.Equal(t, "Gamma", suppliers[0].Name)
		assert.Equal(t, "Beta", suppliers[1].Name)
		assert.Equal(t, "Alpha", suppliers[2].Name)
	})

	t.Run("filters by type", func(t *testing.T) {
		suppliers, total, err := f.suppliers.List(ctx, apppartner.SupplierListFilter{Type: "out"})
		require.NoError(t, err)
		assert.Zero(t, total)
		assert.Empty(t, suppliers)
	})
}

func TestPrepaymentService(t *testing.T) {
	f := newPartnerFixture(t)
	ctx := context.Background()

	created, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
		Name:         "Acme",
		SupplierType: "in",
	})
	require.NoError(t, err)

	t.Run("first addition creates the balance row", func(t *testing.T) {
		resp, err := f.prepayments.Add(ctx, created.ID, f.user.ID, apppartner.AddPrepaymentRequest{
			Amount: decimal.NewFromInt(1000),
			Notes:  "initial credit",
		})
		require.NoError(t, err)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(1000)))
		assert.True(t, resp.TotalPrepaid.Equal(decimal.NewFromInt(1000)))
	})

	t.Run("further additions accumulate", func(t *testing.T) {
		resp, err := f.prepayments.Add(ctx, created.ID, f.user.ID, apppartner.AddPrepaymentRequest{
			Amount: decimal.NewFromInt(250),
		})
		require.NoError(t, err)
		assert.True(t, resp.Balance.Equal(decimal.NewFromInt(1250)))
	})

	t.Run("non-positive amounts are rejected", func(t *testing.T) {
		_, err := f.prepayments.Add(ctx, created.ID, f.user.ID, apppartner.AddPrepaymentRequest{
			Amount: decimal.Zero,
		})
		assert.Equal(t, "INVALID_INPUT", supplierErrCode(t, err))
	})

	t.Run("unknown supplier is rejected", func(t *testing.T) {
		_, err := f.prepayments.Add(ctx, uuid.New(), f.user.ID, apppartner.AddPrepaymentRequest{
			Amount: decimal.NewFromInt(10),
		})
		assert.Equal(t, "NOT_FOUND", supplierErrCode(t, err))
	})

	t.Run("balance without a row reports zeroes", func(t *testing.T) {
		other, err := f.suppliers.Create(ctx, apppartner.CreateSupplierRequest{
			Name:         "Globex",
			SupplierType: "in",
		})
		require.NoError(t, err)

		resp, err := f.prepayments.GetBalance(ctx, other.ID)
		require.NoError(t, err)
		assert.True(t, resp.Balance.IsZero())
		assert.True(t, resp.TotalPrepaid.IsZero())
		assert.True(t, resp.TotalUsed.IsZero())
	})

	t.Run("additions appear in the settlement history", func(t *testing.T) {
		entries, err := f.prepayments.ListEntries(ctx, created.ID, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.True(t, e.Amount.IsPositive())
			assert.Nil(t, e.StockTransactionID)
		}
	})
}
