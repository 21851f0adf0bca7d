package persistence

import (
	"testing"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/catalog"
	"github.com/Cho-Jaehwan/erp/internal/domain/identity"
	"github.com/Cho-Jaehwan/erp/internal/domain/ledger"
	"github.com/Cho-Jaehwan/erp/internal/domain/partner"
	"github.com/Cho-Jaehwan/erp/internal/domain/trade"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&identity.User{},
		&catalog.Product{},
		&partner.Supplier{},
		&partner.PrepaymentBalance{},
		&partner.PrepaymentEntry{},
		&ledger.StockTransaction{},
		&trade.PurchaseOrder{},
		&trade.PurchaseOrderLine{},
		&audit.AuditLog{},
	)
	require.NoError(t, err)

	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(username, username+"@example.com", "Test "+username, "hashed")
	require.NoError(t, err)
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price decimal.Decimal) *catalog.Product {
	t.Helper()
	product, err := catalog.NewProduct(name, "", price, 0, "")
	require.NoError(t, err)
	require.NoError(t, db.Create(product).Error)
	return product
}

func seedSupplier(t *testing.T, db *gorm.DB, name string, supplierType partner.SupplierType) *partner.Supplier {
	t.Helper()
	supplier, err := partner.NewSupplier(name, supplierType)
	require.NoError(t, err)
	require.NoError(t, db.Create(supplier).Error)
	return supplier
}
