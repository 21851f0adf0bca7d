package audit_test

import (
	"context"
	"testing"

	appaudit "github.com/Cho-Jaehwan/erp/internal/application/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupAuditTest(t *testing.T) (*appaudit.RepositoryRecorder, *appaudit.QueryService) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&audit.AuditLog{}))

	repo := persistence.NewGormAuditLogRepository(db)
	return appaudit.NewRepositoryRecorder(repo, zap.NewNop()), appaudit.NewQueryService(repo)
}

func TestAuditService(t *testing.T) {
	recorder, queries := setupAuditTest(t)
	ctx := context.Background()

	userID := uuid.New()
	targetID := uuid.New()
	recorder.Record(ctx, audit.Entry{
		UserID:     &userID,
		Username:   "alice",
		Action:     "stock_in",
		TargetType: "StockTransaction",
		TargetID:   &targetID,
		Details:    map[string]any{"quantity": 5},
		IPAddress:  "10.0.0.1",
	})
	recorder.Record(ctx, audit.Entry{
		UserID:     &userID,
		Username:   "root",
		Action:     "user_approve",
		TargetType: "User",
		TargetID:   &targetID,
	})

	t.Run("lists recorded entries", func(t *testing.T) {
		resp, err := queries.List(ctx, appaudit.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
		require.Len(t, resp.Items, 2)
	})

	t.Run("filters by action and username", func(t *testing.T) {
		resp, err := queries.List(ctx, appaudit.ListFilter{Action: "stock_in"})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "alice", resp.Items[0].Username)
		assert.Contains(t, resp.Items[0].Details, `"quantity":5`)

		resp, err = queries.List(ctx, appaudit.ListFilter{Username: "root"})
		require.NoError(t, err)
		require.Len(t, resp.Items, 1)
		assert.Equal(t, "user_approve", resp.Items[0].Action)
	})

	t.Run("rejects nothing at the call site", func(t *testing.T) {
		// entries without an action are dropped, not surfaced as errors
		recorder.Record(ctx, audit.Entry{Username: "alice"})

		resp, err := queries.List(ctx, appaudit.ListFilter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), resp.Total)
	})
}
