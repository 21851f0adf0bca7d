package persistence

import (
	"context"
	"testing"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditLogRepository(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormAuditLogRepository(db)
	ctx := context.Background()

	userID := uuid.New()
	targetID := uuid.New()

	appendLog := func(username, action, targetType string) {
		log, err := audit.NewAuditLog(audit.Entry{
			UserID:     &userID,
			Username:   username,
			Action:     action,
			TargetType: targetType,
			TargetID:   &targetID,
			Details:    map[string]any{"quantity": 5},
			IPAddress:  "127.0.0.1",
		})
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, log))
	}
	appendLog("alice", "stock_in", "stock_transaction")
	appendLog("alice", "stock_out", "stock_transaction")
	appendLog("root", "user_approve", "user")

	t.Run("lists all rows with totals", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Len(t, page.Items, 3)
	})

	t.Run("filters by action", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{
			Filters: map[string]interface{}{"action": "stock_in"},
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, "stock_in", page.Items[0].Action)
		assert.Contains(t, page.Items[0].Details, `"quantity":5`)
	})

	t.Run("filters by target type and username", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{
			Filters: map[string]interface{}{"target_type": "stock_transaction"},
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), page.Total)

		page, err = repo.FindAll(ctx, shared.Filter{
			Filters: map[string]interface{}{"username": "root"},
		})
		require.NoError(t, err)
		require.Equal(t, int64(1), page.Total)
		assert.Equal(t, "user_approve", page.Items[0].Action)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := repo.FindAll(ctx, shared.Filter{Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Equal(t, int64(3), page.Total)
		assert.Equal(t, 2, page.TotalPages)
		assert.Len(t, page.Items, 1)
	})
}
