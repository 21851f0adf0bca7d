package identity_test

import (
	"context"
	"sync"
	"testing"
	"time"

	appidentity "github.com/Cho-Jaehwan/erp/internal/application/identity"
	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/identity"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/auth"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/config"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type recordingAudit struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (r *recordingAudit) Record(_ context.Context, entry audit.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func (r *recordingAudit) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	actions := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		actions = append(actions, e.Action)
	}
	return actions
}

type authFixture struct {
	db        *gorm.DB
	service   *appidentity.AuthService
	jwt       *auth.JWTService
	blacklist *auth.InMemoryTokenBlacklist
	audits    *recordingAudit
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&identity.User{}))

	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                 "test-access-secret",
		RefreshSecret:          "test-refresh-secret",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 24 * time.Hour,
		Issuer:                 "erp-test",
	})
	blacklist := auth.NewInMemoryTokenBlacklist()
	audits := &recordingAudit{}

	service := appidentity.NewAuthService(
		persistence.NewGormUserRepository(db),
		auth.NewBcryptHasher(4),
		jwtService,
		blacklist,
		audits,
		zap.NewNop(),
	)

	return &authFixture{db: db, service: service, jwt: jwtService, blacklist: blacklist, audits: audits}
}

func (f *authFixture) register(t *testing.T, username string) *appidentity.UserResponse {
	t.Helper()
	resp, err := f.service.Register(context.Background(), appidentity.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		FullName: "Test " + username,
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	return resp
}

func authErrCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	de, ok := err.(*shared.DomainError)
	require.True(t, ok, "expected domain error, got %T: %v", err, err)
	return de.Code
}

func TestAuthService_Register(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	t.Run("new accounts start unapproved", func(t *testing.T) {
		resp := f.register(t, "alice")
		assert.Equal(t, "alice", resp.Username)
		assert.False(t, resp.IsApproved)
		assert.False(t, resp.IsAdmin)
	})

	t.Run("username must be unique", func(t *testing.T) {
		_, err := f.service.Register(ctx, appidentity.RegisterRequest{
			Username: "alice",
			Email:    "other@example.com",
			FullName: "Other",
			Password: "s3cret-pass",
		})
		assert.Equal(t, "ALREADY_EXISTS", authErrCode(t, err))
	})

	t.Run("email must be unique", func(t *testing.T) {
		_, err := f.service.Register(ctx, appidentity.RegisterRequest{
			Username: "alice2",
			Email:    "alice@example.com",
			FullName: "Other",
			Password: "s3cret-pass",
		})
		assert.Equal(t, "ALREADY_EXISTS", authErrCode(t, err))
	})
}

func TestAuthService_Login(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	registered := f.register(t, "alice")

	t.Run("unapproved accounts cannot log in", func(t *testing.T) {
		_, err := f.service.Login(ctx, appidentity.LoginRequest{Username: "alice", Password: "s3cret-pass"})
		assert.Equal(t, "FORBIDDEN", authErrCode(t, err))
	})

	admin := uuid.New()
	_, err := f.service.Approve(ctx, admin, registered.ID, "root", "", "")
	require.NoError(t, err)

	t.Run("approved accounts receive a token pair", func(t *testing.T) {
		resp, err := f.service.Login(ctx, appidentity.LoginRequest{Username: "alice", Password: "s3cret-pass"})
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.NotEmpty(t, resp.RefreshToken)
		assert.True(t, resp.User.IsApproved)

		claims, err := f.jwt.ValidateAccessToken(resp.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, registered.ID.String(), claims.UserID)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		_, err := f.service.Login(ctx, appidentity.LoginRequest{Username: "alice", Password: "wrong-pass"})
		assert.Equal(t, "UNAUTHORIZED", authErrCode(t, err))
	})

	t.Run("unknown username is rejected", func(t *testing.T) {
		_, err := f.service.Login(ctx, appidentity.LoginRequest{Username: "nobody", Password: "s3cret-pass"})
		assert.Equal(t, "UNAUTHORIZED", authErrCode(t, err))
	})
}

func TestAuthService_RefreshAndLogout(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	registered := f.register(t, "alice")
	_, err := f.service.Approve(ctx, uuid.New(), registered.ID, "root", "", "")
	require.NoError(t, err)
	login, err := f.service.Login(ctx, appidentity.LoginRequest{Username: "alice", Password: "s3cret-pass"})
	require.NoError(t, err)

	t.Run("a valid refresh token yields a new pair", func(t *testing.T) {
		resp, err := f.service.Refresh(ctx, login.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, resp.AccessToken)
		assert.Equal(t, "alice", resp.User.Username)
	})

	t.Run("garbage refresh tokens are rejected", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, "not-a-token")
		assert.Equal(t, "UNAUTHORIZED", authErrCode(t, err))
	})

	t.Run("an access token cannot be used as a refresh token", func(t *testing.T) {
		_, err := f.service.Refresh(ctx, login.AccessToken)
		assert.Equal(t, "UNAUTHORIZED", authErrCode(t, err))
	})

	t.Run("revoked refresh tokens are rejected", func(t *testing.T) {
		claims, err := f.jwt.ValidateRefreshToken(login.RefreshToken)
		require.NoError(t, err)
		require.NoError(t, f.blacklist.Add(ctx, claims.ID, time.Hour))

		_, err = f.service.Refresh(ctx, login.RefreshToken)
		assert.Equal(t, "UNAUTHORIZED", authErrCode(t, err))
	})

	t.Run("logout blacklists the access token", func(t *testing.T) {
		require.NoError(t, f.service.Logout(ctx, login.AccessToken))

		claims, err := f.jwt.ValidateAccessToken(login.AccessToken)
		require.NoError(t, err)
		revoked, err := f.blacklist.IsBlacklisted(ctx, claims.ID)
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("logout with an invalid token is a no-op", func(t *testing.T) {
		assert.NoError(t, f.service.Logout(ctx, "not-a-token"))
	})
}

func TestAuthService_Approval(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	admin := uuid.New()

	alice := f.register(t, "alice")
	bob := f.register(t, "bob")

	t.Run("pending list contains unapproved accounts", func(t *testing.T) {
		pending, err := f.service.ListPending(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 2)
	})

	t.Run("approve marks the account and records an audit entry", func(t *testing.T) {
		resp, err := f.service.Approve(ctx, admin, alice.ID, "root", "", "")
		require.NoError(t, err)
		assert.True(t, resp.IsApproved)
		assert.Contains(t, f.audits.actions(), "user_approve")

		pending, err := f.service.ListPending(ctx)
		require.NoError(t, err)
		assert.Len(t, pending, 1)
	})

	t.Run("approving twice conflicts", func(t *testing.T) {
		_, err := f.service.Approve(ctx, admin, alice.ID, "root", "", "")
		assert.Equal(t, "CONFLICT", authErrCode(t, err))
	})

	t.Run("reject deletes the account", func(t *testing.T) {
		require.NoError(t, f.service.Reject(ctx, admin, bob.ID, "root", "", ""))
		assert.Contains(t, f.audits.actions(), "user_reject")

		_, err := f.service.GetCurrentUser(ctx, bob.ID)
		assert.Equal(t, "NOT_FOUND", authErrCode(t, err))
	})

	t.Run("administrator accounts cannot be rejected", func(t *testing.T) {
		root, err := identity.NewUser("root", "root@example.com", "Root", "hashed")
		require.NoError(t, err)
		root.IsAdmin = true
		require.NoError(t, f.db.Create(root).Error)

		err = f.service.Reject(ctx, admin, root.ID, "root", "", "")
		assert.Equal(t, "FORBIDDEN", authErrCode(t, err))
	})

	t.Run("unknown users are reported", func(t *testing.T) {
		_, err := f.service.Approve(ctx, admin, uuid.New(), "root", "", "")
		assert.Equal(t, "NOT_FOUND", authErrCode(t, err))
	})
}
