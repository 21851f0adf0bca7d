package identity

import (
	"context"
	"time"

	"github.com/Cho-Jaehwan/erp/internal/domain/audit"
	"github.com/Cho-Jaehwan/erp/internal/domain/identity"
	"github.com/Cho-Jaehwan/erp/internal/domain/shared"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AuthService handles registration, authentication and account approval.
// New accounts start unapproved and cannot log in until an administrator
// approves them.
type AuthService struct {
	userRepo      identity.UserRepository
	hasher        auth.PasswordHasher
	jwtService    *auth.JWTService
	blacklist     auth.TokenBlacklist
	auditRecorder audit.Recorder
	logger        *zap.Logger
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo identity.UserRepository,
	hasher auth.PasswordHasher,
	jwtService *auth.JWTService,
	blacklist auth.TokenBlacklist,
	auditRecorder audit.Recorder,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		hasher:        hasher,
		jwtService:    jwtService,
		blacklist:     blacklist,
		auditRecorder: auditRecorder,
		logger:        logger,
	}
}

// Register creates a new unapproved account
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if existing, _ := s.userRepo.FindByUsername(ctx, req.Username); existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Username is already taken")
	}
	if existing, _ := s.userRepo.FindByEmail(ctx, req.Email); existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Email is already registered")
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}
	user, err := identity.NewUser(req.Username, req.Email, req.FullName, hash)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered, awaiting approval",
		zap.String("username", user.Username),
		zap.String("user_id", user.ID.String()))

	resp := ToUserResponse(user)
	return &resp, nil
}

// Login authenticates a user and issues a token pair
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	user, err := s.userRepo.FindByUsername(ctx, req.Username)
	if err != nil || !s.hasher.Verify(user.PasswordHash, req.Password) {
		s.logger.Warn("failed login attempt", zap.String("username", req.Username))
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid username or password")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Account is pending administrator approval")
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:                  ToUserResponse(user),
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*LoginResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	}
	revoked, err := s.blacklist.IsBlacklisted(ctx, claims.ID)
	if err != nil {
		s.logger.Error("token blacklist lookup failed", zap.Error(err))
	}
	if revoked {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Refresh token has been revoked")
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Invalid refresh token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, shared.NewDomainError("UNAUTHORIZED", "Account no longer exists")
	}
	if !user.CanLogin() {
		return nil, shared.NewDomainError("FORBIDDEN", "Account is pending administrator approval")
	}

	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID:   user.ID,
		Username: user.Username,
		IsAdmin:  user.IsAdmin,
	})
	if err != nil {
		return nil, err
	}

	return &LoginResponse{
		User:                  ToUserResponse(user),
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
	}, nil
}

// Logout revokes the access token for its remaining lifetime
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwtService.ValidateAccessToken(accessToken)
	if err != nil {
		// Already invalid or expired, nothing to revoke
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if err := s.blacklist.Add(ctx, claims.ID, ttl); err != nil {
		s.logger.Error("failed to blacklist token on logout", zap.Error(err))
		return err
	}
	return nil
}

// GetCurrentUser returns the authenticated user's profile
func (s *AuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// ListPending lists accounts awaiting approval
func (s *AuthService) ListPending(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindPending(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]UserResponse, 0, len(users))
	for i := range users {
		result = append(result, ToUserResponse(&users[i]))
	}
	return result, nil
}

// Approve marks a pending account as approved
func (s *AuthService) Approve(ctx context.Context, adminID, userID uuid.UUID, adminUsername, ip, userAgent string) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.Approve(); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	s.auditRecorder.Record(ctx, audit.Entry{
		UserID:     &adminID,
		Username:   adminUsername,
		Action:     "user_approve",
		TargetType: "User",
		TargetID:   &user.ID,
		Details:    map[string]any{"username": user.Username},
		IPAddress:  ip,
		UserAgent:  userAgent,
	})

	resp := ToUserResponse(user)
	return &resp, nil
}

// Reject deletes a pending, non-admin account
func (s *AuthService) Reject(ctx context.Context, adminID, userID uuid.UUID, adminUsername, ip, userAgent string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin {
		return shared.NewDomainError("FORBIDDEN", "Administrator accounts cannot be rejected")
	}
	if err := s.userRepo.Delete(ctx, user.ID); err != nil {
		return err
	}

	s.auditRecorder.Record(ctx, audit.Entry{
		UserID:     &adminID,
		Username:   adminUsername,
		Action:     "user_reject",
		TargetType: "User",
		TargetID:   &user.ID,
		Details:    map[string]any{"username": user.Username},
		IPAddress:  ip,
		UserAgent:  userAgent,
	})
	return nil
}
