package handler

import (
	"net/http"
	"strings"
	"time"

	appidentity "github.com/Cho-Jaehwan/erp/internal/application/identity"
	"github.com/Cho-Jaehwan/erp/internal/infrastructure/config"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/dto"
	"github.com/Cho-Jaehwan/erp/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

const refreshCookieName = "refresh_token"

// AuthHandler serves account and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *appidentity.AuthService
	cookieCfg   config.CookieConfig
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *appidentity.AuthService, cookieCfg config.CookieConfig) *AuthHandler {
	return &AuthHandler{authService: authService, cookieCfg: cookieCfg}
}

// Register creates a new account awaiting administrator approval
func (h *AuthHandler) Register(c *gin.Context) {
	var req appidentity.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	user, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Login authenticates a user and issues a token pair
func (h *AuthHandler) Login(c *gin.Context) {
	var req appidentity.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	h.Success(c, result)
}

// Refresh exchanges a refresh token for a new token pair. The token is
// read from the cookie first, then from the request body.
func (h *AuthHandler) Refresh(c *gin.Context) {
	refreshToken, _ := c.Cookie(refreshCookieName)
	if refreshToken == "" {
		var body struct {
			RefreshToken string `json:"refresh_token"`
		}
		if err := c.ShouldBindJSON(&body); err == nil {
			refreshToken = body.RefreshToken
		}
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized,
			dto.NewErrorResponse(dto.ErrCodeUnauthorized, "Missing refresh token"))
		return
	}

	result, err := h.authService.Refresh(c.Request.Context(), refreshToken)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	h.Success(c, result)
}

// Logout revokes the current access token and clears the refresh cookie
func (h *AuthHandler) Logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token := strings.TrimPrefix(header, "Bearer ")
	if token != "" {
		if err := h.authService.Logout(c.Request.Context(), token); err != nil {
			h.HandleError(c, err)
			return
		}
	}

	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, "", -1, h.cookiePath(), h.cookieCfg.Domain, h.cookieCfg.Secure, true)
	h.NoContent(c)
}

// Me returns the authenticated user's account
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.authService.GetCurrentUser(c.Request.Context(), middleware.CurrentUserID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ListPending lists accounts awaiting approval. Admin only.
func (h *AuthHandler) ListPending(c *gin.Context) {
	users, err := h.authService.ListPending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, users)
}

// Approve approves a pending account. Admin only.
func (h *AuthHandler) Approve(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.authService.Approve(c.Request.Context(),
		middleware.CurrentUserID(c), userID,
		middleware.CurrentUsername(c), c.ClientIP(), c.Request.UserAgent())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Reject removes a pending account. Admin only.
func (h *AuthHandler) Reject(c *gin.Context) {
	userID, err := parseIDParam(c)
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.authService.Reject(c.Request.Context(),
		middleware.CurrentUserID(c), userID,
		middleware.CurrentUsername(c), c.ClientIP(), c.Request.UserAgent()); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, result *appidentity.LoginResponse) {
	maxAge := int(time.Until(result.RefreshTokenExpiresAt).Seconds())
	if maxAge <= 0 {
		maxAge = 7 * 24 * 3600
	}
	c.SetSameSite(h.sameSite())
	c.SetCookie(refreshCookieName, result.RefreshToken, maxAge,
		h.cookiePath(), h.cookieCfg.Domain, h.cookieCfg.Secure, true)
}

func (h *AuthHandler) cookiePath() string {
	if h.cookieCfg.Path != "" {
		return h.cookieCfg.Path
	}
	return "/"
}

func (h *AuthHandler) sameSite() http.SameSite {
	switch h.cookieCfg.SameSite {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}
