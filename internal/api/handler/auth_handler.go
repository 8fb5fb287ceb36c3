package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"volunteerhub/config"
	"volunteerhub/internal/dto"
	"volunteerhub/internal/service"
	"volunteerhub/pkg/response"
)

const (
	refreshCookieName = "refresh_token"
	refreshCookiePath = "/api/v1/auth"
)

// AuthHandler authentication endpoints
type AuthHandler struct {
	authSvc service.AuthService
	cfg     config.AuthConfig
}

// NewAuthHandler creates an AuthHandler. cfg may be nil in tests.
func NewAuthHandler(authSvc service.AuthService, cfg *config.AuthConfig) *AuthHandler {
	h := &AuthHandler{authSvc: authSvc}
	if cfg != nil {
		h.cfg = *cfg
	}
	return h
}

// Register creates a PENDING account together with its application.
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.Created(c, result)
}

// Login
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RememberMe)
	response.OK(c, result)
}

// RefreshToken rotates the refresh token taken from the body or the cookie.
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	token := h.presentedRefreshToken(c)
	if token == "" {
		response.BadRequest(c, 10001, "refresh token is required")
		return
	}

	result, err := h.authSvc.RefreshToken(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) || errors.Is(err, service.ErrAccountDisabled) {
			h.clearRefreshCookie(c)
		}
		handleAuthError(c, err)
		return
	}

	h.setRefreshCookie(c, result.RefreshToken, result.RememberMe)
	response.OK(c, result)
}

// Logout revokes the current access token and the refresh token if one is presented.
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetUserID(c); !ok {
		return
	}
	jti, exp := tokenInfo(c)

	if err := h.authSvc.Logout(c.Request.Context(), jti, exp, h.presentedRefreshToken(c)); err != nil {
		response.InternalError(c)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// GetCurrentUser profile of the caller, including group memberships
// GET /api/v1/auth/me
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.authSvc.GetCurrentUser(c.Request.Context(), userID)
	if err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// ChangePassword
// PUT /api/v1/auth/password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

// presentedRefreshToken body first, then cookie
func (h *AuthHandler) presentedRefreshToken(c *gin.Context) string {
	var req dto.RefreshTokenRequest
	if c.Request.ContentLength != 0 {
		_ = c.ShouldBindJSON(&req)
	}
	if token := strings.TrimSpace(req.RefreshToken); token != "" {
		return token
	}
	token, _ := c.Cookie(refreshCookieName)
	return token
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string, rememberMe bool) {
	if token == "" {
		return
	}
	// session cookie unless the user asked to be remembered
	maxAge := 0
	if rememberMe {
		ttl := h.cfg.RefreshTokenTTLRemember
		if ttl <= 0 {
			ttl = 7 * 24 * time.Hour
		}
		maxAge = int(ttl.Seconds())
	}
	c.SetSameSite(sameSiteMode(h.cfg.Cookie.SameSite))
	c.SetCookie(refreshCookieName, token, maxAge, refreshCookiePath, h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(sameSiteMode(h.cfg.Cookie.SameSite))
	c.SetCookie(refreshCookieName, "", -1, refreshCookiePath, h.cfg.Cookie.Domain, h.cfg.Cookie.Secure, true)
}

func sameSiteMode(s string) http.SameSite {
	switch strings.ToLower(s) {
	case "strict":
		return http.SameSiteStrictMode
	case "none":
		return http.SameSiteNoneMode
	default:
		return http.SameSiteLaxMode
	}
}

func handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Error(c, http.StatusUnauthorized, 11001, "invalid email or password")
	case errors.Is(err, service.ErrAccountDisabled):
		response.Forbidden(c, 11002, "account is disabled")
	case errors.Is(err, service.ErrEmailExists):
		response.Conflict(c, 11003, "email already registered")
	case errors.Is(err, service.ErrWeakPassword):
		response.BadRequest(c, 11004, err.Error())
	case errors.Is(err, service.ErrWrongPassword):
		response.BadRequest(c, 11005, "current password is incorrect")
	case errors.Is(err, service.ErrTokenInvalid):
		response.Unauthorized(c, 11006, "refresh token invalid or revoked")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11007, "user not found")
	default:
		response.InternalError(c)
	}
}
