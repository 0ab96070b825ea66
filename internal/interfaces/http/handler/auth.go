package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/ledger/backend/internal/application/identity"
	"github.com/ledger/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	BaseHandler
	authService *identity.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(base BaseHandler, authService *identity.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// Login godoc
// @ID           login
// @Summary      User login
// @Description  Exchange email and password for an access and a refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LoginInput true "Login credentials"
// @Success      200 {object} dto.Response{data=identity.LoginResult}
// @Failure      400 {object} ErrorResponse
// @Failure      401 {object} ErrorResponse
// @Failure      403 {object} ErrorResponse "User inactive"
// @Failure      422 {object} ValidationErrorResponse
// @Failure      429 {object} ErrorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var input identity.LoginInput
	if !h.BindJSON(c, &input) {
		return
	}
	input.IP = c.ClientIP()

	result, err := h.authService.Login(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// RefreshToken godoc
// @ID           refreshToken
// @Summary      Refresh access token
// @Description  Rotate a refresh token into a new token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.RefreshTokenInput true "Refresh token"
// @Success      200 {object} dto.Response{data=identity.RefreshTokenResult}
// @Failure      401 {object} ErrorResponse
// @Failure      422 {object} ValidationErrorResponse
// @Router       /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var input identity.RefreshTokenInput
	if !h.BindJSON(c, &input) {
		return
	}

	result, err := h.authService.RefreshToken(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout godoc
// @ID           logout
// @Summary      User logout
// @Description  Revoke the current access token and, when supplied, the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identity.LogoutInput false "Refresh token to revoke"
// @Success      200 {object} MessageResponse
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	claims := middleware.GetJWTClaims(c)
	userID, ok := h.CurrentUserID(c)
	if !ok || claims == nil {
		if ok {
			h.Unauthorized(c, "Authentication required")
		}
		return
	}

	var input identity.LogoutInput
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &input) {
		return
	}
	input.UserID = userID
	input.TokenJTI = claims.ID
	if claims.ExpiresAt != nil {
		input.ExpiresAt = claims.ExpiresAt.Time
	}

	if err := h.authService.Logout(c.Request.Context(), input); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, "Logged out successfully")
}

// Me godoc
// @ID           getCurrentUser
// @Summary      Get current user
// @Description  The authenticated user with the live permissions of their role
// @Tags         auth
// @Produce      json
// @Success      200 {object} dto.Response{data=identity.UserInfo}
// @Failure      401 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.CurrentUserID(c)
	if !ok {
		return
	}

	info, err := h.authService.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}
