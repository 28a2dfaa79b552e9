package handlers

import (
	"errors"
	"time"

	"github.com/dimitrije/admin-dashboard-api/internal/middleware"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/dimitrije/admin-dashboard-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
)

type AuthHandler struct {
	userService  UserServiceInterface
	tokenService TokenServiceInterface
	jwtService   JWTServiceInterface
}

func NewAuthHandler(
	userService UserServiceInterface,
	tokenService TokenServiceInterface,
	jwtService JWTServiceInterface,
) *AuthHandler {
	return &AuthHandler{
		userService:  userService,
		tokenService: tokenService,
		jwtService:   jwtService,
	}
}

func (h *AuthHandler) Login(c *drift.Context) {
	var req dto.LoginRequest
	if !bindAndValidate(c, &req) {
		return
	}

	ctx := c.Request.Context()

	user, err := h.userService.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		respondError(c, err, "failed to sign in")
		return
	}

	tokens, ok := h.issueTokens(c, user)
	if !ok {
		return
	}

	_ = c.JSON(200, dto.LoginResponse{
		TokenResponse: tokens,
		User:          dto.NewUserResponse(user),
	})
}

func (h *AuthHandler) issueTokens(c *drift.Context, user *models.User) (dto.TokenResponse, bool) {
	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return dto.TokenResponse{}, false
	}

	tokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	if err := h.tokenService.StoreRefreshToken(c.Request.Context(), user.ID, tokenHash, expiresAt); err != nil {
		c.InternalServerError("failed to store refresh token")
		return dto.TokenResponse{}, false
	}

	return dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	}, true
}

// RefreshToken exchanges a refresh token for a new pair. The presented
// token is consumed; replaying it fails.
func (h *AuthHandler) RefreshToken(c *drift.Context) {
	var req dto.RefreshTokenRequest
	if !bindAndValidate(c, &req) {
		return
	}

	userID, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		c.Unauthorized("invalid refresh token")
		return
	}

	tokenHash := services.HashToken(req.RefreshToken)
	ctx := c.Request.Context()

	storedUserID, err := h.tokenService.ValidateRefreshToken(ctx, tokenHash)
	if err != nil || storedUserID != userID {
		c.Unauthorized("refresh token not found or expired")
		return
	}

	user, err := h.userService.GetByID(ctx, userID)
	if err != nil {
		c.Unauthorized("user not found")
		return
	}

	// Role changes take effect here: the new access token carries the
	// stored role.
	tokenPair, err := h.jwtService.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		c.InternalServerError("failed to generate tokens")
		return
	}

	newTokenHash := services.HashToken(tokenPair.RefreshToken)
	expiresAt := time.Now().Add(h.jwtService.RefreshExpiry())
	err = h.tokenService.RotateRefreshToken(ctx, user.ID, tokenHash, newTokenHash, expiresAt)
	if errors.Is(err, services.ErrNotFound) {
		c.Unauthorized("refresh token not found or expired")
		return
	}
	if err != nil {
		c.InternalServerError("failed to rotate refresh token")
		return
	}

	_ = c.JSON(200, dto.TokenResponse{
		AccessToken:  tokenPair.AccessToken,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresIn:    tokenPair.ExpiresIn,
	})
}

func (h *AuthHandler) Logout(c *drift.Context) {
	var req dto.LogoutRequest
	if err := c.BindJSON(&req); err != nil {
		c.BadRequest("invalid request body")
		return
	}

	if req.RefreshToken != "" {
		tokenHash := services.HashToken(req.RefreshToken)
		_ = h.tokenService.RevokeRefreshToken(c.Request.Context(), tokenHash)
	}

	_ = c.JSON(200, map[string]string{"message": "logged out"})
}

func (h *AuthHandler) LogoutAll(c *drift.Context) {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		c.Unauthorized("not authenticated")
		return
	}

	if err := h.tokenService.RevokeAllUserTokens(c.Request.Context(), userID); err != nil {
		c.InternalServerError("failed to revoke tokens")
		return
	}

	_ = c.JSON(200, map[string]string{"message": "all sessions logged out"})
}
