package handlers

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/dimitrije/admin-dashboard-api/internal/testutil"
	"github.com/dimitrije/admin-dashboard-api/pkg/dto"
	"github.com/google/uuid"
	"github.com/m1z23r/drift/pkg/drift"
	driftmw "github.com/m1z23r/drift/pkg/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupAuthTest(t *testing.T) (*testutil.MockUserService, *testutil.MockTokenService, *testutil.MockJWTService, *testutil.HTTPTestClient) {
	t.Helper()
	mockUserService := new(testutil.MockUserService)
	mockTokenService := new(testutil.MockTokenService)
	mockJWTService := new(testutil.MockJWTService)

	handler := NewAuthHandler(mockUserService, mockTokenService, mockJWTService)

	app := drift.New()
	app.Use(driftmw.BodyParser())
	app.Post("/auth/login", handler.Login)
	app.Post("/auth/refresh", handler.RefreshToken)
	app.Post("/auth/logout", handler.Logout)

	return mockUserService, mockTokenService, mockJWTService, testutil.NewHTTPTestClient(t, app)
}

var testTokenPair = &services.TokenPair{
	AccessToken:  "access-token-123",
	RefreshToken: "refresh-token-456",
	ExpiresIn:    900,
}

func TestAuthHandler_Login_Success(t *testing.T) {
	users, tokens, jwtSvc, client := setupAuthTest(t)
	user := testutil.NewUser(models.RoleAdmin)

	users.On("Authenticate", mock.Anything, user.Email, "password123").Return(user, nil)
	jwtSvc.On("GenerateTokenPair", user.ID, user.Email, models.RoleAdmin).Return(testTokenPair, nil)
	jwtSvc.On("RefreshExpiry").Return(7 * 24 * time.Hour)
	tokens.On("StoreRefreshToken", mock.Anything, user.ID, services.HashToken("refresh-token-456"), mock.Anything).Return(nil)

	rec := client.POST("/auth/login", dto.LoginRequest{Email: user.Email, Password: "password123"}, nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp dto.LoginResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.Equal(t, "access-token-123", resp.AccessToken)
	assert.Equal(t, "refresh-token-456", resp.RefreshToken)
	assert.Equal(t, int64(900), resp.ExpiresIn)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)

	users.AssertExpectations(t)
	jwtSvc.AssertExpectations(t)
	tokens.AssertExpectations(t)
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	users, tokens, _, client := setupAuthTest(t)

	users.On("Authenticate", mock.Anything, "admin@company.com", "wrong").Return(nil, services.ErrInvalidCredentials)

	rec := client.POST("/auth/login", dto.LoginRequest{Email: "admin@company.com", Password: "wrong"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid email or password")
	tokens.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_Login_Validation(t *testing.T) {
	testCases := []struct {
		name string
		body dto.LoginRequest
	}{
		{"missing email", dto.LoginRequest{Password: "x"}},
		{"malformed email", dto.LoginRequest{Email: "not-an-email", Password: "x"}},
		{"missing password", dto.LoginRequest{Email: "admin@company.com"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			users, _, _, client := setupAuthTest(t)

			rec := client.POST("/auth/login", tc.body, nil)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			users.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestAuthHandler_Login_StoreFailure(t *testing.T) {
	users, tokens, jwtSvc, client := setupAuthTest(t)
	user := testutil.NewUser(models.RoleEmployee)

	users.On("Authenticate", mock.Anything, user.Email, "password123").Return(user, nil)
	jwtSvc.On("GenerateTokenPair", user.ID, user.Email, models.RoleEmployee).Return(testTokenPair, nil)
	jwtSvc.On("RefreshExpiry").Return(time.Hour)
	tokens.On("StoreRefreshToken", mock.Anything, user.ID, mock.Anything, mock.Anything).Return(errors.New("db down"))

	rec := client.POST("/auth/login", dto.LoginRequest{Email: user.Email, Password: "password123"}, nil)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAuthHandler_RefreshToken_Rotates(t *testing.T) {
	users, tokens, jwtSvc, client := setupAuthTest(t)
	user := testutil.NewUser(models.RoleEmployee)
	oldHash := services.HashToken("old-refresh")

	jwtSvc.On("ValidateRefreshToken", "old-refresh").Return(user.ID, nil)
	tokens.On("ValidateRefreshToken", mock.Anything, oldHash).Return(user.ID, nil)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	jwtSvc.On("GenerateTokenPair", user.ID, user.Email, models.RoleEmployee).Return(testTokenPair, nil)
	jwtSvc.On("RefreshExpiry").Return(time.Hour)
	tokens.On("RotateRefreshToken", mock.Anything, user.ID, oldHash, services.HashToken("refresh-token-456"), mock.Anything).Return(nil)

	rec := client.POST("/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "old-refresh"}, nil)

	testutil.AssertStatus(t, rec, http.StatusOK)
	var resp dto.TokenResponse
	testutil.ParseJSON(t, rec, &resp)
	assert.Equal(t, "refresh-token-456", resp.RefreshToken)
	tokens.AssertExpectations(t)
	tokens.AssertNotCalled(t, "StoreRefreshToken", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAuthHandler_RefreshToken_Replayed(t *testing.T) {
	users, tokens, jwtSvc, client := setupAuthTest(t)
	user := testutil.NewUser(models.RoleEmployee)

	jwtSvc.On("ValidateRefreshToken", "old-refresh").Return(user.ID, nil)
	tokens.On("ValidateRefreshToken", mock.Anything, mock.Anything).Return(user.ID, nil)
	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	jwtSvc.On("GenerateTokenPair", user.ID, user.Email, models.RoleEmployee).Return(testTokenPair, nil)
	jwtSvc.On("RefreshExpiry").Return(time.Hour)
	tokens.On("RotateRefreshToken", mock.Anything, user.ID, mock.Anything, mock.Anything, mock.Anything).Return(services.ErrNotFound)

	rec := client.POST("/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "old-refresh"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	_, tokens, jwtSvc, client := setupAuthTest(t)

	jwtSvc.On("ValidateRefreshToken", "garbage").Return(uuid.Nil, errors.New("invalid token"))

	rec := client.POST("/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "garbage"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid refresh token")
	tokens.AssertNotCalled(t, "ValidateRefreshToken", mock.Anything, mock.Anything)
}

func TestAuthHandler_RefreshToken_OwnerMismatch(t *testing.T) {
	_, tokens, jwtSvc, client := setupAuthTest(t)

	jwtSvc.On("ValidateRefreshToken", "stolen").Return(uuid.New(), nil)
	tokens.On("ValidateRefreshToken", mock.Anything, services.HashToken("stolen")).Return(uuid.New(), nil)

	rec := client.POST("/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "stolen"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_RefreshToken_UserDeleted(t *testing.T) {
	users, tokens, jwtSvc, client := setupAuthTest(t)
	userID := uuid.New()

	jwtSvc.On("ValidateRefreshToken", "orphan").Return(userID, nil)
	tokens.On("ValidateRefreshToken", mock.Anything, mock.Anything).Return(userID, nil)
	users.On("GetByID", mock.Anything, userID).Return(nil, services.ErrNotFound)

	rec := client.POST("/auth/refresh", dto.RefreshTokenRequest{RefreshToken: "orphan"}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "user not found")
}

func TestAuthHandler_Logout(t *testing.T) {
	_, tokens, _, client := setupAuthTest(t)

	tokens.On("RevokeRefreshToken", mock.Anything, services.HashToken("some-token")).Return(nil)

	rec := client.POST("/auth/logout", dto.LogoutRequest{RefreshToken: "some-token"}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	tokens.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll(t *testing.T) {
	users := new(testutil.MockUserService)
	tokens := new(testutil.MockTokenService)
	jwtSvc := testutil.TestJWTService()
	handler := NewAuthHandler(users, tokens, new(testutil.MockJWTService))
	user := testutil.NewUser(models.RoleEmployee)

	users.On("GetByID", mock.Anything, user.ID).Return(user, nil)
	tokens.On("RevokeAllUserTokens", mock.Anything, user.ID).Return(nil)

	app := protectedApp(jwtSvc, users, "", route{http.MethodPost, "/auth/logout-all", handler.LogoutAll})
	client := testutil.NewHTTPTestClient(t, app).WithToken(testutil.GenerateTestToken(t, jwtSvc, user))

	rec := client.POST("/auth/logout-all", nil, nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "all sessions logged out")
	tokens.AssertExpectations(t)
}

func TestAuthHandler_LogoutAll_Unauthenticated(t *testing.T) {
	users := new(testutil.MockUserService)
	tokens := new(testutil.MockTokenService)
	handler := NewAuthHandler(users, tokens, new(testutil.MockJWTService))

	app := protectedApp(testutil.TestJWTService(), users, "", route{http.MethodPost, "/auth/logout-all", handler.LogoutAll})

	rec := testutil.NewHTTPTestClient(t, app).POST("/auth/logout-all", nil, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	tokens.AssertNotCalled(t, "RevokeAllUserTokens", mock.Anything, mock.Anything)
}
