package testutil

import (
	"context"
	"time"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserService mocks the UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, search string) ([]models.User, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserService) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.Role) (*models.User, error) {
	args := m.Called(ctx, actor, targetID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, actor *models.User, targetID uuid.UUID) error {
	args := m.Called(ctx, actor, targetID)
	return args.Error(0)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockTokenService mocks the TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	args := m.Called(ctx, tokenHash)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockTokenService) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldHash, newHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, oldHash, newHash, expiresAt)
	return args.Error(0)
}

func (m *MockTokenService) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	args := m.Called(ctx, tokenHash)
	return args.Error(0)
}

func (m *MockTokenService) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) GenerateTokenPair(userID uuid.UUID, email string, role models.Role) (*services.TokenPair, error) {
	args := m.Called(userID, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockJWTService) ValidateRefreshToken(token string) (uuid.UUID, error) {
	args := m.Called(token)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockJWTService) RefreshExpiry() time.Duration {
	args := m.Called()
	return args.Get(0).(time.Duration)
}

// MockNotificationService mocks the NotificationService
type MockNotificationService struct {
	mock.Mock
}

func (m *MockNotificationService) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockNotificationService) Insert(ctx context.Context, n models.NewNotification) (*models.Notification, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Notification), args.Error(1)
}

func (m *MockNotificationService) Delete(ctx context.Context, actor *models.User, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

// MockPreferencesService mocks the PreferencesService
type MockPreferencesService struct {
	mock.Mock
}

func (m *MockPreferencesService) Get(ctx context.Context, userID uuid.UUID, acceptLanguage string) (models.Preferences, error) {
	args := m.Called(ctx, userID, acceptLanguage)
	return args.Get(0).(models.Preferences), args.Error(1)
}

func (m *MockPreferencesService) Update(ctx context.Context, userID uuid.UUID, patch models.PreferencesPatch, acceptLanguage string) (models.Preferences, error) {
	args := m.Called(ctx, userID, patch, acceptLanguage)
	return args.Get(0).(models.Preferences), args.Error(1)
}

func (m *MockPreferencesService) ToggleTheme(ctx context.Context, userID uuid.UUID) (models.Preferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Preferences), args.Error(1)
}

func (m *MockPreferencesService) ToggleSidebar(ctx context.Context, userID uuid.UUID) (models.Preferences, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(models.Preferences), args.Error(1)
}
