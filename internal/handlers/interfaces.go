package handlers

import (
	"context"
	"time"

	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/realtime"
	"github.com/dimitrije/admin-dashboard-api/internal/services"
	"github.com/google/uuid"
)

// UserServiceInterface defines the methods used by handlers from UserService
type UserServiceInterface interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	List(ctx context.Context, search string) ([]models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error)
	UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.Role) (*models.User, error)
	Delete(ctx context.Context, actor *models.User, targetID uuid.UUID) error
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// TokenServiceInterface defines the methods used by handlers from TokenService
type TokenServiceInterface interface {
	StoreRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error
	ValidateRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, error)
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldHash, newHash string, expiresAt time.Time) error
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	GenerateTokenPair(userID uuid.UUID, email string, role models.Role) (*services.TokenPair, error)
	ValidateRefreshToken(token string) (uuid.UUID, error)
	RefreshExpiry() time.Duration
}

// NotificationServiceInterface defines the methods used by handlers from NotificationService
type NotificationServiceInterface interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Notification, error)
	MarkAsRead(ctx context.Context, userID, id uuid.UUID) (*models.Notification, error)
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) (int, error)
	Insert(ctx context.Context, n models.NewNotification) (*models.Notification, error)
	Delete(ctx context.Context, actor *models.User, id uuid.UUID) error
}

// PreferencesServiceInterface defines the methods used by handlers from PreferencesService
type PreferencesServiceInterface interface {
	Get(ctx context.Context, userID uuid.UUID, acceptLanguage string) (models.Preferences, error)
	Update(ctx context.Context, userID uuid.UUID, patch models.PreferencesPatch, acceptLanguage string) (models.Preferences, error)
	ToggleTheme(ctx context.Context, userID uuid.UUID) (models.Preferences, error)
	ToggleSidebar(ctx context.Context, userID uuid.UUID) (models.Preferences, error)
}

// FeedInterface opens per-user change streams. Implemented by realtime.Hub.
type FeedInterface interface {
	Subscribe(userID uuid.UUID) *realtime.Subscription
}
