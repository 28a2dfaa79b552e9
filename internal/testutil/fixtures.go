package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures inserts rows directly, bypassing the services.
type Fixtures struct {
	db      *database.DB
	counter int
	hash    string
}

func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// Password is the plain password of every fixture user.
const Password = "password123"

func (f *Fixtures) passwordHash(t *testing.T) string {
	t.Helper()
	if f.hash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
		if err != nil {
			t.Fatalf("failed to hash fixture password: %v", err)
		}
		f.hash = string(hash)
	}
	return f.hash
}

func (f *Fixtures) CreateUser(t *testing.T, role models.Role) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email:     fmt.Sprintf("user%d@company.com", f.counter),
		FirstName: "User",
		LastName:  fmt.Sprint(f.counter),
		Role:      role,
	}

	hash := f.passwordHash(t)
	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO profiles (email, first_name, last_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`, user.Email, user.FirstName, user.LastName, string(role), hash).Scan(
		&user.ID, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	user.PasswordHash = hash
	return user
}

func (f *Fixtures) CreateNotification(t *testing.T, userID uuid.UUID, read bool) *models.Notification {
	t.Helper()
	f.counter++

	n := &models.Notification{
		UserID:  userID,
		Title:   fmt.Sprintf("Notification %d", f.counter),
		Message: "fixture",
		Type:    models.NotificationInfo,
		IsRead:  read,
	}

	err := f.db.Pool.QueryRow(context.Background(), `
		INSERT INTO notifications (user_id, title, message, type, is_read)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, n.UserID, n.Title, n.Message, string(n.Type), n.IsRead).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		t.Fatalf("failed to create notification: %v", err)
	}
	return n
}
