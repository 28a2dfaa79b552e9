package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/dimitrije/admin-dashboard-api/internal/permissions"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"
)

const userColumns = `id, email, first_name, last_name, role, avatar_url, password_hash, created_at, updated_at, last_login`

type UserService struct {
	db           *database.DB
	passwordCost int
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db, passwordCost: bcrypt.DefaultCost}
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	var role string
	err := row.Scan(
		&user.ID, &user.Email, &user.FirstName, &user.LastName, &role,
		&user.AvatarURL, &user.PasswordHash, &user.CreatedAt, &user.UpdatedAt, &user.LastLogin,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.Role = models.Role(role)
	return &user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM profiles WHERE id = $1
	`, id))
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `
		SELECT `+userColumns+`
		FROM profiles WHERE LOWER(email) = LOWER($1)
	`, strings.TrimSpace(email)))
}

// List returns every profile, newest first. A non-empty search keeps the
// profiles whose first name, last name or email contains it, ignoring case.
func (s *UserService) List(ctx context.Context, search string) ([]models.User, error) {
	rows, err := s.db.Pool.Query(ctx, `
		SELECT `+userColumns+`
		FROM profiles
		WHERE $1 = ''
			OR first_name ILIKE '%' || $1 || '%' ESCAPE '\'
			OR last_name ILIKE '%' || $1 || '%' ESCAPE '\'
			OR email ILIKE '%' || $1 || '%' ESCAPE '\'
		ORDER BY created_at DESC
	`, escapeLike(strings.TrimSpace(search)))
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *user)
	}
	return users, rows.Err()
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes term match literally inside an ILIKE pattern.
func escapeLike(term string) string {
	return likeEscaper.Replace(term)
}

func (s *UserService) UpdateProfile(ctx context.Context, id uuid.UUID, update models.ProfileUpdate) (*models.User, error) {
	return scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET
			first_name = COALESCE($1, first_name),
			last_name = COALESCE($2, last_name),
			avatar_url = COALESCE($3, avatar_url),
			updated_at = NOW()
		WHERE id = $4
		RETURNING `+userColumns,
		update.FirstName, update.LastName, update.AvatarURL, id))
}

// UpdateRole changes the role of targetID on behalf of actor. Only a
// superadmin may grant the superadmin role, and nobody changes their own role.
func (s *UserService) UpdateRole(ctx context.Context, actor *models.User, targetID uuid.UUID, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	if !permissions.HasPermission(actor, permissions.ChangeRoles) {
		return nil, ErrForbidden
	}
	if actor.ID == targetID {
		return nil, ErrForbidden
	}
	if role == models.RoleSuperAdmin && actor.Role != models.RoleSuperAdmin {
		return nil, ErrForbidden
	}

	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !permissions.CanManageUser(actor, *target) {
		return nil, ErrForbidden
	}

	return scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET role = $1, updated_at = NOW()
		WHERE id = $2
		RETURNING `+userColumns,
		string(role), targetID))
}

// Delete removes targetID on behalf of actor. Superadmin accounts are never
// deleted.
func (s *UserService) Delete(ctx context.Context, actor *models.User, targetID uuid.UUID) error {
	if !permissions.HasPermission(actor, permissions.DeleteUsers) {
		return ErrForbidden
	}
	if actor.ID == targetID {
		return ErrForbidden
	}

	target, err := s.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if target.Role == models.RoleSuperAdmin || !permissions.CanManageUser(actor, *target) {
		return ErrForbidden
	}

	tag, err := s.db.Pool.Exec(ctx, `DELETE FROM profiles WHERE id = $1 AND role <> 'superadmin'`, targetID)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Authenticate checks the password of email and stamps the login time.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	err = s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET last_login = NOW()
		WHERE id = $1
		RETURNING last_login
	`, user.ID).Scan(&user.LastLogin)
	if err != nil {
		return nil, fmt.Errorf("failed to record login: %w", err)
	}

	return user, nil
}

func (s *UserService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.passwordCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

func (s *UserService) Create(ctx context.Context, u models.NewUser) (*models.User, error) {
	if !u.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := s.hashPassword(u.Password)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (email, first_name, last_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		strings.ToLower(u.Email), u.FirstName, u.LastName, string(u.Role), hash))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Upsert creates the account or resets its name, role and password.
func (s *UserService) Upsert(ctx context.Context, u models.NewUser) (*models.User, error) {
	if !u.Role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := s.hashPassword(u.Password)
	if err != nil {
		return nil, err
	}

	user, err := scanUser(s.db.Pool.QueryRow(ctx, `
		INSERT INTO profiles (email, first_name, last_name, role, password_hash)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET
			first_name = EXCLUDED.first_name,
			last_name = EXCLUDED.last_name,
			role = EXCLUDED.role,
			password_hash = EXCLUDED.password_hash,
			updated_at = NOW()
		RETURNING `+userColumns,
		strings.ToLower(u.Email), u.FirstName, u.LastName, string(u.Role), hash))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user %s: %w", u.Email, err)
	}
	return user, nil
}

// SetRoleByEmail is the operator path used by cmd/set-role. It bypasses the
// capability checks.
func (s *UserService) SetRoleByEmail(ctx context.Context, email string, role models.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	return scanUser(s.db.Pool.QueryRow(ctx, `
		UPDATE profiles SET role = $1, updated_at = NOW()
		WHERE LOWER(email) = LOWER($2)
		RETURNING `+userColumns,
		string(role), strings.TrimSpace(email)))
}
