package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dimitrije/admin-dashboard-api/internal/database"
	"github.com/dimitrije/admin-dashboard-api/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/text/language"
)

var languageMatcher = language.NewMatcher([]language.Tag{
	language.French,
	language.English,
	language.Arabic,
})

// DefaultLanguage picks the supported language that best fits an
// Accept-Language header. French is the fallback.
func DefaultLanguage(acceptLanguage string) models.Language {
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return models.LanguageFrench
	}
	_, index, confidence := languageMatcher.Match(tags...)
	if confidence == language.No {
		return models.LanguageFrench
	}
	return models.Languages[index]
}

// Direction returns the text direction of lang.
func Direction(lang models.Language) string {
	if lang == models.LanguageArabic {
		return "rtl"
	}
	return "ltr"
}

type PreferencesService struct {
	db *database.DB
}

func NewPreferencesService(db *database.DB) *PreferencesService {
	return &PreferencesService{db: db}
}

// Get returns the stored preferences of userID. Missing or invalid keys fall
// back to the defaults, with the language negotiated from acceptLanguage.
func (s *PreferencesService) Get(ctx context.Context, userID uuid.UUID, acceptLanguage string) (models.Preferences, error) {
	var raw []byte
	err := s.db.Pool.QueryRow(ctx, `SELECT preferences FROM profiles WHERE id = $1`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Preferences{}, ErrNotFound
		}
		return models.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}
	return decodePreferences(raw, acceptLanguage), nil
}

func decodePreferences(raw []byte, acceptLanguage string) models.Preferences {
	defaults := models.DefaultPreferences()
	defaults.Language = DefaultLanguage(acceptLanguage)
	if len(raw) == 0 {
		return defaults
	}

	var doc struct {
		Theme            *models.Theme    `json:"theme"`
		Language         *models.Language `json:"language"`
		SidebarCollapsed *bool            `json:"sidebarCollapsed"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return defaults
	}

	var stored models.PreferencesPatch
	if doc.Theme != nil && doc.Theme.Valid() {
		stored.Theme = doc.Theme
	}
	if doc.Language != nil && doc.Language.Valid() {
		stored.Language = doc.Language
	}
	stored.SidebarCollapsed = doc.SidebarCollapsed
	return defaults.Apply(stored)
}

func (s *PreferencesService) Save(ctx context.Context, userID uuid.UUID, prefs models.Preferences) error {
	if !prefs.Theme.Valid() || !prefs.Language.Valid() {
		return ErrInvalidPreferences
	}

	raw, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	tag, err := s.db.Pool.Exec(ctx, `
		UPDATE profiles SET preferences = $1, updated_at = NOW()
		WHERE id = $2
	`, raw, userID)
	if err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Update applies patch over the current preferences and saves the result.
func (s *PreferencesService) Update(ctx context.Context, userID uuid.UUID, patch models.PreferencesPatch, acceptLanguage string) (models.Preferences, error) {
	if patch.Theme != nil && !patch.Theme.Valid() {
		return models.Preferences{}, ErrInvalidPreferences
	}
	if patch.Language != nil && !patch.Language.Valid() {
		return models.Preferences{}, ErrInvalidPreferences
	}

	return s.modify(ctx, userID, acceptLanguage, func(current models.Preferences) models.Preferences {
		return current.Apply(patch)
	})
}

func (s *PreferencesService) ToggleTheme(ctx context.Context, userID uuid.UUID) (models.Preferences, error) {
	return s.modify(ctx, userID, "", func(current models.Preferences) models.Preferences {
		theme := models.ThemeDark
		if current.Theme == models.ThemeDark {
			theme = models.ThemeLight
		}
		return current.Apply(models.PreferencesPatch{Theme: &theme})
	})
}

func (s *PreferencesService) ToggleSidebar(ctx context.Context, userID uuid.UUID) (models.Preferences, error) {
	return s.modify(ctx, userID, "", func(current models.Preferences) models.Preferences {
		collapsed := !current.SidebarCollapsed
		return current.Apply(models.PreferencesPatch{SidebarCollapsed: &collapsed})
	})
}

// modify rewrites the preferences of userID with the profile row locked, so
// concurrent changes never overwrite each other.
func (s *PreferencesService) modify(ctx context.Context, userID uuid.UUID, acceptLanguage string, change func(models.Preferences) models.Preferences) (models.Preferences, error) {
	tx, err := s.db.Pool.Begin(ctx)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var raw []byte
	err = tx.QueryRow(ctx, `SELECT preferences FROM profiles WHERE id = $1 FOR UPDATE`, userID).Scan(&raw)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Preferences{}, ErrNotFound
		}
		return models.Preferences{}, fmt.Errorf("failed to load preferences: %w", err)
	}

	next := change(decodePreferences(raw, acceptLanguage))
	if !next.Theme.Valid() || !next.Language.Valid() {
		return models.Preferences{}, ErrInvalidPreferences
	}
	encoded, err := json.Marshal(next)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to encode preferences: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE profiles SET preferences = $1, updated_at = NOW()
		WHERE id = $2
	`, encoded, userID)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("failed to save preferences: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Preferences{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return next, nil
}
