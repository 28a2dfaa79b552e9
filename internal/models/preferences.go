package models

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
)

func (t Theme) Valid() bool {
	return t == ThemeLight || t == ThemeDark
}

type Language string

const (
	LanguageFrench  Language = "fr"
	LanguageEnglish Language = "en"
	LanguageArabic  Language = "ar"
)

// Languages is ordered by preference; the first entry is the fallback.
var Languages = []Language{LanguageFrench, LanguageEnglish, LanguageArabic}

func (l Language) Valid() bool {
	switch l {
	case LanguageFrench, LanguageEnglish, LanguageArabic:
		return true
	}
	return false
}

// Preferences is stored as JSON in profiles.preferences.
type Preferences struct {
	Theme            Theme    `json:"theme"`
	Language         Language `json:"language"`
	SidebarCollapsed bool     `json:"sidebarCollapsed"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		Theme:    ThemeLight,
		Language: LanguageFrench,
	}
}

// PreferencesPatch holds a partial preferences update.
type PreferencesPatch struct {
	Theme            *Theme
	Language         *Language
	SidebarCollapsed *bool
}

func (p Preferences) Apply(patch PreferencesPatch) Preferences {
	if patch.Theme != nil {
		p.Theme = *patch.Theme
	}
	if patch.Language != nil {
		p.Language = *patch.Language
	}
	if patch.SidebarCollapsed != nil {
		p.SidebarCollapsed = *patch.SidebarCollapsed
	}
	return p
}
