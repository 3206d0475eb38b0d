package driven

import "github.com/custodia-labs/droidgate/internal/core/domain"

// SettingsStore persists process-level settings.
type SettingsStore interface {
	// Load reads settings, applying defaults and environment overrides.
	Load() (domain.Settings, error)

	// Save persists settings.
	Save(settings domain.Settings) error
}
