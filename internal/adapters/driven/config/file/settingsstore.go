package file

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/droidgate/internal/core/domain"
	"github.com/custodia-labs/droidgate/internal/core/ports/driven"
)

// Ensure SettingsStore implements the interface.
var _ driven.SettingsStore = (*SettingsStore)(nil)

// EnvEncryptionKey overrides the encryption key from the settings file,
// so deployments can inject the secret without writing it to disk.
const EnvEncryptionKey = "DROID_ENCRYPTION_KEY"

const settingsFileName = "droidgate.toml"

// SettingsStore is a file-based implementation of driven.SettingsStore
// using TOML. Settings are stored in droidgate.toml within the config
// directory.
type SettingsStore struct {
	mu       sync.Mutex
	filePath string
}

// fileSettings is the on-disk schema. Durations are written as strings
// in time.ParseDuration form ("45m", "1h30m").
type fileSettings struct {
	EncryptionKey      string `toml:"encryption_key,omitempty"`
	Production         bool   `toml:"production,omitempty"`
	RefreshMaxAttempts int    `toml:"refresh_max_attempts,omitempty"`
	RefreshInterval    string `toml:"refresh_interval,omitempty"`
}

// NewSettingsStore creates a new TOML-based settings store.
// If configDir is empty, defaults to ~/.droidgate/droidgate.toml.
func NewSettingsStore(configDir string) (*SettingsStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".droidgate")
	}

	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	return &SettingsStore{
		filePath: filepath.Join(configDir, settingsFileName),
	}, nil
}

// Load reads settings from the TOML file. A missing file yields the
// documented defaults. The DROID_ENCRYPTION_KEY environment variable
// overrides the file's encryption key either way.
func (s *SettingsStore) Load() (domain.Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	settings := domain.Settings{}

	data, err := os.ReadFile(s.filePath)
	switch {
	case os.IsNotExist(err):
		// No settings file yet, fall through to defaults.
	case err != nil:
		return domain.Settings{}, err
	default:
		var fs fileSettings
		if err := toml.Unmarshal(data, &fs); err != nil {
			return domain.Settings{}, fmt.Errorf("parse %s: %w", s.filePath, err)
		}
		settings, err = fs.toDomain()
		if err != nil {
			return domain.Settings{}, fmt.Errorf("parse %s: %w", s.filePath, err)
		}
	}

	if key := os.Getenv(EnvEncryptionKey); key != "" {
		settings.EncryptionKey = key
	}

	settings.ApplyDefaults()
	if err := settings.Validate(); err != nil {
		return domain.Settings{}, err
	}
	return settings, nil
}

// Save persists settings to the TOML file with restricted permissions.
func (s *SettingsStore) Save(settings domain.Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := toml.Marshal(fromDomain(settings))
	if err != nil {
		return err
	}

	return os.WriteFile(s.filePath, data, 0600)
}

// Path returns the settings file path.
func (s *SettingsStore) Path() string {
	return s.filePath
}

func (fs fileSettings) toDomain() (domain.Settings, error) {
	settings := domain.Settings{
		EncryptionKey:      fs.EncryptionKey,
		Production:         fs.Production,
		RefreshMaxAttempts: fs.RefreshMaxAttempts,
	}
	if fs.RefreshInterval != "" {
		interval, err := time.ParseDuration(fs.RefreshInterval)
		if err != nil {
			return domain.Settings{}, fmt.Errorf("refresh_interval: %w", err)
		}
		settings.RefreshInterval = interval
	}
	return settings, nil
}

func fromDomain(settings domain.Settings) fileSettings {
	fs := fileSettings{
		EncryptionKey:      settings.EncryptionKey,
		Production:         settings.Production,
		RefreshMaxAttempts: settings.RefreshMaxAttempts,
	}
	if settings.RefreshInterval != 0 {
		fs.RefreshInterval = settings.RefreshInterval.String()
	}
	return fs
}
