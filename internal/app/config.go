package app

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/user"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/florianilch/mistgo/internal/api"
	"github.com/florianilch/mistgo/internal/observability"
	"github.com/florianilch/mistgo/internal/session"
	"github.com/florianilch/mistgo/internal/tokenstore"
	"github.com/florianilch/mistgo/internal/ui"
)

// LogFormat represents the logging output format.
type LogFormat string

const (
	LogFormatText LogFormat = "text"
	LogFormatJSON LogFormat = "json"
)

// SessionStorageType represents the different storage types supported for the session.
type SessionStorageType string

const (
	SessionStorageTypeFile    SessionStorageType = "file"
	SessionStorageTypeEnv     SessionStorageType = "env"
	SessionStorageTypeKeyring SessionStorageType = "keyring"
	SessionStorageTypeMemory  SessionStorageType = "memory"
)

// Default configuration values
const (
	DefaultConfigLogFormat         = LogFormatText
	DefaultConfigLogLevel          = slog.LevelWarn
	DefaultConfigTelemetryExporter = observability.ExporterNone
	DefaultConfigAPIBaseURL        = api.DefaultBaseURL
	DefaultConfigSessionStorage    = SessionStorageTypeFile
	DefaultConfigUIAlertTimeout    = ui.DefaultAlertTimeout
	DefaultConfigUIColor           = ui.ColorAuto
)

// TelemetryConfig holds log export configuration.
type TelemetryConfig struct {
	Exporter observability.Exporter `json:"exporter" validate:"oneof=none stdout otlp-http otlp-grpc"`
	Endpoint string                 `json:"endpoint,omitempty" validate:"omitempty,url"`
}

// APIConfig holds remote API configuration.
type APIConfig struct {
	BaseURL string `json:"base_url" validate:"required,url"`
	// Timeout bounds each request; zero means no timeout.
	Timeout time.Duration `json:"timeout" validate:"gte=0"`
}

// SessionConfig describes where the token and cached user are stored.
type SessionConfig struct {
	Storage SessionStorageType `json:"storage" validate:"required,oneof=file env keyring memory"`

	// Storage-specific settings (mutually exclusive based on Storage type)
	Dir         string `json:"dir,omitempty"`          // For file storage: directory holding the session files
	EnvKey      string `json:"env_key,omitempty"`      // For env storage: environment variable holding the token
	KeyringUser string `json:"keyring_user,omitempty"` // For keyring storage: user identifier
}

// NewStores creates the token and user stores from the session configuration.
func (s *SessionConfig) NewStores() (tokens, users tokenstore.Store, err error) {
	switch s.Storage {
	case SessionStorageTypeFile:
		tokens, err = tokenstore.NewFileStore(filepath.Join(s.Dir, session.TokenKey))
		if err != nil {
			return nil, nil, err
		}
		users, err = tokenstore.NewFileStore(filepath.Join(s.Dir, session.UserKey))
		if err != nil {
			return nil, nil, err
		}
		return tokens, users, nil
	case SessionStorageTypeKeyring:
		tokens, err = tokenstore.NewKeyringStore(session.TokenKey, s.KeyringUser)
		if err != nil {
			return nil, nil, err
		}
		users, err = tokenstore.NewKeyringStore(session.UserKey, s.KeyringUser)
		if err != nil {
			return nil, nil, err
		}
		return tokens, users, nil
	case SessionStorageTypeEnv:
		// Pre-issued token. Logout and 401 responses mask it for the rest of the
		// process; the identity is only known for the lifetime of the process.
		env, err := tokenstore.NewEnvStore(s.EnvKey)
		if err != nil {
			return nil, nil, err
		}
		return tokenstore.NewOverlayStore(env), tokenstore.NewMemoryStore(), nil
	case SessionStorageTypeMemory:
		return tokenstore.NewMemoryStore(), tokenstore.NewMemoryStore(), nil
	default:
		return nil, nil, fmt.Errorf("unsupported storage type: %s", s.Storage)
	}
}

// UIConfig holds presentation settings.
type UIConfig struct {
	AlertTimeout time.Duration `json:"alert_timeout" validate:"gte=0"`
	Color        ui.ColorMode  `json:"color" validate:"oneof=auto always never"`
}

// Config holds the application's configuration.
type Config struct {
	// LogLevel for logging output (defaults to warn if unset).
	LogLevel  string          `json:"log_level" validate:"oneof=debug info warn error DEBUG INFO WARN ERROR"`
	LogFormat LogFormat       `json:"log_format" validate:"oneof=text json"`
	Telemetry TelemetryConfig `json:"telemetry"`
	API       APIConfig       `json:"api"`
	Session   SessionConfig   `json:"session"`
	UI        UIConfig        `json:"ui"`
}

// Default creates a new Config with default values applied.
func Default() (*Config, error) {
	cfg := &Config{}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

// Level returns the configured log level, falling back to the default if unparseable.
func (c *Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return DefaultConfigLogLevel
	}
	return level
}

// ApplyDefaults fills unset config fields with sensible defaults.
func (c *Config) ApplyDefaults() error {
	if c.LogLevel == "" {
		c.LogLevel = strings.ToLower(DefaultConfigLogLevel.String())
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultConfigLogFormat
	}
	if c.Telemetry.Exporter == "" {
		c.Telemetry.Exporter = DefaultConfigTelemetryExporter
	}
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultConfigAPIBaseURL
	}
	if c.Session.Storage == "" {
		c.Session.Storage = DefaultConfigSessionStorage
	}
	if c.UI.AlertTimeout == 0 {
		c.UI.AlertTimeout = DefaultConfigUIAlertTimeout
	}
	if c.UI.Color == "" {
		c.UI.Color = DefaultConfigUIColor
	}

	// Dynamic defaults based on storage type
	switch c.Session.Storage {
	case SessionStorageTypeFile:
		if c.Session.Dir == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				return fmt.Errorf("session.dir required (auto-detect failed: %w)", err)
			}
			c.Session.Dir = filepath.Join(configDir, "mistgo")
		}
	case SessionStorageTypeKeyring:
		if c.Session.KeyringUser == "" {
			currentUser, err := user.Current()
			if err != nil {
				return fmt.Errorf("session.keyring_user required (auto-detect failed: %w)", err)
			}
			c.Session.KeyringUser = currentUser.Username
		}
	case SessionStorageTypeEnv, SessionStorageTypeMemory:
		// env_key must be explicitly configured (no sensible default)
	}

	return nil
}

// Validate validates the configuration using struct tags and enum values.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	switch c.Session.Storage {
	case SessionStorageTypeFile:
		if c.Session.Dir == "" {
			return errors.New("session.dir required for file storage")
		}
	case SessionStorageTypeEnv:
		if c.Session.EnvKey == "" {
			return errors.New("session.env_key required for env storage")
		}
	case SessionStorageTypeKeyring:
		if c.Session.KeyringUser == "" {
			return errors.New("session.keyring_user required for keyring storage")
		}
	}

	if c.Telemetry.Exporter == observability.ExporterNone && c.Telemetry.Endpoint != "" {
		return errors.New("telemetry.endpoint set but telemetry.exporter is none")
	}

	return nil
}
