package app

import (
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/florianilch/mistgo/internal/api"
	"github.com/florianilch/mistgo/internal/tokenstore"
	"github.com/florianilch/mistgo/internal/ui"
)

func TestDefault(t *testing.T) {
	cfg, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}

	if cfg.API.BaseURL != api.DefaultBaseURL {
		t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, api.DefaultBaseURL)
	}
	if cfg.Session.Storage != SessionStorageTypeFile {
		t.Errorf("Session.Storage = %q, want file", cfg.Session.Storage)
	}
	if !strings.HasSuffix(cfg.Session.Dir, "mistgo") {
		t.Errorf("Session.Dir = %q, want it to end in mistgo", cfg.Session.Dir)
	}
	if cfg.UI.AlertTimeout != 5*time.Second {
		t.Errorf("UI.AlertTimeout = %v, want 5s", cfg.UI.AlertTimeout)
	}
	if cfg.UI.Color != ui.ColorAuto {
		t.Errorf("UI.Color = %q, want auto", cfg.UI.Color)
	}
	if cfg.Level() != slog.LevelWarn {
		t.Errorf("Level() = %v, want WARN", cfg.Level())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on defaults error = %v", err)
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{raw: "debug", want: slog.LevelDebug},
		{raw: "INFO", want: slog.LevelInfo},
		{raw: "error", want: slog.LevelError},
		{raw: "", want: slog.LevelWarn},
	}
	for _, tt := range tests {
		cfg := &Config{LogLevel: tt.raw}
		if got := cfg.Level(); got != tt.want {
			t.Errorf("Level() for %q = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "defaults", mutate: func(c *Config) {}},
		{name: "memory storage", mutate: func(c *Config) { c.Session.Storage = SessionStorageTypeMemory }},
		{name: "bad base url", mutate: func(c *Config) { c.API.BaseURL = "not a url" }, wantErr: true},
		{name: "bad storage", mutate: func(c *Config) { c.Session.Storage = "cookie" }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.LogFormat = "xml" }, wantErr: true},
		{name: "bad log level", mutate: func(c *Config) { c.LogLevel = "verbose" }, wantErr: true},
		{name: "bad color", mutate: func(c *Config) { c.UI.Color = "rainbow" }, wantErr: true},
		{name: "bad exporter", mutate: func(c *Config) { c.Telemetry.Exporter = "zipkin" }, wantErr: true},
		{name: "negative timeout", mutate: func(c *Config) { c.API.Timeout = -time.Second }, wantErr: true},
		{name: "env storage without key", mutate: func(c *Config) { c.Session.Storage = SessionStorageTypeEnv }, wantErr: true},
		{name: "env storage with key", mutate: func(c *Config) {
			c.Session.Storage = SessionStorageTypeEnv
			c.Session.EnvKey = "MISTGO_TOKEN"
		}},
		{name: "endpoint without exporter", mutate: func(c *Config) { c.Telemetry.Endpoint = "http://localhost:4318" }, wantErr: true},
		{name: "otlp exporter with endpoint", mutate: func(c *Config) {
			c.Telemetry.Exporter = "otlp-http"
			c.Telemetry.Endpoint = "http://localhost:4318"
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Default()
			if err != nil {
				t.Fatalf("Default() error = %v", err)
			}
			tt.mutate(cfg)

			err = cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewStores(t *testing.T) {
	dir := t.TempDir()
	cfg := SessionConfig{Storage: SessionStorageTypeFile, Dir: dir}

	tokens, users, err := cfg.NewStores()
	if err != nil {
		t.Fatalf("NewStores() error = %v", err)
	}

	fileTokens, ok := tokens.(*tokenstore.FileStore)
	if !ok {
		t.Fatalf("token store = %T, want *tokenstore.FileStore", tokens)
	}
	if fileTokens.Path() != filepath.Join(dir, "mistgo_token") {
		t.Errorf("token path = %q", fileTokens.Path())
	}
	fileUsers, ok := users.(*tokenstore.FileStore)
	if !ok {
		t.Fatalf("user store = %T, want *tokenstore.FileStore", users)
	}
	if fileUsers.Path() != filepath.Join(dir, "mistgo_user") {
		t.Errorf("user path = %q", fileUsers.Path())
	}
}

func TestNewStoresEnv(t *testing.T) {
	cfg := SessionConfig{Storage: SessionStorageTypeEnv, EnvKey: "MISTGO_TOKEN"}

	tokens, users, err := cfg.NewStores()
	if err != nil {
		t.Fatalf("NewStores() error = %v", err)
	}
	if _, ok := tokens.(*tokenstore.OverlayStore); !ok {
		t.Errorf("token store = %T, want *tokenstore.OverlayStore", tokens)
	}
	if _, ok := users.(*tokenstore.MemoryStore); !ok {
		t.Errorf("user store = %T, want *tokenstore.MemoryStore", users)
	}
}
