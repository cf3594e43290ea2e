package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/urfave/cli/v3"

	"github.com/florianilch/mistgo/internal/app"
)

// envPrefix marks the environment variables read as configuration.
// MISTGO_SESSION__STORAGE=keyring sets session.storage.
const envPrefix = "MISTGO_"

// configFileName is looked up in the user config directory when --config is not given.
const configFileName = "config.toml"

// commandOnlyFlags steer a single invocation and have no configuration key.
var commandOnlyFlags = map[string]bool{
	"config":   true,
	"password": true,
}

// configPath returns the --config value, or the per-user config file if one exists.
func configPath(cmd *cli.Command) string {
	if path := cmd.String("config"); path != "" {
		return path
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	path := filepath.Join(dir, "mistgo", configFileName)
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// loadConfig builds the configuration. Later sources override earlier ones:
// TOML file, MISTGO_ environment variables, explicitly set flags. Defaults fill
// whatever is still empty, then the result is validated.
func loadConfig(path string, cmd *cli.Command, environ func() []string) (*app.Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	envProvider := env.Provider(".", env.Opt{
		Prefix:        envPrefix,
		TransformFunc: envKey,
		EnvironFunc:   environ,
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("loading environment variables: %w", err)
	}

	if cmd != nil {
		if err := k.Load(confmap.Provider(flagValues(cmd), "."), nil); err != nil {
			return nil, fmt.Errorf("loading CLI flags: %w", err)
		}
	}

	cfg := &app.Config{}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.ApplyDefaults(); err != nil {
		return nil, fmt.Errorf("applying defaults: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// envKey maps MISTGO_API__BASE_URL to api.base_url. MISTGO_PASSWORD and
// MISTGO_CONFIG belong to flags and are dropped.
func envKey(key, value string) (string, any) {
	name := strings.TrimPrefix(key, envPrefix)
	if commandOnlyFlags[strings.ToLower(name)] {
		return "", nil
	}
	return strings.ToLower(strings.ReplaceAll(name, "__", ".")), value
}

// flagValues collects explicitly set flags, including those of parent
// commands, under their configuration keys: --session--dir becomes
// session.dir and --log-level becomes log_level.
func flagValues(cmd *cli.Command) map[string]any {
	values := make(map[string]any)
	for _, name := range cmd.FlagNames() {
		if commandOnlyFlags[name] || !cmd.IsSet(name) {
			continue
		}
		value := cmd.Value(name)
		if value == nil {
			continue
		}
		key := strings.ReplaceAll(name, "--", ".")
		values[strings.ReplaceAll(key, "-", "_")] = value
	}
	return values
}
