// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	// EnvPrefix is the prefix for environment variable overrides, e.g.
	// CORRAL_CONTAINER_ENGINE=podman.
	EnvPrefix = "CORRAL"
	// FileName is the config file name without extension.
	FileName = "config"
	// FileType is the config file format.
	FileType = "toml"

	defaultMaxAttempts = 2
)

// ErrInvalidConfig indicates a config value outside its allowed set.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the decoded global configuration.
	Config struct {
		// ContainerEngine selects docker or podman; empty means auto-detect.
		ContainerEngine string `mapstructure:"container_engine" toml:"container_engine"`

		UI       UIConfig       `mapstructure:"ui" toml:"ui"`
		Policy   PolicyConfig   `mapstructure:"policy" toml:"policy"`
		Liveness LivenessConfig `mapstructure:"liveness" toml:"liveness"`
	}

	// UIConfig holds presentation settings.
	UIConfig struct {
		// Verbose enables debug logging and full error chains.
		Verbose bool `mapstructure:"verbose" toml:"verbose"`
	}

	// PolicyConfig extends the built-in routing tables. Entries are exact
	// program names, never substrings.
	PolicyConfig struct {
		ExtraDeny  []string `mapstructure:"extra_deny" toml:"extra_deny"`
		ExtraAllow []string `mapstructure:"extra_allow" toml:"extra_allow"`
	}

	// LivenessConfig bounds container recovery.
	LivenessConfig struct {
		MaxAttempts int `mapstructure:"max_attempts" toml:"max_attempts"`
	}

	// LoadOptions controls where configuration is read from.
	LoadOptions struct {
		// Path points at an explicit config file; empty means the default
		// location under Dir().
		Path string
	}
)

// Dir returns the per-user config directory for Corral. os.UserConfigDir
// already resolves the platform convention (XDG on Linux, Application
// Support on macOS, AppData on Windows).
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	return filepath.Join(base, "corral"), nil
}

// DefaultPath returns the default config file location.
func DefaultPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, FileName+"."+FileType), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("container_engine", "")
	v.SetDefault("ui.verbose", false)
	v.SetDefault("policy.extra_deny", []string{})
	v.SetDefault("policy.extra_allow", []string{})
	v.SetDefault("liveness.max_attempts", defaultMaxAttempts)
}

// Load reads the global configuration. A missing config file is not an
// error; defaults and environment overrides still apply.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType(FileType)
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.Path != "" {
		v.SetConfigFile(opts.Path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config at %s: %w", opts.Path, err)
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks value constraints that the TOML decoder cannot express.
func (c *Config) Validate() error {
	switch c.ContainerEngine {
	case "", "docker", "podman":
	default:
		return fmt.Errorf("%w: container_engine must be docker or podman, got %q",
			ErrInvalidConfig, c.ContainerEngine)
	}
	if c.Liveness.MaxAttempts < 1 {
		return fmt.Errorf("%w: liveness.max_attempts must be at least 1, got %d",
			ErrInvalidConfig, c.Liveness.MaxAttempts)
	}
	return nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Liveness: LivenessConfig{MaxAttempts: defaultMaxAttempts},
	}
}

// WriteDefault writes the built-in configuration as TOML to path, creating
// parent directories as needed. It refuses to overwrite an existing file.
func WriteDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config already exists at %s", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	data, err := toml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
