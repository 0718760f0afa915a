// Package config loads the toast CLI configuration from defaults, JSON files
// and TOAST_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override, e.g. TOAST_APP_ID.
const EnvPrefix = "TOAST_"

// Configuration represents the toast CLI configuration
type Configuration struct {
	// AppID is the notifier identity toasts are submitted under
	AppID string `koanf:"app_id" json:"app_id" validate:"required"`
	// Backend selects auto, sim, freedesktop or winrt
	Backend string `koanf:"backend" json:"backend" validate:"required,oneof=auto sim freedesktop winrt"`
	// Wait is how long `toast show` stays alive to report events (0 = return after submit)
	Wait time.Duration `koanf:"wait" json:"wait" validate:"min=0s,max=24h"`
	// Linger is how long the winrt host process listens for events
	Linger      time.Duration `koanf:"linger" json:"linger" validate:"min=1s,max=24h"`
	LogLevel    string        `koanf:"log_level" json:"log_level" validate:"oneof=trace debug info warn error off"`
	LogFile     string        `koanf:"log_file" json:"log_file"`
	StateDir    string        `koanf:"state_dir" json:"state_dir" validate:"required"`
	MaxHistory  int           `koanf:"max_history" json:"max_history" validate:"min=0,max=10000"`
	SubmitRate  float64       `koanf:"submit_rate" json:"submit_rate" validate:"min=0"` // submissions per second, 0 = unlimited
	SubmitBurst int           `koanf:"submit_burst" json:"submit_burst" validate:"min=1,max=100"`
}

// GlobalPath returns ~/.toastkit/config.json.
func GlobalPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(homeDir, ".toastkit", "config.json"), nil
}

// Load loads configuration from global, local, and environment sources
// Priority: Environment variables > Local config > Global config > Defaults
func Load(localConfigPath string) (*Configuration, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("setting default %s: %w", key, err)
		}
	}

	if globalPath, err := GlobalPath(); err == nil {
		if err := loadFile(k, globalPath); err != nil {
			return nil, fmt.Errorf("failed to load global config: %w", err)
		}
	}

	if localConfigPath != "" {
		if _, err := os.Stat(localConfigPath); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
		if err := loadFile(k, localConfigPath); err != nil {
			return nil, fmt.Errorf("failed to load local config: %w", err)
		}
	}

	// Override with environment variables (highest priority)
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, sourceName(localConfigPath)); err != nil {
		return nil, err
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)
	cfg.LogFile = expandHomePath(cfg.LogFile)
	return &cfg, nil
}

func loadFile(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := ValidateJSONSyntax(path); err != nil {
		return err
	}
	return k.Load(file.Provider(path), json.Parser())
}

func sourceName(localConfigPath string) string {
	if localConfigPath != "" {
		return localConfigPath
	}
	return "config"
}

// envTransform converts environment variable names to config keys
// Example: TOAST_MAX_HISTORY -> max_history
func envTransform(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("koanf")
	})
	return v
}
