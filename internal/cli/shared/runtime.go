package shared

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/config"
	"github.com/ariel-frischer/toastkit/internal/logging"
)

// Runtime is the effective configuration and logger of one command run.
type Runtime struct {
	Config *config.Configuration
	Log    zerolog.Logger
	closer io.Closer
}

// LoadRuntime loads configuration, applies persistent flag overrides and
// builds the logger. Callers must Close the runtime.
func LoadRuntime(cmd *cobra.Command) (*Runtime, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	overrides := map[string]*string{
		"backend":   &cfg.Backend,
		"app-id":    &cfg.AppID,
		"log-level": &cfg.LogLevel,
	}
	changed := false
	for name, dst := range overrides {
		if f := cmd.Flags().Lookup(name); f != nil && f.Changed {
			*dst = f.Value.String()
			changed = true
		}
	}
	if changed {
		if err := config.ValidateConfigValues(cfg, "flags"); err != nil {
			var verr *config.ValidationError
			if errors.As(err, &verr) {
				return nil, InvalidArgs("--%s: %s", flagName(verr.Field), verr.Message)
			}
			return nil, err
		}
	}

	jsonLogs, _ := cmd.Flags().GetBool("log-json")
	noColor, _ := cmd.Flags().GetBool("no-color")
	log, closer, err := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		JSON:    jsonLogs,
		NoColor: noColor,
		File:    cfg.LogFile,
	}, cmd.ErrOrStderr())
	if err != nil {
		return nil, fmt.Errorf("setting up logging: %w", err)
	}

	log.Debug().
		Str("backend", cfg.Backend).
		Str("app_id", cfg.AppID).
		Str("state_dir", cfg.StateDir).
		Msg("configuration loaded")

	return &Runtime{Config: cfg, Log: log, closer: closer}, nil
}

// Close releases the log file, if any.
func (r *Runtime) Close() error {
	if r == nil || r.closer == nil {
		return nil
	}
	return r.closer.Close()
}

func flagName(key string) string {
	switch key {
	case "app_id":
		return "app-id"
	case "log_level":
		return "log-level"
	default:
		return key
	}
}
