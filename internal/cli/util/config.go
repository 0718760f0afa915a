package util

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/cli/shared"
	"github.com/ariel-frischer/toastkit/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and initialize configuration",
		Long: `Configuration is merged from defaults, ~/.toastkit/config.json, the file
given with --config and TOAST_* environment variables, in that order.`,
	}
	cmd.GroupID = shared.GroupConfiguration
	cmd.AddCommand(newConfigShowCmd(), newConfigInitCmd(), newConfigPathCmd())
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:          "show",
		Short:        "Print the effective configuration as JSON",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := shared.LoadRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()
			return writeJSON(cmd.OutOrStdout(), effective(rt.Config))
		},
	}
}

func newConfigInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:          "init",
		Short:        "Write the default configuration to ~/.toastkit/config.json",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GlobalPath()
			if err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return shared.InvalidArgs("%s already exists (use --force to overwrite)", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("checking %s: %w", path, err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return fmt.Errorf("creating config directory: %w", err)
			}
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("creating config file: %w", err)
			}
			defer f.Close()
			if err := writeJSON(f, defaultsForFile()); err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			shared.PrintBanner(out)
			fmt.Fprintf(out, "Wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing file")
	return cmd
}

func newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the global configuration file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GlobalPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// effective renders durations as strings so the output can be pasted back
// into a config file.
func effective(cfg *config.Configuration) map[string]any {
	return map[string]any{
		"app_id":       cfg.AppID,
		"backend":      cfg.Backend,
		"wait":         cfg.Wait.String(),
		"linger":       cfg.Linger.String(),
		"log_level":    cfg.LogLevel,
		"log_file":     cfg.LogFile,
		"state_dir":    cfg.StateDir,
		"max_history":  cfg.MaxHistory,
		"submit_rate":  cfg.SubmitRate,
		"submit_burst": cfg.SubmitBurst,
	}
}

func defaultsForFile() map[string]any {
	out := config.GetDefaults()
	for k, v := range out {
		if d, ok := v.(time.Duration); ok {
			out[k] = d.String()
		}
	}
	return out
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}
