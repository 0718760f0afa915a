// toast - desktop notifications from the command line
// Source: https://github.com/ariel-frischer/toastkit

// Package cli provides the Cobra-based `toast` command: building toast
// content, showing it through the platform notification service, waiting
// for user interaction, and inspecting history and configuration.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/cli/compose"
	"github.com/ariel-frischer/toastkit/internal/cli/shared"
	"github.com/ariel-frischer/toastkit/internal/cli/util"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "toast",
		Short: "Desktop toast notifications",
		Long: `toast shows desktop notifications and reports what happened to them.

A toast is submitted to the platform notification service (WinRT on
Windows, the freedesktop D-Bus service on Linux and BSD). The user may click
it or one of its buttons, dismiss it, or the platform may refuse to show it;
toast prints each of these events while it waits.

Source: https://github.com/ariel-frischer/toastkit`,
		Example: `  # Show a toast and wait for a click
  toast show --title "Tests passed" --line "212 passed in 41s" -a "Open report=report"

  # Preview the markup
  toast render --title "Hello" --hero ./banner.png

  # Check a template
  toast validate reminder.yaml

  # What happened to recent toasts
  toast history -n 5 --events`,
		SilenceErrors: true,
	}

	rootCmd.AddGroup(&cobra.Group{ID: shared.GroupNotifications, Title: "Notifications:"})
	rootCmd.AddGroup(&cobra.Group{ID: shared.GroupConfiguration, Title: "Configuration:"})
	rootCmd.SetHelpCommandGroupID(shared.GroupConfiguration)
	rootCmd.SetCompletionCommandGroupID(shared.GroupConfiguration)
	rootCmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return shared.InvalidArgs("%v", err)
	})

	// Global flags
	rootCmd.PersistentFlags().StringP("config", "c", "", "Path to an additional JSON config file")
	rootCmd.PersistentFlags().StringP("backend", "b", "", "Backend: auto, sim, freedesktop or winrt")
	rootCmd.PersistentFlags().String("app-id", "", "Notifier identity (AppUserModelID on Windows)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error or off")
	rootCmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON lines")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
			color.NoColor = true
		}
	}

	compose.Register(rootCmd)
	util.Register(rootCmd)
	return rootCmd
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := NewRootCmd().ExecuteContext(ctx)
	if err != nil && !shared.Silent(err) {
		fmt.Fprintf(os.Stderr, "%s %v\n", color.RedString("Error:"), err)
	}
	return shared.ExitCode(err)
}
