// Package compose provides the commands that build and show toasts.
package compose

import (
	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/cli/shared"
)

// Register adds show, render and validate to the root command.
func Register(rootCmd *cobra.Command) {
	for _, cmd := range []*cobra.Command{newShowCmd(), newRenderCmd(), newValidateCmd()} {
		cmd.GroupID = shared.GroupNotifications
		rootCmd.AddCommand(cmd)
	}
}
