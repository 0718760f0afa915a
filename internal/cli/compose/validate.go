package compose

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ariel-frischer/toastkit/internal/cli/shared"
	"github.com/ariel-frischer/toastkit/internal/toast"
)

func newValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE...",
		Short: "Check toast XML documents and YAML templates",
		Long: `Check that each file is a well-formed toast: allowed elements only,
known attribute values, escaped text. Exit code 1 when any file is malformed.`,
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			colors := shared.NewColors()
			out := cmd.OutOrStdout()
			bad := 0
			for _, path := range args {
				err := validateFile(path)
				if err == nil {
					fmt.Fprintf(out, "%s %s\n", colors.Green("ok"), path)
					continue
				}
				bad++
				fmt.Fprintf(out, "%s %s: %v\n", colors.Red("FAIL"), path, err)
			}
			if bad > 0 {
				return shared.NewExitError(shared.ExitValidationFailed)
			}
			return nil
		},
	}
}

func validateFile(path string) error {
	_, err := toast.LoadFile(path)
	return err
}
