package compose

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRenderCmd() *cobra.Command {
	var cf contentFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Print the canonical toast XML without showing it",
		Example: `  toast render --title "Disk almost full" --line "3% left on /home" --hero ./disk.png
  toast render --file reminder.yaml > reminder.xml`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := cf.content(cmd)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), content.XML())
			return nil
		},
	}
	cf.register(cmd)
	return cmd
}
