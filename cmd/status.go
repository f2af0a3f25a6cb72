package cmd

import (
	"github.com/spf13/cobra"

	"gpgen.dev/pkg/gpgen/internal/controller"
)

// statusCmd represents the status command.
var statusCmd = newStatusCmd()

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [path]",
		Short: "Show tracked scripts and resources",
		Long:  "Show the scripts and resources currently mirrored into generated constant files.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			snapshot, err := stateStore.Load(statePath(projectRoot(args)))
			if err != nil {
				return err
			}

			ui := controller.NewSimpleUI(cmd)

			return ui.DisplayTracked(cmd.Context(), snapshot)
		},
	}
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
