package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"gpgen.dev/pkg/gpgen/internal/controller"
)

// genCmd represents the gen command.
var genCmd = newGenCmd()

func newGenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gen [path]",
		Short: "Regenerate constants for every scene in the project",
		Long: `Walk the project directory, parse every scene file and regenerate the
<ClassName>Path constant files and the shared Res resource file. Scenes whose
root has no script attached are skipped.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := projectRoot(args)

			if !fsAdapter.IsDir(root) {
				return fmt.Errorf("project root %s is not a directory", root)
			}

			ui := controller.NewSimpleUI(cmd)

			orchestrator, err := newOrchestrator(root, ui)
			if err != nil {
				return err
			}

			if err := orchestrator.FullPass(cmd.Context()); err != nil {
				return err
			}

			return persistState(root, orchestrator)
		},
	}
}

func init() {
	rootCmd.AddCommand(genCmd)
}
