package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"gpgen.dev/pkg/gpgen/internal/adapter"
	"gpgen.dev/pkg/gpgen/internal/controller"
)

var watchTUIFlag bool

// watchCmd represents the watch command.
var watchCmd = newWatchCmd()

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Watch the project and regenerate constants on change",
		Long: `Watch the project directory for scene changes and keep the generated
constant files in sync: scene saves trigger a debounced generation pass,
removals delete the matching generated files, and moves rename them.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := projectRoot(args)

			if !fsAdapter.IsDir(root) {
				return fmt.Errorf("project root %s is not a directory", root)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var ui controller.UI
			if watchTUIFlag {
				ui = controller.NewWatchTUI(cmd.OutOrStdout(), stop)
			} else {
				ui = controller.NewSimpleUI(cmd)
			}

			orchestrator, err := newOrchestrator(root, ui)
			if err != nil {
				return err
			}

			ignore := []string{
				viper.GetString(outputFlagName),
				viper.GetString(stateFilenameKey),
			}

			notifier, err := adapter.NewNotifier(root, fsAdapter, ignore)
			if err != nil {
				return err
			}

			defer func() { _ = notifier.Close() }()

			if err := ui.Start(ctx); err != nil {
				return err
			}

			defer ui.Close(context.Background())

			group, groupCtx := errgroup.WithContext(ctx)

			group.Go(func() error {
				return notifier.Run(groupCtx)
			})

			group.Go(func() error {
				for {
					select {
					case <-groupCtx.Done():
						return groupCtx.Err()

					case event := <-notifier.Events():
						// A failed pass is logged and abandoned; the next
						// qualifying event retries naturally.
						if err := orchestrator.HandleEvent(groupCtx, event); err != nil {
							slog.Debug("event handling failed", "kind", event.Kind, "path", event.Path, "error", err)
						}
					}
				}
			})

			if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			return persistState(root, orchestrator)
		},
	}

	cmd.Flags().BoolVar(&watchTUIFlag, tuiFlagName, false, "render a live terminal view instead of plain output")

	return cmd
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
