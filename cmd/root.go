// Package cmd provides the root command and CLI setup for gpgen.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gpgen.dev/pkg/gpgen/internal/adapter"
	"gpgen.dev/pkg/gpgen/internal/controller"
	"gpgen.dev/pkg/gpgen/internal/domain"
	m "gpgen.dev/pkg/gpgen/internal/model"
)

var fsAdapter adapter.ProjectFS
var sceneSource adapter.SceneSource
var stateStore adapter.StateStore

// outputDirFlag is a root-level flag shared by commands that write generated code.
var outputDirFlag string

// verboseFlag raises the log level to debug when set.
var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	// Initialize shared dependencies.
	fsAdapter = adapter.NewLocalProjectFS()
	sceneSource = adapter.NewTscnSceneSource(fsAdapter)
	stateStore = adapter.NewYAMLStateStore()
}

const rootLongDescription = `gpgen generates source constants mirroring the node hierarchies of your
scene files and the paths of tracked resources, so game code can reference
nodes and resources through compile-time-checked constants instead of
fragile string literals.

Point it at a project directory containing text scene files; every scene
whose root has a script attached gets a <ClassName>Path constants file, and
scene paths are collected into a shared Res constants file.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "gpgen",
		Short: "Scene path constants generator",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(logVerboseKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&outputDirFlag, outputFlagName, "o",
			viper.GetString(outputFlagName),
			"directory for generated constant files, relative to the project root",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputFlagName)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// projectRoot resolves the optional positional path argument, defaulting to
// the current directory.
func projectRoot(args []string) m.Path {
	if len(args) > 0 && args[0] != "" {
		return m.Path(args[0])
	}

	return m.Path(".")
}

// outputDir resolves the generated-code directory against the project root
// unless it is already absolute.
func outputDir(root m.Path) m.Path {
	dir := viper.GetString(outputFlagName)
	if filepath.IsAbs(dir) {
		return m.Path(dir)
	}

	return m.Path(filepath.Join(string(root), dir))
}

// statePath is where the tracker snapshot lives for a given project.
func statePath(root m.Path) m.Path {
	return m.Path(filepath.Join(string(root), viper.GetString(stateFilenameKey)))
}

// newOrchestrator wires a fully configured orchestrator for the project at
// root, restoring any persisted tracker state.
func newOrchestrator(root m.Path, ui controller.UI) (*domain.Orchestrator, error) {
	writer := domain.NewWriter(fsAdapter, domain.WriterConfig{
		Dir:       outputDir(root),
		Extension: viper.GetString(extensionKey),
		Namespace: viper.GetString(namespaceKey),
		Scheme:    viper.GetString(sceneSchemeKey),
	})

	tracker := domain.NewTracker(writer)

	snapshot, err := stateStore.Load(statePath(root))
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker state: %w", err)
	}

	tracker.Restore(snapshot)

	orchestrator := domain.NewOrchestrator(fsAdapter, sceneSource, writer, tracker, ui, domain.OrchestratorConfig{
		ProjectRoot: root,
		Scheme:      viper.GetString(sceneSchemeKey),
		SceneExt:    viper.GetString(sceneExtKey),
		Debounce:    time.Duration(viper.GetInt(debounceKey)) * time.Millisecond,
	})

	return orchestrator, nil
}

// persistState saves the tracker snapshot for the next run.
func persistState(root m.Path, orchestrator *domain.Orchestrator) error {
	if err := stateStore.Save(statePath(root), orchestrator.Tracker().Snapshot()); err != nil {
		return fmt.Errorf("failed to save tracker state: %w", err)
	}

	return nil
}
