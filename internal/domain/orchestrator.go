package domain

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gpgen.dev/pkg/gpgen/internal/adapter"
	"gpgen.dev/pkg/gpgen/internal/controller"
	m "gpgen.dev/pkg/gpgen/internal/model"
)

// OrchestratorConfig carries the project-level settings a generation pass
// depends on.
type OrchestratorConfig struct {
	// ProjectRoot is the directory all resource paths are relative to.
	ProjectRoot m.Path
	// Scheme is the resource scheme prefix, e.g. "res://".
	Scheme string
	// SceneExt is the scene file extension without the dot, e.g. "tscn".
	SceneExt string
	// Debounce is the suppression window for repeated changes to one root.
	Debounce time.Duration
}

// Orchestrator reacts to file-system notifications and decides what to
// regenerate. Bulk changes flow through the debouncer into a generation pass
// for the changed scene; removals and moves are delegated to the tracker.
// Event handling is strictly sequential: each notification is processed to
// completion before the next one.
type Orchestrator struct {
	fs       adapter.ProjectFS
	scenes   adapter.SceneSource
	writer   *Writer
	tracker  *Tracker
	debounce *Debouncer
	ui       controller.UI
	cfg      OrchestratorConfig
}

// NewOrchestrator constructs an Orchestrator over the given collaborators.
func NewOrchestrator(
	fs adapter.ProjectFS,
	scenes adapter.SceneSource,
	writer *Writer,
	tracker *Tracker,
	ui controller.UI,
	cfg OrchestratorConfig,
) *Orchestrator {
	return &Orchestrator{
		fs:       fs,
		scenes:   scenes,
		writer:   writer,
		tracker:  tracker,
		debounce: NewDebouncer(cfg.Debounce),
		ui:       ui,
		cfg:      cfg,
	}
}

// Tracker exposes the tracker for snapshot persistence.
func (o *Orchestrator) Tracker() *Tracker {
	return o.tracker
}

// HandleEvent dispatches one notification to the matching handler.
func (o *Orchestrator) HandleEvent(ctx context.Context, event m.Event) error {
	switch event.Kind {
	case m.FilesystemChanged:
		return o.HandleFilesystemChanged(ctx, event.Path)
	case m.FileRemoved:
		return o.HandleFileRemoved(ctx, event.Path)
	case m.FilesMoved:
		return o.HandleFilesMoved(ctx, event.OldPath, event.Path)
	case m.FolderRemoved:
		return o.HandleFolderRemoved(ctx, event.Path)
	}

	return nil
}

// HandleFilesystemChanged runs a debounced generation pass for the changed
// scene file. Changes to anything that is not a scene file resolve to no
// edited scene and are a no-op.
func (o *Orchestrator) HandleFilesystemChanged(ctx context.Context, path m.Path) error {
	if !o.isSceneFile(path) {
		return nil
	}

	scene, err := o.scenes.LoadScene(path)
	if err != nil {
		slog.Warn("skipping unreadable scene", "scene", path, "error", err)
		return err
	}

	if !o.debounce.ShouldProcess(scene.Root.Name) {
		slog.Debug("debounced repeated change", "root", scene.Root.Name)
		return nil
	}

	return o.generate(ctx, scene)
}

// HandleFileRemoved drops tracking for a deleted file.
func (o *Orchestrator) HandleFileRemoved(ctx context.Context, path m.Path) error {
	o.ui.DisplayEvent(ctx, m.Event{Kind: m.FileRemoved, Path: path})

	if err := o.tracker.HandleFileRemoved(o.resourcePath(path)); err != nil {
		slog.Error("failed to reconcile removal", "path", path, "error", err)
		return err
	}

	return nil
}

// HandleFilesMoved rekeys tracking after a rename or move.
func (o *Orchestrator) HandleFilesMoved(ctx context.Context, oldPath, newPath m.Path) error {
	o.ui.DisplayEvent(ctx, m.Event{Kind: m.FilesMoved, OldPath: oldPath, Path: newPath})

	if err := o.tracker.HandleFilesMoved(o.resourcePath(oldPath), o.resourcePath(newPath)); err != nil {
		slog.Error("failed to reconcile move", "oldPath", oldPath, "newPath", newPath, "error", err)
		return err
	}

	return nil
}

// HandleFolderRemoved drops tracking for everything under a deleted folder.
func (o *Orchestrator) HandleFolderRemoved(ctx context.Context, folder m.Path) error {
	o.ui.DisplayEvent(ctx, m.Event{Kind: m.FolderRemoved, Path: folder})

	if err := o.tracker.HandleFolderRemoved(o.resourcePath(folder)); err != nil {
		slog.Error("failed to reconcile folder removal", "folder", folder, "error", err)
		return err
	}

	return nil
}

// FullPass regenerates constants for every scene file under the project
// root, bypassing the debouncer. Failing scenes are reported and skipped so
// one broken file cannot block the rest of the project.
func (o *Orchestrator) FullPass(ctx context.Context) error {
	var scenePaths []m.Path

	err := o.fs.Walk(o.cfg.ProjectRoot, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			base := filepath.Base(path)
			if strings.HasPrefix(base, ".") && path != string(o.cfg.ProjectRoot) {
				return filepath.SkipDir
			}

			return nil
		}

		if o.isSceneFile(m.Path(path)) {
			scenePaths = append(scenePaths, m.Path(path))
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to walk project: %w", err)
	}

	for _, scenePath := range scenePaths {
		scene, err := o.scenes.LoadScene(scenePath)
		if err != nil {
			slog.Warn("skipping unreadable scene", "scene", scenePath, "error", err)
			o.ui.DisplayPass(ctx, m.PassReport{Scene: scenePath, Err: err})

			continue
		}

		if err := o.generate(ctx, scene); err != nil {
			slog.Warn("generation failed", "scene", scenePath, "error", err)
		}
	}

	scripts, resources := o.tracker.Counts()
	o.ui.DisplaySummary(ctx, scripts, resources)

	return nil
}

// generate runs one end-to-end pass for a loaded scene: resolve the root
// script, derive the class name, flatten the tree, write the class file and
// reconcile the tracker. Failures abandon the pass without partial tracker
// updates.
func (o *Orchestrator) generate(ctx context.Context, scene *m.Scene) error {
	if scene.Script == "" {
		slog.Debug("scene root has no script attached", "scene", scene.File)
		return nil
	}

	if !o.fs.Exists(o.filesystemPath(scene.Script)) {
		err := fmt.Errorf("%w: %s", m.ErrMissingSource, scene.Script)
		slog.Warn("script missing on disk", "script", scene.Script)
		o.ui.DisplayPass(ctx, m.PassReport{Scene: scene.File, Err: err})

		return err
	}

	className, err := DeriveClassName(scene.Script)
	if err != nil {
		slog.Warn("cannot derive class name", "script", scene.Script, "error", err)
		return err
	}

	entries := Flatten(scene.Root)

	collisions := Collisions(entries)
	if len(collisions) > 0 {
		slog.Warn("sibling nodes produce colliding constants, keeping first occurrences",
			"scene", scene.File, "fields", collisions)
	}

	written, err := o.writer.WriteClassFile(className, entries)
	if err != nil {
		slog.Error("failed to write class file", "class", className, "error", err)
		o.ui.DisplayPass(ctx, m.PassReport{Scene: scene.File, ClassName: className, Err: err})

		return err
	}

	o.tracker.RecordScript(scene.Script, className)

	report := m.PassReport{
		Scene:      scene.File,
		ClassName:  className,
		Constants:  written,
		Collisions: collisions,
	}

	resource := o.resourcePath(scene.File)
	if !o.tracker.IsResourceTracked(resource) {
		if err := o.tracker.AddResource(resource); err != nil {
			slog.Error("failed to update resource constants", "resource", resource, "error", err)
			report.Err = err
			o.ui.DisplayPass(ctx, report)

			return err
		}

		report.Resource = resource
	}

	o.ui.DisplayPass(ctx, report)

	return nil
}

func (o *Orchestrator) isSceneFile(path m.Path) bool {
	return strings.TrimPrefix(filepath.Ext(string(path)), ".") == o.cfg.SceneExt
}

// resourcePath converts a file-system path into its scheme-prefixed form
// relative to the project root.
func (o *Orchestrator) resourcePath(path m.Path) string {
	rel, err := o.fs.RelPath(o.cfg.ProjectRoot, path)
	if err != nil || strings.HasPrefix(string(rel), "..") {
		return o.cfg.Scheme + filepath.ToSlash(string(path))
	}

	return o.cfg.Scheme + filepath.ToSlash(string(rel))
}

// filesystemPath converts a scheme-prefixed resource path back into a path
// under the project root.
func (o *Orchestrator) filesystemPath(resource string) m.Path {
	rel := strings.TrimPrefix(resource, o.cfg.Scheme)
	return o.fs.JoinPath(string(o.cfg.ProjectRoot), filepath.FromSlash(rel))
}
