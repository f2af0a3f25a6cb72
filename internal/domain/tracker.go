package domain

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// Tracker reconciles generated artifacts with their sources. It maps each
// tracked script path to its generated class name and keeps the set of
// resource paths mirrored into the resource constants file.
//
// Invariant: a script key is present exactly when its generated class file
// exists on disk. Keys are only recorded after a successful write, and the
// file is deleted before the key is dropped; when deletion fails the key is
// kept so the next event can retry.
//
// All paths handled here are in resource form (scheme-prefixed), matching
// how scripts are referenced inside scene files.
type Tracker struct {
	writer    *Writer
	scripts   map[string]string
	resources map[string]struct{}
}

// NewTracker constructs an empty Tracker driving the given writer.
func NewTracker(writer *Writer) *Tracker {
	return &Tracker{
		writer:    writer,
		scripts:   map[string]string{},
		resources: map[string]struct{}{},
	}
}

// RecordScript stores the script-to-class mapping after a successful class
// file write. Reprocessing the same path updates the stored class name in
// place.
func (t *Tracker) RecordScript(scriptPath, className string) {
	t.scripts[scriptPath] = className
}

// ClassFor returns the class name generated for scriptPath, if tracked.
func (t *Tracker) ClassFor(scriptPath string) (string, bool) {
	className, ok := t.scripts[scriptPath]
	return className, ok
}

// IsResourceTracked reports whether path is already mirrored into the
// resource constants file.
func (t *Tracker) IsResourceTracked(path string) bool {
	_, ok := t.resources[path]
	return ok
}

// AddResource inserts path into the tracked set and regenerates the resource
// constants file. On write failure the set is rolled back so the tracked
// set never claims more than the file holds.
func (t *Tracker) AddResource(path string) error {
	if _, ok := t.resources[path]; ok {
		return nil
	}

	t.resources[path] = struct{}{}

	if err := t.writer.WriteResourceFile(t.resourceList()); err != nil {
		delete(t.resources, path)
		return err
	}

	return nil
}

// HandleFileRemoved drops tracking for a deleted file: a tracked script
// loses its generated class file, a tracked resource is removed from the
// regenerated resource constants file.
func (t *Tracker) HandleFileRemoved(path string) error {
	if className, ok := t.scripts[path]; ok {
		if err := t.writer.RemoveClassFile(className); err != nil {
			return fmt.Errorf("failed to remove class file for %s: %w", path, err)
		}

		delete(t.scripts, path)
		slog.Debug("untracked script", "script", path, "class", className)
	}

	return t.removeResources(func(resource string) bool {
		return resource == path
	})
}

// HandleFilesMoved rekeys tracking after a rename. For scripts the class
// name is recomputed from the new path and both the map entry and the
// generated file identity are reconciled; for resources the old path is
// replaced by the new one and the resource file regenerated, since resource
// constants are path literals that must stay correct.
func (t *Tracker) HandleFilesMoved(oldPath, newPath string) error {
	if oldClass, ok := t.scripts[oldPath]; ok {
		newClass, err := DeriveClassName(newPath)
		if err != nil {
			return err
		}

		if newClass != oldClass {
			if err := t.writer.RenameClassFile(oldClass, newClass); err != nil {
				return fmt.Errorf("failed to rename class file %s to %s: %w", oldClass, newClass, err)
			}
		}

		delete(t.scripts, oldPath)
		t.scripts[newPath] = newClass
	}

	if _, ok := t.resources[oldPath]; ok {
		delete(t.resources, oldPath)
		t.resources[newPath] = struct{}{}

		if err := t.writer.WriteResourceFile(t.resourceList()); err != nil {
			return err
		}
	}

	return nil
}

// HandleFolderRemoved drops tracking for everything under folder.
func (t *Tracker) HandleFolderRemoved(folder string) error {
	prefix := strings.TrimSuffix(folder, "/") + "/"

	for script, className := range t.scripts {
		if !strings.HasPrefix(script, prefix) {
			continue
		}

		if err := t.writer.RemoveClassFile(className); err != nil {
			return fmt.Errorf("failed to remove class file for %s: %w", script, err)
		}

		delete(t.scripts, script)
	}

	return t.removeResources(func(resource string) bool {
		return strings.HasPrefix(resource, prefix)
	})
}

// removeResources drops every tracked resource matching the predicate and
// regenerates the resource file when anything changed.
func (t *Tracker) removeResources(match func(string) bool) error {
	removed := false

	for resource := range t.resources {
		if match(resource) {
			delete(t.resources, resource)
			removed = true
		}
	}

	if !removed {
		return nil
	}

	return t.writer.WriteResourceFile(t.resourceList())
}

func (t *Tracker) resourceList() []string {
	list := make([]string, 0, len(t.resources))
	for resource := range t.resources {
		list = append(list, resource)
	}

	sort.Strings(list)

	return list
}

// Counts returns the number of tracked scripts and resources.
func (t *Tracker) Counts() (int, int) {
	return len(t.scripts), len(t.resources)
}

// Snapshot exports the tracker state for persistence.
func (t *Tracker) Snapshot() m.Snapshot {
	snapshot := m.EmptySnapshot()

	for script, className := range t.scripts {
		snapshot.Scripts[script] = className
	}

	snapshot.Resources = t.resourceList()

	return snapshot
}

// Restore replaces the tracker state with a previously saved snapshot.
func (t *Tracker) Restore(snapshot m.Snapshot) {
	t.scripts = map[string]string{}
	t.resources = map[string]struct{}{}

	for script, className := range snapshot.Scripts {
		t.scripts[script] = className
	}

	for _, resource := range snapshot.Resources {
		t.resources[resource] = struct{}{}
	}
}
