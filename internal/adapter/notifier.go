package adapter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// renameGrace is how long a rename waits for its matching create before it
// is reported as a plain removal. fsnotify reports a move as a Rename on the
// old path followed by a Create on the new one.
const renameGrace = 500 * time.Millisecond

// Notifier watches a project tree with fsnotify and translates raw
// file-system operations into the four notification kinds the orchestrator
// understands: bulk change, file removed, files moved and folder removed.
type Notifier struct {
	root    m.Path
	fs      ProjectFS
	watcher *fsnotify.Watcher
	events  chan m.Event
	ignore  []string

	now func() time.Time

	// dirs tracks watched directories so removals can be classified after
	// the entry is already gone from disk.
	dirs    map[string]struct{}
	pending *pendingRename
}

type pendingRename struct {
	path  m.Path
	isDir bool
	at    time.Time
}

// NewNotifier constructs a Notifier watching the tree rooted at root.
// Paths containing any of the ignore fragments never produce events; the
// generated-code directory belongs there so regeneration cannot feed back
// into the watcher.
func NewNotifier(root m.Path, fs ProjectFS, ignore []string) (*Notifier, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	n := &Notifier{
		root:    root,
		fs:      fs,
		watcher: watcher,
		events:  make(chan m.Event, 64),
		ignore:  ignore,
		now:     time.Now,
		dirs:    map[string]struct{}{},
	}

	if err := n.watchRecursive(root); err != nil {
		_ = watcher.Close()
		return nil, err
	}

	return n, nil
}

// Events returns the channel of translated notifications.
func (n *Notifier) Events() <-chan m.Event {
	return n.events
}

// Close releases the underlying watcher.
func (n *Notifier) Close() error {
	return n.watcher.Close()
}

// Run pumps fsnotify operations into translated events until the context is
// cancelled. It is intended to run on its own goroutine, with the consumer
// draining Events.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		var graceC <-chan time.Time
		if n.pending != nil {
			graceC = time.After(renameGrace - n.now().Sub(n.pending.at))
		}

		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-graceC:
			n.emit(ctx, n.flushPending()...)

		case err, ok := <-n.watcher.Errors:
			if !ok {
				return nil
			}

			slog.Error("watcher error", "error", err)

		case ev, ok := <-n.watcher.Events:
			if !ok {
				return nil
			}

			n.emit(ctx, n.translate(ev)...)
		}
	}
}

func (n *Notifier) emit(ctx context.Context, events ...m.Event) {
	for _, ev := range events {
		select {
		case n.events <- ev:
		case <-ctx.Done():
			return
		}
	}
}

// translate maps one fsnotify operation onto zero or more notifications,
// resolving rename/create pairs into moves.
func (n *Notifier) translate(ev fsnotify.Event) []m.Event {
	if n.ignored(ev.Name) {
		return nil
	}

	var out []m.Event

	switch {
	case ev.Op.Has(fsnotify.Rename):
		out = append(out, n.flushPending()...)
		n.pending = &pendingRename{
			path:  m.Path(ev.Name),
			isDir: n.watchedDir(ev.Name),
			at:    n.now(),
		}

	case ev.Op.Has(fsnotify.Create):
		if n.pending != nil && n.now().Sub(n.pending.at) <= renameGrace {
			moved := m.Event{Kind: m.FilesMoved, OldPath: n.pending.path, Path: m.Path(ev.Name)}
			if n.pending.isDir {
				delete(n.dirs, string(n.pending.path))
			}

			n.pending = nil

			if n.fs.IsDir(m.Path(ev.Name)) {
				if err := n.watchRecursive(m.Path(ev.Name)); err != nil {
					slog.Error("failed to watch moved directory", "path", ev.Name, "error", err)
				}
			}

			return append(out, moved)
		}

		out = append(out, n.flushPending()...)

		if n.fs.IsDir(m.Path(ev.Name)) {
			if err := n.watchRecursive(m.Path(ev.Name)); err != nil {
				slog.Error("failed to watch new directory", "path", ev.Name, "error", err)
			}

			return out
		}

		out = append(out, m.Event{Kind: m.FilesystemChanged, Path: m.Path(ev.Name)})

	case ev.Op.Has(fsnotify.Write):
		out = append(out, n.flushPending()...)
		out = append(out, m.Event{Kind: m.FilesystemChanged, Path: m.Path(ev.Name)})

	case ev.Op.Has(fsnotify.Remove):
		out = append(out, n.flushPending()...)

		if n.watchedDir(ev.Name) {
			delete(n.dirs, string(ev.Name))
			out = append(out, m.Event{Kind: m.FolderRemoved, Path: m.Path(ev.Name)})
		} else {
			out = append(out, m.Event{Kind: m.FileRemoved, Path: m.Path(ev.Name)})
		}
	}

	return out
}

// flushPending reports a rename whose create half never arrived as a
// removal of the old path.
func (n *Notifier) flushPending() []m.Event {
	if n.pending == nil {
		return nil
	}

	pending := n.pending
	n.pending = nil

	if pending.isDir {
		delete(n.dirs, string(pending.path))
		return []m.Event{{Kind: m.FolderRemoved, Path: pending.path}}
	}

	return []m.Event{{Kind: m.FileRemoved, Path: pending.path}}
}

func (n *Notifier) watchedDir(path string) bool {
	_, ok := n.dirs[path]
	return ok
}

func (n *Notifier) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}

	for _, fragment := range n.ignore {
		if fragment != "" && strings.Contains(path, fragment) {
			return true
		}
	}

	return false
}

// watchRecursive registers path and every directory below it, skipping
// hidden and ignored entries.
func (n *Notifier) watchRecursive(root m.Path) error {
	return n.fs.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if !info.IsDir() {
			return nil
		}

		if n.ignored(path) && path != string(root) {
			return filepath.SkipDir
		}

		if err := n.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}

		n.dirs[path] = struct{}{}

		return nil
	})
}
