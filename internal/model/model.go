// Package model holds the shared types passed between the gpgen layers.
package model

// Path represents a file system path.
type Path string

// Node is a single element of a parsed scene tree. Children keep the order
// in which they appear in the scene file.
type Node struct {
	Name     string
	Children []*Node
}

// AddChild appends a child node and returns it for chaining in tests.
func (n *Node) AddChild(child *Node) *Node {
	n.Children = append(n.Children, child)
	return child
}

// Scene is the parsed form of a scene file: the root node of its tree, the
// file that backs it, and the script attached to the root (empty when the
// root carries no script).
type Scene struct {
	File   Path
	Root   *Node
	Script string
}

// PathEntry pairs a slash-separated node path with the constant field name
// derived from it. Entries are recomputed on every generation pass and are
// never persisted.
type PathEntry struct {
	NodePath string
	Field    string
}

// EventKind enumerates the file-system notifications the orchestrator reacts to.
type EventKind int

const (
	// FilesystemChanged signals a bulk change touching the given scene file.
	FilesystemChanged EventKind = iota
	// FileRemoved signals that a single file was deleted.
	FileRemoved
	// FilesMoved signals that a file was renamed or moved.
	FilesMoved
	// FolderRemoved signals that a directory and its contents were deleted.
	FolderRemoved
)

// Event is one file-system notification. OldPath is only set for FilesMoved.
type Event struct {
	Kind    EventKind
	Path    Path
	OldPath Path
}

// Snapshot is the serializable tracker state: the script-to-class mapping
// and the set of resource paths mirrored into the resource constants file.
// Persisting it across runs is an optimization, never a correctness
// requirement; the state is rebuilt naturally from subsequent events.
type Snapshot struct {
	Version   int               `yaml:"version"`
	Scripts   map[string]string `yaml:"scripts"`
	Resources []string          `yaml:"resources"`
}

// EmptySnapshot returns a snapshot with initialized containers.
func EmptySnapshot() Snapshot {
	return Snapshot{
		Version: 1,
		Scripts: map[string]string{},
	}
}

// PassReport describes the outcome of a single generation pass so UIs can
// render it without reaching into the domain layer.
type PassReport struct {
	Scene      Path
	ClassName  string
	Constants  int
	Collisions []string
	Resource   string
	Skipped    bool
	Err        error
}
