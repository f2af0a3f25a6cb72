// Package domain contains the core generation logic: scene-tree flattening,
// class-name derivation, generated-file writing, debouncing and the tracker
// that keeps generated artifacts in lock-step with their sources.
package domain

import (
	"strings"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// Flatten produces one path entry per node in the subtree rooted at root, in
// pre-order: the root first, then each child's subtree in child-list order.
// A node's path is its parent's path plus "/" plus its own name; the root's
// path is "/" plus the root's name. Sibling name clashes are not collapsed
// here, they surface as field collisions (see Collisions).
func Flatten(root *m.Node) []m.PathEntry {
	if root == nil {
		return nil
	}

	var entries []m.PathEntry

	var walk func(node *m.Node, parentPath string)
	walk = func(node *m.Node, parentPath string) {
		path := parentPath + "/" + node.Name
		entries = append(entries, m.PathEntry{
			NodePath: path,
			Field:    FieldName(path),
		})

		for _, child := range node.Children {
			walk(child, path)
		}
	}

	walk(root, "")

	return entries
}

// FieldName converts a node path into the constant identifier used in the
// generated file: the leading slash is dropped and the remaining slashes
// become underscores.
func FieldName(nodePath string) string {
	return strings.ReplaceAll(strings.TrimPrefix(nodePath, "/"), "/", "_")
}

// Collisions returns the field names that appear more than once in entries,
// each reported a single time. Sibling nodes that share a name produce
// distinct node paths but identical fields, which would be invalid in the
// generated source.
func Collisions(entries []m.PathEntry) []string {
	seen := map[string]int{}
	for _, entry := range entries {
		seen[entry.Field]++
	}

	var collisions []string

	for _, entry := range entries {
		if seen[entry.Field] > 1 {
			collisions = append(collisions, entry.Field)
			seen[entry.Field] = 0
		}
	}

	return collisions
}
