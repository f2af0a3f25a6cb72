package adapter

import (
	"fmt"
	"strings"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// SceneSource is the query surface that resolves a scene file into its node
// tree and the script attached to its root. It stands in for the editor API
// that would normally hand over the currently edited scene.
type SceneSource interface {
	LoadScene(path m.Path) (*m.Scene, error)
}

// TscnSceneSource parses Godot text scene files (.tscn). Both the Godot 3
// syntax (numeric ext_resource ids) and the Godot 4 syntax (string ids) are
// accepted.
type TscnSceneSource struct {
	fs ProjectFS
}

// NewTscnSceneSource constructs a TscnSceneSource backed by the given
// file-system adapter.
func NewTscnSceneSource(fs ProjectFS) *TscnSceneSource {
	return &TscnSceneSource{fs: fs}
}

// LoadScene reads and parses the scene file at path. The returned scene
// carries the root node tree in file order and the res:// path of the script
// attached to the root, if any.
func (s *TscnSceneSource) LoadScene(path m.Path) (*m.Scene, error) {
	if !s.fs.Exists(path) {
		return nil, fmt.Errorf("%w: %s", m.ErrMissingSource, path)
	}

	content, err := s.fs.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene %s: %w", path, err)
	}

	scene, err := parseTscn(string(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse scene %s: %w", path, err)
	}

	scene.File = path

	return scene, nil
}

// parseTscn builds the scene tree from the text scene format. Node sections
// appear in depth-first order; a node without a parent attribute is the
// root, parent="." attaches directly under the root and deeper nodes name
// their parent by its tree-relative path.
func parseTscn(content string) (*m.Scene, error) {
	var (
		root         *m.Node
		inRoot       bool
		rootScriptID string
	)

	scripts := map[string]string{}
	nodes := map[string]*m.Node{}

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			tag, attrs := parseSection(line[1 : len(line)-1])
			inRoot = false

			switch tag {
			case "ext_resource":
				if attrs["type"] == "Script" {
					scripts[attrs["id"]] = attrs["path"]
				}
			case "node":
				name := attrs["name"]
				if name == "" {
					return nil, fmt.Errorf("node section without name")
				}

				parent, hasParent := attrs["parent"]
				if !hasParent {
					if root != nil {
						return nil, fmt.Errorf("multiple root nodes")
					}

					root = &m.Node{Name: name}
					nodes[""] = root
					inRoot = true

					continue
				}

				parentKey := parent
				if parent == "." {
					parentKey = ""
				}

				parentNode, ok := nodes[parentKey]
				if !ok {
					return nil, fmt.Errorf("node %q references unknown parent %q", name, parent)
				}

				childKey := name
				if parentKey != "" {
					childKey = parentKey + "/" + name
				}

				nodes[childKey] = parentNode.AddChild(&m.Node{Name: name})
			}

			continue
		}

		if inRoot && strings.HasPrefix(line, "script") {
			if id, ok := extResourceID(line); ok {
				rootScriptID = id
			}
		}
	}

	if root == nil {
		return nil, fmt.Errorf("no root node found")
	}

	return &m.Scene{Root: root, Script: scripts[rootScriptID]}, nil
}

// parseSection splits a section header into its tag and key=value attributes.
// Values are either quoted strings or bare tokens.
func parseSection(header string) (string, map[string]string) {
	attrs := map[string]string{}

	rest := strings.TrimSpace(header)

	tagEnd := strings.IndexByte(rest, ' ')
	if tagEnd < 0 {
		return rest, attrs
	}

	tag := rest[:tagEnd]
	rest = strings.TrimSpace(rest[tagEnd:])

	for rest != "" {
		eq := strings.IndexByte(rest, '=')
		if eq < 0 {
			break
		}

		key := strings.TrimSpace(rest[:eq])
		rest = strings.TrimSpace(rest[eq+1:])

		var value string

		if strings.HasPrefix(rest, `"`) {
			end := strings.IndexByte(rest[1:], '"')
			if end < 0 {
				break
			}

			value = rest[1 : end+1]
			rest = strings.TrimSpace(rest[end+2:])
		} else if strings.HasPrefix(rest, "ExtResource") {
			// Bare values may carry ExtResource wrappers, e.g. instance=ExtResource("2").
			end := strings.IndexByte(rest, ')')
			if end < 0 {
				break
			}

			value, rest = rest[:end+1], strings.TrimSpace(rest[end+1:])

			if id, ok := extResourceID(key + "=" + value); ok {
				value = id
			}
		} else {
			end := strings.IndexByte(rest, ' ')
			if end < 0 {
				value, rest = rest, ""
			} else {
				value, rest = rest[:end], strings.TrimSpace(rest[end:])
			}
		}

		attrs[key] = value
	}

	return tag, attrs
}

// extResourceID extracts the resource id from an `ExtResource(...)` value.
// Godot 4 quotes the id, Godot 3 uses a bare number with optional padding.
func extResourceID(line string) (string, bool) {
	idx := strings.Index(line, "ExtResource")
	if idx < 0 {
		return "", false
	}

	rest := line[idx+len("ExtResource"):]

	open := strings.IndexByte(rest, '(')
	closing := strings.IndexByte(rest, ')')

	if open < 0 || closing < 0 || closing < open {
		return "", false
	}

	id := strings.TrimSpace(rest[open+1 : closing])
	id = strings.Trim(id, `"`)

	if id == "" {
		return "", false
	}

	return id, true
}
