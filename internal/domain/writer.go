package domain

import (
	"fmt"
	"sort"
	"strings"

	"gpgen.dev/pkg/gpgen/internal/adapter"
	m "gpgen.dev/pkg/gpgen/internal/model"
)

// banner is the fixed header every generated file starts with.
const banner = `// <auto-generated>
//     Generated by gpgen. Do not edit this file by hand.
//     It is rewritten in full on every generation pass.
// </auto-generated>
`

// resClassName is the class holding the resource path constants.
const resClassName = "Res"

// WriterConfig controls where generated files go and how they are wrapped.
type WriterConfig struct {
	// Dir is the directory all generated files are written to.
	Dir m.Path
	// Extension is the generated file extension without the dot.
	Extension string
	// Namespace wraps every generated class.
	Namespace string
	// Scheme is the resource scheme prefix stripped from resource fields.
	Scheme string
}

// Writer serializes path entries and resource paths into generated constant
// files. Every write replaces the target file in full; generated files are
// documented as not hand-editable, so a crash mid-write is repaired by the
// next pass.
type Writer struct {
	fs  adapter.ProjectFS
	cfg WriterConfig
}

// NewWriter constructs a Writer over the given file-system adapter.
func NewWriter(fs adapter.ProjectFS, cfg WriterConfig) *Writer {
	return &Writer{fs: fs, cfg: cfg}
}

// ClassFilePath returns the generated file path for a class name.
func (w *Writer) ClassFilePath(className string) m.Path {
	return w.fs.JoinPath(string(w.cfg.Dir), className+"Path."+w.cfg.Extension)
}

// ResourceFilePath returns the path of the shared resource constants file.
func (w *Writer) ResourceFilePath() m.Path {
	return w.fs.JoinPath(string(w.cfg.Dir), resClassName+"."+w.cfg.Extension)
}

// WriteClassFile writes the `<className>Path` constants file with one entry
// per path, valued "/root" plus the node path. Duplicate field names keep
// their first occurrence only; callers report collisions separately. The
// returned count is the number of constants actually emitted.
func (w *Writer) WriteClassFile(className string, entries []m.PathEntry) (int, error) {
	var b strings.Builder

	seen := map[string]struct{}{}

	for _, entry := range entries {
		if _, dup := seen[entry.Field]; dup {
			continue
		}

		seen[entry.Field] = struct{}{}

		fmt.Fprintf(&b, "        public const string %s = \"/root%s\";\n", entry.Field, entry.NodePath)
	}

	if err := w.writeWrapped(w.ClassFilePath(className), className+"Path", b.String()); err != nil {
		return 0, err
	}

	return len(seen), nil
}

// RemoveClassFile deletes the generated file for className. Absence is not
// an error.
func (w *Writer) RemoveClassFile(className string) error {
	return w.fs.Remove(w.ClassFilePath(className))
}

// RenameClassFile moves the generated file from one class name to another.
func (w *Writer) RenameClassFile(oldClassName, newClassName string) error {
	return w.fs.Rename(w.ClassFilePath(oldClassName), w.ClassFilePath(newClassName))
}

// WriteResourceFile writes the shared resource constants file with one entry
// per resource path. Paths are emitted in sorted order so repeated passes
// over the same set produce byte-identical output.
func (w *Writer) WriteResourceFile(resources []string) error {
	sorted := make([]string, len(resources))
	copy(sorted, resources)
	sort.Strings(sorted)

	var b strings.Builder

	for _, resource := range sorted {
		fmt.Fprintf(&b, "        public const string %s = %q;\n", w.resourceField(resource), resource)
	}

	return w.writeWrapped(w.ResourceFilePath(), resClassName, b.String())
}

// resourceField derives the constant identifier for a resource path: the
// scheme prefix is stripped and dots and slashes become underscores.
func (w *Writer) resourceField(resource string) string {
	field := strings.TrimPrefix(resource, w.cfg.Scheme)
	field = strings.ReplaceAll(field, ".", "_")
	field = strings.ReplaceAll(field, "/", "_")

	return field
}

// writeWrapped emits the banner, the namespace wrapper and the class body to
// path, creating the output directory first.
func (w *Writer) writeWrapped(path m.Path, className, body string) error {
	if err := w.fs.MkdirAll(w.cfg.Dir); err != nil {
		return fmt.Errorf("%w: %s: %v", m.ErrDirectoryCreate, w.cfg.Dir, err)
	}

	var b strings.Builder

	b.WriteString(banner)
	fmt.Fprintf(&b, "namespace %s\n{\n", w.cfg.Namespace)
	fmt.Fprintf(&b, "    public static class %s\n    {\n", className)
	b.WriteString(body)
	b.WriteString("    }\n}\n")

	if err := w.fs.WriteFile(path, []byte(b.String())); err != nil {
		return fmt.Errorf("%w: %s: %v", m.ErrFileOpen, path, err)
	}

	return nil
}
