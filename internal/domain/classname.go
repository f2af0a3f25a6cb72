package domain

import (
	"fmt"
	"strings"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// DeriveClassName extracts the generated class name from a script path: the
// directory part is stripped, then the extension, and the remainder is the
// class name. An empty remainder yields ErrPatternNoMatch. Both res:// style
// and plain file-system paths are accepted.
func DeriveClassName(path string) (string, error) {
	base := path

	if idx := strings.LastIndexAny(base, "/\\"); idx >= 0 {
		base = base[idx+1:]
	}

	if idx := strings.LastIndexByte(base, '.'); idx >= 0 {
		base = base[:idx]
	}

	if base == "" {
		return "", fmt.Errorf("%w: %q", m.ErrPatternNoMatch, path)
	}

	return base, nil
}
