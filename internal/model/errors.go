package model

import "errors"

// Error kinds surfaced by a generation pass. All of them are non-fatal: the
// pass that hit the error is logged and abandoned, prior state is left
// unchanged, and the next qualifying file-system event retries naturally.
var (
	// ErrDirectoryCreate indicates the generated-code directory could not be created.
	ErrDirectoryCreate = errors.New("failed to create output directory")

	// ErrFileOpen indicates a generated file could not be opened for writing.
	ErrFileOpen = errors.New("failed to open generated file")

	// ErrPatternNoMatch indicates no class name could be derived from a path.
	ErrPatternNoMatch = errors.New("no class name derivable from path")

	// ErrMissingSource indicates the script or scene file is absent from disk.
	ErrMissingSource = errors.New("source file missing from disk")
)
