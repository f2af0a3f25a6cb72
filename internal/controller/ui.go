// Package controller provides the output adapters that render generation
// activity: a plain text UI and a live Bubble Tea view for watch mode.
package controller

import (
	"context"

	m "gpgen.dev/pkg/gpgen/internal/model"
)

// UI is the interface the orchestrator reports through. Implementations can
// use different output methods (simple text, TUI, etc).
type UI interface {
	Start(ctx context.Context) error
	Close(ctx context.Context)
	DisplayPass(ctx context.Context, report m.PassReport)
	DisplayEvent(ctx context.Context, event m.Event)
	DisplaySummary(ctx context.Context, scripts, resources int)
	DisplayTracked(ctx context.Context, snapshot m.Snapshot) error
}
