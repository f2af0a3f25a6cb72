package domain

import "time"

// Debouncer suppresses duplicate generation triggers for the same scene root
// within a short window. It is a single-slot cache: the stored root name and
// timestamp are overwritten on every call, so rapid repeated events against
// the same root collapse to one pass. Comparison uses true elapsed time, not
// a sub-second component.
type Debouncer struct {
	window time.Duration
	now    func() time.Time

	lastRoot string
	lastAt   time.Time
}

// NewDebouncer constructs a Debouncer with the given suppression window.
func NewDebouncer(window time.Duration) *Debouncer {
	return &Debouncer{window: window, now: time.Now}
}

// ShouldProcess reports whether a pass for rootName should run now. It
// returns false when the same root was processed within the window. The
// stored slot is updated on every call, whether or not the pass proceeds.
func (d *Debouncer) ShouldProcess(rootName string) bool {
	now := d.now()

	suppressed := rootName == d.lastRoot &&
		!d.lastAt.IsZero() &&
		now.Sub(d.lastAt) < d.window

	d.lastRoot = rootName
	d.lastAt = now

	return !suppressed
}
