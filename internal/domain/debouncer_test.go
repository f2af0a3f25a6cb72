package domain

import (
	"testing"
	"time"
)

// fakeClock lets tests step time deterministically.
type fakeClock struct {
	at time.Time
}

func (c *fakeClock) now() time.Time {
	return c.at
}

func (c *fakeClock) advance(d time.Duration) {
	c.at = c.at.Add(d)
}

func newTestDebouncer(window time.Duration) (*Debouncer, *fakeClock) {
	clock := &fakeClock{at: time.Unix(1000, 0)}
	d := NewDebouncer(window)
	d.now = clock.now

	return d, clock
}

func TestDebouncerSuppressesRepeatedRoot(t *testing.T) {
	d, clock := newTestDebouncer(100 * time.Millisecond)

	if !d.ShouldProcess("Main") {
		t.Fatal("first call should process")
	}

	clock.advance(50 * time.Millisecond)

	if d.ShouldProcess("Main") {
		t.Fatal("second call inside the window should be suppressed")
	}
}

func TestDebouncerAllowsAfterWindow(t *testing.T) {
	d, clock := newTestDebouncer(100 * time.Millisecond)

	d.ShouldProcess("Main")
	clock.advance(150 * time.Millisecond)

	if !d.ShouldProcess("Main") {
		t.Fatal("call after the window should process")
	}
}

func TestDebouncerDifferentRootAlwaysProcesses(t *testing.T) {
	d, clock := newTestDebouncer(100 * time.Millisecond)

	d.ShouldProcess("Main")
	clock.advance(10 * time.Millisecond)

	if !d.ShouldProcess("Menu") {
		t.Fatal("a different root should never be suppressed")
	}
}

// The reference behavior compared only the millisecond-of-second component,
// which under-suppressed across second boundaries. True elapsed time must
// suppress there too.
func TestDebouncerSuppressesAcrossSecondBoundary(t *testing.T) {
	d, _ := newTestDebouncer(100 * time.Millisecond)

	clock := &fakeClock{at: time.Unix(1000, 980_000_000)}
	d.now = clock.now

	d.ShouldProcess("Main")
	clock.advance(40 * time.Millisecond) // crosses into the next second

	if d.ShouldProcess("Main") {
		t.Fatal("elapsed 40ms should be suppressed even across a second boundary")
	}
}

// Suppressed attempts still refresh the slot, so a burst of events keeps
// collapsing into the first pass.
func TestDebouncerSlidesWindowOnSuppressedAttempts(t *testing.T) {
	d, clock := newTestDebouncer(100 * time.Millisecond)

	d.ShouldProcess("Main")

	for i := 0; i < 5; i++ {
		clock.advance(60 * time.Millisecond)

		if d.ShouldProcess("Main") {
			t.Fatalf("attempt %d should be suppressed, the slot refreshes each call", i)
		}
	}
}
