package view

import (
	"math"
	"time"
)

// Tap recognition constants.
const (
	// TapSlop is how far a contact may drift before tap detection is
	// cancelled for that gesture.
	TapSlop = 6.0

	// DoubleTapWindow is the time allowed between two taps on the same
	// target for the second to upgrade to a double tap.
	DoubleTapWindow = 300 * time.Millisecond
)

// TapKind is the outcome of a completed contact.
type TapKind int

const (
	// TapNone means the contact was not a tap (it moved or was cancelled).
	TapNone TapKind = iota
	// TapSingle is a stationary press and release.
	TapSingle
	// TapDouble is a second tap on the same target inside DoubleTapWindow.
	// It supersedes the pending single tap, which the host must discard.
	TapDouble
)

// TapTracker disambiguates taps from drags and single from double taps.
// Timestamps are passed in explicitly so the recognizer is deterministic
// under test. The tracker is owned by a single event loop.
type TapTracker struct {
	down     bool
	moved    bool
	downPos  Point
	target   string
	lastTap  time.Time
	lastTgt  string
	hasPrior bool
}

// Begin records a new contact on the given target (typically a person id,
// or empty for background).
func (t *TapTracker) Begin(target string, p Point, _ time.Time) {
	t.down = true
	t.moved = false
	t.downPos = p
	t.target = target
}

// Move updates the contact position. Drifting beyond TapSlop cancels tap
// detection for the rest of the gesture.
func (t *TapTracker) Move(p Point) {
	if !t.down || t.moved {
		return
	}
	if math.Abs(p.X-t.downPos.X) > TapSlop || math.Abs(p.Y-t.downPos.Y) > TapSlop {
		t.moved = true
	}
}

// End completes the contact and classifies it. The returned target is the
// one recorded at Begin.
func (t *TapTracker) End(at time.Time) (TapKind, string) {
	if !t.down {
		return TapNone, ""
	}
	t.down = false
	if t.moved {
		t.hasPrior = false
		return TapNone, ""
	}

	target := t.target
	if t.hasPrior && t.lastTgt == target && at.Sub(t.lastTap) <= DoubleTapWindow {
		t.hasPrior = false
		return TapDouble, target
	}

	t.hasPrior = true
	t.lastTap = at
	t.lastTgt = target
	return TapSingle, target
}

// Cancel aborts the current gesture without classifying it.
func (t *TapTracker) Cancel() {
	t.down = false
	t.moved = false
	t.hasPrior = false
}

// PinchTracker turns two-finger contact frames into pointer-equivalent
// zoom input: the midpoint of the contacts and the frame-over-frame
// distance ratio, fed straight into Viewport.ZoomAt.
type PinchTracker struct {
	active   bool
	lastDist float64
}

// Update ingests one frame of two-finger positions. The first frame of a
// pinch primes the tracker and reports ok false; subsequent frames return
// the current midpoint and the distance ratio relative to the previous
// frame.
func (t *PinchTracker) Update(a, b Point) (mid Point, factor float64, ok bool) {
	dist := math.Hypot(b.X-a.X, b.Y-a.Y)
	mid = Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}

	if !t.active || t.lastDist <= 0 {
		t.active = true
		t.lastDist = dist
		return mid, 1, false
	}
	if dist <= 0 {
		return mid, 1, false
	}

	factor = dist / t.lastDist
	t.lastDist = dist
	return mid, factor, true
}

// Release ends the pinch when a finger lifts. The remaining finger's
// current position is returned so the host re-bases single-finger panning
// from it rather than from a stale midpoint.
func (t *PinchTracker) Release(remaining Point) Point {
	t.active = false
	t.lastDist = 0
	return remaining
}

// Active reports whether a pinch is in progress.
func (t *PinchTracker) Active() bool { return t.active }
