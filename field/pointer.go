package field

import (
	"fmt"
	"strings"
	"time"
)

// Source identifies the device that produced a pointer event.
type Source int

const (
	SourceMouse Source = iota
	SourceTouch
)

func (s Source) String() string {
	if s == SourceTouch {
		return "touch"
	}
	return "mouse"
}

// ParseSource parses "mouse" or "touch".
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(s) {
	case "", "mouse":
		return SourceMouse, nil
	case "touch":
		return SourceTouch, nil
	}
	return 0, fmt.Errorf("unknown pointer source %q", s)
}

// Phase is the lifecycle stage of a pointer event.
type Phase int

const (
	PhaseStart Phase = iota
	PhaseMove
	PhaseEnd
)

// ParsePhase parses "start", "move" or "end".
func ParsePhase(s string) (Phase, error) {
	switch strings.ToLower(s) {
	case "start":
		return PhaseStart, nil
	case "", "move":
		return PhaseMove, nil
	case "end":
		return PhaseEnd, nil
	}
	return 0, fmt.Errorf("unknown pointer phase %q", s)
}

// Pointer is the interaction point read by the animator each frame.
type Pointer struct {
	X      float64
	Y      float64
	Active bool
	Source Source
}

// PointerEvent is a single input sample from a renderer.
type PointerEvent struct {
	Phase  Phase
	Source Source
	ID     int // touch identifier, ignored for mouse
	X      float64
	Y      float64
	At     time.Time
}

// Policy decides how mouse and touch events share the interaction point.
type Policy int

const (
	// TouchPrecedence lets an active touch own the point; mouse events are
	// ignored while it is down and for a short window after it ends.
	TouchPrecedence Policy = iota
	// LastWriter lets whichever source reported last drive the point.
	LastWriter
)

// ParsePolicy parses "touch" or "last".
func ParsePolicy(s string) (Policy, error) {
	switch strings.ToLower(s) {
	case "", "touch", "touch-precedence":
		return TouchPrecedence, nil
	case "last", "last-writer":
		return LastWriter, nil
	}
	return 0, fmt.Errorf("unknown pointer policy %q", s)
}

// DefaultMouseSuppress absorbs the compatibility mouse events hosts emit
// right after a touch ends.
const DefaultMouseSuppress = 500 * time.Millisecond

// Tracker folds pointer events into a single Pointer. On end the point
// keeps its last coordinates but becomes inactive; coordinates carried by
// an end event are ignored.
type Tracker struct {
	policy        Policy
	mouseSuppress time.Duration

	point      Pointer
	touchDown  bool
	touchID    int
	touchEnded time.Time
}

// NewTracker creates a Tracker with the given policy.
func NewTracker(policy Policy, mouseSuppress time.Duration) *Tracker {
	t := new(Tracker)
	t.policy = policy
	t.mouseSuppress = mouseSuppress
	return t
}

// Point returns the current interaction point.
func (t *Tracker) Point() Pointer {
	return t.point
}

// Apply folds ev into the tracked point and reports whether the event was
// accepted.
func (t *Tracker) Apply(ev PointerEvent) bool {
	if t.policy == LastWriter {
		return t.applyLastWriter(ev)
	}

	switch ev.Source {
	case SourceTouch:
		return t.applyTouch(ev)
	default:
		if t.touchDown {
			return false
		}
		if !t.touchEnded.IsZero() && ev.At.Sub(t.touchEnded) < t.mouseSuppress {
			return false
		}
		t.set(ev)
		return true
	}
}

func (t *Tracker) applyTouch(ev PointerEvent) bool {
	switch ev.Phase {
	case PhaseStart, PhaseMove:
		if t.touchDown && ev.ID != t.touchID {
			return false
		}
		if !t.touchDown {
			t.touchDown = true
			t.touchID = ev.ID
		}
		t.set(ev)
		return true
	case PhaseEnd:
		if !t.touchDown || ev.ID != t.touchID {
			return false
		}
		t.touchDown = false
		t.touchEnded = ev.At
		t.set(ev)
		return true
	}
	return false
}

// applyLastWriter accepts every start or move. An end is only accepted from
// the source, and for touch the identifier, that last wrote the point.
func (t *Tracker) applyLastWriter(ev PointerEvent) bool {
	if ev.Source == SourceTouch {
		switch {
		case ev.Phase != PhaseEnd:
			t.touchDown = true
			t.touchID = ev.ID
		case t.touchDown && ev.ID == t.touchID:
			t.touchDown = false
		default:
			return false
		}
	}
	if ev.Phase == PhaseEnd && t.point.Active && t.point.Source != ev.Source {
		return false
	}
	t.set(ev)
	return true
}

func (t *Tracker) set(ev PointerEvent) {
	t.point.Source = ev.Source
	if ev.Phase == PhaseEnd {
		t.point.Active = false
		return
	}
	t.point.X = ev.X
	t.point.Y = ev.Y
	t.point.Active = true
}
