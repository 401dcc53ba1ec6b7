package field

import (
	"testing"
	"time"
)

func ev(phase Phase, src Source, id int, x, y float64, ms int) PointerEvent {
	return PointerEvent{Phase: phase, Source: src, ID: id, X: x, Y: y, At: epoch.Add(time.Duration(ms) * time.Millisecond)}
}

func TestTrackerEndRetainsCoordinates(t *testing.T) {
	tr := NewTracker(TouchPrecedence, DefaultMouseSuppress)
	tr.Apply(ev(PhaseMove, SourceMouse, 0, 12, 34, 0))
	tr.Apply(ev(PhaseEnd, SourceMouse, 0, 0, 0, 10))

	pt := tr.Point()
	if pt.Active {
		t.Error("point still active after end")
	}
	if pt.X != 12 || pt.Y != 34 {
		t.Errorf("coordinates = (%v, %v), want (12, 34)", pt.X, pt.Y)
	}
}

func TestTrackerTouchPrecedence(t *testing.T) {
	tr := NewTracker(TouchPrecedence, 500*time.Millisecond)

	if !tr.Apply(ev(PhaseStart, SourceTouch, 7, 100, 100, 0)) {
		t.Fatal("touch start rejected")
	}
	if tr.Apply(ev(PhaseMove, SourceMouse, 0, 5, 5, 10)) {
		t.Error("mouse accepted while touch is down")
	}
	if tr.Apply(ev(PhaseStart, SourceTouch, 8, 1, 1, 20)) {
		t.Error("second finger accepted")
	}
	if tr.Apply(ev(PhaseEnd, SourceTouch, 8, 1, 1, 25)) {
		t.Error("second finger end accepted")
	}
	if !tr.Point().Active || tr.Point().X != 100 {
		t.Errorf("point = %+v", tr.Point())
	}

	tr.Apply(ev(PhaseMove, SourceTouch, 7, 110, 90, 30))
	tr.Apply(ev(PhaseEnd, SourceTouch, 7, 0, 0, 40))
	if tr.Point().Active {
		t.Error("active after touch end")
	}

	// Compatibility mouse event right after the touch is ignored.
	if tr.Apply(ev(PhaseMove, SourceMouse, 0, 110, 90, 100)) {
		t.Error("mouse accepted inside suppression window")
	}
	if !tr.Apply(ev(PhaseMove, SourceMouse, 0, 3, 4, 600)) {
		t.Error("mouse rejected after suppression window")
	}
	if pt := tr.Point(); !pt.Active || pt.Source != SourceMouse {
		t.Errorf("point = %+v", pt)
	}
}

func TestTrackerLastWriter(t *testing.T) {
	tr := NewTracker(LastWriter, DefaultMouseSuppress)
	tr.Apply(ev(PhaseStart, SourceTouch, 1, 10, 10, 0))
	if !tr.Apply(ev(PhaseMove, SourceMouse, 0, 50, 60, 5)) {
		t.Fatal("mouse rejected under last-writer")
	}
	if pt := tr.Point(); pt.X != 50 || pt.Source != SourceMouse {
		t.Errorf("point = %+v", pt)
	}

	// The touch no longer owns the point, so its end is ignored.
	if tr.Apply(ev(PhaseEnd, SourceTouch, 1, 0, 0, 10)) {
		t.Error("foreign end accepted")
	}
	if !tr.Point().Active {
		t.Error("point deactivated by foreign end")
	}
	if tr.touchDown {
		t.Error("lifted touch still recorded as down")
	}
	tr.Apply(ev(PhaseEnd, SourceMouse, 0, 0, 0, 20))
	if tr.Point().Active {
		t.Error("owner end did not deactivate")
	}
}

func TestTrackerLastWriterTouchIdentifiers(t *testing.T) {
	tr := NewTracker(LastWriter, DefaultMouseSuppress)
	tr.Apply(ev(PhaseStart, SourceTouch, 1, 10, 10, 0))

	if tr.Apply(ev(PhaseEnd, SourceTouch, 2, 0, 0, 5)) {
		t.Error("end from another finger accepted")
	}
	if !tr.Point().Active || !tr.touchDown || tr.touchID != 1 {
		t.Errorf("state changed by another finger: point %+v down %v id %d", tr.Point(), tr.touchDown, tr.touchID)
	}

	// A second finger writing takes over the point.
	tr.Apply(ev(PhaseStart, SourceTouch, 2, 30, 30, 10))
	if tr.Apply(ev(PhaseEnd, SourceTouch, 1, 0, 0, 15)) {
		t.Error("end from the previous finger accepted")
	}
	if pt := tr.Point(); !pt.Active || pt.X != 30 {
		t.Errorf("point = %+v", pt)
	}
	if !tr.Apply(ev(PhaseEnd, SourceTouch, 2, 0, 0, 20)) {
		t.Error("owner end rejected")
	}
	if tr.Point().Active || tr.touchDown {
		t.Error("owner end did not deactivate")
	}
}

func TestParsePolicy(t *testing.T) {
	for in, want := range map[string]Policy{"": TouchPrecedence, "touch": TouchPrecedence, "last-writer": LastWriter} {
		got, err := ParsePolicy(in)
		if err != nil || got != want {
			t.Errorf("ParsePolicy(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParsePolicy("random"); err == nil {
		t.Error("expected error")
	}
}
