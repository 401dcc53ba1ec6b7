package term

import (
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/matt-g-everett/linefield/field"
)

func TestGlyphFor(t *testing.T) {
	tests := []struct {
		rotation float64
		width    float64
		want     rune
	}{
		{0, 1, '│'},
		{0, 3, '┃'},
		{180, 1, '│'},
		{-10, 1, '│'},
		{45, 1, '╱'},
		{90, 1, '─'},
		{-90, 2, '━'},
		{135, 1, '╲'},
		{-45, 1, '╲'},
		{405, 1, '╱'},
	}
	for _, tt := range tests {
		if got := glyphFor(tt.rotation, tt.width); got != tt.want {
			t.Errorf("glyphFor(%v, %v) = %q, want %q", tt.rotation, tt.width, got, tt.want)
		}
	}
}

func newTestView(t *testing.T) (*View, tcell.SimulationScreen) {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(screen.Fini)
	screen.SetSize(12, 4)

	p := field.DefaultParams()
	p.Radius = 3
	p.MaxMove = 1
	p.MinWidth, p.MaxWidth = 1, 3
	p.MinHeight, p.MaxHeight = 1, 1
	p.LerpFactor = 1
	a, err := field.NewAnimator(p, field.Grid{RowHeight: 1, ColWidth: 1})
	if err != nil {
		t.Fatal(err)
	}
	s := field.NewScheduler(a, field.NewTracker(field.TouchPrecedence, field.DefaultMouseSuppress))
	s.ResizeNow(12, 4)
	return New(screen, s, time.Millisecond, nil, log.NewWithOptions(io.Discard, log.Options{})), screen
}

func TestDrawRestGrid(t *testing.T) {
	v, screen := newTestView(t)
	v.draw()
	for _, pos := range [][2]int{{0, 0}, {11, 3}, {5, 2}} {
		r, _, _, _ := screen.GetContent(pos[0], pos[1])
		if r != '│' {
			t.Errorf("cell %v = %q, want │", pos, r)
		}
	}
}

func TestMouseMovesCells(t *testing.T) {
	v, screen := newTestView(t)
	now := time.Now()

	if !v.handleEvent(tcell.NewEventMouse(5, 2, tcell.ButtonNone, tcell.ModNone), now) {
		t.Fatal("mouse event stopped the view")
	}
	if !v.scheduler.Point().Active {
		t.Fatal("pointer not active")
	}
	v.scheduler.Tick(now)
	v.draw()

	// The cell under the pointer grows heavy but stays put (sign(0) = 0).
	if r, _, _, _ := screen.GetContent(5, 2); r != '┃' {
		t.Errorf("centre glyph = %q, want ┃", r)
	}
	// Its right neighbour is pushed one column further right.
	if r, _, _, _ := screen.GetContent(7, 2); r == ' ' {
		t.Error("right neighbour was not pushed")
	}

	v.handleEvent(tcell.NewEventFocus(false), now)
	if v.scheduler.Point().Active {
		t.Error("focus loss did not end the pointer")
	}
}

func TestResizeEvent(t *testing.T) {
	v, _ := newTestView(t)
	v.handleEvent(tcell.NewEventResize(20, 6), time.Now())
	v.scheduler.Tick(time.Now().Add(time.Second))
	if n := len(v.scheduler.Cells()); n != 120 {
		t.Errorf("cells = %d, want 120", n)
	}
}
