// Package term renders the line field in a terminal, one glyph per cell.
package term

import (
	"context"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gdamore/tcell/v2"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linefield/field"
)

var background = colorful.Color{R: 0.04, G: 0.04, B: 0.07}

// View drives a field scheduler from tcell events.
type View struct {
	screen    tcell.Screen
	scheduler *field.Scheduler
	interval  time.Duration
	params    <-chan field.Params
	logger    *log.Logger
}

// New creates a View on an initialised screen.
func New(screen tcell.Screen, scheduler *field.Scheduler, interval time.Duration, params <-chan field.Params, logger *log.Logger) *View {
	v := new(View)
	v.screen = screen
	v.scheduler = scheduler
	v.interval = interval
	v.params = params
	v.logger = logger
	return v
}

// Run processes events until the user quits or ctx is cancelled. The frame
// ticker only runs while the field is animating.
func (v *View) Run(ctx context.Context) error {
	v.screen.EnableMouse(tcell.MouseMotionEvents)
	v.screen.EnableFocus()
	w, h := v.screen.Size()
	v.scheduler.ResizeNow(float64(w), float64(h))

	events := make(chan tcell.Event, 64)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				close(events)
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	var ticker *time.Ticker
	var tick <-chan time.Time
	rearm := func() {
		if v.scheduler.Armed() && ticker == nil {
			ticker = time.NewTicker(v.interval)
			tick = ticker.C
		}
	}
	defer func() {
		if ticker != nil {
			ticker.Stop()
		}
	}()

	v.draw()
	rearm()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if !v.handleEvent(ev, time.Now()) {
				return nil
			}
			rearm()

		case p, ok := <-v.params:
			if !ok {
				v.params = nil
				continue
			}
			if err := v.scheduler.SetParams(p); err != nil {
				v.logger.Warn("rejected parameters", "err", err)
				continue
			}
			rearm()

		case now := <-tick:
			if v.scheduler.Tick(now) {
				v.draw()
			}
			if !v.scheduler.Armed() {
				ticker.Stop()
				ticker = nil
				tick = nil
			}
		}
	}
}

// handleEvent applies one terminal event and reports whether to keep running.
func (v *View) handleEvent(ev tcell.Event, now time.Time) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch ev.Key() {
		case tcell.KeyEscape, tcell.KeyCtrlC:
			return false
		case tcell.KeyRune:
			if ev.Rune() == 'q' {
				return false
			}
		}

	case *tcell.EventMouse:
		x, y := ev.Position()
		// Cell centres sit at half-character offsets.
		v.scheduler.Pointer(field.PointerEvent{
			Phase:  field.PhaseMove,
			Source: field.SourceMouse,
			X:      float64(x) + 0.5,
			Y:      float64(y) + 0.5,
			At:     now,
		})

	case *tcell.EventFocus:
		if !ev.Focused {
			v.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseEnd, Source: field.SourceMouse, At: now})
		}

	case *tcell.EventResize:
		w, h := ev.Size()
		v.scheduler.Resize(float64(w), float64(h), now)
		v.screen.Sync()
	}
	return true
}

func (v *View) draw() {
	v.screen.Clear()
	w, h := v.screen.Size()
	cells := v.scheduler.Cells()
	for i := range cells {
		c := &cells[i]
		cur := c.Current
		x := int(math.Round(c.CenterX - 0.5 + cur.OffsetX))
		y := int(math.Round(c.CenterY - 0.5 + cur.OffsetY))
		if x < 0 || y < 0 || x >= w || y >= h {
			continue
		}
		v.screen.SetContent(x, y, glyphFor(cur.Rotation, cur.Width), nil, styleFor(cur))
	}
	v.screen.Show()
}

// glyphFor picks a box-drawing glyph for a line at rotation degrees; wide
// lines use the heavy variants.
func glyphFor(rotation, width float64) rune {
	heavy := width >= 2
	r := math.Mod(rotation, 180)
	if r < 0 {
		r += 180
	}
	switch {
	case r < 22.5 || r >= 157.5:
		if heavy {
			return '┃'
		}
		return '│'
	case r < 67.5:
		return '╱'
	case r < 112.5:
		if heavy {
			return '━'
		}
		return '─'
	default:
		return '╲'
	}
}

// styleFor fades the cell colour into the background by its opacity.
func styleFor(cur field.Visual) tcell.Style {
	alpha := math.Max(0, math.Min(1, cur.Opacity))
	r, g, b := background.BlendRgb(cur.Color, alpha).Clamped().RGB255()
	return tcell.StyleDefault.
		Background(tcell.NewRGBColor(background255())).
		Foreground(tcell.NewRGBColor(int32(r), int32(g), int32(b)))
}

func background255() (int32, int32, int32) {
	r, g, b := background.RGB255()
	return int32(r), int32(g), int32(b)
}
