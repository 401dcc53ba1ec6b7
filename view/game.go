// Package view renders the line field in a desktop window.
package view

import (
	"errors"
	"image/color"
	"math"
	"time"

	"github.com/charmbracelet/log"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/matt-g-everett/linefield/field"
)

var background = color.RGBA{R: 0x0b, G: 0x0b, B: 0x12, A: 0xff}

// Game adapts the field scheduler to ebiten's update/draw cycle.
type Game struct {
	scheduler *field.Scheduler
	params    <-chan field.Params
	logger    *log.Logger

	width  int
	height int

	mouseIn bool
	mouseX  int
	mouseY  int

	touching bool
	touchID  ebiten.TouchID
	touchX   int
	touchY   int
	touches  []ebiten.TouchID
}

// NewGame creates a Game. Parameter updates received on params are applied
// between frames; params may be nil.
func NewGame(scheduler *field.Scheduler, params <-chan field.Params, logger *log.Logger) *Game {
	g := new(Game)
	g.scheduler = scheduler
	g.params = params
	g.logger = logger
	return g
}

// Run opens the window and blocks until it is closed.
func Run(g *Game, title string, width, height int) error {
	ebiten.SetWindowSize(width, height)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

// Update polls input and advances the animation by one frame.
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}

	now := time.Now()
	g.applyParams()
	g.pollTouch(now)
	g.pollMouse(now)
	g.scheduler.Tick(now)
	return nil
}

func (g *Game) applyParams() {
	if g.params == nil {
		return
	}
	select {
	case p, ok := <-g.params:
		if !ok {
			g.params = nil
			return
		}
		if err := g.scheduler.SetParams(p); err != nil {
			g.logger.Warn("rejected parameters", "err", err)
			return
		}
		g.logger.Info("parameters updated", "effects", p.Effects)
	default:
	}
}

func (g *Game) pollTouch(now time.Time) {
	g.touches = ebiten.AppendTouchIDs(g.touches[:0])

	if g.touching {
		down := false
		for _, id := range g.touches {
			if id == g.touchID {
				down = true
				break
			}
		}
		if !down {
			g.touching = false
			g.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseEnd, Source: field.SourceTouch, ID: int(g.touchID), At: now})
			return
		}
		x, y := ebiten.TouchPosition(g.touchID)
		if x != g.touchX || y != g.touchY {
			g.touchX, g.touchY = x, y
			g.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseMove, Source: field.SourceTouch, ID: int(g.touchID), X: float64(x), Y: float64(y), At: now})
		}
		return
	}

	for _, id := range inpututil.AppendJustPressedTouchIDs(nil) {
		x, y := ebiten.TouchPosition(id)
		if g.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseStart, Source: field.SourceTouch, ID: int(id), X: float64(x), Y: float64(y), At: now}) {
			g.touching = true
			g.touchID = id
			g.touchX, g.touchY = x, y
			return
		}
	}
}

func (g *Game) pollMouse(now time.Time) {
	x, y := ebiten.CursorPosition()
	inside := ebiten.IsFocused() && x >= 0 && y >= 0 && x < g.width && y < g.height

	switch {
	case inside && !g.mouseIn:
		g.mouseIn = true
		g.mouseX, g.mouseY = x, y
		g.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseStart, Source: field.SourceMouse, X: float64(x), Y: float64(y), At: now})
	case inside && (x != g.mouseX || y != g.mouseY):
		g.mouseX, g.mouseY = x, y
		g.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseMove, Source: field.SourceMouse, X: float64(x), Y: float64(y), At: now})
	case !inside && g.mouseIn:
		g.mouseIn = false
		g.scheduler.Pointer(field.PointerEvent{Phase: field.PhaseEnd, Source: field.SourceMouse, At: now})
	}
}

// Draw renders every cell as a line.
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	cells := g.scheduler.Cells()
	for i := range cells {
		c := &cells[i]
		v := c.Current
		if v.Opacity <= 0 || v.Width <= 0 || v.Height <= 0 {
			continue
		}
		x0, y0, x1, y1 := c.Segment()
		r, gg, b := v.Color.Clamped().RGB255()
		a := uint8(math.Round(math.Min(1, v.Opacity) * 255))
		vector.StrokeLine(screen, float32(x0), float32(y0), float32(x1), float32(y1),
			float32(v.Width), color.NRGBA{R: r, G: gg, B: b, A: a}, true)
	}
}

// Layout tracks the window size; a change rebuilds the grid after the
// scheduler's resize debounce.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		first := g.width == 0 && g.height == 0
		g.width, g.height = outsideWidth, outsideHeight
		if first {
			g.scheduler.ResizeNow(float64(outsideWidth), float64(outsideHeight))
		} else {
			g.scheduler.Resize(float64(outsideWidth), float64(outsideHeight), time.Now())
		}
		g.logger.Debug("layout", "width", outsideWidth, "height", outsideHeight)
	}
	return outsideWidth, outsideHeight
}
