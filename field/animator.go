package field

import (
	"math"
	"time"

	"github.com/matt-g-everett/linefield/util"
)

// maxStep caps the time step used for spinning so a stalled host does not
// produce a single huge jump.
const maxStep = 100 * time.Millisecond

// Animator owns the grid's cells and computes each frame.
type Animator struct {
	params Params
	curve  util.Easing
	grid   Grid
	cells  []Cell

	lastTick time.Time
}

// NewAnimator creates an Animator with no cells.
func NewAnimator(params Params, grid Grid) (*Animator, error) {
	a := new(Animator)
	a.grid = grid
	if err := a.SetParams(params); err != nil {
		return nil, err
	}
	return a, nil
}

// SetParams swaps the tuning parameters. Existing cells keep their current
// state and ease toward targets computed with the new parameters.
func (a *Animator) SetParams(params Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	curve, err := util.EasingByName(params.Curve)
	if err != nil {
		return err
	}
	a.params = params
	a.curve = curve
	return nil
}

// Params returns the active parameters.
func (a *Animator) Params() Params {
	return a.params
}

// Grid returns the cell geometry used by Rebuild.
func (a *Animator) Grid() Grid {
	return a.grid
}

// Rest is the visual state of an untouched cell.
func (a *Animator) Rest() Visual {
	return Visual{
		Width:   a.params.MinWidth,
		Height:  a.params.MinHeight,
		Color:   a.params.RestColor,
		Opacity: a.params.RestOpacity,
	}
}

// Rebuild discards every cell and lays out a fresh grid for the viewport.
func (a *Animator) Rebuild(width, height float64) {
	a.cells = a.grid.Layout(width, height, a.Rest())
}

// SetCells replaces the cells, e.g. when a renderer supplies its own
// geometry.
func (a *Animator) SetCells(cells []Cell) {
	a.cells = cells
}

// Cells returns the animator's cells. The slice is owned by the animator.
func (a *Animator) Cells() []Cell {
	return a.cells
}

// ResetClock forgets the previous tick time so the next Build uses a zero
// time step.
func (a *Animator) ResetClock() {
	a.lastTick = time.Time{}
}

// Influence returns the shaped proximity of pt to the centre of c, in [0,1].
func (a *Animator) Influence(pt Pointer, c *Cell) float64 {
	if !pt.Active {
		return 0
	}
	d := math.Hypot(pt.X-c.CenterX, pt.Y-c.CenterY)
	if d >= a.params.Radius {
		return 0
	}
	return util.Clamp01(a.curve(util.Clamp01(1 - d/a.params.Radius)))
}

// Build computes every cell's target for pt and eases current state toward
// it by one step.
func (a *Animator) Build(pt Pointer, now time.Time) []Cell {
	var dt time.Duration
	if !a.lastTick.IsZero() {
		dt = now.Sub(a.lastTick)
		if dt < 0 {
			dt = 0
		} else if dt > maxStep {
			dt = maxStep
		}
	}
	a.lastTick = now

	for i := range a.cells {
		c := &a.cells[i]
		c.Target = a.target(pt, c, now, dt)
		c.Current.EaseToward(c.Target, a.params.LerpFactor)
	}
	return a.cells
}

func (a *Animator) target(pt Pointer, c *Cell, now time.Time, dt time.Duration) Visual {
	p := a.params
	t := a.Rest()
	dx := pt.X - c.CenterX
	dy := pt.Y - c.CenterY
	influence := a.Influence(pt, c)
	near := influence > 0

	if near {
		if p.Effects.Has(EffectTranslate) {
			t.OffsetX = -util.Sign(dx) * influence * p.MaxMove
			t.OffsetY = -util.Sign(dy) * influence * p.MaxMove
		}
		if p.Effects.Has(EffectResize) {
			t.Width = util.Lerp(p.MinWidth, p.MaxWidth, influence)
			t.Height = util.Lerp(p.MinHeight, p.MaxHeight, influence)
		}
		if p.Effects.Has(EffectRotate) {
			t.Rotation = facing(dx, dy, influence, p.MaxRotation)
		}
	}

	if p.Effects.Has(EffectColor) {
		progress := influence
		if p.ColorMode == ColorByMovement {
			progress = a.movement(c)
		}
		if progress > 0 {
			t.Color = p.Gradient.GetColor(progress)
			t.Opacity = util.Lerp(p.RestOpacity, 1, progress)
		}
	}

	if p.Effects.Has(EffectSpin) {
		t.Rotation = a.spin(c, near, now, dt)
	}
	return t
}

// movement is how far the cell currently sits from rest, relative to the
// maximum travel.
func (a *Animator) movement(c *Cell) float64 {
	if a.params.MaxMove <= 0 {
		return 0
	}
	return util.Clamp01(math.Hypot(c.Current.OffsetX, c.Current.OffsetY) / a.params.MaxMove)
}

// spin advances a hovered cell's rotation directly and returns the rotation
// target. A released cell holds its angle for SpinHold, then eases home.
func (a *Animator) spin(c *Cell, near bool, now time.Time, dt time.Duration) float64 {
	switch {
	case near:
		c.spinning = true
		c.releaseAt = time.Time{}
		c.Current.Rotation = math.Mod(c.Current.Rotation+a.params.SpinSpeed*dt.Seconds(), 360)
		return c.Current.Rotation
	case c.spinning:
		c.spinning = false
		c.releaseAt = now.Add(a.params.SpinHold)
		return c.Current.Rotation
	case !c.releaseAt.IsZero() && now.Before(c.releaseAt):
		return c.Current.Rotation
	case !c.releaseAt.IsZero():
		c.releaseAt = time.Time{}
		// Unwind the short way round.
		if c.Current.Rotation > 180 {
			c.Current.Rotation -= 360
		}
	}
	return 0
}

// facing orients a line toward the pointer, folded into (-90, 90] since a
// line looks the same after half a turn.
func facing(dx, dy, influence, limit float64) float64 {
	if dx == 0 && dy == 0 {
		return 0
	}
	angle := math.Atan2(dy, dx) * 180 / math.Pi
	if angle > 90 {
		angle -= 180
	} else if angle <= -90 {
		angle += 180
	}
	angle *= influence
	return math.Max(-limit, math.Min(limit, angle))
}

// Settled reports whether every cell has converged on its target.
func (a *Animator) Settled() bool {
	for i := range a.cells {
		if !a.cells[i].Converged(a.params.Epsilon) {
			return false
		}
	}
	return true
}

// Settle snaps every cell exactly onto its target.
func (a *Animator) Settle() {
	for i := range a.cells {
		a.cells[i].Current = a.cells[i].Target
	}
}
