package field

import (
	"math"
	"time"

	"github.com/lucasb-eyer/go-colorful"
)

// Visual is the renderable state of a cell.
type Visual struct {
	OffsetX  float64
	OffsetY  float64
	Width    float64
	Height   float64
	Rotation float64 // degrees
	Color    colorful.Color
	Opacity  float64
}

// scalars exposes every eased field so easing and convergence checks treat
// them uniformly.
func (v *Visual) scalars() [9]*float64 {
	return [9]*float64{
		&v.OffsetX, &v.OffsetY, &v.Width, &v.Height, &v.Rotation,
		&v.Color.R, &v.Color.G, &v.Color.B, &v.Opacity,
	}
}

// EaseToward moves every field of v a fraction f of the way to target.
func (v *Visual) EaseToward(target Visual, f float64) {
	cur := v.scalars()
	tgt := target.scalars()
	for i := range cur {
		*cur[i] += (*tgt[i] - *cur[i]) * f
	}
}

// Within reports whether every field of v is within eps of o.
func (v Visual) Within(o Visual, eps float64) bool {
	a := v.scalars()
	b := o.scalars()
	for i := range a {
		if math.Abs(*a[i]-*b[i]) >= eps {
			return false
		}
	}
	return true
}

// Cell is one animated grid element.
type Cell struct {
	ID      int
	Row     int
	Col     int
	CenterX float64
	CenterY float64

	Current Visual
	Target  Visual

	// spin bookkeeping
	spinning  bool
	releaseAt time.Time
}

// Spinning reports whether the cell is currently spinning.
func (c *Cell) Spinning() bool {
	return c.spinning
}

// Converged reports whether current state has reached target state.
func (c *Cell) Converged(eps float64) bool {
	return !c.spinning && c.releaseAt.IsZero() && c.Current.Within(c.Target, eps)
}

// Segment returns the endpoints of the cell's line as currently drawn. An
// unrotated line is vertical; positive rotation turns it clockwise in
// screen coordinates (y down).
func (c *Cell) Segment() (x0, y0, x1, y1 float64) {
	v := c.Current
	cx := c.CenterX + v.OffsetX
	cy := c.CenterY + v.OffsetY
	rad := v.Rotation * math.Pi / 180
	hx := math.Sin(rad) * v.Height / 2
	hy := -math.Cos(rad) * v.Height / 2
	return cx - hx, cy - hy, cx + hx, cy + hy
}
