package field

import (
	"github.com/lucasb-eyer/go-colorful"
)

// Stop is one keypoint on a Gradient.
type Stop struct {
	Color colorful.Color
	Pos   float64
}

// Gradient stores colour keypoints ordered by position in [0,1].
type Gradient []Stop

// GetColor gets the colour at t, blending neighbouring stops in HCL space.
func (g Gradient) GetColor(t float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Color{}
	}
	if t <= g[0].Pos {
		return g[0].Color
	}
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if c1.Pos <= t && t <= c2.Pos {
			span := c2.Pos - c1.Pos
			if span <= 0 {
				return c2.Color
			}
			return c1.Color.BlendHcl(c2.Color, (t-c1.Pos)/span).Clamped()
		}
	}

	// Past the last keypoint.
	return g[len(g)-1].Color
}
