package field

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linefield/util"
)

// ErrInvalidParams is wrapped by every Params validation failure.
var ErrInvalidParams = errors.New("invalid animator parameters")

// Effect selects which visual properties react to the pointer.
type Effect uint8

const (
	EffectTranslate Effect = 1 << iota
	EffectResize
	EffectColor
	EffectRotate
	EffectSpin
)

var effectNames = []struct {
	name   string
	effect Effect
}{
	{"translate", EffectTranslate},
	{"resize", EffectResize},
	{"color", EffectColor},
	{"rotate", EffectRotate},
	{"spin", EffectSpin},
}

// ParseEffects converts a list of effect names into a bitmask.
func ParseEffects(names []string) (Effect, error) {
	var e Effect
	for _, n := range names {
		found := false
		for _, en := range effectNames {
			if strings.EqualFold(n, en.name) {
				e |= en.effect
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("%w: unknown effect %q", ErrInvalidParams, n)
		}
	}
	return e, nil
}

// Has reports whether all bits of o are set.
func (e Effect) Has(o Effect) bool {
	return e&o == o
}

func (e Effect) String() string {
	var parts []string
	for _, en := range effectNames {
		if e.Has(en.effect) {
			parts = append(parts, en.name)
		}
	}
	return strings.Join(parts, ",")
}

// ColorMode selects the progress value used to pick a cell's colour.
type ColorMode int

const (
	// ColorByInfluence colours by pointer proximity.
	ColorByInfluence ColorMode = iota
	// ColorByMovement colours by how far the cell has actually moved.
	ColorByMovement
)

// ParseColorMode parses "influence" or "movement".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "influence":
		return ColorByInfluence, nil
	case "movement":
		return ColorByMovement, nil
	}
	return 0, fmt.Errorf("%w: unknown color mode %q", ErrInvalidParams, s)
}

// Params tunes the animator. Distances are in renderer units (pixels for
// the desktop view, character cells for the terminal).
type Params struct {
	Radius      float64
	MaxMove     float64
	MinWidth    float64
	MaxWidth    float64
	MinHeight   float64
	MaxHeight   float64
	MaxRotation float64
	LerpFactor  float64
	Epsilon     float64

	Gradient    Gradient
	RestColor   colorful.Color
	RestOpacity float64
	ColorMode   ColorMode
	Effects     Effect
	Curve       string

	SpinSpeed      float64
	SpinHold       time.Duration
	ResizeDebounce time.Duration
}

// DefaultParams mirrors the proximity grid's stock look.
func DefaultParams() Params {
	start, _ := colorful.Hex("#3a3a5c")
	end, _ := colorful.Hex("#ff4f81")
	return Params{
		Radius:         100,
		MaxMove:        40,
		MinWidth:       1,
		MaxWidth:       4,
		MinHeight:      40,
		MaxHeight:      80,
		MaxRotation:    90,
		LerpFactor:     0.1,
		Epsilon:        0.01,
		Gradient:       Gradient{{Color: start, Pos: 0}, {Color: end, Pos: 1}},
		RestColor:      start,
		RestOpacity:    0.25,
		ColorMode:      ColorByInfluence,
		Effects:        EffectTranslate | EffectResize | EffectColor,
		SpinSpeed:      20000,
		SpinHold:       2 * time.Second,
		ResizeDebounce: 200 * time.Millisecond,
	}
}

// Validate checks the parameters for values the animator cannot honour.
func (p Params) Validate() error {
	switch {
	case p.Radius <= 0:
		return fmt.Errorf("%w: radius must be positive", ErrInvalidParams)
	case p.MaxMove < 0:
		return fmt.Errorf("%w: maxMove must not be negative", ErrInvalidParams)
	case p.LerpFactor <= 0 || p.LerpFactor > 1:
		return fmt.Errorf("%w: lerpFactor must be in (0,1]", ErrInvalidParams)
	case p.Epsilon <= 0:
		return fmt.Errorf("%w: epsilon must be positive", ErrInvalidParams)
	case p.MinWidth > p.MaxWidth:
		return fmt.Errorf("%w: minWidth exceeds maxWidth", ErrInvalidParams)
	case p.MinHeight > p.MaxHeight:
		return fmt.Errorf("%w: minHeight exceeds maxHeight", ErrInvalidParams)
	case p.RestOpacity < 0 || p.RestOpacity > 1:
		return fmt.Errorf("%w: restOpacity must be in [0,1]", ErrInvalidParams)
	case len(p.Gradient) == 0:
		return fmt.Errorf("%w: gradient needs at least one stop", ErrInvalidParams)
	case p.SpinSpeed < 0 || p.SpinHold < 0 || p.ResizeDebounce < 0:
		return fmt.Errorf("%w: spin and debounce settings must not be negative", ErrInvalidParams)
	}
	if _, err := util.EasingByName(p.Curve); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidParams, err)
	}
	return nil
}
