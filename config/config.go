package config

import (
	"fmt"
	"time"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linefield/field"
)

// Config is the on-disk configuration, readable as YAML or TOML.
type Config struct {
	Mqtt struct {
		URL      string `yaml:"url" toml:"url"`
		Username string `yaml:"username" toml:"username"`
		Password string `yaml:"password" toml:"password"`
		Topics   struct {
			Frames string `yaml:"frames" toml:"frames"`
			Input  string `yaml:"input" toml:"input"`
		} `yaml:"topics" toml:"topics"`
	} `yaml:"mqtt" toml:"mqtt"`

	HTTP struct {
		Listen string `yaml:"listen" toml:"listen"`
		Client string `yaml:"client" toml:"client"`
	} `yaml:"http" toml:"http"`

	FrameRate float64 `yaml:"frameRate" toml:"frameRate"`
	Viewport  struct {
		Width  float64 `yaml:"width" toml:"width"`
		Height float64 `yaml:"height" toml:"height"`
	} `yaml:"viewport" toml:"viewport"`

	Grid     Grid     `yaml:"grid" toml:"grid"`
	Animator Animator `yaml:"animator" toml:"animator"`
	Pointer  Pointer  `yaml:"pointer" toml:"pointer"`

	// Terminal overrides grid and distance settings for the terminal view,
	// where one cell is one character.
	Terminal struct {
		Grid     Grid    `yaml:"grid" toml:"grid"`
		Radius   float64 `yaml:"radius" toml:"radius"`
		MaxMove  float64 `yaml:"maxMove" toml:"maxMove"`
		MaxWidth float64 `yaml:"maxWidth" toml:"maxWidth"`
	} `yaml:"terminal" toml:"terminal"`
}

// Grid holds cell geometry.
type Grid struct {
	RowHeight float64 `yaml:"rowHeight" toml:"rowHeight"`
	ColWidth  float64 `yaml:"colWidth" toml:"colWidth"`
}

// Animator holds the proximity animator tuning.
type Animator struct {
	Radius         float64  `yaml:"radius" toml:"radius"`
	MaxMove        float64  `yaml:"maxMove" toml:"maxMove"`
	MinWidth       float64  `yaml:"minWidth" toml:"minWidth"`
	MaxWidth       float64  `yaml:"maxWidth" toml:"maxWidth"`
	MinHeight      float64  `yaml:"minHeight" toml:"minHeight"`
	MaxHeight      float64  `yaml:"maxHeight" toml:"maxHeight"`
	MaxRotation    float64  `yaml:"maxRotation" toml:"maxRotation"`
	LerpFactor     float64  `yaml:"lerpFactor" toml:"lerpFactor"`
	Epsilon        float64  `yaml:"epsilon" toml:"epsilon"`
	Gradient       []Stop   `yaml:"gradient" toml:"gradient"`
	RestColor      string   `yaml:"restColor" toml:"restColor"`
	RestOpacity    *float64 `yaml:"restOpacity" toml:"restOpacity"`
	ColorMode      string   `yaml:"colorMode" toml:"colorMode"`
	Effects        []string `yaml:"effects" toml:"effects"`
	Curve          string   `yaml:"curve" toml:"curve"`
	SpinSpeed      float64  `yaml:"spinSpeed" toml:"spinSpeed"`
	SpinHoldMs     int      `yaml:"spinHoldMs" toml:"spinHoldMs"`
	ResizeDebounce int      `yaml:"resizeDebounceMs" toml:"resizeDebounceMs"`
}

// Stop is a gradient keypoint, colour given as hex.
type Stop struct {
	Color string  `yaml:"color" toml:"color"`
	Pos   float64 `yaml:"pos" toml:"pos"`
}

// Pointer selects how mouse and touch input share the interaction point.
type Pointer struct {
	Policy          string `yaml:"policy" toml:"policy"`
	MouseSuppressMs int    `yaml:"mouseSuppressMs" toml:"mouseSuppressMs"`
}

// Default returns a Config with every field that has a sensible default
// filled in.
func Default() Config {
	var c Config
	c.Mqtt.Topics.Frames = "linefield/frames"
	c.Mqtt.Topics.Input = "linefield/input"
	c.HTTP.Listen = ":3000"
	c.HTTP.Client = "client/dist"
	c.FrameRate = 60
	c.Viewport.Width = 1280
	c.Viewport.Height = 720

	g := field.DefaultGrid()
	c.Grid = Grid{RowHeight: g.RowHeight, ColWidth: g.ColWidth}
	c.Terminal.Grid = Grid{RowHeight: 1, ColWidth: 1}
	c.Terminal.Radius = 8
	c.Terminal.MaxMove = 1
	c.Terminal.MaxWidth = 3

	c.Pointer.Policy = "touch"
	c.Pointer.MouseSuppressMs = int(field.DefaultMouseSuppress / time.Millisecond)
	return c
}

// Params converts the animator section into validated field parameters.
// Zero values fall back to the field defaults.
func (c Config) Params() (field.Params, error) {
	p := field.DefaultParams()
	a := c.Animator

	setIf(&p.Radius, a.Radius)
	setIf(&p.MaxMove, a.MaxMove)
	setIf(&p.MinWidth, a.MinWidth)
	setIf(&p.MaxWidth, a.MaxWidth)
	setIf(&p.MinHeight, a.MinHeight)
	setIf(&p.MaxHeight, a.MaxHeight)
	setIf(&p.MaxRotation, a.MaxRotation)
	setIf(&p.LerpFactor, a.LerpFactor)
	setIf(&p.Epsilon, a.Epsilon)
	setIf(&p.SpinSpeed, a.SpinSpeed)
	if a.RestOpacity != nil {
		p.RestOpacity = *a.RestOpacity
	}
	if a.SpinHoldMs > 0 {
		p.SpinHold = time.Duration(a.SpinHoldMs) * time.Millisecond
	}
	if a.ResizeDebounce > 0 {
		p.ResizeDebounce = time.Duration(a.ResizeDebounce) * time.Millisecond
	}
	p.Curve = a.Curve

	if len(a.Gradient) > 0 {
		p.Gradient = make(field.Gradient, 0, len(a.Gradient))
		for _, s := range a.Gradient {
			col, err := colorful.Hex(s.Color)
			if err != nil {
				return p, fmt.Errorf("%w: gradient colour %q: %v", field.ErrInvalidParams, s.Color, err)
			}
			p.Gradient = append(p.Gradient, field.Stop{Color: col, Pos: s.Pos})
		}
		p.RestColor = p.Gradient[0].Color
	}
	if a.RestColor != "" {
		col, err := colorful.Hex(a.RestColor)
		if err != nil {
			return p, fmt.Errorf("%w: rest colour %q: %v", field.ErrInvalidParams, a.RestColor, err)
		}
		p.RestColor = col
	}

	mode, err := field.ParseColorMode(a.ColorMode)
	if err != nil {
		return p, err
	}
	p.ColorMode = mode

	if len(a.Effects) > 0 {
		effects, err := field.ParseEffects(a.Effects)
		if err != nil {
			return p, err
		}
		p.Effects = effects
	}

	return p, p.Validate()
}

// TerminalParams derives parameters for the terminal view, where distances
// are measured in characters.
func (c Config) TerminalParams() (field.Params, error) {
	p, err := c.Params()
	if err != nil {
		return p, err
	}
	t := c.Terminal
	setIf(&p.Radius, t.Radius)
	p.MaxMove = t.MaxMove
	p.MinWidth = 1
	p.MaxWidth = maxf(1, t.MaxWidth)
	p.MinHeight = 1
	p.MaxHeight = 1
	return p, p.Validate()
}

// FieldGrid returns the desktop grid geometry.
func (c Config) FieldGrid() field.Grid {
	return toGrid(c.Grid, field.DefaultGrid())
}

// TerminalGrid returns the terminal grid geometry.
func (c Config) TerminalGrid() field.Grid {
	return toGrid(c.Terminal.Grid, field.Grid{RowHeight: 1, ColWidth: 1})
}

// Tracker builds the pointer tracker described by the pointer section.
func (c Config) Tracker() (*field.Tracker, error) {
	policy, err := field.ParsePolicy(c.Pointer.Policy)
	if err != nil {
		return nil, err
	}
	suppress := field.DefaultMouseSuppress
	if c.Pointer.MouseSuppressMs > 0 {
		suppress = time.Duration(c.Pointer.MouseSuppressMs) * time.Millisecond
	}
	return field.NewTracker(policy, suppress), nil
}

// FrameInterval is the time between frames while animating.
func (c Config) FrameInterval() time.Duration {
	if c.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Duration(float64(time.Second) / c.FrameRate)
}

func toGrid(g Grid, fallback field.Grid) field.Grid {
	out := fallback
	setIf(&out.RowHeight, g.RowHeight)
	setIf(&out.ColWidth, g.ColWidth)
	return out
}

func setIf(dst *float64, v float64) {
	if v != 0 {
		*dst = v
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
