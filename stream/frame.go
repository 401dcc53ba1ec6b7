package stream

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/linefield/field"
)

// ErrFrameTooLarge is returned when a frame's shape does not fit the
// binary header.
var ErrFrameTooLarge = errors.New("frame too large")

// CellState is the rendering hint for one cell in a Frame.
type CellState struct {
	ID       int     `json:"id"`
	Row      int     `json:"row"`
	Col      int     `json:"col"`
	OffsetX  float64 `json:"offsetX"`
	OffsetY  float64 `json:"offsetY"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Rotation float64 `json:"rotation"`
	Color    string  `json:"color"`
	Opacity  float64 `json:"opacity"`
}

// Frame is a snapshot of every cell's current visual state.
type Frame struct {
	Seq   uint32      `json:"seq"`
	Rows  int         `json:"rows"`
	Cols  int         `json:"cols"`
	Cells []CellState `json:"cells"`
}

// NewFrame captures the current state of cells.
func NewFrame(seq uint32, cells []field.Cell) *Frame {
	f := new(Frame)
	f.Seq = seq
	f.Cells = make([]CellState, len(cells))
	for i := range cells {
		c := &cells[i]
		v := c.Current
		col := v.Color.Clamped()
		f.Cells[i] = CellState{
			ID:       c.ID,
			Row:      c.Row,
			Col:      c.Col,
			OffsetX:  v.OffsetX,
			OffsetY:  v.OffsetY,
			Width:    v.Width,
			Height:   v.Height,
			Rotation: v.Rotation,
			Color:    col.Hex(),
			Opacity:  v.Opacity,
		}
		if c.Row+1 > f.Rows {
			f.Rows = c.Row + 1
		}
		if c.Col+1 > f.Cols {
			f.Cols = c.Col + 1
		}
	}
	return f
}

const (
	frameHeaderSize = 8
	cellSize        = 5*4 + 4
)

// MarshalBinary encodes a Frame as little-endian: uint16 rows, uint16
// cols, uint32 sequence, then per cell five float32 (offsetX, offsetY,
// width, height, rotation) and RGBA bytes with opacity as alpha. A cell
// whose colour does not parse is encoded black.
func (f *Frame) MarshalBinary() (data []byte, err error) {
	if f.Rows < 0 || f.Cols < 0 || f.Rows > math.MaxUint16 || f.Cols > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %dx%d", ErrFrameTooLarge, f.Rows, f.Cols)
	}

	data = make([]byte, frameHeaderSize, frameHeaderSize+len(f.Cells)*cellSize)
	binary.LittleEndian.PutUint16(data[0:], uint16(f.Rows))
	binary.LittleEndian.PutUint16(data[2:], uint16(f.Cols))
	binary.LittleEndian.PutUint32(data[4:], f.Seq)

	for _, c := range f.Cells {
		for _, v := range [5]float64{c.OffsetX, c.OffsetY, c.Width, c.Height, c.Rotation} {
			data = binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v)))
		}
		var r, g, b uint8
		if col, err := colorful.Hex(c.Color); err == nil {
			r, g, b = col.RGB255()
		}
		a := uint8(math.Round(math.Max(0, math.Min(1, c.Opacity)) * 255))
		data = append(data, r, g, b, a)
	}

	return data, nil
}
