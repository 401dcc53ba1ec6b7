package stream

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linefield/field"
)

func testCells() []field.Cell {
	red, _ := colorful.Hex("#ff0000")
	return []field.Cell{
		{ID: 0, Row: 0, Col: 0, Current: field.Visual{Width: 1, Height: 40, Color: red, Opacity: 1}},
		{ID: 1, Row: 0, Col: 1, Current: field.Visual{OffsetX: -2.5, Width: 3, Height: 60, Rotation: 45, Opacity: 0.5}},
		{ID: 2, Row: 1, Col: 0},
		{ID: 3, Row: 1, Col: 1},
	}
}

func TestNewFrame(t *testing.T) {
	f := NewFrame(7, testCells())
	if f.Rows != 2 || f.Cols != 2 || f.Seq != 7 {
		t.Errorf("frame = %dx%d seq %d", f.Rows, f.Cols, f.Seq)
	}
	if f.Cells[0].Color != "#ff0000" {
		t.Errorf("colour = %s", f.Cells[0].Color)
	}

	empty := NewFrame(1, nil)
	if empty.Rows != 0 || empty.Cols != 0 || len(empty.Cells) != 0 {
		t.Errorf("empty frame = %+v", empty)
	}
}

func TestFrameMarshalBinary(t *testing.T) {
	f := NewFrame(42, testCells())
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != frameHeaderSize+4*cellSize {
		t.Fatalf("len = %d", len(data))
	}
	if binary.LittleEndian.Uint16(data[0:]) != 2 || binary.LittleEndian.Uint16(data[2:]) != 2 {
		t.Error("bad grid header")
	}
	if binary.LittleEndian.Uint32(data[4:]) != 42 {
		t.Error("bad sequence")
	}

	// Second cell starts after the header and one cell.
	cell := data[frameHeaderSize+cellSize:]
	readF := func(i int) float32 {
		return math.Float32frombits(binary.LittleEndian.Uint32(cell[i*4:]))
	}
	if readF(0) != -2.5 || readF(2) != 3 || readF(3) != 60 || readF(4) != 45 {
		t.Errorf("floats = %v %v %v %v", readF(0), readF(2), readF(3), readF(4))
	}
	if alpha := cell[5*4+3]; alpha != 128 {
		t.Errorf("alpha = %d, want 128", alpha)
	}

	first := data[frameHeaderSize:]
	if r, g, b := first[20], first[21], first[22]; r != 255 || g != 0 || b != 0 {
		t.Errorf("rgb = %d,%d,%d", r, g, b)
	}
}

func TestFrameJSON(t *testing.T) {
	b, err := json.Marshal(NewFrame(3, testCells()))
	if err != nil {
		t.Fatal(err)
	}
	var decoded Frame
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Rows != 2 || len(decoded.Cells) != 4 || decoded.Cells[1].Rotation != 45 {
		t.Errorf("decoded = %+v", decoded)
	}

	data, err := decoded.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	first := data[frameHeaderSize:]
	if r, g, b := first[20], first[21], first[22]; r != 255 || g != 0 || b != 0 {
		t.Errorf("rgb after JSON = %d,%d,%d", r, g, b)
	}
}

func TestFrameMarshalBinaryTooLarge(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
	}{
		{"cols", 1, math.MaxUint16 + 1},
		{"rows", math.MaxUint16 + 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := &Frame{Rows: tt.rows, Cols: tt.cols}
			if _, err := f.MarshalBinary(); !errors.Is(err, ErrFrameTooLarge) {
				t.Errorf("err = %v, want ErrFrameTooLarge", err)
			}
		})
	}

	f := &Frame{Rows: math.MaxUint16, Cols: math.MaxUint16}
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if binary.LittleEndian.Uint16(data[2:]) != math.MaxUint16 {
		t.Error("largest shape not preserved")
	}
}

func TestNewFrameFromLargestGrid(t *testing.T) {
	g := field.Grid{RowHeight: 1, ColWidth: 1}
	f := NewFrame(1, g.Layout(field.MaxViewport, field.MaxViewport, field.Visual{}))
	data, err := f.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	if got := int(binary.LittleEndian.Uint16(data[2:])); got != f.Cols {
		t.Errorf("header cols = %d, frame cols = %d", got, f.Cols)
	}
}
