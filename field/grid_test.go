package field

import (
	"errors"
	"math"
	"testing"
)

func TestGridDimensions(t *testing.T) {
	g := DefaultGrid()
	tests := []struct {
		name          string
		width, height float64
		rows, cols    int
	}{
		{"full hd", 1920, 1080, 13, 214},
		{"exact fit", 90, 160, 2, 10},
		{"shorter than a row", 800, 79, 0, 0},
		{"zero width", 0, 800, 0, 0},
		{"negative", -10, -10, 0, 0},
		{"nan", math.NaN(), 800, 0, 0},
		{"infinite width", math.Inf(1), 160, 2, MaxDimension},
		{"huge", 1e12, 1e12, MaxCells / MaxDimension, MaxDimension},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, cols := g.Dimensions(tt.width, tt.height)
			if rows != tt.rows || cols != tt.cols {
				t.Errorf("Dimensions(%v, %v) = %d x %d, want %d x %d",
					tt.width, tt.height, rows, cols, tt.rows, tt.cols)
			}
		})
	}
}

func TestGridLayoutBounded(t *testing.T) {
	g := Grid{RowHeight: 1, ColWidth: 1}
	cells := g.Layout(1e12, 1e12, Visual{})
	if len(cells) > MaxCells {
		t.Fatalf("len(cells) = %d, want at most %d", len(cells), MaxCells)
	}
	last := cells[len(cells)-1]
	if last.Row >= MaxDimension || last.Col >= MaxDimension {
		t.Errorf("last cell at %d,%d exceeds %d", last.Row, last.Col, MaxDimension)
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		ok            bool
	}{
		{"zero", 0, 0, true},
		{"full hd", 1920, 1080, true},
		{"largest", MaxViewport, MaxViewport, true},
		{"negative", -1, 10, false},
		{"too wide", 1e12, 10, false},
		{"nan", 10, math.NaN(), false},
		{"infinite", math.Inf(1), 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.width, tt.height)
			if (err == nil) != tt.ok {
				t.Errorf("ValidateViewport(%v, %v) = %v", tt.width, tt.height, err)
			}
			if err != nil && !errors.Is(err, ErrInvalidViewport) {
				t.Errorf("error %v does not wrap ErrInvalidViewport", err)
			}
		})
	}
}

func TestGridLayout(t *testing.T) {
	g := Grid{RowHeight: 10, ColWidth: 4}
	rest := Visual{Width: 1, Height: 8}
	cells := g.Layout(10, 25, rest)
	// 2 rows, ceil(10/4) = 3 cols
	if len(cells) != 6 {
		t.Fatalf("len = %d, want 6", len(cells))
	}
	last := cells[5]
	if last.ID != 5 || last.Row != 1 || last.Col != 2 {
		t.Errorf("last cell = %+v", last)
	}
	if last.CenterX != 10 || last.CenterY != 15 {
		t.Errorf("centre = (%v, %v), want (10, 15)", last.CenterX, last.CenterY)
	}
	if last.Current != rest || last.Target != rest {
		t.Error("cells should start at rest")
	}
}

func TestGradientGetColor(t *testing.T) {
	p := DefaultParams()
	g := p.Gradient
	if g.GetColor(0) != g[0].Color {
		t.Error("t=0 should be the first stop")
	}
	if g.GetColor(1).Hex() != g[1].Color.Hex() {
		t.Errorf("t=1 = %s, want %s", g.GetColor(1).Hex(), g[1].Color.Hex())
	}
	if g.GetColor(2) != g[1].Color {
		t.Error("past the end should be the last stop")
	}
	mid := g.GetColor(0.5)
	if mid == g[0].Color || mid == g[1].Color {
		t.Error("midpoint should blend")
	}
	if (Gradient{}).GetColor(0.5) != (Gradient{}).GetColor(0) {
		t.Error("empty gradient should be stable")
	}
}

func TestCellSegment(t *testing.T) {
	c := Cell{CenterX: 10, CenterY: 20, Current: Visual{OffsetX: 2, Height: 8}}
	x0, y0, x1, y1 := c.Segment()
	if x0 != 12 || x1 != 12 || y0 != 24 || y1 != 16 {
		t.Errorf("vertical segment = (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}

	c.Current.Rotation = 90
	x0, y0, x1, y1 = c.Segment()
	if math.Abs(x0-8) > 1e-9 || math.Abs(x1-16) > 1e-9 || math.Abs(y0-20) > 1e-9 || math.Abs(y1-20) > 1e-9 {
		t.Errorf("horizontal segment = (%v,%v)-(%v,%v)", x0, y0, x1, y1)
	}
}
