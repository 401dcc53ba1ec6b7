package field

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidViewport is returned for viewport sizes a grid cannot be built for.
var ErrInvalidViewport = errors.New("invalid viewport")

const (
	// MaxViewport bounds either viewport dimension.
	MaxViewport = math.MaxUint16
	// MaxDimension bounds rows and columns so they fit a frame header.
	MaxDimension = math.MaxUint16
	// MaxCells bounds the number of cells in one grid.
	MaxCells = 1 << 18
)

// ValidateViewport rejects viewport sizes that are negative, not finite or
// larger than MaxViewport.
func ValidateViewport(width, height float64) error {
	for _, v := range [2]float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || v > MaxViewport {
			return fmt.Errorf("%w: %vx%v", ErrInvalidViewport, width, height)
		}
	}
	return nil
}

// Grid describes cell geometry.
type Grid struct {
	RowHeight float64
	ColWidth  float64
}

// DefaultGrid uses 80px rows of 9px columns (1px line plus 8px gap).
func DefaultGrid() Grid {
	return Grid{RowHeight: 80, ColWidth: 9}
}

// Dimensions returns how many rows and columns fit a viewport. Only whole
// rows are used; a partial trailing column is still filled. Rows and
// columns are capped at MaxDimension and the grid at MaxCells, dropping
// trailing rows first.
func (g Grid) Dimensions(width, height float64) (rows, cols int) {
	if !(g.RowHeight > 0 && g.ColWidth > 0 && width > 0 && height > 0) {
		return 0, 0
	}
	r := math.Min(math.Floor(height/g.RowHeight), MaxDimension)
	c := math.Min(math.Ceil(width/g.ColWidth), MaxDimension)
	if !(r >= 1 && c >= 1) {
		return 0, 0
	}
	rows, cols = int(r), int(c)
	if rows*cols > MaxCells {
		rows = MaxCells / cols
	}
	return rows, cols
}

// Layout builds the cells for a viewport, each resting at rest.
func (g Grid) Layout(width, height float64, rest Visual) []Cell {
	rows, cols := g.Dimensions(width, height)
	cells := make([]Cell, 0, rows*cols)
	for r := 0; r < rows; r++ {
		for c := 0; c < cols; c++ {
			cells = append(cells, Cell{
				ID:      len(cells),
				Row:     r,
				Col:     c,
				CenterX: float64(c)*g.ColWidth + g.ColWidth/2,
				CenterY: float64(r)*g.RowHeight + g.RowHeight/2,
				Current: rest,
				Target:  rest,
			})
		}
	}
	return cells
}
