// Package tensor provides Grid, the dense 2-D array used for joint
// histograms and probability surfaces.
package tensor

import (
	"gonum.org/v1/gonum/mat"

	"github.com/ezoic/vipattern/pkg/errors"
)

// Grid is a rows×cols matrix of float64 backed by gonum/mat.Dense.
type Grid struct {
	data *mat.Dense
}

// NewGrid creates a zero-filled grid.
func NewGrid(rows, cols int) (*Grid, error) {
	if rows <= 0 || cols <= 0 {
		return nil, errors.NewValueError("NewGrid", "all dimensions must be positive")
	}
	return &Grid{data: mat.NewDense(rows, cols, nil)}, nil
}

// MustGrid is NewGrid for sizes already validated by the caller.
func MustGrid(rows, cols int) *Grid {
	g, err := NewGrid(rows, cols)
	if err != nil {
		panic(err)
	}
	return g
}

// NewGridFromRows copies a rectangular [][]float64 into a grid.
func NewGridFromRows(rows [][]float64) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, errors.NewModelError("NewGridFromRows", "empty rows", errors.ErrEmptyData)
	}
	c := len(rows[0])
	data := make([]float64, 0, len(rows)*c)
	for i, row := range rows {
		if len(row) != c {
			return nil, errors.NewDimensionError("NewGridFromRows", c, len(row), i)
		}
		data = append(data, row...)
	}
	return &Grid{data: mat.NewDense(len(rows), c, data)}, nil
}

// Dims returns the number of rows and columns.
func (g *Grid) Dims() (int, int) {
	return g.data.Dims()
}

// At returns the value at (i, j).
func (g *Grid) At(i, j int) float64 {
	return g.data.At(i, j)
}

// Set stores v at (i, j).
func (g *Grid) Set(i, j int, v float64) {
	g.data.Set(i, j, v)
}

// Inc adds delta to the value at (i, j).
func (g *Grid) Inc(i, j int, delta float64) {
	g.data.Set(i, j, g.data.At(i, j)+delta)
}

// Sum returns the sum of all cells.
func (g *Grid) Sum() float64 {
	return mat.Sum(g.data)
}

// Scale multiplies every cell by f in place.
func (g *Grid) Scale(f float64) {
	g.data.Scale(f, g.data)
}

// Flat returns the cells in row-major order. The slice is a copy.
func (g *Grid) Flat() []float64 {
	r, c := g.data.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		out = append(out, g.data.RawRowView(i)...)
	}
	return out
}

// Rows returns a copy of the grid as [][]float64.
func (g *Grid) Rows() [][]float64 {
	r, _ := g.data.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = append([]float64(nil), g.data.RawRowView(i)...)
	}
	return out
}

// Dense exposes the backing matrix. Mutating it mutates the grid.
func (g *Grid) Dense() *mat.Dense {
	return g.data
}

// Copy returns a deep copy.
func (g *Grid) Copy() *Grid {
	var d mat.Dense
	d.CloneFrom(g.data)
	return &Grid{data: &d}
}
