package tensor_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/vipattern/core/tensor"
	"github.com/ezoic/vipattern/pkg/errors"
)

func TestNewGrid(t *testing.T) {
	g, err := tensor.NewGrid(2, 3)
	require.NoError(t, err)

	r, c := g.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 0.0, g.Sum())

	_, err = tensor.NewGrid(0, 3)
	var valErr *errors.ValueError
	assert.True(t, errors.As(err, &valErr))
}

func TestGrid_IncScaleSum(t *testing.T) {
	g := tensor.MustGrid(2, 2)
	g.Inc(0, 0, 1)
	g.Inc(0, 0, 1)
	g.Inc(1, 1, 2)
	assert.Equal(t, 4.0, g.Sum())

	g.Scale(0.25)
	assert.Equal(t, []float64{0.5, 0, 0, 0.5}, g.Flat())
	assert.InDelta(t, 1.0, g.Sum(), 1e-12)
}

func TestGrid_RowsAndCopy(t *testing.T) {
	g, err := tensor.NewGridFromRows([][]float64{{1, 2}, {3, 4}})
	require.NoError(t, err)

	cp := g.Copy()
	cp.Set(0, 0, 9)

	assert.Equal(t, [][]float64{{1, 2}, {3, 4}}, g.Rows())
	assert.Equal(t, 9.0, cp.At(0, 0))

	rows := g.Rows()
	rows[1][1] = 100
	assert.Equal(t, 4.0, g.At(1, 1), "Rows must return a copy")
}

func TestNewGridFromRows_Ragged(t *testing.T) {
	_, err := tensor.NewGridFromRows([][]float64{{1, 2}, {3}})
	assert.True(t, errors.Is(err, errors.ErrDimensionMismatch))

	_, err = tensor.NewGridFromRows(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyData))
}
