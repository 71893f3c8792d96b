package pattern

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/internal/testkit"
	"github.com/ezoic/vipattern/pkg/errors"
)

// shiftedTable has pair (ax, ay) on a 100×100 integer lattice for every row
// and pair (bx, by) equal to it except that rows of group "far" are shifted
// by 1000 on both axes. Within each group the two scatters have the same
// shape, so the group dimension G explains their difference completely; N
// is unrelated noise.
func shiftedTable(n int) testkit.Table {
	g := testkit.NewGenerator(17)
	rows := make([]dataset.Row, n)
	for i := range rows {
		x, y := float64(g.IntN(100)), float64(g.IntN(100))
		group, shift := "near", 0.0
		if i%2 == 1 {
			group, shift = "far", 1000
		}
		noise := "heads"
		if g.IntN(2) == 0 {
			noise = "tails"
		}
		rows[i] = dataset.Row{
			"ax": dataset.Number(x),
			"ay": dataset.Number(y),
			"bx": dataset.Number(x + shift),
			"by": dataset.Number(y + shift),
			"G":  dataset.String(group),
			"N":  dataset.String(noise),
		}
	}
	return testkit.Table{
		Rows: rows,
		Fields: []dataset.FieldMeta{
			dataset.NewMeasure("ax"), dataset.NewMeasure("ay"),
			dataset.NewMeasure("bx"), dataset.NewMeasure("by"),
			dataset.NewDimension("N"), dataset.NewDimension("G"),
		},
	}
}

func TestFeatureSelectionForSecondPatternWithSpecifiedViews(t *testing.T) {
	e := newEngine(t, shiftedTable(400), WithBinSize(4))

	sel, err := e.FeatureSelectionForSecondPatternWithSpecifiedViews(
		MeasurePair{X: "ax", Y: "ay"}, MeasurePair{X: "bx", Y: "by"})
	require.NoError(t, err)
	require.NotNil(t, sel)
	assert.Equal(t, "G", sel.Feature.ID)
	assert.Greater(t, sel.Score, 0.0)
}

func TestFeatureSelectionForSecondPatternWithSpecifiedViews_NoResult(t *testing.T) {
	e := newEngine(t, shiftedTable(400), WithBinSize(4))

	// identical scatters leave nothing to explain
	pair := MeasurePair{X: "ax", Y: "ay"}
	sel, err := e.FeatureSelectionForSecondPatternWithSpecifiedViews(pair, pair)
	require.NoError(t, err)
	assert.Nil(t, sel)
}

func TestFeatureSelectionForSecondPatternWithSpecifiedViews_InvalidPair(t *testing.T) {
	e := newEngine(t, shiftedTable(40), WithBinSize(4))

	_, err := e.FeatureSelectionForSecondPatternWithSpecifiedViews(
		MeasurePair{X: "ax", Y: "zz"}, MeasurePair{X: "bx", Y: "by"})
	assert.True(t, errors.Is(err, errors.ErrUnknownField))

	_, err = e.FeatureSelectionForSecondPatternWithSpecifiedViews(
		MeasurePair{X: "ax", Y: "G"}, MeasurePair{X: "bx", Y: "by"})
	var fieldErr *errors.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "G", fieldErr.FieldID)
	assert.True(t, errors.Is(err, errors.ErrInvalidField))
}

func TestFeatureSelectForSecondPattern(t *testing.T) {
	e := newEngine(t, shiftedTable(400), WithBinSize(4), WithWorkers(3))

	sweep, err := e.FeatureSelectForSecondPattern(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, sweep)

	var found bool
	for _, r := range sweep {
		assert.Greater(t, r.Score, 0.0)
		if r.A == (MeasurePair{X: "ax", Y: "ay"}) && r.B == (MeasurePair{X: "bx", Y: "by"}) {
			found = true
			assert.Equal(t, "G", r.Feature.ID)
		}
	}
	assert.True(t, found, "the shifted pair must be reported")

	again, err := newEngine(t, shiftedTable(400), WithBinSize(4), WithWorkers(1)).
		FeatureSelectForSecondPattern(context.Background())
	require.NoError(t, err)
	assert.Equal(t, sweep, again, "order does not depend on scheduling")
}
