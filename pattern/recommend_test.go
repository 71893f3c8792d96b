package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/internal/testkit"
	"github.com/ezoic/vipattern/pkg/errors"
)

func TestPureFeatureRecommend_CorrelatedDimensionFirst(t *testing.T) {
	e := newEngine(t, testkit.Correlated(800, 4))

	recs, err := e.PureFeatureRecommend(NewPattern(dataset.NewMeasure("X")))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, []string{"X", "D"}, recs[0].FieldIDs())
	assert.Equal(t, []string{"X", "R"}, recs[1].FieldIDs())
	assert.Greater(t, recs[0].Importance, recs[1].Importance)
	assert.Greater(t, recs[0].Importance, 0.5)
}

func TestPureFeatureRecommend_SkipsViewDimensions(t *testing.T) {
	e := newEngine(t, testkit.Sales(300, 4))

	view := NewPattern(dataset.NewMeasure("price"), dataset.NewDimension("region"))
	recs, err := e.PureFeatureRecommend(view)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	for _, r := range recs {
		assert.NotEqual(t, "region", r.Fields[2].ID)
		assert.Equal(t, "price", r.Fields[0].ID)
	}
	// price is drawn per region, so region would have been the best pick;
	// among the rest, neither is related to price
	assert.Less(t, recs[0].Importance, 0.2)
}

func TestPureFeatureRecommend_RegionExplainsPrice(t *testing.T) {
	e := newEngine(t, testkit.Sales(2000, 9))

	recs, err := e.PureFeatureRecommend(NewPattern(dataset.NewMeasure("price")))
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "region", recs[0].Fields[1].ID)
}

func TestPureFeatureRecommend_NoMeasures(t *testing.T) {
	e := newEngine(t, testkit.Sales(100, 4))

	recs, err := e.PureFeatureRecommend(NewPattern(dataset.NewDimension("region")))
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestPureFeatureRecommend_UnknownField(t *testing.T) {
	e := newEngine(t, testkit.Sales(100, 4))

	_, err := e.PureFeatureRecommend(NewPattern(dataset.NewMeasure("nope")))
	assert.True(t, errors.Is(err, errors.ErrUnknownField))

	view := NewPattern(dataset.NewMeasure("price"))
	view.Filters = []dataset.Filter{{FieldID: "nope"}}
	_, err = e.PureFeatureRecommend(view)
	assert.True(t, errors.Is(err, errors.ErrUnknownField))
}

func TestPureFeatureRecommend_UsesFilteredRows(t *testing.T) {
	e := newEngine(t, testkit.Sales(2000, 9))

	view := NewPattern(dataset.NewMeasure("price"))
	view.Filters = []dataset.Filter{{FieldID: "region", Values: []dataset.Value{dataset.String("north")}}}
	recs, err := e.PureFeatureRecommend(view)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	for _, r := range recs {
		assert.Equal(t, view.Filters, r.Filters)
		if r.Fields[1].ID == "region" {
			// a single region remains, so it carries no information
			assert.Equal(t, 0.0, r.Importance)
		}
	}
}

func TestPureFeatureRecommendProjected(t *testing.T) {
	e := newEngine(t, testkit.Sales(2000, 9))

	view := NewPattern(dataset.NewMeasure("price"), dataset.NewMeasure("revenue"))
	recs, err := e.PureFeatureRecommendProjected(view)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Importance, recs[i].Importance)
	}
	assert.Equal(t, "region", recs[0].Fields[2].ID)

	// a single measure falls back to the marginal score
	single := NewPattern(dataset.NewMeasure("price"))
	projected, err := e.PureFeatureRecommendProjected(single)
	require.NoError(t, err)
	plain, err := e.PureFeatureRecommend(single)
	require.NoError(t, err)
	assert.Equal(t, plain, projected)
}

func TestRecommendFilter(t *testing.T) {
	e := newEngine(t, testkit.Sales(2000, 9))

	view := NewPattern(dataset.NewMeasure("price"), dataset.NewDimension("weekday"), dataset.NewDimension("region"))
	ps, err := e.RecommendFilter(view)
	require.NoError(t, err)
	require.Len(t, ps, 4, "one pattern per region")

	seen := make(map[string]bool)
	for i, p := range ps {
		assert.Equal(t, []string{"price", "weekday"}, p.FieldIDs())
		require.Len(t, p.Filters, 1)
		assert.Equal(t, "region", p.Filters[0].FieldID)
		require.Len(t, p.Filters[0].Values, 1)
		seen[p.Filters[0].Values[0].Key()] = true
		if i > 0 {
			assert.GreaterOrEqual(t, ps[i-1].Importance, p.Importance)
		}
	}
	assert.Equal(t, map[string]bool{"north": true, "south": true, "east": true, "west": true}, seen)
}

func TestRecommendFilter_AlreadyFiltered(t *testing.T) {
	e := newEngine(t, testkit.Sales(500, 9))

	view := NewPattern(dataset.NewMeasure("price"), dataset.NewDimension("region"))
	view.Filters = []dataset.Filter{{FieldID: "region", Values: []dataset.Value{dataset.String("north")}}}
	ps, err := e.RecommendFilter(view)
	require.NoError(t, err)
	assert.Empty(t, ps)

	ps, err = e.RecommendFilter(NewPattern(dataset.NewMeasure("price")))
	require.NoError(t, err)
	assert.Empty(t, ps, "no dimension in view")
}
