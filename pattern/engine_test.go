package pattern

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/core/model"
	"github.com/ezoic/vipattern/internal/testkit"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/pkg/log"
)

func newEngine(t testing.TB, tbl testkit.Table, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithSeed(1), WithLogger(log.NewNopLogger())}, opts...)
	e := NewEngine(opts...)
	require.NoError(t, e.Init(tbl.Rows, tbl.Fields))
	return e
}

func TestNewEngine_Defaults(t *testing.T) {
	e := NewEngine(WithLogger(log.NewNopLogger()))
	assert.Equal(t, 16, e.BinSize())
	assert.Equal(t, model.Uninitialized, e.State())
	assert.Equal(t, uuid.Nil, e.Generation())
	assert.Greater(t, e.workers, 0)
}

func TestNewEngine_InvalidBinSizeFallsBack(t *testing.T) {
	for _, n := range []int{0, 1, 7, -4} {
		e := NewEngine(WithBinSize(n), WithLogger(log.NewNopLogger()))
		assert.Equal(t, 16, e.BinSize(), "bin size %d", n)
	}
	e := NewEngine(WithBinSize(8), WithLogger(log.NewNopLogger()))
	assert.Equal(t, 8, e.BinSize())
}

func TestEngine_UninitializedReturnsEmpty(t *testing.T) {
	e := NewEngine(WithLogger(log.NewNopLogger()))
	ctx := context.Background()

	assert.Empty(t, e.SearchPatterns())

	hi, err := e.CreateHighOrderPatterns(NewPattern(dataset.NewMeasure("nope")))
	require.NoError(t, err)
	assert.Empty(t, hi)

	m, err := e.FirstPattern(ctx)
	require.NoError(t, err)
	assert.Empty(t, m.Values)

	pm, err := e.SecondPattern(ctx)
	require.NoError(t, err)
	assert.Empty(t, pm.Values)

	recs, err := e.PureFeatureRecommend(NewPattern())
	require.NoError(t, err)
	assert.Empty(t, recs)

	sel, err := e.FeatureSelectionForSecondPatternWithSpecifiedViews(MeasurePair{"a", "b"}, MeasurePair{"c", "d"})
	require.NoError(t, err)
	assert.Nil(t, sel)

	sweep, err := e.FeatureSelectForSecondPattern(ctx)
	require.NoError(t, err)
	assert.Empty(t, sweep)
}

func TestInit_EmptyDataset(t *testing.T) {
	e := NewEngine(WithLogger(log.NewNopLogger()))
	require.NoError(t, e.Init(nil, []dataset.FieldMeta{dataset.NewMeasure("a")}))
	assert.Equal(t, model.Ready, e.State())
	assert.Empty(t, e.SearchPatterns())
}

func TestInit_ReplacesDatasetAndCache(t *testing.T) {
	e := newEngine(t, testkit.Univariate(32))
	gen := e.Generation()
	assert.NotEqual(t, uuid.Nil, gen)

	require.Len(t, e.SearchPatterns(), 2)
	require.Len(t, e.Patterns(), 2)

	tbl := testkit.Sales(100, 1)
	require.NoError(t, e.Init(tbl.Rows, tbl.Fields))
	assert.NotEqual(t, gen, e.Generation())
	assert.Nil(t, e.Patterns(), "cache must be cleared by Init")
	assert.Len(t, e.SearchPatterns(), 7, "4 measures and 3 dimensions")
}

func TestInit_DuplicateFieldKeepsPrevious(t *testing.T) {
	e := newEngine(t, testkit.Univariate(32))
	gen := e.Generation()

	err := e.Init(nil, []dataset.FieldMeta{dataset.NewMeasure("x"), dataset.NewDimension("x")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrInvalidField))
	assert.Equal(t, gen, e.Generation())
	assert.Len(t, e.SearchPatterns(), 2)
}

func TestSearchPatterns_UnivariateRanking(t *testing.T) {
	e := newEngine(t, testkit.Univariate(160))

	ps := e.SearchPatterns()
	require.Len(t, ps, 2)
	assert.Equal(t, "A", ps[0].Fields[0].ID)
	assert.Equal(t, 0.0, ps[0].Importance)
	assert.Equal(t, "B", ps[1].Fields[0].ID)
	assert.InDelta(t, 4.0, ps[1].Importance, 1e-9)
}

func TestSearchPatterns_DimensionsUseSuppliedEntropy(t *testing.T) {
	rows := make([]dataset.Row, 48)
	for i := range rows {
		rows[i] = dataset.Row{
			"flat":   dataset.Number(7),
			"spread": dataset.Number(float64(i % 16)),
			"city":   dataset.String([]string{"oslo", "rome", "lima"}[i%3]),
			"shop":   dataset.String("a"),
		}
	}
	city := dataset.NewDimension("city")
	city.Features.Entropy = 0.9
	fields := []dataset.FieldMeta{
		dataset.NewMeasure("spread"),
		city,
		dataset.NewMeasure("flat"),
		dataset.NewDimension("shop"),
	}
	e := NewEngine(WithSeed(1), WithLogger(log.NewNopLogger()))
	require.NoError(t, e.Init(rows, fields))

	ps := e.SearchPatterns()
	require.Len(t, ps, 4)
	var ids []string
	for _, p := range ps {
		ids = append(ids, p.Fields[0].ID)
	}
	// ties keep measures first
	assert.Equal(t, []string{"flat", "shop", "city", "spread"}, ids)
	assert.Equal(t, 0.9, ps[2].Importance)
	assert.True(t, ps[2].Fields[0].IsDimension())
	assert.InDelta(t, 4.0, ps[3].Importance, 1e-9)
}

func TestSearchPatterns_SkipsMissing(t *testing.T) {
	rows := []dataset.Row{
		{"m": dataset.Number(1)},
		{"m": dataset.Null()},
		{"m": dataset.String("n/a")},
		{"m": dataset.Number(2)},
	}
	e := NewEngine(WithLogger(log.NewNopLogger()))
	require.NoError(t, e.Init(rows, []dataset.FieldMeta{dataset.NewMeasure("m")}))

	ps := e.SearchPatterns()
	require.Len(t, ps, 1)
	assert.InDelta(t, 1.0, ps[0].Importance, 1e-12, "two values in two bins")
}

func TestSearchPatterns_ReturnsCopy(t *testing.T) {
	e := newEngine(t, testkit.Univariate(32))
	ps := e.SearchPatterns()
	ps[0].Importance = 99
	ps[0].Fields[0].ID = "changed"

	cached := e.Patterns()
	assert.Equal(t, 0.0, cached[0].Importance)
	assert.Equal(t, "A", cached[0].Fields[0].ID)
}

func TestCreateHighOrderPatterns(t *testing.T) {
	tbl := testkit.Sales(200, 2)
	e := newEngine(t, tbl)

	view := NewPattern(dataset.NewMeasure("quantity"))
	view.Filters = []dataset.Filter{{FieldID: "region", Values: []dataset.Value{dataset.String("north")}}}

	ps, err := e.CreateHighOrderPatterns(view)
	require.NoError(t, err)
	require.Len(t, ps, 3)

	var added []string
	for _, p := range ps {
		assert.Equal(t, 0.0, p.Importance)
		require.Len(t, p.Fields, 2)
		assert.Equal(t, "quantity", p.Fields[0].ID)
		assert.Equal(t, view.Filters, p.Filters)
		added = append(added, p.Fields[1].ID)
	}
	assert.Equal(t, []string{"price", "revenue", "discount"}, added, "dataset field order")

	_, err = e.CreateHighOrderPatterns(NewPattern(dataset.NewMeasure("missing")))
	var fieldErr *errors.FieldError
	require.True(t, errors.As(err, &fieldErr))
	assert.Equal(t, "missing", fieldErr.FieldID)
}

func TestScoreHighOrderPatterns(t *testing.T) {
	g := testkit.NewGenerator(3)
	rows := make([]dataset.Row, 800)
	for i := range rows {
		p := float64(g.IntN(16))
		rows[i] = dataset.Row{
			"p":     dataset.Number(p),
			"twice": dataset.Number(2*p + 1),
			"noise": dataset.Number(g.Normal(0, 1)),
		}
	}
	fields := []dataset.FieldMeta{dataset.NewMeasure("p"), dataset.NewMeasure("noise"), dataset.NewMeasure("twice")}
	e := NewEngine(WithSeed(1), WithLogger(log.NewNopLogger()))
	require.NoError(t, e.Init(rows, fields))

	ps, err := e.ScoreHighOrderPatterns(NewPattern(dataset.NewMeasure("p")))
	require.NoError(t, err)
	require.Len(t, ps, 2)
	assert.Equal(t, "twice", ps[0].Fields[1].ID)
	assert.InDelta(t, 1.0, ps[0].Importance, 0.01)
	assert.Equal(t, "noise", ps[1].Fields[1].ID)
	assert.Less(t, ps[1].Importance, 0.2)

	none, err := e.ScoreHighOrderPatterns(NewPattern())
	require.NoError(t, err)
	require.Len(t, none, 3)
	for _, p := range none {
		assert.Equal(t, 0.0, p.Importance)
	}
}

func TestEngine_LogsOperations(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewZerologProviderWithWriter(&buf, log.DebugLevel).GetLoggerWithName("test")
	e := NewEngine(WithLogger(logger), WithSeed(1))

	tbl := testkit.Univariate(16)
	require.NoError(t, e.Init(tbl.Rows, tbl.Fields))
	e.SearchPatterns()

	var ops []string
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		assert.Equal(t, "pattern.Engine", entry[log.ComponentKey])
		if op, ok := entry[log.OperationKey].(string); ok {
			ops = append(ops, op+":"+entry["message"].(string))
		}
	}
	assert.Equal(t, []string{
		"init:Dataset loaded",
		"search_patterns:Operation started",
		"search_patterns:Operation completed",
	}, ops)
}

func TestInit_RejectionUsesEngineLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewZerologProviderWithWriter(&buf, log.DebugLevel).GetLoggerWithName("test")
	e := NewEngine(WithLogger(logger))

	err := e.Init(nil, []dataset.FieldMeta{dataset.NewMeasure("x"), dataset.NewMeasure("x")})
	require.Error(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "Init rejected", entry["message"])
	assert.Equal(t, "pattern.Engine", entry[log.ComponentKey])
	assert.Equal(t, log.OperationInit, entry[log.OperationKey])
	assert.Contains(t, entry[log.ErrorKey], "duplicate field id")
}

func TestEngine_ConcurrentInitAndSearch(t *testing.T) {
	e := newEngine(t, testkit.Univariate(64))
	sales := testkit.Sales(64, 5)
	uni := testkit.Univariate(64)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tbl := uni
			if i%2 == 0 {
				tbl = sales
			}
			assert.NoError(t, e.Init(tbl.Rows, tbl.Fields))
		}()
		go func() {
			defer wg.Done()
			n := len(e.SearchPatterns())
			// every result comes from one dataset or the other
			assert.Contains(t, []int{2, 4}, n)
		}()
	}
	wg.Wait()
}
