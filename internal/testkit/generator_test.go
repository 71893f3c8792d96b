package testkit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSales_Deterministic(t *testing.T) {
	a := Sales(200, 7)
	b := Sales(200, 7)
	require.Len(t, a.Rows, 200)
	assert.Equal(t, a.Rows, b.Rows)

	c := Sales(200, 8)
	assert.NotEqual(t, a.Rows, c.Rows)
}

func TestSales_Shape(t *testing.T) {
	tbl := Sales(1000, 1)
	missing := 0
	for _, row := range tbl.Rows {
		for _, f := range tbl.Fields {
			_, ok := row[f.ID]
			require.True(t, ok, "row lacks %s", f.ID)
		}
		if row["discount"].IsNull() {
			missing++
		}
		price, ok := row["price"].Float()
		require.True(t, ok)
		assert.Greater(t, price, 0.0)
		qty, ok := row["quantity"].Float()
		require.True(t, ok)
		assert.GreaterOrEqual(t, qty, 1.0)
	}
	assert.Greater(t, missing, 50)
	assert.Less(t, missing, 150)
}

func TestCorrelated_OneLabelPerBin(t *testing.T) {
	tbl := Correlated(500, 3)
	labels := make(map[string]struct{})
	for _, row := range tbl.Rows {
		labels[row["D"].Key()] = struct{}{}
	}
	assert.LessOrEqual(t, len(labels), 16)
	assert.Greater(t, len(labels), 4)
}

func TestGenerator_Normal(t *testing.T) {
	g := NewGenerator(42)
	sum := 0.0
	const n = 5000
	for i := 0; i < n; i++ {
		sum += g.Normal(10, 2)
	}
	assert.InDelta(t, 10.0, sum/n, 0.2)
}
