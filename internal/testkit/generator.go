// Package testkit builds deterministic synthetic tables for tests,
// benchmarks and the patternfinder command.
//
// Every generator takes a seed and draws from its own PCG stream, so the
// same seed always produces the same table. Continuous columns are drawn by
// inverse-transform sampling through gonum distuv quantile functions.
package testkit

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/ezoic/vipattern/core/dataset"
)

// Table is a generated dataset.
type Table struct {
	Rows   []dataset.Row
	Fields []dataset.FieldMeta
}

// Generator draws synthetic columns from a seeded source.
type Generator struct {
	rng *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rng: rand.New(rand.NewPCG(seed, seed+1))}
}

// unit returns a uniform draw strictly inside (0, 1), safe for quantiles.
func (g *Generator) unit() float64 {
	const n = 1 << 30
	return (float64(g.rng.IntN(n)) + 0.5) / n
}

// Normal draws from N(mu, sigma²).
func (g *Generator) Normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma}.Quantile(g.unit())
}

// LogNormal draws from a log-normal distribution.
func (g *Generator) LogNormal(mu, sigma float64) float64 {
	return distuv.LogNormal{Mu: mu, Sigma: sigma}.Quantile(g.unit())
}

// Exponential draws from an exponential distribution with the given rate.
func (g *Generator) Exponential(rate float64) float64 {
	return distuv.Exponential{Rate: rate}.Quantile(g.unit())
}

// Choice returns one of options uniformly.
func (g *Generator) Choice(options []string) string {
	return options[g.rng.IntN(len(options))]
}

// IntN returns a uniform int in [0, n).
func (g *Generator) IntN(n int) int { return g.rng.IntN(n) }

// Float64 returns a uniform float in [0, 1).
func (g *Generator) Float64() float64 { return g.rng.Float64() }

// Univariate has a constant measure A (42 on every row) and a measure B
// cycling through 16 evenly spaced values, so B's histogram is uniform over
// 16 bins.
func Univariate(n int) Table {
	rows := make([]dataset.Row, n)
	for i := range rows {
		rows[i] = dataset.Row{
			"A": dataset.Number(42),
			"B": dataset.Number(float64(i%16) * 2.5),
		}
	}
	return Table{
		Rows:   rows,
		Fields: []dataset.FieldMeta{dataset.NewMeasure("A"), dataset.NewMeasure("B")},
	}
}

// Correlated has a measure X, a dimension D that names the bin of X it
// falls in (one D value per bin of 16), and a dimension R drawn independently
// of X.
func Correlated(n int, seed uint64) Table {
	g := NewGenerator(seed)
	xs := make([]float64, n)
	for i := range xs {
		xs[i] = g.Normal(50, 10)
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range xs {
		lo, hi = math.Min(lo, x), math.Max(hi, x)
	}
	step := (hi - lo) / 16

	noise := []string{"red", "green", "blue", "amber", "violet"}
	rows := make([]dataset.Row, n)
	for i, x := range xs {
		bin := int((x - lo) / step)
		if bin >= 16 {
			bin = 15
		}
		rows[i] = dataset.Row{
			"X": dataset.Number(x),
			"D": dataset.String(fmt.Sprintf("bin-%02d", bin)),
			"R": dataset.String(g.Choice(noise)),
		}
	}
	return Table{
		Rows: rows,
		Fields: []dataset.FieldMeta{
			dataset.NewMeasure("X"),
			dataset.NewDimension("D"),
			dataset.NewDimension("R"),
		},
	}
}

// Sales is a retail-like table mixing dimensions and measures with some
// missing values:
//
//   - region, channel, weekday: dimensions; price depends on region and
//     quantity on channel
//   - price, quantity, revenue, discount: measures; revenue = price ×
//     quantity, discount is missing on roughly one row in ten
func Sales(n int, seed uint64) Table {
	g := NewGenerator(seed)
	regions := []string{"north", "south", "east", "west"}
	regionMu := map[string]float64{"north": 3.0, "south": 3.4, "east": 2.6, "west": 3.8}
	channels := []string{"web", "store", "phone"}
	channelRate := map[string]float64{"web": 0.5, "store": 0.2, "phone": 1.0}
	weekdays := []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

	rows := make([]dataset.Row, n)
	for i := range rows {
		region := g.Choice(regions)
		channel := g.Choice(channels)
		price := g.LogNormal(regionMu[region], 0.3)
		qty := math.Ceil(g.Exponential(channelRate[channel]))

		row := dataset.Row{
			"region":   dataset.String(region),
			"channel":  dataset.String(channel),
			"weekday":  dataset.String(g.Choice(weekdays)),
			"price":    dataset.Number(math.Round(price*100) / 100),
			"quantity": dataset.Number(qty),
			"revenue":  dataset.Number(math.Round(price*qty*100) / 100),
			"discount": dataset.Null(),
		}
		if g.Float64() >= 0.1 {
			row["discount"] = dataset.Number(math.Round(g.Float64()*30) / 100)
		}
		rows[i] = row
	}
	return Table{
		Rows: rows,
		Fields: []dataset.FieldMeta{
			dataset.NewDimension("region"),
			dataset.NewDimension("channel"),
			dataset.NewDimension("weekday"),
			dataset.NewMeasure("price"),
			dataset.NewMeasure("quantity"),
			dataset.NewMeasure("revenue"),
			dataset.NewMeasure("discount"),
		},
	}
}
