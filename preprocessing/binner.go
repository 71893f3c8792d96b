// Package preprocessing provides the discretization steps that feed the
// information-theoretic scores in package metrics.
//
// This package implements:
//
//   - Binner: equal-width binning of a numeric sample into a fixed number of
//     bins, either on the sample's own range or on a caller-supplied shared
//     range, plus per-value bin maps and 2-D joint binning
//   - LabelEncoder: grouping of categorical keys in first-appearance order
//     with per-class frequencies
//
// Binning on a shared range is what makes histograms of different subsets
// comparable: a global sample and a filtered subset binned on the same range
// have bins that cover the same intervals.
//
// Example usage:
//
//	binner, err := preprocessing.NewBinner(16, rand.NewPCG(1, 2))
//	if err != nil {
//		log.Fatal(err)
//	}
//	hist := binner.Bin(values)
//	r, _ := preprocessing.RangeOf(values)
//	sub := binner.BinShareRange(subset, r.Min, r.Max)
package preprocessing

import (
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/vipattern/core/tensor"
	"github.com/ezoic/vipattern/pkg/errors"
)

// DefaultBinSize is the number of bins used when none is configured.
const DefaultBinSize = 16

// Range is a closed numeric interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// Width returns Max - Min.
func (r Range) Width() float64 { return r.Max - r.Min }

// Degenerate reports whether the range has zero width.
func (r Range) Degenerate() bool { return r.Max == r.Min }

// RangeOf returns the min and max of the non-NaN values. ok is false when
// there is no such value.
func RangeOf(values []float64) (r Range, ok bool) {
	clean := values
	for _, v := range values {
		if math.IsNaN(v) {
			clean = dropNaN(values)
			break
		}
	}
	if len(clean) == 0 {
		return Range{}, false
	}
	return Range{Min: floats.Min(clean), Max: floats.Max(clean)}, true
}

// RangeOfPoints returns the per-axis ranges of 2-D points, skipping points
// with a NaN coordinate.
func RangeOfPoints(points [][2]float64) (x, y Range, ok bool) {
	x = Range{Min: math.Inf(1), Max: math.Inf(-1)}
	y = x
	for _, p := range points {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			continue
		}
		ok = true
		x.Min = math.Min(x.Min, p[0])
		x.Max = math.Max(x.Max, p[0])
		y.Min = math.Min(y.Min, p[1])
		y.Max = math.Max(y.Max, p[1])
	}
	if !ok {
		return Range{}, Range{}, false
	}
	return x, y, true
}

func dropNaN(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

// Binner discretizes samples into BinSize equal-width bins.
//
// NaN entries are skipped by every method. Values outside a shared range
// are clamped into the first or last bin. A value equal to the maximum
// lands in the synthetic overflow bin and is folded into the last real bin.
type Binner struct {
	binSize int

	// rng breaks ties for bin maps over a zero-width range.
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBinner creates a Binner with binSize bins. binSize must be at least 2
// and even, so that the half-resolution 2-D grid exists. src drives the
// random bin assignment used for zero-width ranges; nil selects a
// time-independent fixed seed so results are reproducible by default.
func NewBinner(binSize int, src rand.Source) (*Binner, error) {
	if binSize < 2 || binSize%2 != 0 {
		return nil, errors.NewValueError("NewBinner", "bin size must be an even number >= 2")
	}
	if src == nil {
		src = rand.NewPCG(0x5eed, 0xb175)
	}
	return &Binner{binSize: binSize, rng: rand.New(src)}, nil
}

// BinSize returns the number of bins.
func (b *Binner) BinSize() int { return b.binSize }

// Fork returns a Binner with the same bin size and its own random source,
// seeded from b's. Goroutines that bin concurrently each take a fork, made
// in a fixed order beforehand, so zero-width bin maps stay reproducible
// regardless of scheduling.
func (b *Binner) Fork() *Binner {
	b.mu.Lock()
	s1, s2 := b.rng.Uint64(), b.rng.Uint64()
	b.mu.Unlock()
	return &Binner{binSize: b.binSize, rng: rand.New(rand.NewPCG(s1, s2))}
}

// index maps v to a bin in [0, n) for the non-degenerate range [min, max].
// Values outside the range clamp to the nearest end bin.
func index(v, min, max float64, n int) int {
	off, width := v-min, max-min
	if math.IsInf(width, 0) {
		// the range overflows float64; halving both sides keeps the ratio
		off, width = v/2-min/2, max/2-min/2
	}
	f := math.Floor(off / (width / float64(n)))
	// f == n only for the maximum: fold the overflow bin into the last bin.
	if f >= float64(n) {
		return n - 1
	}
	if !(f >= 0) {
		return 0
	}
	return int(f)
}

// Bin returns the histogram of values over their own range.
func (b *Binner) Bin(values []float64) []float64 {
	r, ok := RangeOf(values)
	if !ok {
		return make([]float64, b.binSize)
	}
	return b.BinShareRange(values, r.Min, r.Max)
}

// BinShareRange returns the histogram of values over [min, max]. When
// min == max every bin holds count/BinSize, so the counts still sum to the
// number of values binned.
func (b *Binner) BinShareRange(values []float64, min, max float64) []float64 {
	dist := make([]float64, b.binSize)
	if max == min {
		count := 0
		for _, v := range values {
			if !math.IsNaN(v) {
				count++
			}
		}
		share := float64(count) / float64(b.binSize)
		for i := range dist {
			dist[i] = share
		}
		return dist
	}

	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		dist[index(v, min, max, b.binSize)]++
	}
	return dist
}

// BinMap returns the bin index of each value over the values' own range.
func (b *Binner) BinMap(values []float64) []int {
	r, _ := RangeOf(values)
	return b.BinMapShareRange(values, r.Min, r.Max)
}

// BinMapShareRange returns the bin index of each value over [min, max].
// The result has one entry per input value; NaN values map to -1.
//
// When min == max there is no meaningful partition and each value gets a
// uniformly random bin in [0, BinSize) drawn from the Binner's source.
// Callers that only need some partition rely on this.
func (b *Binner) BinMapShareRange(values []float64, min, max float64) []int {
	out := make([]int, len(values))
	if max == min {
		b.mu.Lock()
		defer b.mu.Unlock()
		for i, v := range values {
			if math.IsNaN(v) {
				out[i] = -1
				continue
			}
			out[i] = b.rng.IntN(b.binSize)
		}
		return out
	}

	for i, v := range values {
		if math.IsNaN(v) {
			out[i] = -1
			continue
		}
		out[i] = index(v, min, max, b.binSize)
	}
	return out
}

// MatrixBinShareRange returns the joint histogram of points on a
// (BinSize/2)×(BinSize/2) grid over the given per-axis ranges.
func (b *Binner) MatrixBinShareRange(points [][2]float64, x, y Range) *tensor.Grid {
	return GridShareRange(points, x, y, b.binSize/2)
}

// GridShareRange counts points on an n×n grid over the per-axis ranges.
// Rows follow the x axis, columns the y axis. Each axis folds its
// overflow bin into the last bin independently. A zero-width axis
// collapses to a single bin: every point goes to index 0 on that axis.
func GridShareRange(points [][2]float64, x, y Range, n int) *tensor.Grid {
	g := tensor.MustGrid(n, n)
	for _, p := range points {
		if math.IsNaN(p[0]) || math.IsNaN(p[1]) {
			continue
		}
		i, j := 0, 0
		if !x.Degenerate() {
			i = index(p[0], x.Min, x.Max, n)
		}
		if !y.Degenerate() {
			j = index(p[1], y.Min, y.Max, n)
		}
		g.Inc(i, j, 1)
	}
	return g
}
