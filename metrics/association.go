package metrics

import (
	"math"

	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/preprocessing"
)

// Scorer computes association and comparison scores on the bin resolution
// of its Binner. It is safe for concurrent use.
type Scorer struct {
	binner *preprocessing.Binner
}

// NewScorer creates a Scorer using binner for every discretization.
func NewScorer(binner *preprocessing.Binner) *Scorer {
	return &Scorer{binner: binner}
}

// BinSize returns the bin count B every score is derived from.
func (s *Scorer) BinSize() int { return s.binner.BinSize() }

// Binner returns the underlying binner.
func (s *Scorer) Binner() *preprocessing.Binner { return s.binner }

// MIC scores how much knowing the bin index T tells about the numeric
// target X, as an information-gain ratio:
//
//	(H(X) - Σ_t p(t)·H(X|T=t)) / log2(B)
//
// Every entropy is computed on X's own global range, so conditional and
// unconditional histograms share bin boundaries. T must hold bin indices;
// entries outside [0, B) belong to no group and add nothing to the
// conditional term. A constant X scores 0.
//
// Parameters:
//   - T: grouping bin index per row (typically from Binner.BinMapShareRange)
//   - X: numeric target per row, without missing values
//
// Returns:
//   - float64: score in [0, 1]
//   - error: DimensionError if len(T) != len(X)
//
// Example:
//
//	r, _ := preprocessing.RangeOf(price)
//	T := binner.BinMapShareRange(price, r.Min, r.Max)
//	score, err := scorer.MIC(T, quantity)
func (s *Scorer) MIC(T []int, X []float64) (_ float64, err error) {
	defer errors.Recover(&err, "Scorer.MIC")
	if len(T) != len(X) {
		return 0, errors.NewDimensionError("Scorer.MIC", len(X), len(T), 0)
	}
	r, ok := preprocessing.RangeOf(X)
	if !ok || r.Degenerate() {
		return 0, nil
	}

	B := s.BinSize()
	H := CountEntropy(s.binner.BinShareRange(X, r.Min, r.Max))

	groups := make([][]float64, B)
	for i, t := range T {
		if t >= 0 && t < B {
			groups[t] = append(groups[t], X[i])
		}
	}

	n := float64(len(X))
	condH := 0.0
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		px := float64(len(g)) / n
		condH += px * CountEntropy(s.binner.BinShareRange(g, r.Min, r.Max))
	}
	return (H - condH) / math.Log2(float64(B)), nil
}

// GeneralMIC is MIC for a categorical grouping of any cardinality.
//
// When T has more than B-1 distinct values, the B-1 most frequent groups
// (ties broken by first appearance) each contribute their own conditional
// entropy term and all remaining groups are merged into one noise group
// whose summed histogram contributes a single term. The score is
// normalized by log2(min(B, distinct)). Fewer than two distinct groups or a
// constant X score 0.
//
// Parameters:
//   - T: category key per row
//   - X: numeric target per row, without missing values
//
// Returns:
//   - float64: score in [0, 1]
//   - error: DimensionError if len(T) != len(X)
func (s *Scorer) GeneralMIC(T []string, X []float64) (_ float64, err error) {
	defer errors.Recover(&err, "Scorer.GeneralMIC")
	if len(T) != len(X) {
		return 0, errors.NewDimensionError("Scorer.GeneralMIC", len(X), len(T), 0)
	}
	r, ok := preprocessing.RangeOf(X)
	if !ok || r.Degenerate() {
		return 0, nil
	}

	H := CountEntropy(s.binner.BinShareRange(X, r.Min, r.Max))
	hist := func(rows []int) []float64 {
		vals := make([]float64, len(rows))
		for i, row := range rows {
			vals[i] = X[row]
		}
		return s.binner.BinShareRange(vals, r.Min, r.Max)
	}
	return s.truncatedGain("Scorer.GeneralMIC", T, H, hist), nil
}

// GeneralMatMIC is GeneralMIC against a 2-D target: the joint distribution
// of a pair of measures, binned on a (B/2)×(B/2) grid over the points'
// per-axis ranges. Points where both axes are constant score 0.
func (s *Scorer) GeneralMatMIC(T []string, points [][2]float64) (_ float64, err error) {
	defer errors.Recover(&err, "Scorer.GeneralMatMIC")
	if len(T) != len(points) {
		return 0, errors.NewDimensionError("Scorer.GeneralMatMIC", len(points), len(T), 0)
	}
	x, y, ok := preprocessing.RangeOfPoints(points)
	if !ok || (x.Degenerate() && y.Degenerate()) {
		return 0, nil
	}

	H := CountEntropy(s.binner.MatrixBinShareRange(points, x, y).Flat())
	hist := func(rows []int) []float64 {
		sub := make([][2]float64, len(rows))
		for i, row := range rows {
			sub[i] = points[row]
		}
		return s.binner.MatrixBinShareRange(sub, x, y).Flat()
	}
	return s.truncatedGain("Scorer.GeneralMatMIC", T, H, hist), nil
}

// truncatedGain computes (H - condH) / log2(min(B, k)) for the k groups of
// T, keeping the B-1 most frequent groups and folding the rest into one
// noise group. hist returns the histogram of a set of row indices on the
// shared range.
func (s *Scorer) truncatedGain(op string, T []string, H float64, hist func(rows []int) []float64) float64 {
	enc := preprocessing.NewLabelEncoder()
	codes := enc.FitTransform(T)
	k := enc.NClasses()
	if k < 2 {
		return 0
	}

	rowsOf := make([][]int, k)
	for i, c := range codes {
		rowsOf[c] = append(rowsOf[c], i)
	}

	B := s.BinSize()
	n := float64(len(T))
	condH := 0.0
	var noise []float64
	noiseFreq := 0
	for rank, c := range enc.ByFrequency() {
		h := hist(rowsOf[c])
		if rank < B-1 {
			condH += float64(enc.Counts[c]) / n * CountEntropy(h)
			continue
		}
		if noise == nil {
			noise = make([]float64, len(h))
		}
		for j, v := range h {
			noise[j] += v
		}
		noiseFreq += enc.Counts[c]
	}
	if noiseFreq > 0 {
		condH += float64(noiseFreq) / n * CountEntropy(noise)
	}

	score := (H - condH) / math.Log2(math.Min(float64(B), float64(k)))
	if werr := errors.CheckScalar(op, "score", score); werr != nil {
		errors.Warn(werr)
		return 0
	}
	return score
}
