// Package metrics provides the information-theoretic scores used by the
// pattern engine.
//
// This package implements:
//
// Entropy Estimation:
//   - RangeNormalize: frequency vector to probability vector
//   - Entropy: Shannon entropy in bits
//   - CountEntropy: entropy of the non-zero bins of a histogram
//   - KLDivergence: Kullback-Leibler divergence in bits over shared support
//
// Association Scores (Scorer):
//   - MIC: information-gain ratio of a binned grouping against a numeric target
//   - GeneralMIC: the same for categorical groupings, with long-tail truncation
//   - GeneralMatMIC: GeneralMIC against a 2-D target
//
// Scatter Comparison (Scorer):
//   - NormalizeScatter: 2-D point cloud to a probability surface
//   - L1Dis2, L2Dis2: halved L1 / squared-L2 distance between surfaces
//   - IncSim: how much of the divergence between two scatters a grouping explains
//
// Degenerate input (zero-width ranges, empty groups) never fails: it yields
// the documented neutral score. Only mismatched input lengths are errors.
//
// Example usage:
//
//	binner, _ := preprocessing.NewBinner(16, nil)
//	scorer := metrics.NewScorer(binner)
//	score, err := scorer.GeneralMIC(regions, sales)
//	if err != nil {
//		log.Fatal(err)
//	}
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/vipattern/pkg/errors"
)

// RangeNormalize divides every count by the total of all counts.
//
// Zero-count bins should be removed first (see PositiveCounts) wherever the
// result is fed to Entropy. An empty input returns an empty slice.
//
// Parameters:
//   - counts: non-negative frequencies
//
// Returns:
//   - []float64: probabilities summing to 1
//   - error: ValueError if counts is non-empty but sums to zero
//
// Example:
//
//	p, err := metrics.RangeNormalize([]float64{1, 3})
//	// p == [0.25, 0.75]
func RangeNormalize(counts []float64) ([]float64, error) {
	if len(counts) == 0 {
		return []float64{}, nil
	}
	total := floats.Sum(counts)
	if total == 0 {
		return nil, errors.NewValueError("RangeNormalize", "counts sum to zero")
	}
	p := make([]float64, len(counts))
	floats.ScaleTo(p, 1/total, counts)
	return p, nil
}

// PositiveCounts returns the strictly positive entries of counts in order.
func PositiveCounts(counts []float64) []float64 {
	out := make([]float64, 0, len(counts))
	for _, c := range counts {
		if c > 0 {
			out = append(out, c)
		}
	}
	return out
}

// Entropy returns the Shannon entropy of p in bits, -Σ p·log2(p).
// Zero probabilities contribute nothing. p is expected to sum to 1.
func Entropy(p []float64) float64 {
	// stat.Entropy works in nats and skips zero entries.
	return stat.Entropy(p) / math.Ln2
}

// CountEntropy returns the entropy in bits of the distribution described by
// a histogram, ignoring empty bins. A histogram with no positive bin has
// entropy 0.
func CountEntropy(counts []float64) float64 {
	pos := PositiveCounts(counts)
	if len(pos) == 0 {
		return 0
	}
	// pos has a positive sum, so normalization cannot fail.
	p, _ := RangeNormalize(pos)
	return Entropy(p)
}

// KLDivergence returns Σ p·log2(p/q) over the bins where both p and q are
// positive. Bins outside the shared support are ignored rather than making
// the divergence infinite.
func KLDivergence(p, q []float64) (float64, error) {
	if len(p) != len(q) {
		return 0, errors.NewDimensionError("KLDivergence", len(p), len(q), 0)
	}
	kl := 0.0
	for i := range p {
		if p[i] > 0 && q[i] > 0 {
			kl += p[i] * math.Log2(p[i]/q[i])
		}
	}
	return kl, nil
}
