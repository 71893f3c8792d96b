package metrics

import (
	"gonum.org/v1/gonum/floats"

	"github.com/ezoic/vipattern/core/tensor"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/preprocessing"
)

// NormalizeScatter turns a 2-D point cloud into a B×B probability surface.
//
// Each axis is binned on the points' own range with its own step; the
// maximum on either axis folds into the last row or column. Every cell is
// then divided by the number of points, so the surface sums to 1. An axis
// with zero width collapses to a single bin (index 0). Empty input returns
// an all-zero surface.
func (s *Scorer) NormalizeScatter(points [][2]float64) *tensor.Grid {
	B := s.BinSize()
	x, y, ok := preprocessing.RangeOfPoints(points)
	if !ok {
		return tensor.MustGrid(B, B)
	}
	g := preprocessing.GridShareRange(points, x, y, B)
	if total := g.Sum(); total > 0 {
		g.Scale(1 / total)
	}
	return g
}

func sameShape(op string, a, b *tensor.Grid) error {
	ar, ac := a.Dims()
	br, bc := b.Dims()
	if ar != br {
		return errors.NewDimensionError(op, ar, br, 0)
	}
	if ac != bc {
		return errors.NewDimensionError(op, ac, bc, 1)
	}
	return nil
}

// L1Dis2 returns half the summed absolute difference between two
// equally-shaped surfaces. For probability surfaces this is in [0, 1].
func L1Dis2(a, b *tensor.Grid) (float64, error) {
	if err := sameShape("L1Dis2", a, b); err != nil {
		return 0, err
	}
	return floats.Distance(a.Flat(), b.Flat(), 1) / 2, nil
}

// L2Dis2 returns half the summed squared difference between two
// equally-shaped surfaces.
func L2Dis2(a, b *tensor.Grid) (float64, error) {
	if err := sameShape("L2Dis2", a, b); err != nil {
		return 0, err
	}
	fa := a.Flat()
	d := floats.SubTo(make([]float64, len(fa)), fa, b.Flat())
	return floats.Dot(d, d) / 2, nil
}

// IncSim measures how much of the difference between two scatter patterns
// is explained by the grouping T.
//
// It computes the unconditional dissimilarity S = L2Dis2 of the two
// normalized scatters, then for every group of T the dissimilarity of the
// group's own sub-scatters weighted by the group's share of rows. Groups
// with fewer than B² points are too sparse to histogram and contribute
// their share directly. The result is S - condS; higher means T explains
// the difference better.
//
// Parameters:
//   - T: category key per row
//   - pointsX, pointsY: the two scatter patterns, row-aligned with T
//
// Returns:
//   - float64: the explained dissimilarity (may be negative)
//   - error: DimensionError if the three inputs differ in length
func (s *Scorer) IncSim(T []string, pointsX, pointsY [][2]float64) (_ float64, err error) {
	defer errors.Recover(&err, "Scorer.IncSim")
	if len(pointsX) != len(pointsY) {
		return 0, errors.NewDimensionError("Scorer.IncSim", len(pointsX), len(pointsY), 0)
	}
	if len(T) != len(pointsX) {
		return 0, errors.NewDimensionError("Scorer.IncSim", len(pointsX), len(T), 0)
	}
	if len(T) == 0 {
		return 0, nil
	}

	S, err := L2Dis2(s.NormalizeScatter(pointsX), s.NormalizeScatter(pointsY))
	if err != nil {
		return 0, err
	}

	enc := preprocessing.NewLabelEncoder()
	codes := enc.FitTransform(T)
	groupX := make([][][2]float64, enc.NClasses())
	groupY := make([][][2]float64, enc.NClasses())
	for i, c := range codes {
		groupX[c] = append(groupX[c], pointsX[i])
		groupY[c] = append(groupY[c], pointsY[i])
	}

	B := s.BinSize()
	minPoints := B * B
	n := float64(len(pointsX))
	condS := 0.0
	for c := range groupX {
		p := float64(len(groupX[c])) / n
		if len(groupX[c]) < minPoints {
			condS += p
			continue
		}
		d, err := L2Dis2(s.NormalizeScatter(groupX[c]), s.NormalizeScatter(groupY[c]))
		if err != nil {
			return 0, err
		}
		condS += p * d
	}
	return S - condS, nil
}
