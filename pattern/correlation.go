package pattern

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/core/tensor"
	"github.com/ezoic/vipattern/metrics"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/pkg/log"
	"github.com/ezoic/vipattern/preprocessing"
)

// FirstPattern builds the measures × measures association matrix.
//
// Cell (i, j) is MIC of measure i, binned on its own range and used as the
// grouping, against measure j, over the rows where both are present. The
// matrix is not symmetric and its diagonal is not zeroed. Rows of the
// matrix are computed concurrently, bounded by WithWorkers.
//
// Parameters:
//   - ctx: cancels the computation between cells
//
// Returns:
//   - *AssociationMatrix: measures in dataset order and their scores
//   - error: ctx.Err() if cancelled
//
// Example:
//
//	m, err := engine.FirstPattern(ctx)
//	for i, f := range m.Measures {
//		fmt.Println(f.ID, m.Values[i])
//	}
func (e *Engine) FirstPattern(ctx context.Context) (*AssociationMatrix, error) {
	d, ok := e.current()
	if !ok {
		return &AssociationMatrix{Measures: []dataset.FieldMeta{}, Values: [][]float64{}}, nil
	}
	done := e.begin(log.OperationFirstPattern, d)

	measures := d.snap.Measures()
	values := newMatrix(len(measures))

	// One binner per row, forked in order so zero-width ranges get the same
	// random bin maps however the rows are scheduled.
	forks := make([]*preprocessing.Binner, len(measures))
	for i := range forks {
		forks[i] = e.binner.Fork()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range measures {
		g.Go(func() (err error) {
			defer errors.Recover(&err, "Engine.FirstPattern")
			scorer := metrics.NewScorer(forks[i])
			for j := range measures {
				if err := ctx.Err(); err != nil {
					return err
				}
				s, err := micOf(forks[i], scorer, d.snap, measures[i].ID, measures[j].ID)
				if err != nil {
					return err
				}
				values[i][j] = s
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	done(log.MeasuresKey, len(measures), log.WorkersKey, e.workers)
	return &AssociationMatrix{Measures: measures, Values: values}, nil
}

// measurePairs returns every unordered pair of distinct measures, i < j in
// dataset order.
func measurePairs(measures []dataset.FieldMeta) []MeasurePair {
	pairs := make([]MeasurePair, 0, len(measures)*(len(measures)-1)/2)
	for i := range measures {
		for j := i + 1; j < len(measures); j++ {
			pairs = append(pairs, MeasurePair{X: measures[i].ID, Y: measures[j].ID})
		}
	}
	return pairs
}

// scatterOf returns the normalized scatter of a pair over the rows where
// both measures are present.
func (e *Engine) scatterOf(snap *dataset.Snapshot, p MeasurePair) *tensor.Grid {
	rows := snap.Complete(p.X, p.Y)
	return e.scorer.NormalizeScatter(snap.PointsAt(p.X, p.Y, rows))
}

// SecondPattern compares the shapes of every pair of measure pairs.
//
// Each unordered pair of distinct measures gets its normalized scatter;
// cell (p, q) is L1Dis2 between the scatters of pairs p and q. The matrix
// is symmetric with a zero diagonal. Scatters and cells are computed
// concurrently, bounded by WithWorkers.
func (e *Engine) SecondPattern(ctx context.Context) (*PairMatrix, error) {
	d, ok := e.current()
	if !ok {
		return &PairMatrix{Pairs: []MeasurePair{}, Values: [][]float64{}}, nil
	}
	done := e.begin(log.OperationSecondPattern, d)

	pairs := measurePairs(d.snap.Measures())
	scatters := make([]*tensor.Grid, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for p := range pairs {
		g.Go(func() (err error) {
			defer errors.Recover(&err, "Engine.SecondPattern")
			if err := gctx.Err(); err != nil {
				return err
			}
			scatters[p] = e.scatterOf(d.snap, pairs[p])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	values := newMatrix(len(pairs))
	g, gctx = errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for p := range pairs {
		g.Go(func() (err error) {
			defer errors.Recover(&err, "Engine.SecondPattern")
			for q := p + 1; q < len(pairs); q++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				dist, err := metrics.L1Dis2(scatters[p], scatters[q])
				if err != nil {
					return err
				}
				values[p][q] = dist
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for p := range values {
		for q := p + 1; q < len(values); q++ {
			values[q][p] = values[p][q]
		}
	}

	done(log.PatternsKey, len(pairs), log.WorkersKey, e.workers)
	return &PairMatrix{Pairs: pairs, Values: values}, nil
}
