package pattern

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/pkg/log"
)

// FeatureSelectionForSecondPatternWithSpecifiedViews finds the dimension
// that best explains why the scatters of two measure pairs differ.
//
// Every dimension is scored with IncSim against the two pairs' point sets,
// taken over the rows where all four measures are present. The dimension
// with the highest score wins; ties keep the earlier dimension.
//
// Parameters:
//   - a, b: the measure pairs to compare
//
// Returns:
//   - *FeatureSelection: the winning dimension, or nil if none scores above 0
//   - error: FieldError if a pair names a field that is not a measure of the dataset
func (e *Engine) FeatureSelectionForSecondPatternWithSpecifiedViews(a, b MeasurePair) (_ *FeatureSelection, err error) {
	defer errors.Recover(&err, "Engine.FeatureSelectionForSecondPatternWithSpecifiedViews")
	d, ok := e.current()
	if !ok {
		return nil, nil
	}
	done := e.begin(log.OperationCompare, d)

	sel, err := e.selectFeature("Engine.FeatureSelectionForSecondPatternWithSpecifiedViews", d.snap, a, b)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		done(log.PairKey, a.String()+" vs "+b.String())
		return nil, nil
	}
	done(log.PairKey, a.String()+" vs "+b.String(), log.FieldKey, sel.Feature.ID, log.ScoreKey, sel.Score)
	return sel, nil
}

func (e *Engine) selectFeature(op string, snap *dataset.Snapshot, a, b MeasurePair) (*FeatureSelection, error) {
	for _, id := range []string{a.X, a.Y, b.X, b.Y} {
		if _, err := snap.LookupMeasure(op, id); err != nil {
			return nil, err
		}
	}

	rows := snap.Complete(a.X, a.Y, b.X, b.Y)
	if len(rows) == 0 {
		return nil, nil
	}
	pointsA := snap.PointsAt(a.X, a.Y, rows)
	pointsB := snap.PointsAt(b.X, b.Y, rows)

	var best *FeatureSelection
	for _, dim := range snap.Dimensions() {
		s, err := e.scorer.IncSim(snap.KeysAt(dim.ID, rows), pointsA, pointsB)
		if err != nil {
			return nil, err
		}
		if s > 0 && (best == nil || s > best.Score) {
			best = &FeatureSelection{Feature: dim, Score: s}
		}
	}
	return best, nil
}

// FeatureSelectForSecondPattern runs the pair-of-pairs dimension search over
// every two distinct measure pairs and returns the pairs for which some
// dimension scores above 0, in pair order. Each result is also logged at
// debug level. This is a diagnostic sweep: it is quadratic in the number of
// measure pairs.
func (e *Engine) FeatureSelectForSecondPattern(ctx context.Context) ([]PairFeatureSelection, error) {
	d, ok := e.current()
	if !ok {
		return []PairFeatureSelection{}, nil
	}
	done := e.begin(log.OperationCompareSweep, d)
	logger := e.logger.With(log.OperationKey, log.OperationCompareSweep)

	pairs := measurePairs(d.snap.Measures())
	type job struct{ p, q int }
	jobs := make([]job, 0, len(pairs)*(len(pairs)-1)/2)
	for p := range pairs {
		for q := p + 1; q < len(pairs); q++ {
			jobs = append(jobs, job{p, q})
		}
	}
	found := make([]*FeatureSelection, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, jb := range jobs {
		g.Go(func() (err error) {
			defer errors.Recover(&err, "Engine.FeatureSelectForSecondPattern")
			if err := gctx.Err(); err != nil {
				return err
			}
			sel, err := e.selectFeature("Engine.FeatureSelectForSecondPattern", d.snap, pairs[jb.p], pairs[jb.q])
			if err != nil {
				return err
			}
			found[i] = sel
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]PairFeatureSelection, 0)
	for i, sel := range found {
		if sel == nil {
			continue
		}
		r := PairFeatureSelection{
			A:       pairs[jobs[i].p],
			B:       pairs[jobs[i].q],
			Feature: sel.Feature,
			Score:   sel.Score,
		}
		logger.Debug("Best dimension",
			log.PairKey, r.A.String()+" vs "+r.B.String(),
			log.FieldKey, r.Feature.ID,
			log.ScoreKey, r.Score,
		)
		out = append(out, r)
	}
	done(log.PatternsKey, len(out), log.WorkersKey, e.workers)
	return out, nil
}
