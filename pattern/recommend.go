package pattern

import (
	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/metrics"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/pkg/log"
	"github.com/ezoic/vipattern/preprocessing"
)

// PureFeatureRecommend ranks the dimensions not in view by how well they
// explain the view's measures.
//
// A dimension's score is the mean GeneralMIC between it and each measure of
// the view, evaluated on the view's filtered rows. For each measure, rows
// where the measure is missing are dropped; a missing dimension value is
// its own category. Results extend view by one dimension each and are
// sorted by descending score. A view without measures has nothing to
// explain and yields no recommendations.
//
// Returns:
//   - []Pattern: view + dimension, importance = mean score
//   - error: FieldError if view references a field or filter field not in the dataset
//
// Example:
//
//	recs, err := engine.PureFeatureRecommend(pattern.NewPattern(price))
//	if err == nil && len(recs) > 0 {
//		fmt.Println("best dimension:", recs[0].Fields[1].ID)
//	}
func (e *Engine) PureFeatureRecommend(view Pattern) (_ []Pattern, err error) {
	defer errors.Recover(&err, "Engine.PureFeatureRecommend")
	return e.recommend("Engine.PureFeatureRecommend", view, func(snap *dataset.Snapshot, dim string, measures []dataset.FieldMeta) (float64, error) {
		scores := make([]float64, len(measures))
		for i, m := range measures {
			rows := snap.Complete(m.ID)
			s, err := e.scorer.GeneralMIC(snap.KeysAt(dim, rows), snap.FloatsAt(m.ID, rows))
			if err != nil {
				return 0, err
			}
			scores[i] = s
		}
		return stat.Mean(scores, nil), nil
	})
}

// PureFeatureRecommendProjected is PureFeatureRecommend for views that
// hold several measures: a dimension's score is the mean GeneralMatMIC
// over every pair of view measures, so it rewards dimensions that separate
// the joint scatter rather than each marginal. Views with fewer than two
// measures fall back to PureFeatureRecommend.
func (e *Engine) PureFeatureRecommendProjected(view Pattern) (_ []Pattern, err error) {
	defer errors.Recover(&err, "Engine.PureFeatureRecommendProjected")
	return e.recommend("Engine.PureFeatureRecommendProjected", view, func(snap *dataset.Snapshot, dim string, measures []dataset.FieldMeta) (float64, error) {
		pairs := measurePairs(measures)
		if len(pairs) == 0 {
			rows := snap.Complete(measures[0].ID)
			return e.scorer.GeneralMIC(snap.KeysAt(dim, rows), snap.FloatsAt(measures[0].ID, rows))
		}
		scores := make([]float64, len(pairs))
		for i, p := range pairs {
			rows := snap.Complete(p.X, p.Y)
			s, err := e.scorer.GeneralMatMIC(snap.KeysAt(dim, rows), snap.PointsAt(p.X, p.Y, rows))
			if err != nil {
				return 0, err
			}
			scores[i] = s
		}
		return stat.Mean(scores, nil), nil
	})
}

type dimensionScore func(snap *dataset.Snapshot, dim string, measures []dataset.FieldMeta) (float64, error)

func (e *Engine) recommend(op string, view Pattern, score dimensionScore) ([]Pattern, error) {
	d, ok := e.current()
	if !ok {
		return []Pattern{}, nil
	}
	done := e.begin(log.OperationRecommend, d)

	snap, fields, err := e.resolve(op, d, view)
	if err != nil {
		return nil, err
	}
	measures := filterFields(fields, dataset.FieldMeta.IsMeasure)
	out := make([]Pattern, 0)
	if len(measures) == 0 || snap.Len() == 0 {
		done(log.PatternsKey, 0)
		return out, nil
	}

	for _, dim := range snap.Dimensions() {
		if dataset.ContainsField(view.Fields, dim.ID) {
			continue
		}
		s, err := score(snap, dim.ID, measures)
		if err != nil {
			return nil, err
		}
		out = append(out, view.extend(dim, s))
	}
	sortDescending(out)
	done(log.PatternsKey, len(out))
	return out, nil
}

// RecommendFilter splits view on the values of its most informative
// dimension.
//
// Among the view's dimensions that are not already filtered, the one with
// the highest mean GeneralMIC against the view's measures is chosen. For
// each of its distinct values (first-appearance order) a pattern is emitted
// with that dimension removed from the fields and the filter
// dimension == value appended. Importance rewards subsets whose
// distributions differ from the whole, weighted by size: the mean over the
// view's measures of KL(whole ‖ subset) · |subset| / |rows|, with both
// histograms on the measure's range over the view's rows.
//
// Returns an empty slice when the view has no measures, no unfiltered
// dimension, or no dimension scoring above 0.
func (e *Engine) RecommendFilter(view Pattern) (_ []Pattern, err error) {
	defer errors.Recover(&err, "Engine.RecommendFilter")
	const op = "Engine.RecommendFilter"
	d, ok := e.current()
	if !ok {
		return []Pattern{}, nil
	}
	done := e.begin(log.OperationRecommendFilter, d)

	snap, fields, err := e.resolve(op, d, view)
	if err != nil {
		return nil, err
	}
	out := make([]Pattern, 0)
	measures := filterFields(fields, dataset.FieldMeta.IsMeasure)
	if len(measures) == 0 || snap.Len() == 0 {
		done(log.PatternsKey, 0)
		return out, nil
	}

	var best dataset.FieldMeta
	bestScore := 0.0
	for _, f := range fields {
		if !f.IsDimension() || view.filtered(f.ID) {
			continue
		}
		scores := make([]float64, len(measures))
		for i, m := range measures {
			rows := snap.Complete(m.ID)
			s, err := e.scorer.GeneralMIC(snap.KeysAt(f.ID, rows), snap.FloatsAt(m.ID, rows))
			if err != nil {
				return nil, err
			}
			scores[i] = s
		}
		if s := stat.Mean(scores, nil); s > bestScore {
			best, bestScore = f, s
		}
	}
	if bestScore <= 0 {
		done(log.PatternsKey, 0)
		return out, nil
	}

	all := snap.Complete()
	enc := preprocessing.NewLabelEncoder()
	codes := enc.FitTransform(snap.KeysAt(best.ID, all))
	groups := make([][]int, enc.NClasses())
	firstValue := make([]dataset.Value, enc.NClasses())
	column := snap.Column(best.ID)
	for r, c := range codes {
		if groups[c] == nil {
			firstValue[c] = column[r]
		}
		groups[c] = append(groups[c], r)
	}

	importance := make([]float64, len(groups))
	for _, m := range measures {
		values := snap.FloatsAt(m.ID, all)
		r, ok := preprocessing.RangeOf(values)
		if !ok {
			continue
		}
		whole, err := metrics.RangeNormalize(e.binner.BinShareRange(values, r.Min, r.Max))
		if err != nil {
			continue
		}
		for c, rows := range groups {
			sub, err := metrics.RangeNormalize(e.binner.BinShareRange(snap.FloatsAt(m.ID, rows), r.Min, r.Max))
			if err != nil {
				// no value of m in this subset
				continue
			}
			kl, err := metrics.KLDivergence(whole, sub)
			if err != nil {
				return nil, err
			}
			importance[c] += kl * float64(len(rows)) / float64(snap.Len())
		}
	}

	kept := filterFields(view.Fields, func(f dataset.FieldMeta) bool { return f.ID != best.ID })
	for c := range groups {
		filters := append([]dataset.Filter(nil), view.Filters...)
		filters = append(filters, dataset.Filter{FieldID: best.ID, Values: []dataset.Value{firstValue[c]}})
		out = append(out, Pattern{
			Fields:     append([]dataset.FieldMeta(nil), kept...),
			Importance: importance[c] / float64(len(measures)),
			Filters:    filters,
		})
	}
	sortDescending(out)
	done(log.FieldKey, best.ID, log.ScoreKey, bestScore, log.PatternsKey, len(out))
	return out, nil
}
