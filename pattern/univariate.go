package pattern

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/ezoic/vipattern/core/dataset"
	"github.com/ezoic/vipattern/metrics"
	"github.com/ezoic/vipattern/pkg/errors"
	"github.com/ezoic/vipattern/pkg/log"
	"github.com/ezoic/vipattern/preprocessing"
)

// SearchPatterns scores every measure by the entropy, in bits, of its
// histogram over its own range and returns one single-field pattern per
// field, lowest entropy first. Lower entropy means a more concentrated
// distribution. Missing values are skipped; a measure with no values or a
// single distinct value scores 0. Dimensions are not binned: each one is
// scored by the entropy the caller supplied in its Features. Ties keep
// measures ahead of dimensions, each in field order. The result is cached
// until the next Init.
func (e *Engine) SearchPatterns() []Pattern {
	d, ok := e.current()
	if !ok {
		return []Pattern{}
	}
	done := e.begin(log.OperationSearch, d)

	measures, dims := d.snap.Measures(), d.snap.Dimensions()
	patterns := make([]Pattern, 0, len(measures)+len(dims))
	for _, m := range measures {
		patterns = append(patterns, Pattern{
			Fields:     []dataset.FieldMeta{m},
			Importance: e.entropyOf(d.snap.Floats(m.ID)),
		})
	}
	for _, dim := range dims {
		patterns = append(patterns, Pattern{
			Fields:     []dataset.FieldMeta{dim},
			Importance: dim.Features.Entropy,
		})
	}
	sort.SliceStable(patterns, func(a, b int) bool {
		return patterns[a].Importance < patterns[b].Importance
	})

	e.mu.Lock()
	if e.data == d {
		d.patterns = patterns
	}
	e.mu.Unlock()

	done(log.PatternsKey, len(patterns))
	return clonePatterns(patterns)
}

// Patterns returns the result of the last SearchPatterns on the current
// dataset, or nil if it has not run since Init.
func (e *Engine) Patterns() []Pattern {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.data.patterns == nil {
		return nil
	}
	return clonePatterns(e.data.patterns)
}

func (e *Engine) entropyOf(values []float64) float64 {
	r, ok := preprocessing.RangeOf(values)
	if !ok || r.Degenerate() {
		// a point mass
		return 0
	}
	return metrics.CountEntropy(e.binner.BinShareRange(values, r.Min, r.Max))
}

func clonePatterns(ps []Pattern) []Pattern {
	out := make([]Pattern, len(ps))
	for i, p := range ps {
		out[i] = Pattern{
			Fields:     append([]dataset.FieldMeta(nil), p.Fields...),
			Importance: p.Importance,
			Filters:    append([]dataset.Filter(nil), p.Filters...),
		}
	}
	return out
}

// CreateHighOrderPatterns extends view by each measure it does not already
// contain, in dataset field order. Importance is left at 0 for the caller
// to fill in; see ScoreHighOrderPatterns for a scored variant.
//
// Returns:
//   - []Pattern: one candidate per measure missing from view
//   - error: FieldError if view references a field not in the dataset
func (e *Engine) CreateHighOrderPatterns(view Pattern) ([]Pattern, error) {
	d, ok := e.current()
	if !ok {
		return []Pattern{}, nil
	}
	done := e.begin(log.OperationHighOrder, d)

	if _, _, err := e.resolve("Engine.CreateHighOrderPatterns", d, view); err != nil {
		return nil, err
	}
	out := make([]Pattern, 0)
	for _, m := range d.snap.Measures() {
		if !dataset.ContainsField(view.Fields, m.ID) {
			out = append(out, view.extend(m, 0))
		}
	}
	done(log.PatternsKey, len(out))
	return out, nil
}

// ScoreHighOrderPatterns is CreateHighOrderPatterns with each candidate
// scored by how much its new measure, binned, tells about the view's
// measures: the mean MIC of the candidate against every view measure,
// evaluated on the view's filtered rows. Results are sorted by descending
// importance. A view without measures gives every candidate 0.
func (e *Engine) ScoreHighOrderPatterns(view Pattern) (_ []Pattern, err error) {
	defer errors.Recover(&err, "Engine.ScoreHighOrderPatterns")
	d, ok := e.current()
	if !ok {
		return []Pattern{}, nil
	}
	done := e.begin(log.OperationHighOrder, d)

	snap, viewFields, err := e.resolve("Engine.ScoreHighOrderPatterns", d, view)
	if err != nil {
		return nil, err
	}
	viewMeasures := filterFields(viewFields, dataset.FieldMeta.IsMeasure)
	out := make([]Pattern, 0)
	for _, m := range snap.Measures() {
		if dataset.ContainsField(view.Fields, m.ID) {
			continue
		}
		scores := make([]float64, 0, len(viewMeasures))
		for _, vm := range viewMeasures {
			s, err := micOf(e.binner, e.scorer, snap, m.ID, vm.ID)
			if err != nil {
				return nil, err
			}
			scores = append(scores, s)
		}
		imp := 0.0
		if len(scores) > 0 {
			imp = stat.Mean(scores, nil)
		}
		out = append(out, view.extend(m, imp))
	}
	sortDescending(out)
	done(log.PatternsKey, len(out))
	return out, nil
}

// micOf scores measure grouping, binned on the range of its complete rows,
// against measure target. Rows missing either value are dropped.
func micOf(b *preprocessing.Binner, s *metrics.Scorer, snap *dataset.Snapshot, grouping, target string) (float64, error) {
	rows := snap.Complete(grouping, target)
	if len(rows) == 0 {
		return 0, nil
	}
	g := snap.FloatsAt(grouping, rows)
	r, _ := preprocessing.RangeOf(g)
	return s.MIC(b.BinMapShareRange(g, r.Min, r.Max), snap.FloatsAt(target, rows))
}

// resolve looks up every field of view in the dataset and returns the
// dataset restricted to the view's filters along with the dataset's own
// metadata for the view fields. Analytic roles come from the dataset, not
// from the caller's copy.
func (e *Engine) resolve(op string, d *snapshotState, view Pattern) (*dataset.Snapshot, []dataset.FieldMeta, error) {
	fields := make([]dataset.FieldMeta, len(view.Fields))
	for i, f := range view.Fields {
		meta, err := d.snap.Lookup(op, f.ID)
		if err != nil {
			return nil, nil, err
		}
		fields[i] = meta
	}
	snap, err := d.snap.Filter(op, view.Filters)
	if err != nil {
		return nil, nil, err
	}
	return snap, fields, nil
}

func sortDescending(ps []Pattern) {
	sort.SliceStable(ps, func(a, b int) bool {
		return ps[a].Importance > ps[b].Importance
	})
}
