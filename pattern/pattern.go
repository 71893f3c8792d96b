// Package pattern implements the pattern discovery engine.
//
// An Engine holds one dataset at a time. Init replaces it; every discovery
// call reads the dataset current at the moment the call starts and never
// mutates it, so discovery calls may run concurrently with each other and
// with Init.
//
// This package implements:
//
// Univariate and view expansion:
//   - SearchPatterns: rank every measure by the entropy of its distribution
//   - CreateHighOrderPatterns / ScoreHighOrderPatterns: extend a view by one measure
//
// Measure relationships:
//   - FirstPattern: measure × measure association matrix (asymmetric)
//   - SecondPattern: pair × pair scatter dissimilarity matrix (symmetric)
//
// Dimension recommendation:
//   - PureFeatureRecommend / PureFeatureRecommendProjected: dimensions that best explain a view
//   - RecommendFilter: split a view on the values of its most informative dimension
//   - FeatureSelectionForSecondPatternWithSpecifiedViews: the dimension that best
//     explains why two measure pairs look different
//   - FeatureSelectForSecondPattern: the same for every pair of pairs (diagnostic)
//
// "No result" is never an error: it is an empty slice or a nil pointer.
// Errors are reserved for references to fields the dataset does not have
// and for cancelled contexts.
//
// Example usage:
//
//	engine := pattern.NewEngine(pattern.WithBinSize(16), pattern.WithSeed(1))
//	if err := engine.Init(rows, fields); err != nil {
//		log.Fatal(err)
//	}
//	ranked := engine.SearchPatterns()
//	recs, err := engine.PureFeatureRecommend(pattern.NewPattern(ranked[0].Fields...))
package pattern

import (
	"fmt"
	"strings"

	"github.com/ezoic/vipattern/core/dataset"
)

// Pattern is a candidate view: a set of fields, optionally restricted by
// filters, with an importance score whose meaning depends on the operation
// that produced it.
type Pattern struct {
	Fields     []dataset.FieldMeta `json:"fields"`
	Importance float64             `json:"imp"`
	Filters    []dataset.Filter    `json:"filters,omitempty"`
}

// NewPattern returns an unscored, unfiltered pattern over fields.
func NewPattern(fields ...dataset.FieldMeta) Pattern {
	return Pattern{Fields: append([]dataset.FieldMeta(nil), fields...)}
}

// Measures returns the measure fields of the pattern in order.
func (p Pattern) Measures() []dataset.FieldMeta {
	return filterFields(p.Fields, dataset.FieldMeta.IsMeasure)
}

// Dimensions returns the dimension fields of the pattern in order.
func (p Pattern) Dimensions() []dataset.FieldMeta {
	return filterFields(p.Fields, dataset.FieldMeta.IsDimension)
}

// FieldIDs returns the ids of the pattern's fields.
func (p Pattern) FieldIDs() []string { return dataset.FieldIDs(p.Fields) }

func (p Pattern) String() string {
	return fmt.Sprintf("[%s] %.4f", strings.Join(p.FieldIDs(), ", "), p.Importance)
}

// extend returns a copy of p with f appended and importance set.
func (p Pattern) extend(f dataset.FieldMeta, importance float64) Pattern {
	fields := make([]dataset.FieldMeta, 0, len(p.Fields)+1)
	fields = append(fields, p.Fields...)
	fields = append(fields, f)
	return Pattern{
		Fields:     fields,
		Importance: importance,
		Filters:    append([]dataset.Filter(nil), p.Filters...),
	}
}

func (p Pattern) filtered(field string) bool {
	for _, f := range p.Filters {
		if f.FieldID == field {
			return true
		}
	}
	return false
}

func filterFields(fields []dataset.FieldMeta, keep func(dataset.FieldMeta) bool) []dataset.FieldMeta {
	out := make([]dataset.FieldMeta, 0, len(fields))
	for _, f := range fields {
		if keep(f) {
			out = append(out, f)
		}
	}
	return out
}

// MeasurePair names two measures whose joint scatter is analysed.
type MeasurePair struct {
	X string `json:"x"`
	Y string `json:"y"`
}

func (p MeasurePair) String() string { return p.X + "×" + p.Y }

// AssociationMatrix is the result of FirstPattern. Values[i][j] scores
// measure i as a grouping of measure j.
type AssociationMatrix struct {
	Measures []dataset.FieldMeta `json:"measures"`
	Values   [][]float64         `json:"values"`
}

// PairMatrix is the result of SecondPattern. Values[p][q] is the
// dissimilarity of the scatters of Pairs[p] and Pairs[q].
type PairMatrix struct {
	Pairs  []MeasurePair `json:"pairs"`
	Values [][]float64   `json:"values"`
}

// FeatureSelection is the dimension that best explains the difference
// between two measure pairs.
type FeatureSelection struct {
	Feature dataset.FieldMeta `json:"feature"`
	Score   float64           `json:"score"`
}

// PairFeatureSelection is one result of the FeatureSelectForSecondPattern sweep.
type PairFeatureSelection struct {
	A       MeasurePair       `json:"a"`
	B       MeasurePair       `json:"b"`
	Feature dataset.FieldMeta `json:"feature"`
	Score   float64           `json:"score"`
}

func newMatrix(n int) [][]float64 {
	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
	}
	return m
}
