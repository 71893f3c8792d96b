package dataset

import (
	"math"

	"github.com/ezoic/vipattern/pkg/errors"
)

// Snapshot is an immutable, columnar view of rows and fields. It is built
// once and then only read, so it can be shared between goroutines.
type Snapshot struct {
	fields     []FieldMeta
	index      map[string]int
	measures   []int
	dimensions []int
	columns    [][]Value
	// numeric holds the parsed value of each measure cell, NaN when missing.
	numeric [][]float64
	rows    int
}

// NewSnapshot copies fields, builds the id→index map and splits rows into
// columns. Duplicate field ids are rejected.
func NewSnapshot(rows []Row, fields []FieldMeta) (*Snapshot, error) {
	s := &Snapshot{
		fields:  append([]FieldMeta(nil), fields...),
		index:   make(map[string]int, len(fields)),
		columns: make([][]Value, len(fields)),
		numeric: make([][]float64, len(fields)),
		rows:    len(rows),
	}
	for i, f := range s.fields {
		if _, dup := s.index[f.ID]; dup {
			return nil, errors.NewInvalidFieldError("NewSnapshot", f.ID, "duplicate field id")
		}
		s.index[f.ID] = i
		switch f.AnalyticType {
		case Measure:
			s.measures = append(s.measures, i)
		case Dimension:
			s.dimensions = append(s.dimensions, i)
		}
	}

	for i, f := range s.fields {
		col := make([]Value, len(rows))
		for r, row := range rows {
			col[r] = row[f.ID]
		}
		s.columns[i] = col
		if f.IsMeasure() {
			s.numeric[i] = parseColumn(col)
		}
	}
	return s, nil
}

// Empty returns a snapshot with no rows and no fields.
func Empty() *Snapshot {
	s, _ := NewSnapshot(nil, nil)
	return s
}

func parseColumn(col []Value) []float64 {
	out := make([]float64, len(col))
	for i, v := range col {
		if f, ok := v.Float(); ok {
			out[i] = f
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Len returns the number of rows.
func (s *Snapshot) Len() int { return s.rows }

// Fields returns a copy of the field list.
func (s *Snapshot) Fields() []FieldMeta {
	return append([]FieldMeta(nil), s.fields...)
}

// Measures returns the measure fields in field-list order.
func (s *Snapshot) Measures() []FieldMeta { return s.pick(s.measures) }

// Dimensions returns the dimension fields in field-list order.
func (s *Snapshot) Dimensions() []FieldMeta { return s.pick(s.dimensions) }

func (s *Snapshot) pick(idx []int) []FieldMeta {
	out := make([]FieldMeta, len(idx))
	for i, fi := range idx {
		out[i] = s.fields[fi]
	}
	return out
}

// Field looks up a field by id.
func (s *Snapshot) Field(id string) (FieldMeta, bool) {
	i, ok := s.index[id]
	if !ok {
		return FieldMeta{}, false
	}
	return s.fields[i], true
}

// Lookup resolves id or returns a FieldError naming op.
func (s *Snapshot) Lookup(op, id string) (FieldMeta, error) {
	f, ok := s.Field(id)
	if !ok {
		return FieldMeta{}, errors.NewUnknownFieldError(op, id)
	}
	return f, nil
}

// LookupMeasure resolves id and checks that it is a measure.
func (s *Snapshot) LookupMeasure(op, id string) (FieldMeta, error) {
	f, err := s.Lookup(op, id)
	if err != nil {
		return f, err
	}
	if !f.IsMeasure() {
		return f, errors.NewInvalidFieldError(op, id, "not a measure")
	}
	return f, nil
}

// Column returns the raw values of a field, or nil if unknown. The slice
// must not be modified.
func (s *Snapshot) Column(id string) []Value {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.columns[i]
}

// Floats returns the present numeric values of a measure, skipping rows
// where the value is missing or not a finite number.
func (s *Snapshot) Floats(id string) []float64 {
	num := s.numericColumn(id)
	out := make([]float64, 0, len(num))
	for _, f := range num {
		if !math.IsNaN(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s *Snapshot) numericColumn(id string) []float64 {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	if s.numeric[i] == nil {
		return parseColumn(s.columns[i])
	}
	return s.numeric[i]
}

// Complete returns the indices of rows where every measure in ids holds a
// number. Missing-value handling for multi-column operations goes through
// this listwise filter.
func (s *Snapshot) Complete(ids ...string) []int {
	cols := make([][]float64, len(ids))
	for i, id := range ids {
		cols[i] = s.numericColumn(id)
	}
	out := make([]int, 0, s.rows)
rows:
	for r := 0; r < s.rows; r++ {
		for _, col := range cols {
			if col == nil || math.IsNaN(col[r]) {
				continue rows
			}
		}
		out = append(out, r)
	}
	return out
}

// FloatsAt returns the numeric values of a measure at the given rows. Rows
// should come from Complete so every value is present.
func (s *Snapshot) FloatsAt(id string, rows []int) []float64 {
	num := s.numericColumn(id)
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = num[r]
	}
	return out
}

// KeysAt returns the grouping keys of a field at the given rows. Null cells
// become NullKey.
func (s *Snapshot) KeysAt(id string, rows []int) []string {
	col := s.Column(id)
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = col[r].Key()
	}
	return out
}

// Keys returns the grouping keys of every row of a field.
func (s *Snapshot) Keys(id string) []string {
	col := s.Column(id)
	out := make([]string, len(col))
	for i, v := range col {
		out[i] = v.Key()
	}
	return out
}

// PointsAt returns (x, y) pairs of two measures at the given rows.
func (s *Snapshot) PointsAt(x, y string, rows []int) [][2]float64 {
	xs, ys := s.numericColumn(x), s.numericColumn(y)
	out := make([][2]float64, len(rows))
	for i, r := range rows {
		out[i] = [2]float64{xs[r], ys[r]}
	}
	return out
}

// subset returns a snapshot over the given rows sharing field metadata.
func (s *Snapshot) subset(rows []int) *Snapshot {
	sub := &Snapshot{
		fields:     s.fields,
		index:      s.index,
		measures:   s.measures,
		dimensions: s.dimensions,
		columns:    make([][]Value, len(s.columns)),
		numeric:    make([][]float64, len(s.numeric)),
		rows:       len(rows),
	}
	for i, col := range s.columns {
		c := make([]Value, len(rows))
		for j, r := range rows {
			c[j] = col[r]
		}
		sub.columns[i] = c
		if s.numeric[i] != nil {
			n := make([]float64, len(rows))
			for j, r := range rows {
				n[j] = s.numeric[i][r]
			}
			sub.numeric[i] = n
		}
	}
	return sub
}
