package dataset

import "github.com/ezoic/vipattern/pkg/errors"

// Filter keeps rows whose value for FieldID equals one of Values.
// Equality compares grouping keys, so Number(3) matches String("3").
type Filter struct {
	FieldID string  `json:"fid"`
	Values  []Value `json:"values"`
}

// Match reports whether v passes the filter.
func (f Filter) Match(v Value) bool {
	k := v.Key()
	for _, want := range f.Values {
		if want.Key() == k {
			return true
		}
	}
	return false
}

// Filter returns the snapshot restricted to rows matching every filter.
// With no filters the receiver itself is returned. A filter on a field
// that is not in the snapshot is an error.
func (s *Snapshot) Filter(op string, filters []Filter) (*Snapshot, error) {
	if len(filters) == 0 {
		return s, nil
	}
	cols := make([][]Value, len(filters))
	for i, f := range filters {
		idx, ok := s.index[f.FieldID]
		if !ok {
			return nil, errors.NewUnknownFieldError(op, f.FieldID)
		}
		cols[i] = s.columns[idx]
	}

	keep := make([]int, 0, s.rows)
rows:
	for r := 0; r < s.rows; r++ {
		for i, f := range filters {
			if !f.Match(cols[i][r]) {
				continue rows
			}
		}
		keep = append(keep, r)
	}
	return s.subset(keep), nil
}
