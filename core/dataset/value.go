package dataset

import (
	"math"
	"strconv"
	"strings"
)

// NullKey is the grouping key of a null value. It starts with a NUL byte
// so no string cell can be mistaken for a missing one.
const NullKey = "\x00null"

// Kind tells which variant a Value holds.
type Kind uint8

const (
	KindNull Kind = iota
	KindNumber
	KindString
)

// Value is a nullable cell: null, a float64 or a string.
type Value struct {
	kind Kind
	num  float64
	str  string
}

// Null returns the missing value.
func Null() Value { return Value{} }

// Number wraps f.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String wraps s.
func String(s string) Value { return Value{kind: KindString, str: s} }

// FromInterface converts plain Go values. Integers and floats become
// numbers, strings stay strings, bools become "true"/"false", nil is null
// and anything else is null as well.
func FromInterface(v interface{}) Value {
	switch x := v.(type) {
	case nil:
		return Null()
	case Value:
		return x
	case float64:
		return Number(x)
	case float32:
		return Number(float64(x))
	case int:
		return Number(float64(x))
	case int8:
		return Number(float64(x))
	case int16:
		return Number(float64(x))
	case int32:
		return Number(float64(x))
	case int64:
		return Number(float64(x))
	case uint:
		return Number(float64(x))
	case uint8:
		return Number(float64(x))
	case uint16:
		return Number(float64(x))
	case uint32:
		return Number(float64(x))
	case uint64:
		return Number(float64(x))
	case string:
		return String(x)
	case bool:
		return String(strconv.FormatBool(x))
	default:
		return Null()
	}
}

// Kind returns the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is missing.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns v as a finite number. Numbers pass through, strings are
// parsed after trimming spaces; null, NaN, ±Inf and unparsable text report
// false.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case KindNumber:
		f = v.num
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Key returns the string used to group v as a category.
func (v Value) Key() string {
	switch v.kind {
	case KindNumber:
		return strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return v.str
	default:
		return NullKey
	}
}

func (v Value) String() string {
	if v.kind == KindNull {
		return "<null>"
	}
	return v.Key()
}

// Row maps field ids to values. Absent keys read as null.
type Row map[string]Value

// RowFromMap converts a map of plain Go values.
func RowFromMap(m map[string]interface{}) Row {
	r := make(Row, len(m))
	for k, v := range m {
		r[k] = FromInterface(v)
	}
	return r
}

// RowsFromMaps converts a slice of plain maps.
func RowsFromMaps(ms []map[string]interface{}) []Row {
	rows := make([]Row, len(ms))
	for i, m := range ms {
		rows[i] = RowFromMap(m)
	}
	return rows
}
