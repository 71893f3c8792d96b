// Package dataset holds the in-memory table the pattern engine analyses:
// field metadata, nullable cell values, rows and an immutable columnar
// Snapshot built once per load.
//
// Missing values are explicit. A Value is either null, a number or a
// string, and numeric access goes through Value.Float, which reports
// whether a usable finite number is present. Every operation that needs
// numbers documents how it treats rows where Float reports false.
package dataset

// AnalyticType is the role a field plays in analysis.
type AnalyticType string

const (
	// Dimension is a categorical / grouping field
	Dimension AnalyticType = "dimension"
	// Measure is a numeric field
	Measure AnalyticType = "measure"
)

// SemanticType is the measurement scale of a field.
type SemanticType string

const (
	Nominal      SemanticType = "nominal"
	Ordinal      SemanticType = "ordinal"
	Quantitative SemanticType = "quantitative"
	Temporal     SemanticType = "temporal"
)

// Features is informational metadata supplied by the caller. The engine
// never recomputes it.
type Features struct {
	Entropy    float64 `json:"entropy"`
	MaxEntropy float64 `json:"maxEntropy"`
	Unique     int     `json:"unique"`
}

// FieldMeta describes one column. ID must be unique within a field list.
type FieldMeta struct {
	ID           string       `json:"fid"`
	AnalyticType AnalyticType `json:"analyticType"`
	SemanticType SemanticType `json:"semanticType"`
	Features     Features     `json:"features"`
}

// IsMeasure reports whether the field is a measure.
func (f FieldMeta) IsMeasure() bool { return f.AnalyticType == Measure }

// IsDimension reports whether the field is a dimension.
func (f FieldMeta) IsDimension() bool { return f.AnalyticType == Dimension }

// NewMeasure is shorthand for a quantitative measure field.
func NewMeasure(id string) FieldMeta {
	return FieldMeta{ID: id, AnalyticType: Measure, SemanticType: Quantitative}
}

// NewDimension is shorthand for a nominal dimension field.
func NewDimension(id string) FieldMeta {
	return FieldMeta{ID: id, AnalyticType: Dimension, SemanticType: Nominal}
}

// FieldIDs returns the ids of fields in order.
func FieldIDs(fields []FieldMeta) []string {
	ids := make([]string, len(fields))
	for i, f := range fields {
		ids[i] = f.ID
	}
	return ids
}

// ContainsField reports whether fields holds a field with the given id.
func ContainsField(fields []FieldMeta, id string) bool {
	for _, f := range fields {
		if f.ID == id {
			return true
		}
	}
	return false
}
