package log

// Structured logging keys. Use these instead of ad-hoc strings so log
// consumers can rely on stable field names.
const (
	ComponentKey  = "component"
	OperationKey  = "operation"
	GenerationKey = "generation"
	DurationMsKey = "duration_ms"
	RowsKey       = "rows"
	MeasuresKey   = "measures"
	DimensionsKey = "dimensions"
	FieldKey      = "field"
	PairKey       = "pair"
	ScoreKey      = "score"
	PatternsKey   = "patterns"
	BinSizeKey    = "bin_size"
	WorkersKey    = "workers"
	ErrorKey      = "error"
)

// Operation names logged under OperationKey.
const (
	OperationInit            = "init"
	OperationSearch          = "search_patterns"
	OperationHighOrder       = "high_order_patterns"
	OperationFirstPattern    = "first_pattern"
	OperationSecondPattern   = "second_pattern"
	OperationRecommend       = "feature_recommend"
	OperationRecommendFilter = "filter_recommend"
	OperationCompare         = "feature_selection"
	OperationCompareSweep    = "feature_selection_sweep"
)
