package preprocessing

import "sort"

// LabelEncoder assigns dense integer codes to categorical keys in the order
// they first appear and counts how often each occurs.
type LabelEncoder struct {
	// Classes は出現順のカテゴリ一覧
	Classes []string

	// ClassToIdx はカテゴリ→コードのマップ
	ClassToIdx map[string]int

	// Counts は各カテゴリの出現回数
	Counts []int
}

// NewLabelEncoder creates an empty encoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{ClassToIdx: make(map[string]int)}
}

// FitTransform learns the classes of keys and returns the code of each key.
// Calling it again resets the encoder.
func (e *LabelEncoder) FitTransform(keys []string) []int {
	e.Classes = e.Classes[:0]
	e.Counts = e.Counts[:0]
	e.ClassToIdx = make(map[string]int)

	codes := make([]int, len(keys))
	for i, k := range keys {
		idx, ok := e.ClassToIdx[k]
		if !ok {
			// 未知カテゴリは末尾に追加
			idx = len(e.Classes)
			e.ClassToIdx[k] = idx
			e.Classes = append(e.Classes, k)
			e.Counts = append(e.Counts, 0)
		}
		e.Counts[idx]++
		codes[i] = idx
	}
	return codes
}

// NClasses returns the number of distinct keys seen.
func (e *LabelEncoder) NClasses() int { return len(e.Classes) }

// ByFrequency returns class codes ordered by descending count. Ties keep
// first-appearance order.
func (e *LabelEncoder) ByFrequency() []int {
	order := make([]int, len(e.Classes))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return e.Counts[order[a]] > e.Counts[order[b]]
	})
	return order
}
