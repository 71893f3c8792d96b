package errors

import (
	"fmt"
	"math"
	"sync"

	zlog "github.com/rs/zerolog/log"
)

// NumericalWarning reports a score that came out NaN or infinite. Callers
// replace the value with a neutral one and keep going.
type NumericalWarning struct {
	Op    string
	Name  string
	Value float64
}

func (w *NumericalWarning) Error() string {
	return fmt.Sprintf("%s: %s: non-finite %s (%v)", prefix, w.Op, w.Name, w.Value)
}

// CheckScalar returns a *NumericalWarning when v is NaN or ±Inf, nil otherwise.
func CheckScalar(op, name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return &NumericalWarning{Op: op, Name: name, Value: v}
	}
	return nil
}

var (
	warnMu      sync.RWMutex
	warnHandler = func(err error) {
		zlog.Warn().Err(err).Msg("warning")
	}
)

// SetWarningHandler replaces the function Warn reports to. It returns the
// previous handler so tests can restore it.
func SetWarningHandler(h func(error)) func(error) {
	warnMu.Lock()
	defer warnMu.Unlock()
	prev := warnHandler
	warnHandler = h
	return prev
}

// Warn reports a non-fatal problem. A nil err is ignored.
func Warn(err error) {
	if err == nil {
		return
	}
	warnMu.RLock()
	h := warnHandler
	warnMu.RUnlock()
	if h != nil {
		h(err)
	}
}
