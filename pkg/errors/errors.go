// Package errors provides the error types shared by every vipattern package.
//
// It wraps github.com/cockroachdb/errors so that errors created here carry
// stack traces (printed with %+v) while staying compatible with the standard
// errors.Is / errors.As / errors.Unwrap functions.
//
// Three families of errors exist:
//
//   - Sentinels (ErrEmptyData, ErrDimensionMismatch, ...) for errors.Is checks
//   - Typed errors (ValueError, DimensionError, FieldError, ModelError) that carry
//     the failing operation and the offending values
//   - Warnings (NumericalWarning) that are reported through Warn and never
//     returned to callers
//
// Degenerate numeric input is not an error anywhere in vipattern; only caller
// contract violations (mismatched lengths, unknown fields) are.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

const prefix = "vipattern"

// Sentinel errors.
var (
	// ErrEmptyData is returned when an operation needs at least one value.
	ErrEmptyData = errors.New("empty data")

	// ErrDimensionMismatch is the cause of every DimensionError.
	ErrDimensionMismatch = errors.New("dimension mismatch")

	// ErrUnknownField is returned when a field id is not part of the dataset.
	ErrUnknownField = errors.New("unknown field")

	// ErrInvalidField is returned when a field exists but has the wrong role.
	ErrInvalidField = errors.New("invalid field")

	// ErrNotImplemented marks features that are recognized but unsupported.
	ErrNotImplemented = errors.New("not implemented")
)

// Re-exported helpers so callers only import this package.
var (
	New       = errors.New
	Newf      = errors.Newf
	Wrap      = errors.Wrap
	Wrapf     = errors.Wrapf
	WithStack = errors.WithStack
	Is        = errors.Is
	As        = errors.As
	Unwrap    = errors.Unwrap
)

// ValueError reports an argument whose value is not acceptable.
type ValueError struct {
	Op      string
	Message string
}

// NewValueError creates a ValueError for op.
func NewValueError(op, message string) error {
	return &ValueError{Op: op, Message: message}
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
}

// DimensionError reports two inputs that must have the same length (or shape)
// but do not.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

// NewDimensionError creates a DimensionError for op. Axis 0 means rows,
// axis 1 columns.
func NewDimensionError(op string, expected, got, axis int) error {
	return &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("%s: %s: %v: expected %d, got %d (axis %d)",
		prefix, e.Op, ErrDimensionMismatch, e.Expected, e.Got, e.Axis)
}

// Unwrap lets errors.Is match ErrDimensionMismatch.
func (e *DimensionError) Unwrap() error {
	return ErrDimensionMismatch
}

// FieldError reports a field reference that cannot be resolved against the
// current dataset, or a field used in a role it does not have.
type FieldError struct {
	Op      string
	FieldID string
	Reason  string
	Err     error
}

// NewUnknownFieldError creates a FieldError for an id missing from the dataset.
func NewUnknownFieldError(op, fieldID string) error {
	return &FieldError{Op: op, FieldID: fieldID, Reason: "not in dataset", Err: ErrUnknownField}
}

// NewInvalidFieldError creates a FieldError for a field used in the wrong role.
func NewInvalidFieldError(op, fieldID, reason string) error {
	return &FieldError{Op: op, FieldID: fieldID, Reason: reason, Err: ErrInvalidField}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s: field %q: %s: %v", prefix, e.Op, e.FieldID, e.Reason, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// ModelError wraps a failure inside an operation with a short description.
type ModelError struct {
	Op      string
	Message string
	Err     error
}

// NewModelError creates a ModelError for op wrapping err.
func NewModelError(op, message string, err error) error {
	return &ModelError{Op: op, Message: message, Err: err}
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s: %s", prefix, e.Op, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s: %v", prefix, e.Op, e.Message, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

// Recover converts a panic in the calling function into a ModelError stored
// in *errp. It must be deferred directly:
//
//	func (b *Binner) Bin(values []float64) (_ []float64, err error) {
//		defer errors.Recover(&err, "Binner.Bin")
//		...
//	}
func Recover(errp *error, op string) {
	if r := recover(); r != nil {
		var cause error
		switch v := r.(type) {
		case error:
			cause = errors.WithStack(v)
		default:
			cause = errors.Newf("%v", v)
		}
		*errp = &ModelError{Op: op, Message: "panic recovered", Err: cause}
	}
}
