// Package models defines the data structures for the portfolio engine
package models

import "fmt"

// ValidationError reports malformed input at a construction or mutation
// boundary: empty symbols, non-positive prices, out-of-range weights, target
// weights that do not sum to one. It is raised synchronously and never
// coerced into a partial result.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError creates a ValidationError for the given field.
func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// StateError reports an operation that is invalid against the current
// portfolio state: adding a duplicate symbol, trading a symbol that is not
// held, or a trade that would drive a quantity negative. Distinct from
// ValidationError so callers can tell bad input from a bad operation.
type StateError struct {
	Op     string
	Symbol string
	Reason string
}

func (e *StateError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Reason)
	}
	return fmt.Sprintf("%s %s: %s", e.Op, e.Symbol, e.Reason)
}

// NewStateError creates a StateError for the given operation and symbol.
func NewStateError(op, symbol, format string, args ...interface{}) *StateError {
	return &StateError{Op: op, Symbol: symbol, Reason: fmt.Sprintf(format, args...)}
}

// ExternalSignalError reports a missing or failed external market/sentiment
// signal. The strategy scorer absorbs these into the neutral default score;
// they never propagate into recommendation math.
type ExternalSignalError struct {
	Source string
	Symbol string
	Err    error
}

func (e *ExternalSignalError) Error() string {
	return fmt.Sprintf("external signal %s for %s: %v", e.Source, e.Symbol, e.Err)
}

func (e *ExternalSignalError) Unwrap() error {
	return e.Err
}
