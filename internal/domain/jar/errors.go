package jar

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies engine failures so callers can dispatch without
// string matching.
type Kind string

// Engine failure kinds.
const (
	KindValidation        Kind = "validation_error"
	KindDuplicateName     Kind = "duplicate_name"
	KindNotFound          Kind = "jar_not_found"
	KindInvalidAllocation Kind = "invalid_allocation"
	KindDivisionByZero    Kind = "division_by_zero"
)

// Error is a structured engine failure: a machine-readable kind, the
// offending jar name(s) when known, and a human-readable message.
// The engine never retries or clamps; it reports and leaves state alone.
type Error struct {
	Kind    Kind
	Jars    []string
	Message string
}

func (e *Error) Error() string {
	if len(e.Jars) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s (%s): %s", e.Kind, strings.Join(e.Jars, ", "), e.Message)
}

// NewValidationError reports a malformed or mismatched request shape.
func NewValidationError(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

// NewDuplicateName reports a jar name that collides with an existing or
// co-requested jar (case-insensitive).
func NewDuplicateName(name string) *Error {
	return &Error{
		Kind:    KindDuplicateName,
		Jars:    []string{name},
		Message: fmt.Sprintf("a jar named %q already exists", name),
	}
}

// NewNotFound reports jar names that do not exist in the allocation table.
func NewNotFound(names ...string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Jars:    names,
		Message: "no such jar",
	}
}

// NewInvalidAllocation reports percentages that cannot fit within the
// allocation target even after rebalancing.
func NewInvalidAllocation(message string, names ...string) *Error {
	return &Error{Kind: KindInvalidAllocation, Jars: names, Message: message}
}

// NewDivisionByZero reports a percent/amount conversion attempted with a
// non-positive total income.
func NewDivisionByZero(totalIncome float64) *Error {
	return &Error{
		Kind:    KindDivisionByZero,
		Message: fmt.Sprintf("total income must be positive to convert amounts, got %.2f", totalIncome),
	}
}

// KindOf returns the kind of err when it is (or wraps) an engine Error,
// or the empty kind otherwise.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
