package riskcalc

import (
	"errors"
	"strings"
)

// ErrInvalidInput: единственный класс ошибок калькулятора.
// Все остальные ситуации (превышение бюджета, плечо): предупреждения.
var ErrInvalidInput = errors.New("invalid input")

// FieldProblem describes one rejected field.
type FieldProblem struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError collects every problem found before computation.
type ValidationError struct {
	Problems []FieldProblem
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		parts = append(parts, p.Field+": "+p.Reason)
	}
	return ErrInvalidInput.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

func (e *ValidationError) add(field, reason string) {
	e.Problems = append(e.Problems, FieldProblem{Field: field, Reason: reason})
}

func (e *ValidationError) orNil() error {
	if len(e.Problems) == 0 {
		return nil
	}
	return e
}

func invalid(field, reason string) error {
	return &ValidationError{Problems: []FieldProblem{{Field: field, Reason: reason}}}
}

// Problems extracts field problems from err, nil if err is not a validation error.
func Problems(err error) []FieldProblem {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Problems
	}
	return nil
}

// InvalidField builds a single-field validation error for callers
// that validate their own parameters (preset names, lot sizes).
func InvalidField(field, reason string) error {
	return invalid(field, reason)
}
