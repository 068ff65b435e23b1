package model

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidClause is returned when a filter clause cannot be constructed.
var ErrInvalidClause = errors.New("invalid filter clause")

// Operator is the comparison a FilterClause applies. The set is closed.
type Operator string

const (
	OpGreater Operator = "greater"
	OpInRange Operator = "in_range"
)

// FilterClause compares one screener field against a scalar or a closed range.
// The zero value is not usable; build clauses with NewGreater, NewInRange or NewFilterClause.
type FilterClause struct {
	field  string
	op     Operator
	bounds []float64
}

// NewFilterClause validates the operator and its bound arity.
func NewFilterClause(field string, op Operator, bounds ...float64) (FilterClause, error) {
	if field == "" {
		return FilterClause{}, fmt.Errorf("%w: empty field", ErrInvalidClause)
	}
	switch op {
	case OpGreater:
		if len(bounds) != 1 {
			return FilterClause{}, fmt.Errorf("%w: %s %s expects 1 bound, got %d", ErrInvalidClause, field, op, len(bounds))
		}
	case OpInRange:
		if len(bounds) != 2 {
			return FilterClause{}, fmt.Errorf("%w: %s %s expects 2 bounds, got %d", ErrInvalidClause, field, op, len(bounds))
		}
		if bounds[0] > bounds[1] {
			return FilterClause{}, fmt.Errorf("%w: %s range low %v > high %v", ErrInvalidClause, field, bounds[0], bounds[1])
		}
	default:
		return FilterClause{}, fmt.Errorf("%w: unsupported operator %q", ErrInvalidClause, op)
	}
	b := make([]float64, len(bounds))
	copy(b, bounds)
	return FilterClause{field: field, op: op, bounds: b}, nil
}

// NewGreater builds a "field > bound" clause.
func NewGreater(field string, bound float64) (FilterClause, error) {
	return NewFilterClause(field, OpGreater, bound)
}

// NewInRange builds a "low <= field <= high" clause.
func NewInRange(field string, low, high float64) (FilterClause, error) {
	return NewFilterClause(field, OpInRange, low, high)
}

func (c FilterClause) Field() string      { return c.field }
func (c FilterClause) Operator() Operator { return c.op }

// Bound returns the scalar bound of a GREATER clause.
func (c FilterClause) Bound() float64 {
	if c.op != OpGreater || len(c.bounds) == 0 {
		return 0
	}
	return c.bounds[0]
}

// Range returns the bounds of an IN_RANGE clause.
func (c FilterClause) Range() (low, high float64) {
	if c.op != OpInRange || len(c.bounds) < 2 {
		return 0, 0
	}
	return c.bounds[0], c.bounds[1]
}

// wireClause is the screener's JSON shape for one filter.
type wireClause struct {
	Left      string   `json:"left"`
	Operation Operator `json:"operation"`
	Right     any      `json:"right"`
}

// MarshalJSON renders the clause as {"left","operation","right"}.
func (c FilterClause) MarshalJSON() ([]byte, error) {
	w := wireClause{Left: c.field, Operation: c.op}
	switch c.op {
	case OpGreater:
		w.Right = c.Bound()
	case OpInRange:
		low, high := c.Range()
		w.Right = []float64{low, high}
	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrInvalidClause, c.op)
	}
	return json.Marshal(w)
}

func (c FilterClause) String() string {
	switch c.op {
	case OpGreater:
		return fmt.Sprintf("%s > %v", c.field, c.Bound())
	case OpInRange:
		low, high := c.Range()
		return fmt.Sprintf("%s in [%v, %v]", c.field, low, high)
	}
	return c.field
}
