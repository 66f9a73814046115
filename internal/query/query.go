// Package query turns the where/sort/select/skip/limit/count request parameters
// into a constrained query that every store backend can compile.
package query

import (
	"errors"
	"fmt"
)

// ErrBadRequest marks malformed or unsupported query parameters.
var ErrBadRequest = errors.New("bad request")

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// Kind is the value type of a queryable field.
type Kind int

const (
	KindString Kind = iota
	KindID
	KindBool
	KindTime
	KindIDList
)

func (k Kind) ordered() bool {
	return k == KindString || k == KindID || k == KindTime
}

// Schema lists the fields a resource exposes to where/sort/select, keyed by wire name.
type Schema map[string]Kind

type Operator string

const (
	OpEq  Operator = "$eq"
	OpNe  Operator = "$ne"
	OpGt  Operator = "$gt"
	OpGte Operator = "$gte"
	OpLt  Operator = "$lt"
	OpLte Operator = "$lte"
	OpIn  Operator = "$in"
	OpNin Operator = "$nin"
)

var operators = map[string]Operator{
	"$eq":  OpEq,
	"$ne":  OpNe,
	"$gt":  OpGt,
	"$gte": OpGte,
	"$lt":  OpLt,
	"$lte": OpLte,
	"$in":  OpIn,
	"$nin": OpNin,
}

// IsSet reports whether the operator takes a list of values.
func (o Operator) IsSet() bool {
	return o == OpIn || o == OpNin
}

// Condition is a single field predicate. Value holds the operand for scalar
// operators, Values for $in/$nin. Operands are string, bool or time.Time.
type Condition struct {
	Field  string
	Kind   Kind
	Op     Operator
	Value  any
	Values []any
}

// Filter is a conjunction of conditions.
type Filter []Condition

type SortField struct {
	Field string
	Kind  Kind
	Desc  bool
}

type Query struct {
	Filter     Filter
	Sort       []SortField
	Projection Projection
	Skip       int
	Limit      int // 0 means no limit
	Count      bool
}
