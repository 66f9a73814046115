package query

import (
	"slices"
	"time"
)

// Document exposes typed field values for in-process evaluation. Values are
// string, bool, time.Time or []string.
type Document interface {
	Field(name string) any
}

// Matches reports whether doc satisfies every condition of f.
func (f Filter) Matches(doc Document) bool {
	for _, c := range f {
		if !c.Matches(doc.Field(c.Field)) {
			return false
		}
	}
	return true
}

// Matches evaluates the condition against a field value. On an id-list field
// equality means "contains" and $in means "shares any element".
func (c Condition) Matches(v any) bool {
	if list, ok := v.([]string); ok {
		return c.matchesList(list)
	}

	switch c.Op {
	case OpEq:
		return Compare(v, c.Value) == 0
	case OpNe:
		return Compare(v, c.Value) != 0
	case OpGt:
		return Compare(v, c.Value) > 0
	case OpGte:
		return Compare(v, c.Value) >= 0
	case OpLt:
		return Compare(v, c.Value) < 0
	case OpLte:
		return Compare(v, c.Value) <= 0
	case OpIn:
		return slices.ContainsFunc(c.Values, func(x any) bool { return Compare(v, x) == 0 })
	case OpNin:
		return !slices.ContainsFunc(c.Values, func(x any) bool { return Compare(v, x) == 0 })
	}
	return false
}

func (c Condition) matchesList(list []string) bool {
	contains := func(x any) bool {
		s, ok := x.(string)
		return ok && slices.Contains(list, s)
	}
	switch c.Op {
	case OpEq:
		return contains(c.Value)
	case OpNe:
		return !contains(c.Value)
	case OpIn:
		return slices.ContainsFunc(c.Values, contains)
	case OpNin:
		return !slices.ContainsFunc(c.Values, contains)
	}
	return false
}

// Compare orders two operands of the same kind. Mismatched kinds compare unequal.
func Compare(a, b any) int {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return -1
		}
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case bool:
		y, ok := b.(bool)
		if !ok {
			return -1
		}
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	case time.Time:
		y, ok := b.(time.Time)
		if !ok {
			return -1
		}
		return x.Compare(y)
	}
	return -1
}

// Less orders two documents by the sort fields, for in-process sorting.
func Less(sort []SortField, a, b Document) bool {
	for _, s := range sort {
		av, bv := a.Field(s.Field), b.Field(s.Field)
		if _, isList := av.([]string); isList {
			continue
		}
		c := Compare(av, bv)
		if c == 0 {
			continue
		}
		if s.Desc {
			return c > 0
		}
		return c < 0
	}
	return false
}
