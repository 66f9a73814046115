package query

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"taskboard-be/internal/entities"
)

// Params are the raw query-string values of a list request.
type Params struct {
	Where  string
	Sort   string
	Select string
	Skip   string
	Limit  string
	Count  string
}

// Parse validates the raw parameters against schema. Missing where/sort/select
// default to empty objects; skip and limit fall back to 0 and defaultLimit when
// absent, negative or not numeric. count=true returns a filter-only query.
func Parse(p Params, schema Schema, defaultLimit int) (*Query, error) {
	filter, err := ParseWhere(p.Where, schema)
	if err != nil {
		return nil, err
	}
	sort, err := ParseSort(p.Sort, schema)
	if err != nil {
		return nil, err
	}
	projection, err := ParseSelect(p.Select, schema)
	if err != nil {
		return nil, err
	}
	// A count still validates sort and select, then drops them with paging.
	if p.Count == "true" {
		return &Query{Filter: filter, Count: true}, nil
	}

	return &Query{
		Filter:     filter,
		Sort:       sort,
		Projection: projection,
		Skip:       parseCount(p.Skip, 0),
		Limit:      parseCount(p.Limit, defaultLimit),
	}, nil
}

// ParseWhere builds a Filter from a JSON object such as
// {"completed": false, "deadline": {"$lt": "2026-01-01T00:00:00Z"}}.
func ParseWhere(raw string, schema Schema) (Filter, error) {
	members, err := decodeObject("where", raw)
	if err != nil {
		return nil, err
	}

	var filter Filter
	for _, m := range members {
		kind, ok := schema[m.key]
		if !ok {
			return nil, badRequest("where: unknown field %q", m.key)
		}
		conds, err := parseField(m.key, kind, m.value)
		if err != nil {
			return nil, err
		}
		filter = append(filter, conds...)
	}
	return filter, nil
}

func parseField(field string, kind Kind, raw json.RawMessage) ([]Condition, error) {
	if !isObject(raw) {
		v, err := coerce(field, kind, raw)
		if err != nil {
			return nil, err
		}
		return []Condition{{Field: field, Kind: kind, Op: OpEq, Value: v}}, nil
	}

	ops, err := decodeObject("where."+field, string(raw))
	if err != nil {
		return nil, err
	}
	if len(ops) == 0 {
		return nil, badRequest("where.%s: empty operator object", field)
	}

	conds := make([]Condition, 0, len(ops))
	for _, o := range ops {
		op, ok := operators[o.key]
		if !ok {
			return nil, badRequest("where.%s: unsupported operator %q", field, o.key)
		}
		if !op.IsSet() && op != OpEq && op != OpNe && !kind.ordered() {
			return nil, badRequest("where.%s: operator %s not supported on this field", field, op)
		}

		cond := Condition{Field: field, Kind: kind, Op: op}
		if op.IsSet() {
			var items []json.RawMessage
			if err := json.Unmarshal(o.value, &items); err != nil {
				return nil, badRequest("where.%s.%s: expected an array", field, op)
			}
			cond.Values = make([]any, 0, len(items))
			for _, item := range items {
				v, err := coerce(field, kind, item)
				if err != nil {
					return nil, err
				}
				cond.Values = append(cond.Values, v)
			}
		} else {
			v, err := coerce(field, kind, o.value)
			if err != nil {
				return nil, err
			}
			cond.Value = v
		}
		conds = append(conds, cond)
	}
	return conds, nil
}

// coerce converts a JSON literal into the operand type for kind. For id-list
// fields the operand is a single element id.
func coerce(field string, kind Kind, raw json.RawMessage) (any, error) {
	switch kind {
	case KindBool:
		var b bool
		if err := json.Unmarshal(raw, &b); err == nil {
			return b, nil
		}
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			if b, err := strconv.ParseBool(s); err == nil {
				return b, nil
			}
		}
		return nil, badRequest("where.%s: expected a boolean", field)

	case KindTime:
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			t, err := entities.ParseTime(s)
			if err != nil {
				return nil, badRequest("where.%s: %v", field, err)
			}
			return t, nil
		}
		var ms json.Number
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&ms); err == nil {
			n, err := ms.Int64()
			if err != nil {
				return nil, badRequest("where.%s: expected milliseconds", field)
			}
			return time.UnixMilli(n).UTC(), nil
		}
		return nil, badRequest("where.%s: expected a timestamp", field)

	default:
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, badRequest("where.%s: expected a string", field)
		}
		return s, nil
	}
}

// ParseSort accepts {"field": 1|-1|"asc"|"desc", ...}; key order is kept.
func ParseSort(raw string, schema Schema) ([]SortField, error) {
	members, err := decodeObject("sort", raw)
	if err != nil {
		return nil, err
	}

	fields := make([]SortField, 0, len(members))
	for _, m := range members {
		kind, ok := schema[m.key]
		if !ok {
			return nil, badRequest("sort: unknown field %q", m.key)
		}
		desc, err := sortDirection(m.value)
		if err != nil {
			return nil, badRequest("sort.%s: %v", m.key, err)
		}
		fields = append(fields, SortField{Field: m.key, Kind: kind, Desc: desc})
	}
	return fields, nil
}

func sortDirection(raw json.RawMessage) (bool, error) {
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		switch n {
		case 1:
			return false, nil
		case -1:
			return true, nil
		}
		return false, errInvalidDirection
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		switch strings.ToLower(s) {
		case "asc", "ascending", "1":
			return false, nil
		case "desc", "descending", "-1":
			return true, nil
		}
	}
	return false, errInvalidDirection
}

var (
	errInvalidDirection = errors.New("direction must be 1 or -1")
	errInvalidFlag      = errors.New("expected 0, 1, true or false")
)

// parseCount keeps the leading integer of s, like a lenient parseInt.
func parseCount(s string, fallback int) int {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return fallback
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return fallback
	}
	return n
}

type member struct {
	key   string
	value json.RawMessage
}

// decodeObject reads a JSON object keeping member order. Blank input is an empty object.
func decodeObject(param, raw string) ([]member, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, badRequest("%s: invalid JSON: %v", param, err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, badRequest("%s: expected a JSON object", param)
	}

	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, badRequest("%s: invalid JSON: %v", param, err)
		}
		key, ok := tok.(string)
		if !ok {
			return nil, badRequest("%s: invalid JSON key", param)
		}
		var value json.RawMessage
		if err := dec.Decode(&value); err != nil {
			return nil, badRequest("%s: invalid JSON: %v", param, err)
		}
		members = append(members, member{key: key, value: value})
	}
	if _, err := dec.Token(); err != nil {
		return nil, badRequest("%s: invalid JSON: %v", param, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, badRequest("%s: unexpected data after object", param)
	}
	return members, nil
}

func isObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
