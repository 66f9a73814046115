package query

import (
	"encoding/json"
)

const idField = "_id"

// Projection is an inclusion or exclusion list over a document's top-level fields.
// The zero value returns documents unchanged.
type Projection struct {
	fields  map[string]bool
	include bool
	hideID  bool
}

// ParseSelect accepts {"name": 1, "email": 1} or {"pendingTasks": 0}. Inclusion
// and exclusion cannot be mixed, except that _id may be excluded from an inclusion.
func ParseSelect(raw string, schema Schema) (Projection, error) {
	members, err := decodeObject("select", raw)
	if err != nil {
		return Projection{}, err
	}

	p := Projection{fields: make(map[string]bool, len(members))}
	sawInclude, sawExclude := false, false
	for _, m := range members {
		if _, ok := schema[m.key]; !ok {
			return Projection{}, badRequest("select: unknown field %q", m.key)
		}
		on, err := selectFlag(m.value)
		if err != nil {
			return Projection{}, badRequest("select.%s: %v", m.key, err)
		}
		if m.key == idField {
			p.hideID = !on
			continue
		}
		if on {
			sawInclude = true
		} else {
			sawExclude = true
		}
		p.fields[m.key] = on
	}
	if sawInclude && sawExclude {
		return Projection{}, badRequest("select: cannot mix inclusion and exclusion")
	}
	p.include = sawInclude
	return p, nil
}

func selectFlag(raw json.RawMessage) (bool, error) {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0, nil
	}
	return false, errInvalidFlag
}

// IsZero reports whether applying the projection would change nothing.
func (p Projection) IsZero() bool {
	return len(p.fields) == 0 && !p.hideID
}

// Apply filters doc in place and returns it.
func (p Projection) Apply(doc map[string]any) map[string]any {
	if p.IsZero() {
		return doc
	}
	for key := range doc {
		if key == idField {
			if p.hideID {
				delete(doc, key)
			}
			continue
		}
		if p.include {
			if !p.fields[key] {
				delete(doc, key)
			}
		} else if _, excluded := p.fields[key]; excluded {
			delete(doc, key)
		}
	}
	return doc
}

// ApplyTo converts v (a struct or slice of structs) to generic documents and
// projects each of them. With a zero projection v is returned as is.
func (p Projection) ApplyTo(v any) (any, error) {
	if p.IsZero() {
		return v, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var many []map[string]any
	if err := json.Unmarshal(data, &many); err == nil {
		for i := range many {
			p.Apply(many[i])
		}
		return many, nil
	}

	var one map[string]any
	if err := json.Unmarshal(data, &one); err != nil {
		return nil, err
	}
	return p.Apply(one), nil
}
