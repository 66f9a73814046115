package query

import (
	"errors"
	"testing"
)

type doc struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func TestProjectionInclusion(t *testing.T) {
	p, err := ParseSelect(`{"name": 1}`, Schema{"_id": KindID, "name": KindString, "email": KindString})
	if err != nil {
		t.Fatalf("parse select: %v", err)
	}

	out, err := p.ApplyTo(doc{ID: "1", Name: "Ann", Email: "ann@example.com"})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	m := out.(map[string]any)
	if len(m) != 2 || m["_id"] != "1" || m["name"] != "Ann" {
		t.Fatalf("unexpected projection %v", m)
	}
}

func TestProjectionExclusionOnList(t *testing.T) {
	p, err := ParseSelect(`{"email": 0, "_id": false}`, Schema{"_id": KindID, "name": KindString, "email": KindString})
	if err != nil {
		t.Fatalf("parse select: %v", err)
	}

	out, err := p.ApplyTo([]doc{{ID: "1", Name: "Ann", Email: "a@x"}, {ID: "2", Name: "Bo", Email: "b@x"}})
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	list := out.([]map[string]any)
	if len(list) != 2 {
		t.Fatalf("expected 2 docs, got %d", len(list))
	}
	for _, m := range list {
		if len(m) != 1 || m["name"] == nil {
			t.Fatalf("expected only name, got %v", m)
		}
	}
}

func TestProjectionRejectsMixed(t *testing.T) {
	schema := Schema{"_id": KindID, "name": KindString, "email": KindString}
	if _, err := ParseSelect(`{"name": 1, "email": 0}`, schema); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected mixed projection to fail, got %v", err)
	}
	if _, err := ParseSelect(`{"name": 1, "_id": 0}`, schema); err != nil {
		t.Fatalf("_id exclusion alongside inclusion is allowed: %v", err)
	}
	if _, err := ParseSelect(`{"name": "yes"}`, schema); !errors.Is(err, ErrBadRequest) {
		t.Fatalf("expected non-flag value to fail, got %v", err)
	}
}

func TestZeroProjectionPassesThrough(t *testing.T) {
	in := doc{ID: "1"}
	out, err := Projection{}.ApplyTo(in)
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if out.(doc) != in {
		t.Fatalf("expected value to pass through untouched")
	}
}
