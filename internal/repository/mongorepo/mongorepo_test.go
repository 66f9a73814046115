package mongorepo

import (
	"errors"
	"reflect"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

func TestCompileFilterEmpty(t *testing.T) {
	got, err := compileFilter(nil)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty filter, got %v", got)
	}
}

func TestCompileFilterSingleCondition(t *testing.T) {
	f, err := query.ParseWhere(`{"completed": false}`, repository.TaskFields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := compileFilter(f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := bson.D{{Key: "completed", Value: bson.D{{Key: "$eq", Value: false}}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileFilterConvertsObjectIDs(t *testing.T) {
	oid := primitive.NewObjectID()
	f, err := query.ParseWhere(`{"_id": {"$in": ["`+oid.Hex()+`"]}, "name": {"$ne": "x"}}`, repository.UserFields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	got, err := compileFilter(f)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := bson.D{{Key: "$and", Value: bson.A{
		bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: bson.A{oid}}}}},
		bson.D{{Key: "name", Value: bson.D{{Key: "$ne", Value: "x"}}}},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestCompileFilterInvalidObjectID(t *testing.T) {
	f, err := query.ParseWhere(`{"_id": "zzz"}`, repository.UserFields)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := compileFilter(f); !errors.Is(err, repository.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestFindOptions(t *testing.T) {
	opts := findOptions(&query.Query{
		Sort:  []query.SortField{{Field: "deadline", Desc: true}},
		Skip:  5,
		Limit: 100,
	})
	if opts.Skip == nil || *opts.Skip != 5 {
		t.Fatalf("expected skip 5, got %v", opts.Skip)
	}
	if opts.Limit == nil || *opts.Limit != 100 {
		t.Fatalf("expected limit 100, got %v", opts.Limit)
	}
	if !reflect.DeepEqual(opts.Sort, bson.D{{Key: "deadline", Value: -1}}) {
		t.Fatalf("unexpected sort %v", opts.Sort)
	}

	none := findOptions(&query.Query{})
	if none.Limit != nil || none.Skip != nil || none.Sort != nil {
		t.Fatalf("expected no limit/skip/sort for an empty query")
	}
}
