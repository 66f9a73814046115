package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

func TestTimestampUnmarshalJSON(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
	for _, body := range []string{
		`{"deadline": "2026-03-01T12:30:00Z"}`,
		`{"deadline": 1772368200000}`,
		`{"deadline": "1772368200000"}`,
	} {
		var req CreateTaskRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("%s: %v", body, err)
		}
		if req.Deadline == nil || !req.Deadline.Equal(want) {
			t.Fatalf("%s: got %v", body, req.Deadline)
		}
	}

	var req CreateTaskRequest
	if err := json.Unmarshal([]byte(`{"deadline": "soon"}`), &req); err == nil {
		t.Fatalf("expected error for unparseable deadline")
	}
}

func TestUpdateTaskRequestPatch(t *testing.T) {
	var req UpdateTaskRequest
	if err := json.Unmarshal([]byte(`{"completed": true, "assignedUser": ""}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	patch := req.Patch()
	if patch.Completed == nil || !*patch.Completed {
		t.Fatalf("completed not carried: %+v", patch)
	}
	if patch.AssignedUser == nil || *patch.AssignedUser != "" {
		t.Fatalf("explicit empty assignedUser must be present: %+v", patch)
	}
	if patch.Name != nil || patch.Deadline != nil {
		t.Fatalf("absent fields must stay nil: %+v", patch)
	}
}

func TestRequestBindingTags(t *testing.T) {
	failed := func(obj any) []string {
		t.Helper()
		err := binding.Validator.ValidateStruct(obj)
		if err == nil {
			return nil
		}
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("unexpected error type %T: %v", err, err)
		}
		var fields []string
		for _, fe := range verrs {
			fields = append(fields, fe.Field()+":"+fe.Tag())
		}
		return fields
	}

	if got := failed(&CreateUserRequest{}); len(got) != 2 || got[0] != "Name:required" || got[1] != "Email:required" {
		t.Fatalf("create user: %v", got)
	}
	if got := failed(&CreateTaskRequest{Name: "x"}); len(got) != 1 || got[0] != "Deadline:required" {
		t.Fatalf("create task: %v", got)
	}
	if got := failed(&CreateTaskRequest{Name: "x", Deadline: &Timestamp{Time: time.Now()}}); got != nil {
		t.Fatalf("complete task request rejected: %v", got)
	}

	empty := ""
	if got := failed(&UpdateUserRequest{Email: &empty}); len(got) != 1 || got[0] != "Email:min" {
		t.Fatalf("update user: %v", got)
	}
	if got := failed(&UpdateTaskRequest{}); got != nil {
		t.Fatalf("absent update fields must pass: %v", got)
	}
}
