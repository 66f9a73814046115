package service

import (
	"strings"
)

// ValidationError reports missing or invalid fields in a create/update request.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return strings.Join(e.Problems, "; ")
}

// validator collects the checks the binding tags cannot express, such as
// values that are blank once trimmed.
type validator struct {
	problems []string
}

func (v *validator) require(ok bool, problem string) {
	if !ok {
		v.problems = append(v.problems, problem)
	}
}

func (v *validator) err() error {
	if len(v.problems) == 0 {
		return nil
	}
	return &ValidationError{Problems: v.problems}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
