// Package memrepo keeps users and tasks in process memory. It follows the same
// id, filter and duplicate-key rules as the database backends.
package memrepo

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

// Store holds both collections behind one lock.
type Store struct {
	mu    sync.RWMutex
	users []*userRecord
	tasks []*taskRecord
	now   func() time.Time
}

func New() *Store {
	return &Store{now: func() time.Time { return time.Now().UTC() }}
}

func (s *Store) Users() repository.UserRepository { return &userRepository{s: s} }
func (s *Store) Tasks() repository.TaskRepository { return &taskRepository{s: s} }

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", repository.ErrInvalidID, id)
	}
	return nil
}

func checkFilterIDs(f query.Filter) error {
	for _, c := range f {
		if c.Kind != query.KindID {
			continue
		}
		values := c.Values
		if !c.Op.IsSet() {
			values = []any{c.Value}
		}
		for _, v := range values {
			s, _ := v.(string)
			if err := checkID(s); err != nil {
				return err
			}
		}
	}
	return nil
}

// selectDocs filters, sorts and pages docs according to q.
func selectDocs[T query.Document](docs []T, q *query.Query) []T {
	out := make([]T, 0, len(docs))
	for _, d := range docs {
		if q.Filter.Matches(d) {
			out = append(out, d)
		}
	}
	if len(q.Sort) > 0 {
		sort.SliceStable(out, func(i, j int) bool { return query.Less(q.Sort, out[i], out[j]) })
	}
	if q.Skip > 0 {
		if q.Skip >= len(out) {
			return out[:0]
		}
		out = out[q.Skip:]
	}
	if q.Limit > 0 && q.Limit < len(out) {
		out = out[:q.Limit]
	}
	return out
}

func countDocs[T query.Document](docs []T, f query.Filter) int64 {
	var n int64
	for _, d := range docs {
		if f.Matches(d) {
			n++
		}
	}
	return n
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	return slices.Clone(in)
}
