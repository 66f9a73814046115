package memrepo

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

type taskRecord struct {
	entities.Task
}

func (r *taskRecord) Field(name string) any {
	switch name {
	case "_id":
		return r.ID
	case "name":
		return r.Name
	case "description":
		return r.Description
	case "deadline":
		return r.Deadline
	case "completed":
		return r.Completed
	case "assignedUser":
		return r.AssignedUser
	case "assignedUserName":
		return r.AssignedUserName
	case "dateCreated":
		return r.DateCreated
	}
	return nil
}

func (r *taskRecord) snapshot() *entities.Task {
	t := r.Task
	return &t
}

type taskRepository struct {
	s *Store
}

func (r *taskRepository) find(id string) (int, *taskRecord) {
	for i, rec := range r.s.tasks {
		if rec.ID == id {
			return i, rec
		}
	}
	return -1, nil
}

func (r *taskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	rec := &taskRecord{Task: *task}
	rec.ID = uuid.NewString()
	rec.Deadline = task.Deadline.UTC()
	rec.DateCreated = r.s.now()
	r.s.tasks = append(r.s.tasks, rec)
	return rec.snapshot(), nil
}

func (r *taskRepository) FindByID(ctx context.Context, id string) (*entities.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	_, rec := r.find(id)
	if rec == nil {
		return nil, repository.ErrNotFound
	}
	return rec.snapshot(), nil
}

func (r *taskRepository) Find(ctx context.Context, q *query.Query) ([]*entities.Task, error) {
	if err := checkFilterIDs(q.Filter); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := selectDocs(r.s.tasks, q)
	tasks := make([]*entities.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.snapshot())
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, f query.Filter) (int64, error) {
	if err := checkFilterIDs(f); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return countDocs(r.s.tasks, f), nil
}

func (r *taskRepository) Update(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, rec := r.find(id)
	if rec == nil {
		return nil, repository.ErrNotFound
	}
	patch.Apply(&rec.Task)
	return rec.snapshot(), nil
}

func (r *taskRepository) Delete(ctx context.Context, id string) (*entities.Task, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, rec := r.find(id)
	if rec == nil {
		return nil, repository.ErrNotFound
	}
	r.s.tasks = slices.Delete(r.s.tasks, i, i+1)
	return rec.snapshot(), nil
}

func (r *taskRepository) Unassign(ctx context.Context, ids []string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, rec := range r.s.tasks {
		if slices.Contains(ids, rec.ID) {
			rec.AssignedUser = ""
			rec.AssignedUserName = entities.UnassignedUserName
			n++
		}
	}
	return n, nil
}
