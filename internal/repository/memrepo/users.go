package memrepo

import (
	"context"
	"slices"

	"github.com/google/uuid"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

type userRecord struct {
	entities.User
}

func (r *userRecord) Field(name string) any {
	switch name {
	case "_id":
		return r.ID
	case "name":
		return r.Name
	case "email":
		return r.Email
	case "pendingTasks":
		return r.PendingTasks
	case "dateCreated":
		return r.DateCreated
	}
	return nil
}

func (r *userRecord) snapshot() *entities.User {
	u := r.User
	u.PendingTasks = cloneStrings(r.PendingTasks)
	return &u
}

type userRepository struct {
	s *Store
}

// find returns the record with id; callers hold the lock.
func (r *userRepository) find(id string) (int, *userRecord) {
	for i, rec := range r.s.users {
		if rec.ID == id {
			return i, rec
		}
	}
	return -1, nil
}

func (r *userRepository) emailTaken(email, exceptID string) bool {
	for _, rec := range r.s.users {
		if rec.Email == email && rec.ID != exceptID {
			return true
		}
	}
	return false
}

func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email, "") {
		return nil, repository.ErrDuplicateKey
	}
	rec := &userRecord{User: entities.User{
		ID:           uuid.NewString(),
		Name:         user.Name,
		Email:        user.Email,
		PendingTasks: cloneStrings(user.PendingTasks),
		DateCreated:  r.s.now(),
	}}
	r.s.users = append(r.s.users, rec)
	return rec.snapshot(), nil
}

func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
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

func (r *userRepository) Find(ctx context.Context, q *query.Query) ([]*entities.User, error) {
	if err := checkFilterIDs(q.Filter); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	recs := selectDocs(r.s.users, q)
	users := make([]*entities.User, 0, len(recs))
	for _, rec := range recs {
		users = append(users, rec.snapshot())
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, f query.Filter) (int64, error) {
	if err := checkFilterIDs(f); err != nil {
		return 0, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	return countDocs(r.s.users, f), nil
}

func (r *userRepository) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, rec := r.find(id)
	if rec == nil {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil && r.emailTaken(*patch.Email, id) {
		return nil, repository.ErrDuplicateKey
	}
	patch.Apply(&rec.User)
	return rec.snapshot(), nil
}

func (r *userRepository) Delete(ctx context.Context, id string) (*entities.User, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i, rec := r.find(id)
	if rec == nil {
		return nil, repository.ErrNotFound
	}
	r.s.users = slices.Delete(r.s.users, i, i+1)
	return rec.snapshot(), nil
}

func (r *userRepository) AddPendingTask(ctx context.Context, userID, taskID string) error {
	if err := checkID(userID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, rec := r.find(userID)
	if rec == nil {
		return repository.ErrNotFound
	}
	if !slices.Contains(rec.PendingTasks, taskID) {
		rec.PendingTasks = append(rec.PendingTasks, taskID)
	}
	return nil
}

func (r *userRepository) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	if err := checkID(userID); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	_, rec := r.find(userID)
	if rec == nil {
		return repository.ErrNotFound
	}
	rec.PendingTasks = slices.DeleteFunc(rec.PendingTasks, func(id string) bool { return id == taskID })
	return nil
}
