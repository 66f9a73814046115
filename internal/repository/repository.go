package repository

import (
	"context"
	"errors"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
)

var (
	ErrNotFound     = errors.New("document not found")
	ErrInvalidID    = errors.New("invalid identifier")
	ErrDuplicateKey = errors.New("duplicate key")
)

// UserFields is the queryable surface of the users collection.
var UserFields = query.Schema{
	"_id":          query.KindID,
	"name":         query.KindString,
	"email":        query.KindString,
	"pendingTasks": query.KindIDList,
	"dateCreated":  query.KindTime,
}

// TaskFields is the queryable surface of the tasks collection.
var TaskFields = query.Schema{
	"_id":              query.KindID,
	"name":             query.KindString,
	"description":      query.KindString,
	"deadline":         query.KindTime,
	"completed":        query.KindBool,
	"assignedUser":     query.KindString,
	"assignedUserName": query.KindString,
	"dateCreated":      query.KindTime,
}

// UserRepository defines the interface for user store operations
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	FindByID(ctx context.Context, id string) (*entities.User, error)
	Find(ctx context.Context, q *query.Query) ([]*entities.User, error)
	Count(ctx context.Context, filter query.Filter) (int64, error)
	// Update applies patch and returns the post-update document.
	Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error)
	// Delete removes the document and returns it as it was.
	Delete(ctx context.Context, id string) (*entities.User, error)
	// AddPendingTask adds taskID to pendingTasks unless already present.
	AddPendingTask(ctx context.Context, userID, taskID string) error
	RemovePendingTask(ctx context.Context, userID, taskID string) error
}

// TaskRepository defines the interface for task store operations
type TaskRepository interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	FindByID(ctx context.Context, id string) (*entities.Task, error)
	Find(ctx context.Context, q *query.Query) ([]*entities.Task, error)
	Count(ctx context.Context, filter query.Filter) (int64, error)
	Update(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error)
	Delete(ctx context.Context, id string) (*entities.Task, error)
	// Unassign clears assignedUser and resets assignedUserName on every task in
	// ids in one bulk write. Ids that are not well-formed are skipped.
	Unassign(ctx context.Context, ids []string) (int64, error)
}

// Store bundles the repositories of one backend with its connection lifecycle.
type Store struct {
	Users UserRepository
	Tasks TaskRepository

	ping  func(ctx context.Context) error
	close func() error
}

func NewStore(users UserRepository, tasks TaskRepository, ping func(ctx context.Context) error, close func() error) *Store {
	return &Store{Users: users, Tasks: tasks, ping: ping, close: close}
}

func (s *Store) Ping(ctx context.Context) error {
	if s.ping == nil {
		return nil
	}
	return s.ping(ctx)
}

func (s *Store) Close() error {
	if s.close == nil {
		return nil
	}
	return s.close()
}
