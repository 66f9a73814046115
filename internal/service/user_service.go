package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
	"taskboard-be/internal/repository"
)

// UserService defines the interface for user business logic
type UserService interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)
	List(ctx context.Context, q *query.Query) ([]*entities.User, error)
	Count(ctx context.Context, filter query.Filter) (int64, error)
	Get(ctx context.Context, id string) (*entities.User, error)
	Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error)
	// Delete removes the user and unassigns the tasks in its pendingTasks.
	Delete(ctx context.Context, id string) (*entities.User, error)
}

type userService struct {
	users   repository.UserRepository
	pending *pendingIndex
	logger  *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, tasks repository.TaskRepository, storeTimeout time.Duration, logger *slog.Logger) UserService {
	return &userService{
		users:   users,
		pending: &pendingIndex{users: users, tasks: tasks, timeout: storeTimeout, logger: logger},
		logger:  logger,
	}
}

func (s *userService) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	user.Name = strings.TrimSpace(user.Name)
	user.Email = strings.TrimSpace(user.Email)

	v := &validator{}
	v.require(!blank(user.Name), "name is required")
	v.require(!blank(user.Email), "email is required")
	if err := v.err(); err != nil {
		return nil, err
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user created", slog.String("user_id", created.ID))
	return created, nil
}

func (s *userService) List(ctx context.Context, q *query.Query) ([]*entities.User, error) {
	return s.users.Find(ctx, q)
}

func (s *userService) Count(ctx context.Context, filter query.Filter) (int64, error) {
	return s.users.Count(ctx, filter)
}

func (s *userService) Get(ctx context.Context, id string) (*entities.User, error) {
	return s.users.FindByID(ctx, id)
}

// Update writes whatever fields are present. pendingTasks may be replaced
// wholesale here; that path is not reconciled against the tasks.
func (s *userService) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	v := &validator{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
		v.require(name != "", "name cannot be empty")
	}
	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		patch.Email = &email
		v.require(email != "", "email cannot be empty")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	updated, err := s.users.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *userService) Delete(ctx context.Context, id string) (*entities.User, error) {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pending.userDeleted(ctx, deleted)
	s.logger.Info("user deleted",
		slog.String("user_id", deleted.ID),
		slog.Int("unassigned", len(deleted.PendingTasks)),
	)
	return deleted, nil
}

