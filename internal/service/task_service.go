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

// TaskService defines the interface for task business logic. Create, Update
// and Delete keep the assignee's pendingTasks in sync after the task write.
type TaskService interface {
	Create(ctx context.Context, task *entities.Task) (*entities.Task, error)
	List(ctx context.Context, q *query.Query) ([]*entities.Task, error)
	Count(ctx context.Context, filter query.Filter) (int64, error)
	Get(ctx context.Context, id string) (*entities.Task, error)
	Update(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error)
	Delete(ctx context.Context, id string) (*entities.Task, error)
}

type taskService struct {
	tasks   repository.TaskRepository
	pending *pendingIndex
	logger  *slog.Logger
}

// NewTaskService creates a new task service
func NewTaskService(tasks repository.TaskRepository, users repository.UserRepository, storeTimeout time.Duration, logger *slog.Logger) TaskService {
	return &taskService{
		tasks:   tasks,
		pending: &pendingIndex{users: users, tasks: tasks, timeout: storeTimeout, logger: logger},
		logger:  logger,
	}
}

// Create stores the task. assignedUser is not checked against existing users.
func (s *taskService) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	task.Name = strings.TrimSpace(task.Name)

	v := &validator{}
	v.require(!blank(task.Name), "name is required")
	v.require(!task.Deadline.IsZero(), "deadline is required")
	if err := v.err(); err != nil {
		return nil, err
	}
	if task.AssignedUserName == "" {
		task.AssignedUserName = entities.UnassignedUserName
	}

	created, err := s.tasks.Create(ctx, task)
	if err != nil {
		return nil, err
	}
	s.pending.taskCreated(ctx, created)
	s.logger.Info("task created",
		slog.String("task_id", created.ID),
		slog.String("assigned_user", created.AssignedUser),
	)
	return created, nil
}

func (s *taskService) List(ctx context.Context, q *query.Query) ([]*entities.Task, error) {
	return s.tasks.Find(ctx, q)
}

func (s *taskService) Count(ctx context.Context, filter query.Filter) (int64, error) {
	return s.tasks.Count(ctx, filter)
}

func (s *taskService) Get(ctx context.Context, id string) (*entities.Task, error) {
	return s.tasks.FindByID(ctx, id)
}

func (s *taskService) Update(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error) {
	v := &validator{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
		v.require(name != "", "name cannot be empty")
	}
	if patch.Deadline != nil {
		v.require(!patch.Deadline.IsZero(), "deadline cannot be empty")
	}
	if err := v.err(); err != nil {
		return nil, err
	}

	// Clearing the assignee without naming anyone resets the display name.
	if patch.AssignedUser != nil && *patch.AssignedUser == "" && patch.AssignedUserName == nil {
		unassigned := entities.UnassignedUserName
		patch.AssignedUserName = &unassigned
	}

	before, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	after, err := s.tasks.Update(ctx, id, patch)
	if err != nil {
		return nil, err
	}
	s.pending.taskUpdated(ctx, before, after)
	return after, nil
}

func (s *taskService) Delete(ctx context.Context, id string) (*entities.Task, error) {
	deleted, err := s.tasks.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	s.pending.taskDeleted(ctx, deleted)
	s.logger.Info("task deleted", slog.String("task_id", deleted.ID))
	return deleted, nil
}
