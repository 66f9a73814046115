package service

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/logger"
	"taskboard-be/internal/metrics"
	"taskboard-be/internal/repository"
	"taskboard-be/internal/repository/memrepo"
)

type fixture struct {
	users    repository.UserRepository
	tasks    repository.TaskRepository
	userSvc  UserService
	taskSvc  TaskService
	deadline time.Time
}

func newFixture() *fixture {
	store := memrepo.New()
	users, tasks := store.Users(), store.Tasks()
	return &fixture{
		users:    users,
		tasks:    tasks,
		userSvc:  NewUserService(users, tasks, time.Second, logger.Discard()),
		taskSvc:  NewTaskService(tasks, users, time.Second, logger.Discard()),
		deadline: time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC),
	}
}

func (f *fixture) user(t *testing.T, name, email string) *entities.User {
	t.Helper()
	u, err := f.userSvc.Create(context.Background(), &entities.User{Name: name, Email: email})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (f *fixture) task(t *testing.T, task entities.Task) *entities.Task {
	t.Helper()
	if task.Name == "" {
		task.Name = "task"
	}
	if task.Deadline.IsZero() {
		task.Deadline = f.deadline
	}
	created, err := f.taskSvc.Create(context.Background(), &task)
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	return created
}

func (f *fixture) pending(t *testing.T, userID string) []string {
	t.Helper()
	u, err := f.users.FindByID(context.Background(), userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	return u.PendingTasks
}

func ptr[T any](v T) *T { return &v }

func TestCreateUserValidation(t *testing.T) {
	f := newFixture()
	_, err := f.userSvc.Create(context.Background(), &entities.User{Name: "  "})

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 2 {
		t.Fatalf("expected name and email problems, got %v", verr.Problems)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	f := newFixture()
	f.user(t, "Ann", "ann@example.com")
	_, err := f.userSvc.Create(context.Background(), &entities.User{Name: "Ann 2", Email: "ann@example.com"})
	if !errors.Is(err, repository.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	f := newFixture()
	_, err := f.taskSvc.Create(context.Background(), &entities.Task{Name: "no deadline"})
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Problems[0] != "deadline is required" {
		t.Fatalf("expected deadline validation error, got %v", err)
	}
}

func TestCreateTaskDefaultsAssigneeName(t *testing.T) {
	f := newFixture()
	task := f.task(t, entities.Task{})
	if task.AssignedUserName != entities.UnassignedUserName {
		t.Fatalf("expected %q, got %q", entities.UnassignedUserName, task.AssignedUserName)
	}
}

func TestCreateAssignedTaskAddsPending(t *testing.T) {
	f := newFixture()
	u := f.user(t, "Ann", "ann@example.com")

	open := f.task(t, entities.Task{AssignedUser: u.ID, AssignedUserName: "Ann"})
	f.task(t, entities.Task{AssignedUser: u.ID, AssignedUserName: "Ann", Completed: true})

	got := f.pending(t, u.ID)
	if !slices.Equal(got, []string{open.ID}) {
		t.Fatalf("expected only the open task, got %v", got)
	}
}

func TestUpdateTaskReassign(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	a := f.user(t, "A", "a@x")
	b := f.user(t, "B", "b@x")
	task := f.task(t, entities.Task{AssignedUser: a.ID, AssignedUserName: "A"})

	if _, err := f.taskSvc.Update(ctx, task.ID, entities.TaskPatch{AssignedUser: &b.ID, AssignedUserName: ptr("B")}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.pending(t, a.ID); len(got) != 0 {
		t.Fatalf("old assignee still lists the task: %v", got)
	}
	if got := f.pending(t, b.ID); !slices.Equal(got, []string{task.ID}) {
		t.Fatalf("new assignee should list the task, got %v", got)
	}
}

func TestUpdateTaskReassignCompleted(t *testing.T) {
	f := newFixture()
	a := f.user(t, "A", "a@x")
	b := f.user(t, "B", "b@x")
	task := f.task(t, entities.Task{AssignedUser: a.ID, Completed: true})

	if _, err := f.taskSvc.Update(context.Background(), task.ID, entities.TaskPatch{AssignedUser: &b.ID}); err != nil {
		t.Fatalf("update: %v", err)
	}
	if got := f.pending(t, b.ID); len(got) != 0 {
		t.Fatalf("completed task must not become pending: %v", got)
	}
}

func TestUpdateTaskCompletionToggles(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.user(t, "A", "a@x")
	task := f.task(t, entities.Task{AssignedUser: u.ID})

	if _, err := f.taskSvc.Update(ctx, task.ID, entities.TaskPatch{Completed: ptr(true)}); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got := f.pending(t, u.ID); len(got) != 0 {
		t.Fatalf("completed task still pending: %v", got)
	}

	if _, err := f.taskSvc.Update(ctx, task.ID, entities.TaskPatch{Completed: ptr(false)}); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if got := f.pending(t, u.ID); !slices.Equal(got, []string{task.ID}) {
		t.Fatalf("reopened task should be pending, got %v", got)
	}
}

func TestUpdateTaskNoRelevantChange(t *testing.T) {
	f := newFixture()
	u := f.user(t, "A", "a@x")
	task := f.task(t, entities.Task{AssignedUser: u.ID})

	updated, err := f.taskSvc.Update(context.Background(), task.ID, entities.TaskPatch{Name: ptr("renamed")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "renamed" {
		t.Fatalf("expected renamed task, got %+v", updated)
	}
	if got := f.pending(t, u.ID); !slices.Equal(got, []string{task.ID}) {
		t.Fatalf("pending list changed unexpectedly: %v", got)
	}
}

func TestUpdateTaskUnassignResetsName(t *testing.T) {
	f := newFixture()
	u := f.user(t, "A", "a@x")
	task := f.task(t, entities.Task{AssignedUser: u.ID, AssignedUserName: "A"})

	updated, err := f.taskSvc.Update(context.Background(), task.ID, entities.TaskPatch{AssignedUser: ptr("")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.AssignedUserName != entities.UnassignedUserName {
		t.Fatalf("expected name reset, got %q", updated.AssignedUserName)
	}
	if got := f.pending(t, u.ID); len(got) != 0 {
		t.Fatalf("unassigned task still pending: %v", got)
	}
}

func TestUpdateTaskValidationAndNotFound(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	task := f.task(t, entities.Task{})

	var verr *ValidationError
	if _, err := f.taskSvc.Update(ctx, task.ID, entities.TaskPatch{Name: ptr(" ")}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, err := f.taskSvc.Update(ctx, "00000000-0000-0000-0000-000000000000", entities.TaskPatch{}); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := f.taskSvc.Update(ctx, "garbage", entities.TaskPatch{}); !errors.Is(err, repository.ErrInvalidID) {
		t.Fatalf("expected ErrInvalidID, got %v", err)
	}
}

func TestDeleteTaskRemovesPending(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.user(t, "A", "a@x")
	task := f.task(t, entities.Task{AssignedUser: u.ID})

	if _, err := f.taskSvc.Delete(ctx, task.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := f.pending(t, u.ID); len(got) != 0 {
		t.Fatalf("deleted task still pending: %v", got)
	}
	if _, err := f.taskSvc.Delete(ctx, task.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
}

func TestDeleteUserUnassignsTasks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.user(t, "A", "a@x")
	t1 := f.task(t, entities.Task{AssignedUser: u.ID, AssignedUserName: "A"})
	t2 := f.task(t, entities.Task{AssignedUser: u.ID, AssignedUserName: "A"})

	deleted, err := f.userSvc.Delete(ctx, u.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(deleted.PendingTasks) != 2 {
		t.Fatalf("deleted user should be returned as it was, got %+v", deleted)
	}
	for _, id := range []string{t1.ID, t2.ID} {
		got, err := f.tasks.FindByID(ctx, id)
		if err != nil {
			t.Fatalf("find task: %v", err)
		}
		if got.AssignedUser != "" || got.AssignedUserName != entities.UnassignedUserName {
			t.Fatalf("task %s still assigned: %+v", id, got)
		}
	}
}

func TestUpdateUserPendingTasksNotReconciled(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	u := f.user(t, "A", "a@x")
	task := f.task(t, entities.Task{AssignedUser: u.ID})

	list := []string{"someone-else"}
	updated, err := f.userSvc.Update(ctx, u.ID, entities.UserPatch{PendingTasks: &list})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !slices.Equal(updated.PendingTasks, list) {
		t.Fatalf("pendingTasks should be overwritten, got %v", updated.PendingTasks)
	}
	got, _ := f.tasks.FindByID(ctx, task.ID)
	if got.AssignedUser != u.ID {
		t.Fatalf("task must not be touched: %+v", got)
	}
}

func TestUpdateUserValidation(t *testing.T) {
	f := newFixture()
	u := f.user(t, "A", "a@x")
	var verr *ValidationError
	if _, err := f.userSvc.Update(context.Background(), u.ID, entities.UserPatch{Email: ptr("")}); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

// failingUsers rejects every pending-task write.
type failingUsers struct {
	repository.UserRepository
}

func (failingUsers) AddPendingTask(context.Context, string, string) error {
	return errors.New("connection reset")
}

func TestCascadeFailureDoesNotFailRequest(t *testing.T) {
	store := memrepo.New()
	svc := NewTaskService(store.Tasks(), failingUsers{store.Users()}, time.Second, logger.Discard())

	counter := metrics.CascadeFailuresTotal.WithLabelValues("add_pending")
	before := testutil.ToFloat64(counter)

	created, err := svc.Create(context.Background(), &entities.Task{
		Name:         "t",
		Deadline:     time.Now(),
		AssignedUser: "6f1c1f0e-3c9a-4d8e-9a51-0c2f5b0b7a11",
	})
	if err != nil {
		t.Fatalf("cascade failure leaked into the response: %v", err)
	}
	if created.ID == "" {
		t.Fatalf("task was not created")
	}
	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("expected one counted failure, got %v", got)
	}
}

// stuckUsers blocks pending-task writes until their context ends.
type stuckUsers struct {
	repository.UserRepository
	got chan error
}

func (u stuckUsers) AddPendingTask(ctx context.Context, _, _ string) error {
	<-ctx.Done()
	u.got <- ctx.Err()
	return ctx.Err()
}

func TestCascadeWriteIsBoundedButOutlivesRequest(t *testing.T) {
	store := memrepo.New()
	users := stuckUsers{UserRepository: store.Users(), got: make(chan error, 1)}
	svc := NewTaskService(store.Tasks(), users, 20*time.Millisecond, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	_, err := svc.Create(ctx, &entities.Task{
		Name:         "t",
		Deadline:     time.Now(),
		AssignedUser: "6f1c1f0e-3c9a-4d8e-9a51-0c2f5b0b7a11",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond || elapsed > 2*time.Second {
		t.Fatalf("cascade write should end at the store timeout, took %v", elapsed)
	}
	if got := <-users.got; !errors.Is(got, context.DeadlineExceeded) {
		t.Fatalf("expected the write to hit its deadline, got %v", got)
	}
}
