package service

import (
	"context"
	"log/slog"
	"time"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/metrics"
	"taskboard-be/internal/repository"
)

// pendingIndex keeps User.pendingTasks in step with Task.assignedUser and
// Task.completed. It runs after the primary write has succeeded, one store call
// at a time and without a transaction. Failures are logged and counted in
// metrics.CascadeFailuresTotal; they never change the caller's result.
// Each write outlives request cancellation but is bounded by timeout.
type pendingIndex struct {
	users   repository.UserRepository
	tasks   repository.TaskRepository
	timeout time.Duration
	logger  *slog.Logger
}

func (p *pendingIndex) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx = context.WithoutCancel(ctx)
	if p.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, p.timeout)
}

func (p *pendingIndex) taskCreated(ctx context.Context, t *entities.Task) {
	if t.Pending() {
		p.add(ctx, t.AssignedUser, t.ID)
	}
}

// taskUpdated reconciles one task given its state before and after an update.
func (p *pendingIndex) taskUpdated(ctx context.Context, before, after *entities.Task) {
	switch {
	case before.AssignedUser != after.AssignedUser:
		if before.AssignedUser != "" {
			p.remove(ctx, before.AssignedUser, after.ID)
		}
		if after.Pending() {
			p.add(ctx, after.AssignedUser, after.ID)
		}
	case before.Completed != after.Completed:
		if after.AssignedUser == "" {
			return
		}
		if after.Completed {
			p.remove(ctx, after.AssignedUser, after.ID)
		} else {
			p.add(ctx, after.AssignedUser, after.ID)
		}
	}
}

func (p *pendingIndex) taskDeleted(ctx context.Context, t *entities.Task) {
	if t.AssignedUser != "" {
		p.remove(ctx, t.AssignedUser, t.ID)
	}
}

// userDeleted unassigns every task listed in the user's pendingTasks, completed or not.
func (p *pendingIndex) userDeleted(ctx context.Context, u *entities.User) {
	if len(u.PendingTasks) == 0 {
		return
	}
	ctx, cancel := p.detach(ctx)
	defer cancel()
	n, err := p.tasks.Unassign(ctx, u.PendingTasks)
	if err != nil {
		p.failed("unassign", err, slog.String("user_id", u.ID), slog.Int("tasks", len(u.PendingTasks)))
		return
	}
	p.logger.Debug("unassigned tasks of deleted user", slog.String("user_id", u.ID), slog.Int64("count", n))
}

func (p *pendingIndex) add(ctx context.Context, userID, taskID string) {
	ctx, cancel := p.detach(ctx)
	defer cancel()
	if err := p.users.AddPendingTask(ctx, userID, taskID); err != nil {
		p.failed("add_pending", err, slog.String("user_id", userID), slog.String("task_id", taskID))
	}
}

func (p *pendingIndex) remove(ctx context.Context, userID, taskID string) {
	ctx, cancel := p.detach(ctx)
	defer cancel()
	if err := p.users.RemovePendingTask(ctx, userID, taskID); err != nil {
		p.failed("remove_pending", err, slog.String("user_id", userID), slog.String("task_id", taskID))
	}
}

func (p *pendingIndex) failed(op string, err error, attrs ...any) {
	metrics.CascadeFailuresTotal.WithLabelValues(op).Inc()
	args := append([]any{slog.String("op", op), slog.String("error", err.Error())}, attrs...)
	p.logger.Warn("pending tasks sync failed", args...)
}
