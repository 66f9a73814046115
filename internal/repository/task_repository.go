package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
)

const taskSelectColumns = "id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created"

type taskRepository struct {
	db *sql.DB
}

// NewTaskRepository creates a Postgres-backed task repository
func NewTaskRepository(db *sql.DB) TaskRepository {
	return &taskRepository{db: db}
}

func scanTask(row rowScanner) (*entities.Task, error) {
	var task entities.Task
	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		&task.Deadline,
		&task.Completed,
		&task.AssignedUser,
		&task.AssignedUserName,
		&task.DateCreated,
	)
	if err != nil {
		return nil, err
	}
	task.Deadline = task.Deadline.UTC()
	task.DateCreated = task.DateCreated.UTC()
	return &task, nil
}

// Create inserts a new task
func (r *taskRepository) Create(ctx context.Context, task *entities.Task) (*entities.Task, error) {
	query := `
		INSERT INTO tasks (id, name, description, deadline, completed, assigned_user, assigned_user_name, date_created)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + taskSelectColumns

	created, err := scanTask(r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		task.Name,
		task.Description,
		task.Deadline.UTC(),
		task.Completed,
		task.AssignedUser,
		task.AssignedUserName,
		time.Now().UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", mapPQError(err))
	}
	return created, nil
}

// FindByID finds a task by ID (UUID)
func (r *taskRepository) FindByID(ctx context.Context, id string) (*entities.Task, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	task, err := scanTask(r.db.QueryRowContext(ctx,
		`SELECT `+taskSelectColumns+` FROM tasks WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Find(ctx context.Context, q *query.Query) ([]*entities.Task, error) {
	stmt, args, err := selectStatement("tasks", taskSelectColumns, q, taskColumns)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := []*entities.Task{}
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, nil
}

func (r *taskRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	stmt, args, err := countStatement("tasks", filter, taskColumns)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return n, nil
}

// Update writes the fields present in patch and returns the updated row
func (r *taskRepository) Update(ctx context.Context, id string, patch entities.TaskPatch) (*entities.Task, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	b := &sqlBuilder{}
	var sets []string
	if patch.Name != nil {
		sets = append(sets, "name = "+b.arg(*patch.Name))
	}
	if patch.Description != nil {
		sets = append(sets, "description = "+b.arg(*patch.Description))
	}
	if patch.Deadline != nil {
		sets = append(sets, "deadline = "+b.arg(patch.Deadline.UTC()))
	}
	if patch.Completed != nil {
		sets = append(sets, "completed = "+b.arg(*patch.Completed))
	}
	if patch.AssignedUser != nil {
		sets = append(sets, "assigned_user = "+b.arg(*patch.AssignedUser))
	}
	if patch.AssignedUserName != nil {
		sets = append(sets, "assigned_user_name = "+b.arg(*patch.AssignedUserName))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	stmt := fmt.Sprintf(`UPDATE tasks SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), b.arg(id), taskSelectColumns)
	task, err := scanTask(r.db.QueryRowContext(ctx, stmt, b.args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return task, nil
}

// Delete removes a task and returns the removed row
func (r *taskRepository) Delete(ctx context.Context, id string) (*entities.Task, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	task, err := scanTask(r.db.QueryRowContext(ctx,
		`DELETE FROM tasks WHERE id = $1 RETURNING `+taskSelectColumns, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete task: %w", err)
	}
	return task, nil
}

func (r *taskRepository) Unassign(ctx context.Context, ids []string) (int64, error) {
	valid := filterUUIDs(ids)
	if len(valid) == 0 {
		return 0, nil
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE tasks
		SET assigned_user = '', assigned_user_name = $2
		WHERE id = ANY($1::uuid[])
	`, pq.Array(valid), entities.UnassignedUserName)
	if err != nil {
		return 0, fmt.Errorf("failed to unassign tasks: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
