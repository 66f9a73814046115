package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taskboard-be/internal/entities"
	"taskboard-be/internal/query"
)

const userSelectColumns = "id, name, email, pending_tasks, date_created"

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a Postgres-backed user repository
func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*entities.User, error) {
	var user entities.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		pq.Array(&user.PendingTasks),
		&user.DateCreated,
	)
	if err != nil {
		return nil, err
	}
	if user.PendingTasks == nil {
		user.PendingTasks = []string{}
	}
	user.DateCreated = user.DateCreated.UTC()
	return &user, nil
}

// Create inserts a new user; the id and dateCreated are assigned here
func (r *userRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	query := `
		INSERT INTO users (id, name, email, pending_tasks, date_created)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userSelectColumns

	pending := user.PendingTasks
	if pending == nil {
		pending = []string{}
	}
	created, err := scanUser(r.db.QueryRowContext(ctx, query,
		uuid.NewString(),
		user.Name,
		user.Email,
		pq.Array(pending),
		time.Now().UTC(),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", mapPQError(err))
	}
	return created, nil
}

// FindByID finds a user by ID (UUID)
func (r *userRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userSelectColumns+` FROM users WHERE id = $1`, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Find returns the users matching q, sorted and paginated
func (r *userRepository) Find(ctx context.Context, q *query.Query) ([]*entities.User, error) {
	stmt, args, err := selectStatement("users", userSelectColumns, q, userColumns)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []*entities.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *userRepository) Count(ctx context.Context, filter query.Filter) (int64, error) {
	stmt, args, err := countStatement("users", filter, userColumns)
	if err != nil {
		return 0, err
	}

	var n int64
	if err := r.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

// Update writes the fields present in patch and returns the updated row
func (r *userRepository) Update(ctx context.Context, id string, patch entities.UserPatch) (*entities.User, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	b := &sqlBuilder{}
	var sets []string
	if patch.Name != nil {
		sets = append(sets, "name = "+b.arg(*patch.Name))
	}
	if patch.Email != nil {
		sets = append(sets, "email = "+b.arg(*patch.Email))
	}
	if patch.PendingTasks != nil {
		pending := *patch.PendingTasks
		if pending == nil {
			pending = []string{}
		}
		sets = append(sets, "pending_tasks = "+b.arg(pq.Array(pending)))
	}
	if len(sets) == 0 {
		return r.FindByID(ctx, id)
	}

	stmt := fmt.Sprintf(`UPDATE users SET %s WHERE id = %s RETURNING %s`,
		strings.Join(sets, ", "), b.arg(id), userSelectColumns)
	user, err := scanUser(r.db.QueryRowContext(ctx, stmt, b.args...))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update user: %w", mapPQError(err))
	}
	return user, nil
}

// Delete removes a user and returns the removed row
func (r *userRepository) Delete(ctx context.Context, id string) (*entities.User, error) {
	if err := checkUUID(id); err != nil {
		return nil, err
	}

	user, err := scanUser(r.db.QueryRowContext(ctx,
		`DELETE FROM users WHERE id = $1 RETURNING `+userSelectColumns, id))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to delete user: %w", err)
	}
	return user, nil
}

func (r *userRepository) AddPendingTask(ctx context.Context, userID, taskID string) error {
	if err := checkUUID(userID); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET pending_tasks = CASE
			WHEN $2::text = ANY(pending_tasks) THEN pending_tasks
			ELSE array_append(pending_tasks, $2::text)
		END
		WHERE id = $1
	`, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to add pending task: %w", err)
	}
	return requireAffected(result)
}

func (r *userRepository) RemovePendingTask(ctx context.Context, userID, taskID string) error {
	if err := checkUUID(userID); err != nil {
		return err
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET pending_tasks = array_remove(pending_tasks, $2::text)
		WHERE id = $1
	`, userID, taskID)
	if err != nil {
		return fmt.Errorf("failed to remove pending task: %w", err)
	}
	return requireAffected(result)
}

func requireAffected(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// mapPQError translates unique violations into ErrDuplicateKey.
func mapPQError(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrDuplicateKey, pqErr.Constraint)
	}
	return err
}
