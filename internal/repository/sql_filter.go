package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"taskboard-be/internal/query"
)

var userColumns = map[string]string{
	"_id":          "id",
	"name":         "name",
	"email":        "email",
	"pendingTasks": "pending_tasks",
	"dateCreated":  "date_created",
}

var taskColumns = map[string]string{
	"_id":              "id",
	"name":             "name",
	"description":      "description",
	"deadline":         "deadline",
	"completed":        "completed",
	"assignedUser":     "assigned_user",
	"assignedUserName": "assigned_user_name",
	"dateCreated":      "date_created",
}

// sqlBuilder accumulates positional arguments for a single statement.
type sqlBuilder struct {
	args []any
}

func (b *sqlBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *sqlBuilder) argList(values []any) string {
	placeholders := make([]string, len(values))
	for i, v := range values {
		placeholders[i] = b.arg(v)
	}
	return strings.Join(placeholders, ", ")
}

var sqlOperators = map[query.Operator]string{
	query.OpEq:  "=",
	query.OpNe:  "<>",
	query.OpGt:  ">",
	query.OpGte: ">=",
	query.OpLt:  "<",
	query.OpLte: "<=",
}

// where compiles f into a WHERE clause (empty when f is empty). Id operands
// that are not UUIDs fail with ErrInvalidID.
func (b *sqlBuilder) where(f query.Filter, columns map[string]string) (string, error) {
	if len(f) == 0 {
		return "", nil
	}

	clauses := make([]string, 0, len(f))
	for _, c := range f {
		col, ok := columns[c.Field]
		if !ok {
			return "", fmt.Errorf("%w: unknown field %q", query.ErrBadRequest, c.Field)
		}
		if c.Kind == query.KindID {
			if err := validUUIDs(c); err != nil {
				return "", err
			}
		}

		var clause string
		switch {
		case c.Kind == query.KindIDList:
			clause = b.listClause(col, c)
		case c.Op == query.OpIn:
			if len(c.Values) == 0 {
				clause = "FALSE"
			} else {
				clause = fmt.Sprintf("%s IN (%s)", col, b.argList(c.Values))
			}
		case c.Op == query.OpNin:
			if len(c.Values) == 0 {
				clause = "TRUE"
			} else {
				clause = fmt.Sprintf("%s NOT IN (%s)", col, b.argList(c.Values))
			}
		default:
			clause = fmt.Sprintf("%s %s %s", col, sqlOperators[c.Op], b.arg(c.Value))
		}
		clauses = append(clauses, clause)
	}
	return "WHERE " + strings.Join(clauses, " AND "), nil
}

func (b *sqlBuilder) listClause(col string, c query.Condition) string {
	switch c.Op {
	case query.OpEq:
		return fmt.Sprintf("%s::text = ANY(%s)", b.arg(c.Value), col)
	case query.OpNe:
		return fmt.Sprintf("NOT (%s::text = ANY(%s))", b.arg(c.Value), col)
	case query.OpIn:
		if len(c.Values) == 0 {
			return "FALSE"
		}
		return fmt.Sprintf("%s && ARRAY[%s]::text[]", col, b.argList(c.Values))
	case query.OpNin:
		if len(c.Values) == 0 {
			return "TRUE"
		}
		return fmt.Sprintf("NOT (%s && ARRAY[%s]::text[])", col, b.argList(c.Values))
	}
	return "FALSE"
}

func orderBy(sort []query.SortField, columns map[string]string) string {
	parts := make([]string, 0, len(sort))
	for _, s := range sort {
		col, ok := columns[s.Field]
		if !ok || s.Kind == query.KindIDList {
			continue
		}
		dir := "ASC"
		if s.Desc {
			dir = "DESC"
		}
		parts = append(parts, col+" "+dir)
	}
	if len(parts) == 0 {
		return ""
	}
	return "ORDER BY " + strings.Join(parts, ", ")
}

func (b *sqlBuilder) page(skip, limit int) string {
	var parts []string
	if limit > 0 {
		parts = append(parts, "LIMIT "+b.arg(limit))
	}
	if skip > 0 {
		parts = append(parts, "OFFSET "+b.arg(skip))
	}
	return strings.Join(parts, " ")
}

// selectStatement assembles SELECT cols FROM table [WHERE] [ORDER BY] [LIMIT/OFFSET].
func selectStatement(table, cols string, q *query.Query, columns map[string]string) (string, []any, error) {
	b := &sqlBuilder{}
	where, err := b.where(q.Filter, columns)
	if err != nil {
		return "", nil, err
	}

	parts := []string{"SELECT " + cols + " FROM " + table}
	for _, p := range []string{where, orderBy(q.Sort, columns), b.page(q.Skip, q.Limit)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " "), b.args, nil
}

func countStatement(table string, f query.Filter, columns map[string]string) (string, []any, error) {
	b := &sqlBuilder{}
	where, err := b.where(f, columns)
	if err != nil {
		return "", nil, err
	}
	stmt := "SELECT COUNT(*) FROM " + table
	if where != "" {
		stmt += " " + where
	}
	return stmt, b.args, nil
}

func validUUIDs(c query.Condition) error {
	values := c.Values
	if !c.Op.IsSet() {
		values = []any{c.Value}
	}
	for _, v := range values {
		s, _ := v.(string)
		if err := checkUUID(s); err != nil {
			return err
		}
	}
	return nil
}

func checkUUID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// filterUUIDs keeps only well-formed ids.
func filterUUIDs(ids []string) []string {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if checkUUID(id) == nil {
			valid = append(valid, id)
		}
	}
	return valid
}
