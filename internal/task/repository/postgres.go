package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"securetask/backend/internal/task/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a task repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const taskColumns = `id, title, description, status, priority, due_date, assignee_id, created_by, created_at, updated_at, version`

// GetByID returns the task for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id)
	t, err := scanTask(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return t, nil
}

// ListByCreator returns all tasks created by the given user, newest first.
func (r *PostgresRepository) ListByCreator(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE created_by = $1 ORDER BY created_at DESC`, userID)
}

// ListByAssignee returns all tasks assigned to the given user, newest first.
func (r *PostgresRepository) ListByAssignee(ctx context.Context, userID string) ([]*domain.Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE assignee_id = $1 ORDER BY created_at DESC`, userID)
}

// Create persists the task to the database. The task must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, t *domain.Task) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, due_date, assignee_id, created_by, created_at, updated_at, version)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		t.ID, t.Title, nullString(t.Description), string(t.Status), nullString(string(t.Priority)),
		nullTime(t.DueDate), nullStringPtr(t.AssigneeID), t.CreatedBy, t.CreatedAt, t.UpdatedAt, t.Version,
	)
	return err
}

// Update writes the task where the stored version still matches t.Version,
// bumping the counter. Returns false when the row was concurrently modified
// or deleted.
func (r *PostgresRepository) Update(ctx context.Context, t *domain.Task) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tasks
		 SET title = $1, description = $2, status = $3, priority = $4, due_date = $5,
		     assignee_id = $6, updated_at = $7, version = version + 1
		 WHERE id = $8 AND version = $9`,
		t.Title, nullString(t.Description), string(t.Status), nullString(string(t.Priority)),
		nullTime(t.DueDate), nullStringPtr(t.AssigneeID), t.UpdatedAt, t.ID, t.Version,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Delete removes the task row. Missing rows are not an error.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) list(ctx context.Context, query, arg string) ([]*domain.Task, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Task
	for rows.Next() {
		t, err := scanTask(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTask(scan func(dest ...any) error) (*domain.Task, error) {
	var t domain.Task
	var description, priority, assigneeID sql.NullString
	var dueDate sql.NullTime
	var status string
	err := scan(&t.ID, &t.Title, &description, &status, &priority, &dueDate,
		&assigneeID, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt, &t.Version)
	if err != nil {
		return nil, err
	}
	t.Status = domain.Status(status)
	if description.Valid {
		t.Description = description.String
	}
	if priority.Valid {
		t.Priority = domain.Priority(priority.String)
	}
	if dueDate.Valid {
		d := dueDate.Time
		t.DueDate = &d
	}
	if assigneeID.Valid {
		a := assigneeID.String
		t.AssigneeID = &a
	}
	return &t, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
