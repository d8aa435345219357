package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"taskboard/internal/domain"
	"taskboard/internal/validation"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const taskColumns = "id, user_id, title, description, assignee, priority, category, deadline, completed, created_at, updated_at"

type TaskRepository struct {
	db *pgxpool.Pool
}

func NewTaskRepository(db *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByOwner returns every task owned by ownerID, newest id first.
func (r *TaskRepository) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Task, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE user_id = $1 ORDER BY id DESC`,
		ownerID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Create(ctx context.Context, t *domain.Task) error {
	return r.db.QueryRow(ctx,
		`INSERT INTO tasks (user_id, title, description, assignee, priority, category, deadline, completed)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		t.OwnerID, t.Title, t.Description, t.Assignee, t.Priority, t.Category, t.Deadline, t.Completed,
	).Scan(&t.ID, &t.CreatedAt, &t.UpdatedAt)
}

// Update applies only the fields present in patch. Ownership is part of the
// WHERE clause, so a task owned by someone else looks exactly like a missing
// one.
func (r *TaskRepository) Update(ctx context.Context, id, ownerID int64, patch validation.TaskPatch) (domain.Task, error) {
	set := []string{"updated_at = now()"}
	args := []any{}

	add := func(column string, value any) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Assignee != nil {
		add("assignee", *patch.Assignee)
	}
	if patch.Priority != nil {
		add("priority", *patch.Priority)
	}
	if patch.Category != nil {
		add("category", *patch.Category)
	}
	if patch.Deadline != nil {
		add("deadline", *patch.Deadline)
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}

	args = append(args, id, ownerID)
	query := fmt.Sprintf(
		`UPDATE tasks SET %s WHERE id = $%d AND user_id = $%d RETURNING `+taskColumns,
		strings.Join(set, ", "), len(args)-1, len(args),
	)

	t, err := scanTask(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Task{}, domain.ErrNotFound
	}
	return t, err
}

// Delete removes the task if ownerID owns it; otherwise ErrNotFound.
func (r *TaskRepository) Delete(ctx context.Context, id, ownerID int64) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM tasks WHERE id = $1 AND user_id = $2`,
		id, ownerID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTask(row pgx.Row) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.Assignee,
		&t.Priority,
		&t.Category,
		&t.Deadline,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}
