package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"taskmanager/internal/model"
)

const taskColumns = `id, user_id, title, description, due_date, status, created_at, updated_at`

type TaskRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewTaskRepository(db *pgxpool.Pool, logger *zap.Logger) *TaskRepository {
	return &TaskRepository{db: db, logger: logger}
}

// Insert stores t and fills in the generated columns.
func (r *TaskRepository) Insert(ctx context.Context, t *model.Task) error {
	r.logger.Debug("Inserting task",
		zap.Int("user_id", t.UserID),
		zap.String("title", t.Title),
		zap.String("status", t.Status),
	)
	query := `
        INSERT INTO tasks (user_id, title, description, due_date, status)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING ` + taskColumns
	err := scanTask(r.db.QueryRow(ctx, query,
		t.UserID,
		t.Title,
		t.Description,
		t.DueDate.Time,
		t.Status,
	), t)
	if err != nil {
		r.logger.Error("Failed to insert task",
			zap.Error(err),
			zap.Int("user_id", t.UserID),
		)
		return err
	}
	r.logger.Info("Task inserted successfully",
		zap.Int("task_id", t.ID),
		zap.Int("user_id", t.UserID),
	)
	return nil
}

// ListByUser returns the user's tasks, earliest due date first and newest
// first among equal due dates.
func (r *TaskRepository) ListByUser(ctx context.Context, userID int) ([]model.Task, error) {
	r.logger.Debug("Listing tasks for user", zap.Int("user_id", userID))
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE user_id = $1
        ORDER BY due_date ASC, id DESC
    `
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to query tasks",
			zap.Error(err),
			zap.Int("user_id", userID),
		)
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := scanTask(rows, &t); err != nil {
			r.logger.Error("Failed to scan task row",
				zap.Error(err),
				zap.Int("user_id", userID),
			)
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByID returns the task only if it belongs to userID, otherwise pgx.ErrNoRows.
func (r *TaskRepository) FindByID(ctx context.Context, id, userID int) (*model.Task, error) {
	query := `
        SELECT ` + taskColumns + `
        FROM tasks
        WHERE id = $1 AND user_id = $2
    `
	var t model.Task
	if err := scanTask(r.db.QueryRow(ctx, query, id, userID), &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// Update writes every mutable column of t, scoped to its owner, and refreshes
// t from the stored row. Returns pgx.ErrNoRows when nothing matched.
func (r *TaskRepository) Update(ctx context.Context, t *model.Task) error {
	query := `
        UPDATE tasks
        SET title = $1, description = $2, due_date = $3, status = $4, updated_at = NOW()
        WHERE id = $5 AND user_id = $6
        RETURNING ` + taskColumns
	err := scanTask(r.db.QueryRow(ctx, query,
		t.Title,
		t.Description,
		t.DueDate.Time,
		t.Status,
		t.ID,
		t.UserID,
	), t)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			r.logger.Error("Failed to update task",
				zap.Error(err),
				zap.Int("task_id", t.ID),
			)
		}
		return err
	}
	r.logger.Info("Task updated", zap.Int("task_id", t.ID))
	return nil
}

// Delete removes the task if it belongs to userID and reports whether a row went away.
func (r *TaskRepository) Delete(ctx context.Context, id, userID int) (bool, error) {
	result, err := r.db.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		r.logger.Error("Failed to delete task",
			zap.Error(err),
			zap.Int("task_id", id),
		)
		return false, err
	}
	deleted := result.RowsAffected() > 0
	r.logger.Info("Task delete executed",
		zap.Int("task_id", id),
		zap.Bool("deleted", deleted),
	)
	return deleted, nil
}

func scanTask(row pgx.Row, t *model.Task) error {
	return row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.DueDate.Time,
		&t.Status,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
