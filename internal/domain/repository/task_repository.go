package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasktrack/internal/common"
	"tasktrack/internal/domain/model"
)

// TaskRepository persists tasks. Every read and write is scoped by owner in
// the query itself, so a task belonging to another user behaves exactly like
// a task that does not exist.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error)
	FindByOwnerAndID(ctx context.Context, ownerID, taskID string) (*model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, ownerID, taskID string) error
}

type pgTaskRepository struct {
	db *sql.DB
}

func NewPgTaskRepository(db *sql.DB) TaskRepository {
	return &pgTaskRepository{db: db}
}

func (r *pgTaskRepository) Create(ctx context.Context, task *model.Task) error {
	query := `INSERT INTO tasks (id, owner_id, title, description, priority, due_date, completed)
	          VALUES ($1, $2, $3, $4, $5, $6, $7)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.ID, task.OwnerID, task.Title, task.Description, task.Priority, task.DueDate, task.Completed,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Create: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Task, error) {
	query := `SELECT id, owner_id, title, description, priority, due_date, completed, created_at, updated_at
	          FROM tasks WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pgTaskRepository.ListByOwner query: %w", err)
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var t model.Task
		if err := rows.Scan(&t.ID, &t.OwnerID, &t.Title, &t.Description, &t.Priority,
			&t.DueDate, &t.Completed, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("pgTaskRepository.ListByOwner scan: %w", err)
		}
		tasks = append(tasks, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("pgTaskRepository.ListByOwner rows.Err: %w", err)
	}
	return tasks, nil
}

func (r *pgTaskRepository) FindByOwnerAndID(ctx context.Context, ownerID, taskID string) (*model.Task, error) {
	query := `SELECT id, owner_id, title, description, priority, due_date, completed, created_at, updated_at
	          FROM tasks WHERE id = $1 AND owner_id = $2`
	task := &model.Task{}
	err := r.db.QueryRowContext(ctx, query, taskID, ownerID).Scan(
		&task.ID, &task.OwnerID, &task.Title, &task.Description, &task.Priority,
		&task.DueDate, &task.Completed, &task.CreatedAt, &task.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTaskRepository.FindByOwnerAndID: %w", err)
	}
	return task, nil
}

func (r *pgTaskRepository) Update(ctx context.Context, task *model.Task) error {
	query := `UPDATE tasks SET
	            title = $1, description = $2, priority = $3, due_date = $4,
	            completed = $5, updated_at = CURRENT_TIMESTAMP
	          WHERE id = $6 AND owner_id = $7
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		task.Title, task.Description, task.Priority, task.DueDate, task.Completed,
		task.ID, task.OwnerID,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return common.ErrNotFound
		}
		return fmt.Errorf("pgTaskRepository.Update: %w", err)
	}
	return nil
}

func (r *pgTaskRepository) Delete(ctx context.Context, ownerID, taskID string) error {
	query := `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`
	res, err := r.db.ExecContext(ctx, query, taskID, ownerID)
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Delete: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTaskRepository.Delete rows affected: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
