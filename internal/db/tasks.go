package db

import (
	"context"

	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/model"
)

func (db *Postgres) CreateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	query := `
		INSERT INTO tasks (id, owner_id, title, description, status, due_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING id, owner_id, title, description, status, due_date, created_at
	`
	var created model.Task
	err := db.Pool.QueryRow(ctx, query, uuid.New(), task.OwnerID, task.Title, task.Description, task.Status, task.DueDate).Scan(
		&created.ID,
		&created.OwnerID,
		&created.Title,
		&created.Description,
		&created.Status,
		&created.DueDate,
		&created.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (db *Postgres) GetTasksByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	query := `
		SELECT id, owner_id, title, description, status, due_date, created_at
		FROM tasks
		WHERE owner_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []model.Task{}
	for rows.Next() {
		var task model.Task
		if err := rows.Scan(
			&task.ID,
			&task.OwnerID,
			&task.Title,
			&task.Description,
			&task.Status,
			&task.DueDate,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (db *Postgres) GetTaskByID(ctx context.Context, taskID, ownerID uuid.UUID) (*model.Task, error) {
	query := `
		SELECT id, owner_id, title, description, status, due_date, created_at
		FROM tasks
		WHERE id = $1 AND owner_id = $2
	`
	var task model.Task
	err := db.Pool.QueryRow(ctx, query, taskID, ownerID).Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (db *Postgres) UpdateTask(ctx context.Context, task *model.Task) (*model.Task, error) {
	query := `
		UPDATE tasks
		SET title = $3, description = $4, status = $5, due_date = $6
		WHERE id = $1 AND owner_id = $2
		RETURNING id, owner_id, title, description, status, due_date, created_at
	`
	var updated model.Task
	err := db.Pool.QueryRow(ctx, query, task.ID, task.OwnerID, task.Title, task.Description, task.Status, task.DueDate).Scan(
		&updated.ID,
		&updated.OwnerID,
		&updated.Title,
		&updated.Description,
		&updated.Status,
		&updated.DueDate,
		&updated.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

func (db *Postgres) DeleteTask(ctx context.Context, taskID, ownerID uuid.UUID) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1 AND owner_id = $2`, taskID, ownerID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
