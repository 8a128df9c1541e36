package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/task-tracker/backend/internal/db"
	"github.com/task-tracker/backend/internal/model"
)

var ErrTaskNotFound = errors.New("task not found")

type TaskStore interface {
	CreateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	GetTasksByOwner(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error)
	GetTaskByID(ctx context.Context, taskID, ownerID uuid.UUID) (*model.Task, error)
	UpdateTask(ctx context.Context, task *model.Task) (*model.Task, error)
	DeleteTask(ctx context.Context, taskID, ownerID uuid.UUID) (bool, error)
}

type TaskService struct {
	store TaskStore
}

func NewTaskService(store TaskStore) *TaskService {
	return &TaskService{store: store}
}

func (s *TaskService) ListTasks(ctx context.Context, ownerID uuid.UUID) ([]model.Task, error) {
	return s.store.GetTasksByOwner(ctx, ownerID)
}

func (s *TaskService) CreateTask(ctx context.Context, ownerID uuid.UUID, req model.CreateTaskRequest) (*model.Task, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, ErrInvalidInput
	}

	status := req.Status
	if status == "" {
		status = model.TaskStatusPending
	}
	if status != model.TaskStatusPending && status != model.TaskStatusCompleted {
		return nil, ErrInvalidInput
	}

	return s.store.CreateTask(ctx, &model.Task{
		OwnerID:     ownerID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		Status:      status,
		DueDate:     req.DueDate,
	})
}

// UpdateTask applies a partial update to a task the user owns.
func (s *TaskService) UpdateTask(ctx context.Context, ownerID, taskID uuid.UUID, req model.UpdateTaskRequest) (*model.Task, error) {
	task, err := s.store.GetTaskByID(ctx, taskID, ownerID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrInvalidInput
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = strings.TrimSpace(*req.Description)
	}
	if req.Status != nil {
		if *req.Status != model.TaskStatusPending && *req.Status != model.TaskStatusCompleted {
			return nil, ErrInvalidInput
		}
		task.Status = *req.Status
	}
	if req.DueDate != nil {
		task.DueDate = req.DueDate
	}

	updated, err := s.store.UpdateTask(ctx, task)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrTaskNotFound
		}
		return nil, err
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, ownerID, taskID uuid.UUID) error {
	deleted, err := s.store.DeleteTask(ctx, taskID, ownerID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrTaskNotFound
	}
	return nil
}
