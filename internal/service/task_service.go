package service

import (
	"context"
	"errors"
	"fmt"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	rep "taskboard/internal/repository"

	"go.uber.org/zap"
)

// business rules live here; handlers only translate HTTP

type TaskService struct {
	repo TaskRepository
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo: repo,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("store health check: %w", err)
	}
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Info("Service: task not found", zap.Int64("task_id", id))
			return nil, NewNotFound(id, err)
		}
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, title string) (*task.Task, error) {
	t := task.New(title)
	if t.Title == "" {
		return nil, NewValidationError("title", MsgTitleRequired)
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.Info("Service: task created", zap.Int64("task_id", t.ID))
	return t, nil
}

// CompleteTask flips completed to true. The flag never goes back to false, so a second
// call on the same task is rejected instead of being treated as a no-op.
func (s *TaskService) CompleteTask(ctx context.Context, id int64) (*task.Task, error) {
	current, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	if current.Completed {
		logger.Info("Service: task already completed", zap.Int64("task_id", id))
		return nil, NewAlreadyCompleted(id)
	}

	updated, err := s.repo.UpdateCompleted(ctx, id, true)
	if err != nil {
		switch {
		case errors.Is(err, rep.ErrNotFound):
			// deleted between the read and the write
			return nil, NewNotFound(id, err)
		case errors.Is(err, rep.ErrUnchanged):
			// another request completed it between the read and the write
			logger.Info("Service: task already completed", zap.Int64("task_id", id))
			return nil, NewAlreadyCompleted(id)
		}
		return nil, fmt.Errorf("complete task: %w", err)
	}

	logger.Info("Service: task completed", zap.Int64("task_id", id))
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	if _, err := s.GetTask(ctx, id); err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return NewNotFound(id, err)
		}
		return fmt.Errorf("delete task: %w", err)
	}

	logger.Info("Service: task deleted", zap.Int64("task_id", id))
	return nil
}
