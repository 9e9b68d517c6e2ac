package service

import (
	"context"
	"taskboard/internal/models/task"
)

// TaskRepository is implemented by every store under internal/repository/task.
// Lookups of a missing id return repository.ErrNotFound. UpdateCompleted only writes when the
// flag differs and returns repository.ErrUnchanged otherwise.
type TaskRepository interface {
	HealthCheck(context.Context) error
	FindAll(context.Context) ([]*task.Task, error)
	FindByID(context.Context, int64) (*task.Task, error)
	Create(context.Context, *task.Task) error
	UpdateCompleted(context.Context, int64, bool) (*task.Task, error)
	Delete(context.Context, int64) error
}
