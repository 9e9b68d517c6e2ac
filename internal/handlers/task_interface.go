package handlers

import (
	"context"
	"taskboard/internal/models/task"
)

type Service interface {
	HealthCheck(context.Context) error
	ListTasks(context.Context) ([]*task.Task, error)
	GetTask(context.Context, int64) (*task.Task, error)
	CreateTask(context.Context, string) (*task.Task, error)
	CompleteTask(context.Context, int64) (*task.Task, error)
	DeleteTask(context.Context, int64) error
}
