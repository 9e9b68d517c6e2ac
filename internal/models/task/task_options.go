package task

import (
	"time"
)

type TaskOption func(*Task)

func WithID(id int64) TaskOption {
	if id <= 0 {
		return nil
	}
	return func(task *Task) {
		task.ID = id
	}
}

func WithCreatedAt(createdAt time.Time) TaskOption {
	if createdAt.IsZero() {
		return nil
	}
	return func(task *Task) {
		task.CreatedAt = createdAt
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.Completed = completed
	}
}
