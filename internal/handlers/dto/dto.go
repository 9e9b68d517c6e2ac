package dto

import (
	"taskboard/internal/models/task"
	"time"
)

// CreateTaskRequest keeps Title as a pointer so a missing field and an empty string
// reach the same validation.
type CreateTaskRequest struct {
	Title *string `json:"title"`
}

func (r CreateTaskRequest) TitleValue() string {
	if r.Title == nil {
		return ""
	}
	return *r.Title
}

type TaskResponse struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"createdAt"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

func FromTask(t *task.Task) TaskResponse {
	return TaskResponse{
		ID:        t.ID,
		Title:     t.Title,
		Completed: t.Completed,
		CreatedAt: t.CreatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}
