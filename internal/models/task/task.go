package task

import (
	"strings"
	"time"
)

type Task struct {
	ID        int64     `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Completed bool      `json:"completed" db:"completed"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// New builds a not yet persisted task. ID and CreatedAt are left for the store to assign
// unless an option sets them.
func New(title string, options ...TaskOption) *Task {
	t := &Task{
		Title:     strings.TrimSpace(title),
		Completed: false,
	}
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
	return t
}

// NewerFirst reports whether a sorts before b in the default listing order:
// createdAt descending, id descending on ties.
func NewerFirst(a, b *Task) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}
