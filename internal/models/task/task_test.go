package task_test

import (
	"sort"
	"taskboard/internal/models/task"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	created := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	tk := task.New("  Buy milk  ", task.WithID(7), task.WithCreatedAt(created))

	assert.Equal(t, "Buy milk", tk.Title)
	assert.False(t, tk.Completed)
	assert.Equal(t, int64(7), tk.ID)
	assert.Equal(t, created, tk.CreatedAt)
}

func TestNew_IgnoresEmptyOptions(t *testing.T) {
	tk := task.New("x", task.WithID(0), task.WithCreatedAt(time.Time{}))

	assert.Zero(t, tk.ID)
	assert.True(t, tk.CreatedAt.IsZero())
}

func TestNewerFirst(t *testing.T) {
	base := time.Now()
	tasks := []*task.Task{
		task.New("old", task.WithID(1), task.WithCreatedAt(base.Add(-time.Hour))),
		task.New("new", task.WithID(2), task.WithCreatedAt(base)),
		task.New("same time, higher id", task.WithID(3), task.WithCreatedAt(base)),
	}

	sort.SliceStable(tasks, func(i, j int) bool { return task.NewerFirst(tasks[i], tasks[j]) })

	assert.Equal(t, []int64{3, 2, 1}, []int64{tasks[0].ID, tasks[1].ID, tasks[2].ID})
}
