// Package board keeps the client side view of the task list and the messages shown to the user.
package board

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"taskboard/internal/client"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"

	"go.uber.org/zap"
)

const (
	MsgEmptyTitle = "please write a task before adding"

	MsgLoadFailed      = "could not load tasks, try again"
	MsgLoadNetwork     = "network error while loading tasks"
	MsgCreateFailed    = "could not create the task, try again"
	MsgCreateNetwork   = "network error while creating the task"
	MsgCompleteFailed  = "could not mark the task as completed, try again"
	MsgCompleteNetwork = "network error while updating the task"
	MsgDeleteFailed    = "could not delete the task, try again"
	MsgDeleteNetwork   = "network error while deleting the task"

	unknownTitle = "this task"
)

// API is the subset of client.Client the board needs.
type API interface {
	List(ctx context.Context) ([]*task.Task, error)
	Create(ctx context.Context, title string) (*task.Task, error)
	Complete(ctx context.Context, id int64) (*task.Task, error)
	Delete(ctx context.Context, id int64) error
}

type Board struct {
	mu         sync.Mutex
	api        API
	tasks      []*task.Task
	loading    bool
	banner     string
	fieldError string
}

func New(api API) *Board {
	return &Board{api: api}
}

// Action is a mutation waiting for the user to confirm Prompt.
type Action struct {
	Prompt string
	run    func(ctx context.Context) error
}

// Run performs the mutation. Failures are also reflected in the board banner.
func (a *Action) Run(ctx context.Context) error {
	return a.run(ctx)
}

// Load fetches the list. It is the only operation that toggles Loading.
func (b *Board) Load(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.banner = ""
	b.mu.Unlock()

	tasks, err := b.api.List(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false

	if err != nil {
		b.banner = failureMessage(err, MsgLoadFailed, MsgLoadNetwork)
		logger.Warn("Board: load failed", zap.Error(err))
		return err
	}

	b.tasks = tasks
	sortTasks(b.tasks)
	return nil
}

// CreateAction validates raw and returns nil when it is blank, setting the field error instead.
func (b *Board) CreateAction(raw string) *Action {
	title := strings.TrimSpace(raw)

	b.mu.Lock()
	defer b.mu.Unlock()

	if title == "" {
		b.fieldError = MsgEmptyTitle
		return nil
	}
	b.fieldError = ""

	return &Action{
		Prompt: fmt.Sprintf("Add task %q?", title),
		run: func(ctx context.Context) error {
			b.clearBanner()

			created, err := b.api.Create(ctx, title)
			if err != nil {
				b.fail("create", err, MsgCreateFailed, MsgCreateNetwork)
				return err
			}

			b.mu.Lock()
			b.tasks = append([]*task.Task{created}, b.tasks...)
			sortTasks(b.tasks)
			b.mu.Unlock()
			return nil
		},
	}
}

// CompleteAction returns nil for unknown or already completed tasks; no request is made for them.
func (b *Board) CompleteAction(id int64) *Action {
	b.mu.Lock()
	current := b.find(id)
	b.mu.Unlock()

	if current == nil || current.Completed {
		return nil
	}

	return &Action{
		Prompt: fmt.Sprintf("Mark %q as completed?", current.Title),
		run: func(ctx context.Context) error {
			b.clearBanner()

			updated, err := b.api.Complete(ctx, id)
			if err != nil {
				b.fail("complete", err, MsgCompleteFailed, MsgCompleteNetwork)
				return err
			}

			b.mu.Lock()
			for i, t := range b.tasks {
				if t.ID == id {
					b.tasks[i] = updated
				}
			}
			sortTasks(b.tasks)
			b.mu.Unlock()
			return nil
		},
	}
}

func (b *Board) DeleteAction(id int64) *Action {
	b.mu.Lock()
	title := unknownTitle
	if current := b.find(id); current != nil {
		title = current.Title
	}
	b.mu.Unlock()

	return &Action{
		Prompt: fmt.Sprintf("Delete %q?", title),
		run: func(ctx context.Context) error {
			b.clearBanner()

			if err := b.api.Delete(ctx, id); err != nil {
				b.fail("delete", err, MsgDeleteFailed, MsgDeleteNetwork)
				return err
			}

			b.mu.Lock()
			kept := b.tasks[:0]
			for _, t := range b.tasks {
				if t.ID != id {
					kept = append(kept, t)
				}
			}
			b.tasks = kept
			b.mu.Unlock()
			return nil
		},
	}
}

// Tasks returns a snapshot of the whole list, newest first.
func (b *Board) Tasks() []*task.Task {
	return b.filter(func(*task.Task) bool { return true })
}

func (b *Board) Pending() []*task.Task {
	return b.filter(func(t *task.Task) bool { return !t.Completed })
}

func (b *Board) Completed() []*task.Task {
	return b.filter(func(t *task.Task) bool { return t.Completed })
}

func (b *Board) PendingCount() int {
	return len(b.Pending())
}

func (b *Board) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *Board) Banner() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.banner
}

func (b *Board) FieldError() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fieldError
}

func (b *Board) ClearFieldError() {
	b.mu.Lock()
	b.fieldError = ""
	b.mu.Unlock()
}

func (b *Board) filter(keep func(*task.Task) bool) []*task.Task {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]*task.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// find expects b.mu to be held.
func (b *Board) find(id int64) *task.Task {
	for _, t := range b.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (b *Board) clearBanner() {
	b.mu.Lock()
	b.banner = ""
	b.mu.Unlock()
}

func (b *Board) fail(op string, err error, httpMsg, networkMsg string) {
	b.mu.Lock()
	b.banner = failureMessage(err, httpMsg, networkMsg)
	b.mu.Unlock()

	logger.Warn("Board: mutation failed", zap.String("operation", op), zap.Error(err))
}

func failureMessage(err error, httpMsg, networkMsg string) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return httpMsg
	}
	return networkMsg
}

func sortTasks(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return task.NewerFirst(tasks[i], tasks[j])
	})
}
