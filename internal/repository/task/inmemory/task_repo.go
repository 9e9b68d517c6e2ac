package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskboard/internal/logger"
	"taskboard/internal/models/task"
	repo "taskboard/internal/repository"
	"time"
)

type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	lastID  int64
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		now:     time.Now,
	}
}

// NewTaskStorageWithClock is NewTaskStorage with a fixed time source for creation timestamps.
func NewTaskStorageWithClock(now func() time.Time) *TaskStorage {
	s := NewTaskStorage()
	s.now = now
	return s
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: in-memory storage is healthy")
	return nil
}

func (s *TaskStorage) Close() {}

// stored tasks are never handed out directly; callers get copies
func (s *TaskStorage) Create(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastID++
	taskToCreate.ID = s.lastID
	taskToCreate.CreatedAt = s.now().UTC()
	taskToCreate.Completed = false

	stored := *taskToCreate
	s.storage[stored.ID] = &stored
	return nil
}

func (s *TaskStorage) FindByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	taskToGet, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	found := *taskToGet
	return &found, nil
}

func (s *TaskStorage) FindAll(ctx context.Context) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*task.Task, 0, len(s.storage))
	for _, t := range s.storage {
		found := *t
		res = append(res, &found)
	}

	sort.Slice(res, func(i, j int) bool { return task.NewerFirst(res[i], res[j]) })
	return res, nil
}

func (s *TaskStorage) UpdateCompleted(ctx context.Context, id int64, completed bool) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.storage[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if stored.Completed == completed {
		return nil, repo.ErrUnchanged
	}
	stored.Completed = completed

	updated := *stored
	return &updated, nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return repo.ErrNotFound
	}
	delete(s.storage, id)
	return nil
}
