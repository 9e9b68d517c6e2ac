package board

import (
	"context"
	"errors"
	"net/http"
	"taskboard/internal/client"
	"taskboard/internal/models/task"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) List(ctx context.Context) ([]*task.Task, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockAPI) Create(ctx context.Context, title string) (*task.Task, error) {
	args := m.Called(ctx, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockAPI) Complete(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockAPI) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

var (
	_ API = (*MockAPI)(nil)
	_ API = (*client.Client)(nil)
)

var base = time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

func seed() []*task.Task {
	return []*task.Task{
		task.New("oldest", task.WithID(1), task.WithCreatedAt(base)),
		task.New("newest", task.WithID(3), task.WithCreatedAt(base.Add(2*time.Hour)), task.WithCompleted(true)),
		task.New("middle", task.WithID(2), task.WithCreatedAt(base.Add(time.Hour))),
	}
}

func loadedBoard(t *testing.T) (*Board, *MockAPI) {
	t.Helper()
	api := new(MockAPI)
	api.On("List", mock.Anything).Return(seed(), nil).Once()

	b := New(api)
	require.NoError(t, b.Load(context.Background()))
	return b, api
}

func titles(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.Title
	}
	return out
}

func TestBoard_Load(t *testing.T) {
	b, api := loadedBoard(t)

	assert.False(t, b.Loading())
	assert.Empty(t, b.Banner())
	assert.Equal(t, []string{"newest", "middle", "oldest"}, titles(b.Tasks()))
	assert.Equal(t, []string{"middle", "oldest"}, titles(b.Pending()))
	assert.Equal(t, []string{"newest"}, titles(b.Completed()))
	assert.Equal(t, 2, b.PendingCount())
	api.AssertExpectations(t)
}

func TestBoard_Load_Failures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		banner string
	}{
		{name: "http failure", err: &client.APIError{Status: http.StatusInternalServerError}, banner: MsgLoadFailed},
		{name: "network failure", err: errors.New("dial tcp: connection refused"), banner: MsgLoadNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			api.On("List", mock.Anything).Return(nil, tt.err)

			b := New(api)
			err := b.Load(context.Background())

			require.Error(t, err)
			assert.False(t, b.Loading())
			assert.Equal(t, tt.banner, b.Banner())
			assert.Empty(t, b.Tasks())
		})
	}
}

func TestBoard_Load_TogglesLoading(t *testing.T) {
	api := new(MockAPI)
	b := New(api)

	var during bool
	api.On("List", mock.Anything).Run(func(mock.Arguments) {
		during = b.Loading()
	}).Return([]*task.Task{}, nil)

	require.NoError(t, b.Load(context.Background()))
	assert.True(t, during)
	assert.False(t, b.Loading())
}

func TestBoard_CreateAction_BlankTitle(t *testing.T) {
	api := new(MockAPI)
	b := New(api)

	assert.Nil(t, b.CreateAction("   "))
	assert.Equal(t, MsgEmptyTitle, b.FieldError())
	api.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)

	action := b.CreateAction("ok")
	require.NotNil(t, action)
	assert.Empty(t, b.FieldError())
}

func TestBoard_CreateAction(t *testing.T) {
	b, api := loadedBoard(t)

	created := &task.Task{ID: 4, Title: "Buy milk", CreatedAt: base.Add(3 * time.Hour)}
	api.On("Create", mock.Anything, "Buy milk").Return(created, nil)

	action := b.CreateAction("  Buy milk ")
	require.NotNil(t, action)
	assert.Equal(t, `Add task "Buy milk"?`, action.Prompt)

	require.NoError(t, action.Run(context.Background()))
	assert.Equal(t, []string{"Buy milk", "newest", "middle", "oldest"}, titles(b.Tasks()))
	assert.Equal(t, 3, b.PendingCount())
	api.AssertExpectations(t)
}

func TestBoard_CreateAction_Failure(t *testing.T) {
	b, api := loadedBoard(t)
	api.On("Create", mock.Anything, "x").Return(nil, &client.APIError{Status: http.StatusBadRequest, Message: "title is required"})

	action := b.CreateAction("x")
	require.NotNil(t, action)
	require.Error(t, action.Run(context.Background()))

	assert.Equal(t, MsgCreateFailed, b.Banner())
	assert.Len(t, b.Tasks(), 3)
}

func TestBoard_CompleteAction(t *testing.T) {
	b, api := loadedBoard(t)

	updated := &task.Task{ID: 2, Title: "middle", Completed: true, CreatedAt: base.Add(time.Hour)}
	api.On("Complete", mock.Anything, int64(2)).Return(updated, nil)

	action := b.CompleteAction(2)
	require.NotNil(t, action)
	assert.Equal(t, `Mark "middle" as completed?`, action.Prompt)

	require.NoError(t, action.Run(context.Background()))
	assert.Equal(t, []string{"newest", "middle"}, titles(b.Completed()))
	assert.Equal(t, 1, b.PendingCount())
	api.AssertExpectations(t)
}

func TestBoard_CompleteAction_NoRequestWhenDone(t *testing.T) {
	b, api := loadedBoard(t)

	assert.Nil(t, b.CompleteAction(3))
	assert.Nil(t, b.CompleteAction(99))
	api.AssertNotCalled(t, "Complete", mock.Anything, mock.Anything)
}

func TestBoard_CompleteAction_Failure(t *testing.T) {
	b, api := loadedBoard(t)
	api.On("Complete", mock.Anything, int64(1)).Return(nil, errors.New("connection reset"))

	action := b.CompleteAction(1)
	require.NotNil(t, action)
	require.Error(t, action.Run(context.Background()))

	assert.Equal(t, MsgCompleteNetwork, b.Banner())
	assert.Equal(t, 2, b.PendingCount())
}

func TestBoard_DeleteAction(t *testing.T) {
	b, api := loadedBoard(t)
	api.On("Delete", mock.Anything, int64(1)).Return(nil)

	action := b.DeleteAction(1)
	assert.Equal(t, `Delete "oldest"?`, action.Prompt)

	require.NoError(t, action.Run(context.Background()))
	assert.Equal(t, []string{"newest", "middle"}, titles(b.Tasks()))
	api.AssertExpectations(t)
}

func TestBoard_DeleteAction_NonNoContentKeepsState(t *testing.T) {
	b, api := loadedBoard(t)
	api.On("Delete", mock.Anything, int64(1)).Return(&client.APIError{Status: http.StatusOK})

	require.Error(t, b.DeleteAction(1).Run(context.Background()))

	assert.Equal(t, MsgDeleteFailed, b.Banner())
	assert.Len(t, b.Tasks(), 3)
}

func TestBoard_DeleteAction_UnknownTask(t *testing.T) {
	b, _ := loadedBoard(t)
	assert.Equal(t, `Delete "this task"?`, b.DeleteAction(77).Prompt)
}

func TestBoard_MutationClearsBanner(t *testing.T) {
	api := new(MockAPI)
	api.On("List", mock.Anything).Return(nil, errors.New("offline")).Once()

	b := New(api)
	require.Error(t, b.Load(context.Background()))
	require.Equal(t, MsgLoadNetwork, b.Banner())

	api.On("Create", mock.Anything, "retry").Return(&task.Task{ID: 1, Title: "retry", CreatedAt: base}, nil)
	require.NoError(t, b.CreateAction("retry").Run(context.Background()))

	assert.Empty(t, b.Banner())
}
