package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"taskboard/internal/handlers/dto"
	"taskboard/internal/repository/task/inmemory"
	"taskboard/internal/service"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInMemoryRouter() http.Handler {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	n := 0
	storage := inmemory.NewTaskStorageWithClock(func() time.Time {
		n++
		return base.Add(time.Duration(n) * time.Minute)
	})
	return newRouter(service.NewTaskService(storage))
}

func TestScenario_CreateCompleteDelete(t *testing.T) {
	h := newInMemoryRouter()

	w := doRequest(h, http.MethodPost, "/tasks", `{"title":" Buy milk "}`, "application/json")
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "Buy milk", created.Title)
	assert.False(t, created.Completed)
	assert.NotZero(t, created.ID)

	path := fmt.Sprintf("/tasks/%d", created.ID)

	w = doRequest(h, http.MethodPut, path, "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var completed dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &completed))
	assert.True(t, completed.Completed)
	assert.Equal(t, created.CreatedAt, completed.CreatedAt)

	w = doRequest(h, http.MethodPut, path, "", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "task already completed, cannot revert", decodeError(t, w))

	w = doRequest(h, http.MethodDelete, path, "", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = doRequest(h, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "task not found", decodeError(t, w))
}

func TestScenario_UnknownAndMalformedIDs(t *testing.T) {
	h := newInMemoryRouter()

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		t.Run(method, func(t *testing.T) {
			for _, id := range []string{"1", "999", "-4"} {
				w := doRequest(h, method, "/tasks/"+id, "", "")
				assert.Equal(t, http.StatusNotFound, w.Code, "id %s", id)
			}
			for _, id := range []string{"abc", "1e3", "0x10", "99999999999999999999"} {
				w := doRequest(h, method, "/tasks/"+id, "", "")
				assert.Equal(t, http.StatusBadRequest, w.Code, "id %s", id)
				assert.Equal(t, "invalid id", decodeError(t, w))
			}
		})
	}
}

func TestScenario_ListNewestFirst(t *testing.T) {
	h := newInMemoryRouter()

	ids := map[int64]bool{}
	for _, title := range []string{"first", "second", "third"} {
		w := doRequest(h, http.MethodPost, "/tasks", fmt.Sprintf(`{"title":%q}`, title), "application/json")
		require.Equal(t, http.StatusCreated, w.Code)
		var created dto.TaskResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
		assert.False(t, ids[created.ID], "ids must be unique")
		ids[created.ID] = true
	}

	w := doRequest(h, http.MethodGet, "/tasks", "", "")
	require.Equal(t, http.StatusOK, w.Code)

	var tasks []dto.TaskResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &tasks))
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"third", "second", "first"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})
}

func TestScenario_BlankTitlesRejected(t *testing.T) {
	h := newInMemoryRouter()

	for _, body := range []string{`{}`, `{"title":""}`, `{"title":"   "}`, `{"title":null}`, ``} {
		w := doRequest(h, http.MethodPost, "/tasks", body, "application/json")
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
		assert.Equal(t, "title is required", decodeError(t, w))
	}

	w := doRequest(h, http.MethodGet, "/tasks", "", "")
	assert.JSONEq(t, `[]`, w.Body.String())
}
