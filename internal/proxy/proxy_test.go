package proxy_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"taskboard/internal/proxy"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type seen struct {
	method      string
	path        string
	body        string
	contentType string
	requestID   string
}

func newBackend(t *testing.T, status int, body string) (*httptest.Server, *seen) {
	t.Helper()
	s := &seen{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		s.method = r.Method
		s.path = r.URL.Path
		s.body = string(b)
		s.contentType = r.Header.Get("Content-Type")
		s.requestID = r.Header.Get("X-Request-ID")

		if body != "" {
			w.Header().Set("Content-Type", "application/json")
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, s
}

func send(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestProxy_Forwarding(t *testing.T) {
	tests := []struct {
		name         string
		method       string
		path         string
		body         string
		backendCode  int
		backendBody  string
		expectedPath string
	}{
		{
			name:         "list",
			method:       http.MethodGet,
			path:         "/api/tasks",
			backendCode:  http.StatusOK,
			backendBody:  `[]`,
			expectedPath: "/tasks",
		},
		{
			name:         "create",
			method:       http.MethodPost,
			path:         "/api/tasks",
			body:         `{"title":"Buy milk"}`,
			backendCode:  http.StatusCreated,
			backendBody:  `{"id":1,"title":"Buy milk","completed":false,"createdAt":"2024-01-01T00:00:00Z"}`,
			expectedPath: "/tasks",
		},
		{
			name:         "get missing",
			method:       http.MethodGet,
			path:         "/api/tasks/9",
			backendCode:  http.StatusNotFound,
			backendBody:  `{"error":"task not found"}`,
			expectedPath: "/tasks/9",
		},
		{
			name:         "complete twice",
			method:       http.MethodPut,
			path:         "/api/tasks/1",
			backendCode:  http.StatusBadRequest,
			backendBody:  `{"error":"task already completed, cannot revert"}`,
			expectedPath: "/tasks/1",
		},
		{
			name:         "invalid id is passed through",
			method:       http.MethodDelete,
			path:         "/api/tasks/abc",
			backendCode:  http.StatusBadRequest,
			backendBody:  `{"error":"invalid id"}`,
			expectedPath: "/tasks/abc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, got := newBackend(t, tt.backendCode, tt.backendBody)
			h := proxy.New(backend.URL).Handler([]string{"*"})

			w := send(h, tt.method, tt.path, tt.body)

			assert.Equal(t, tt.backendCode, w.Code)
			assert.Equal(t, tt.backendBody, w.Body.String())
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.expectedPath, got.path)
			assert.Equal(t, tt.body, got.body)
			if tt.body != "" {
				assert.Equal(t, "application/json", got.contentType)
			}
			assert.NotEmpty(t, got.requestID)
		})
	}
}

func TestProxy_NoContentRelayedEmpty(t *testing.T) {
	backend, got := newBackend(t, http.StatusNoContent, "")
	h := proxy.New(backend.URL + "/").Handler([]string{"*"})

	w := send(h, http.MethodDelete, "/api/tasks/4", "")

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, "/tasks/4", got.path)
}

func TestProxy_ForwardsRequestID(t *testing.T) {
	backend, got := newBackend(t, http.StatusOK, `[]`)
	h := proxy.New(backend.URL).Handler([]string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "req-42", got.requestID)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func TestProxy_BackendUnavailable(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	h := proxy.New(url).Handler([]string{"*"})

	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		w := send(h, method, "/api/tasks/1", "")
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.JSONEq(t, `{"error":"backend unavailable"}`, w.Body.String())
	}
}

func TestProxy_Health(t *testing.T) {
	r := chi.NewRouter()
	proxy.New("http://127.0.0.1:1").Register(r)

	w := send(r, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
