// Package proxy re-exposes the task API under /api for browser and terminal clients.
package proxy

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"taskboard/internal/logger"
	"taskboard/internal/middleware"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const (
	maxBodyBytes   = 1 << 20
	defaultTimeout = 15 * time.Second
)

type Proxy struct {
	backendURL string
	client     *http.Client
}

type Option func(*Proxy)

func WithHTTPClient(hc *http.Client) Option {
	return func(p *Proxy) {
		if hc != nil {
			p.client = hc
		}
	}
}

func New(backendURL string, opts ...Option) *Proxy {
	p := &Proxy{
		backendURL: strings.TrimRight(backendURL, "/"),
		client: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handler builds the proxy router with the same middleware chain as the task service.
func (p *Proxy) Handler(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.AccessLog("web"))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
	}))

	p.Register(r)

	return otelhttp.NewHandler(r, "taskboard-web")
}

func (p *Proxy) Register(r chi.Router) {
	r.Get("/health", p.health) // GET /health
	r.Route("/api/tasks", func(r chi.Router) {
		r.Get("/", p.forward)  // GET /api/tasks
		r.Post("/", p.forward) // POST /api/tasks
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", p.forward)    // GET /api/tasks/{id}
			r.Put("/", p.forward)    // PUT /api/tasks/{id}
			r.Delete("/", p.forward) // DELETE /api/tasks/{id}
		})
	})
}

func (p *Proxy) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (p *Proxy) target(r *http.Request) string {
	path := "/tasks"
	if id := chi.URLParam(r, "id"); id != "" {
		path += "/" + url.PathEscape(id)
	}
	return p.backendURL + path
}

func (p *Proxy) forward(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	target := p.target(r)

	var body io.Reader
	if r.Method == http.MethodPost {
		body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	}

	resp, err := p.do(r.Context(), r, target, body)
	if err != nil {
		logger.Error("Proxy: backend unavailable", err,
			zap.String("method", r.Method),
			zap.String("target", target),
			zap.String("request_id", middleware.GetRequestID(r.Context())))

		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "backend unavailable"})
		return
	}
	defer resp.Body.Close()

	logger.Info("Proxy: forwarded",
		zap.String("method", r.Method),
		zap.String("target", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("ms", time.Since(start)))

	if resp.StatusCode == http.StatusNoContent {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	w.WriteHeader(resp.StatusCode)
	if _, err := io.Copy(w, resp.Body); err != nil {
		logger.Warn("Proxy: failed to relay body", zap.Error(err), zap.String("target", target))
	}
}

func (p *Proxy) do(ctx context.Context, in *http.Request, target string, body io.Reader) (*http.Response, error) {
	out, err := http.NewRequestWithContext(ctx, in.Method, target, body)
	if err != nil {
		return nil, err
	}

	if body != nil {
		if ct := in.Header.Get("Content-Type"); ct != "" {
			out.Header.Set("Content-Type", ct)
		}
	}
	out.Header.Set("Accept", "application/json")
	if id := middleware.GetRequestID(ctx); id != "" {
		out.Header.Set(middleware.RequestIDHeader, id)
	} else if id := in.Header.Get(middleware.RequestIDHeader); id != "" {
		out.Header.Set(middleware.RequestIDHeader, id)
	}

	return p.client.Do(out)
}

func writeJSON(w http.ResponseWriter, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Proxy: failed to encode response", err)
	}
}
