package middleware

import (
	"context"
	"net/http"
	"taskboard/internal/logger"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type contextKey string

const (
	RequestIDHeader            = "X-Request-ID"
	RequestIdKey    contextKey = "request_id"
)

// RequestID reuses an incoming X-Request-ID or mints a new one, and echoes it back.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get(RequestIDHeader)
		if requestId == "" {
			requestId = uuid.New().String()
		}

		w.Header().Set(RequestIDHeader, requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

// accessWriter captures what the client actually received: first status, body size and the
// request id echoed in the response headers.
type accessWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	requestID   string
	wroteHeader bool
}

func (aw *accessWriter) WriteHeader(code int) {
	if aw.wroteHeader {
		return
	}
	aw.status = code
	aw.wroteHeader = true
	aw.requestID = aw.Header().Get(RequestIDHeader)
	aw.ResponseWriter.WriteHeader(code)
}

func (aw *accessWriter) Write(b []byte) (int, error) {
	if !aw.wroteHeader {
		aw.WriteHeader(http.StatusOK)
	}
	n, err := aw.ResponseWriter.Write(b)
	aw.bytes += n
	return n, err
}

func (aw *accessWriter) Unwrap() http.ResponseWriter {
	return aw.ResponseWriter
}

func accessLevel(status int) zapcore.Level {
	switch {
	case status >= 500:
		return zap.ErrorLevel
	case status >= 400:
		return zap.WarnLevel
	}
	return zap.InfoLevel
}

// AccessLog writes one line per request once the response is done. component names the hop
// ("api", "web") so a request id can be followed from the proxy into the task service.
// Mount it after RequestID and as the outermost chi middleware so the route pattern is known.
func AccessLog(component string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			aw := &accessWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(aw, r)

			requestID := aw.requestID
			if requestID == "" {
				requestID = GetRequestID(r.Context())
			}
			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}

			logger.Log(accessLevel(aw.status), "HTTP: "+r.Method+" "+r.URL.Path,
				zap.String("component", component),
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("route", route),
				zap.String("path", r.URL.Path),
				zap.String("client_ip", r.RemoteAddr),
				zap.Int("status", aw.status),
				zap.Int("bytes", aw.bytes),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
