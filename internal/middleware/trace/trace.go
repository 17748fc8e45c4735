// Package trace tags each request with an ID, hands handlers a logger that
// carries it, and keeps request counters for /metrics.
package trace

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"donasi/internal/log"
)

// HeaderRequestID carries the request ID in both directions.
const HeaderRequestID = "X-Request-ID"

type requestIDKey struct{}

type Middleware struct {
	clientIP func(*http.Request) string
	logger   *log.Logger

	requests   atomic.Int64
	durationMs atomic.Int64
	errors5xx  atomic.Int64
}

type Metrics struct {
	TotalRequests   int64
	TotalDurationMs int64
	ServerErrors    int64
}

// AverageMs is the mean request duration in milliseconds.
func (m Metrics) AverageMs() float64 {
	if m.TotalRequests == 0 {
		return 0
	}
	return float64(m.TotalDurationMs) / float64(m.TotalRequests)
}

// NewMiddleware resolves visitor addresses with clientIP, which may be nil.
func NewMiddleware(clientIP func(*http.Request) string, logger *log.Logger) *Middleware {
	if logger == nil {
		logger = log.Discard()
	}
	return &Middleware{
		clientIP: clientIP,
		logger:   logger.WithComponent(log.ComponentHTTP),
	}
}

func (m *Middleware) Middleware(next http.Handler) http.Handler {
	end := log.NewStructuredLogger(m.logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := requestID(r)
		ip := ""
		if m.clientIP != nil {
			ip = m.clientIP(r)
		}

		w.Header().Set(HeaderRequestID, id)
		reqLogger := m.logger.With(log.FieldRequestID, id)
		ctx := log.NewContext(context.WithValue(r.Context(), requestIDKey{}, id), reqLogger)
		r = r.WithContext(ctx)

		reqLogger.DebugContext(ctx, "HTTP request started",
			log.NewFields().
				WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.UserAgent(), r.Referer()).
				WithClientIP(ip).
				ToSlice()...)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		took := time.Since(start).Milliseconds()
		m.requests.Add(1)
		m.durationMs.Add(took)
		if rec.status >= http.StatusInternalServerError {
			m.errors5xx.Add(1)
		}
		end.LogHTTPEnd(ctx, r, rec.status, took, ip)
	})
}

func (m *Middleware) GetMetrics() Metrics {
	return Metrics{
		TotalRequests:   m.requests.Load(),
		TotalDurationMs: m.durationMs.Load(),
		ServerErrors:    m.errors5xx.Load(),
	}
}

// statusRecorder remembers the first status written.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written bool
}

func (s *statusRecorder) WriteHeader(code int) {
	if !s.written {
		s.status = code
		s.written = true
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	s.written = true
	return s.ResponseWriter.Write(b)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

// requestID reuses an inbound ID only when it is a UUID.
func requestID(r *http.Request) string {
	if id := r.Header.Get(HeaderRequestID); id != "" {
		if _, err := uuid.Parse(id); err == nil {
			return id
		}
	}
	return uuid.NewString()
}

// GetRequestID returns the ID assigned to the request behind ctx.
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
