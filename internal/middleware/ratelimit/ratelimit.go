// Package ratelimit bounds how often one visitor can make the server read
// the spreadsheet.
package ratelimit

import (
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

const (
	window = time.Minute
	// idleAfter is how long a visitor stays tracked after their last request.
	idleAfter = 10 * time.Minute
)

// Limiter counts requests per visitor in fixed one-minute windows.
type Limiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rejected atomic.Int64

	limit int
	sweep time.Duration
	now   func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	since time.Time
	seen  time.Time
	count int
}

type Config struct {
	RequestsPerMinute int
	// CleanupInterval is how often idle visitors are forgotten.
	CleanupInterval time.Duration
}

// DefaultConfig allows 120 requests per minute. A landing page load issues
// several partial requests.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 120,
		CleanupInterval:   5 * time.Minute,
	}
}

// NewLimiter starts a limiter and its sweeper goroutine. Call Stop to
// release it.
func NewLimiter(cfg Config) *Limiter {
	def := DefaultConfig()
	if cfg.RequestsPerMinute <= 0 {
		cfg.RequestsPerMinute = def.RequestsPerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = def.CleanupInterval
	}

	l := &Limiter{
		visitors: make(map[string]*visitor),
		limit:    cfg.RequestsPerMinute,
		sweep:    cfg.CleanupInterval,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go l.sweepLoop()
	return l
}

// Take records a request from key. When the window is used up it returns
// false and how long until the window resets.
func (l *Limiter) Take(key string) (bool, time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	v, ok := l.visitors[key]
	if !ok || now.Sub(v.since) >= window {
		l.visitors[key] = &visitor{since: now, seen: now, count: 1}
		return true, 0
	}

	v.count++
	v.seen = now
	if v.count <= l.limit {
		return true, 0
	}
	l.rejected.Add(1)
	return false, window - now.Sub(v.since)
}

// Allow is Take without the wait.
func (l *Limiter) Allow(key string) bool {
	ok, _ := l.Take(key)
	return ok
}

func (l *Limiter) sweepLoop() {
	ticker := time.NewTicker(l.sweep)
	defer ticker.Stop()
	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.forgetIdle()
		}
	}
}

func (l *Limiter) forgetIdle() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-idleAfter)
	for key, v := range l.visitors {
		if v.seen.Before(cutoff) {
			delete(l.visitors, key)
		}
	}
}

// ActiveClients is the number of visitors currently tracked.
func (l *Limiter) ActiveClients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.visitors)
}

// Stop ends the sweeper. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.done) })
}

type Metrics struct {
	TotalHits   int64
	ClientCount int64
}

func (l *Limiter) GetMetrics() Metrics {
	return Metrics{
		TotalHits:   l.rejected.Load(),
		ClientCount: int64(l.ActiveClients()),
	}
}

// Middleware rejects requests over the limit with Retry-After set. onLimit
// writes the body; nil means a plain 429.
func (l *Limiter) Middleware(key func(*http.Request) string, onLimit http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ok, wait := l.Take(key(r))
			if ok {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Set("Retry-After", strconv.Itoa(int(wait.Seconds())+1))
			if onLimit == nil {
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			onLimit(w, r)
		})
	}
}
