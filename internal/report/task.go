package report

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"donasi/internal/log"
	"donasi/internal/sheets"
)

// State is the lifecycle of a view's data.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateSuccess
	StateError
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateSuccess:
		return "success"
	case StateError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// ErrUnexpected wraps panics recovered from a loader.
var ErrUnexpected = errors.New("unexpected error")

// User-facing messages for failed loads.
const (
	MessageFormat  = "Format data tidak dikenali"
	MessageTimeout = "Waktu permintaan habis"
	MessageGeneric = "Gagal memuat data"
)

// UserMessage converts a load error into the text shown to visitors.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var ferr *sheets.FetchError
	if errors.As(err, &ferr) {
		return fmt.Sprintf("HTTP %d", ferr.StatusCode)
	}
	var perr *sheets.ParseError
	if errors.As(err, &perr) {
		return MessageFormat
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return MessageTimeout
	}
	return MessageGeneric
}

// ErrorType classifies a load error for logs.
func ErrorType(err error) string {
	var ferr *sheets.FetchError
	var perr *sheets.ParseError
	switch {
	case errors.As(err, &ferr):
		return log.ErrorTypeUpstream
	case errors.As(err, &perr):
		return log.ErrorTypeFormat
	case errors.Is(err, context.DeadlineExceeded):
		return log.ErrorTypeTimeout
	default:
		return log.ErrorTypeInternal
	}
}

// Snapshot is a view's state at one moment.
type Snapshot[T any] struct {
	State     State     `json:"state"`
	Value     T         `json:"value"`
	Message   string    `json:"message,omitempty"`
	Err       error     `json:"-"`
	UpdatedAt time.Time `json:"updated_at,omitzero"`
}

// Result is the outcome of one fetch.
type Result[T any] struct {
	Value   T
	Err     error
	Message string
}

// Loader produces a view's value.
type Loader[T any] func(ctx context.Context) (T, error)

// Task runs a view's loader and keeps the outcome of the most recently
// finished fetch. Each Refetch runs in its own goroutine; overlapping
// fetches are not cancelled and whichever finishes last is kept. A failed
// fetch stores the empty value together with the error.
type Task[T any] struct {
	name   string
	load   Loader[T]
	empty  func() T
	logger *log.Logger

	mu      sync.RWMutex
	snap    Snapshot[T]
	last    T
	hasLast bool

	wg sync.WaitGroup
}

// NewTask creates an idle task. empty builds the value stored on failure.
func NewTask[T any](name string, load Loader[T], empty func() T, logger *log.Logger) *Task[T] {
	if logger == nil {
		logger = log.FromContext(context.Background())
	}
	t := &Task[T]{
		name:   name,
		load:   load,
		empty:  empty,
		logger: logger.WithComponent(log.ComponentReport).With(log.FieldView, name),
	}
	t.snap.Value = empty()
	return t
}

// Name is the view the task serves.
func (t *Task[T]) Name() string { return t.name }

// Snapshot returns the current state.
func (t *Task[T]) Snapshot() Snapshot[T] {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.snap
}

// LastSuccess returns the value of the most recent successful fetch.
func (t *Task[T]) LastSuccess() (T, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.last, t.hasLast
}

// Refetch starts a fetch and returns a channel that receives its result.
// The fetch is detached from ctx cancellation but keeps its values and
// deadline, so a visitor closing the page does not record an error.
func (t *Task[T]) Refetch(ctx context.Context) <-chan Result[T] {
	out := make(chan Result[T], 1)

	t.mu.Lock()
	t.snap.State = StateLoading
	t.mu.Unlock()

	fetchCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc = func() {}
	if deadline, ok := ctx.Deadline(); ok {
		fetchCtx, cancel = context.WithDeadline(fetchCtx, deadline)
	}

	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		defer cancel()
		res := t.run(fetchCtx)
		t.settle(res)
		out <- res
	}()
	return out
}

// Load runs a fetch and waits for it.
func (t *Task[T]) Load(ctx context.Context) Result[T] {
	return <-t.Refetch(ctx)
}

// Wait blocks until every started fetch has finished.
func (t *Task[T]) Wait() {
	t.wg.Wait()
}

func (t *Task[T]) run(ctx context.Context) (res Result[T]) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			res = Result[T]{Value: t.empty(), Err: fmt.Errorf("%w: %v", ErrUnexpected, r)}
		}
		if res.Err != nil {
			res.Message = UserMessage(res.Err)
			t.logger.WarnContext(ctx, "View load failed",
				log.FieldOperation, log.OpRefetch,
				log.FieldError, res.Err.Error(),
				log.FieldErrorType, ErrorType(res.Err),
				log.FieldDuration, time.Since(start).Milliseconds())
			return
		}
		t.logger.DebugContext(ctx, "View loaded",
			log.FieldOperation, log.OpRefetch,
			log.FieldDuration, time.Since(start).Milliseconds())
	}()

	v, err := t.load(ctx)
	if err != nil {
		return Result[T]{Value: t.empty(), Err: err}
	}
	return Result[T]{Value: v}
}

func (t *Task[T]) settle(res Result[T]) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Snapshot[T]{
		Value:     res.Value,
		Err:       res.Err,
		Message:   res.Message,
		UpdatedAt: time.Now(),
	}
	if res.Err != nil {
		t.snap.State = StateError
	} else {
		t.snap.State = StateSuccess
		t.last, t.hasLast = res.Value, true
	}
}
