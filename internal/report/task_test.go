package report

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"donasi/internal/log"
	"donasi/internal/sheets"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"fetch", fmt.Errorf("read: %w", &sheets.FetchError{Sheet: "S", StatusCode: 503}), "HTTP 503"},
		{"parse", &sheets.ParseError{Sheet: "S", Reason: "no JSON"}, MessageFormat},
		{"timeout", fmt.Errorf("fetch: %w", context.DeadlineExceeded), MessageTimeout},
		{"panic", fmt.Errorf("%w: boom", ErrUnexpected), MessageGeneric},
		{"other", errors.New("dial tcp: refused"), MessageGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.want {
				t.Errorf("UserMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestErrorType(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&sheets.FetchError{Sheet: "S", StatusCode: 404}, log.ErrorTypeUpstream},
		{fmt.Errorf("read: %w", &sheets.ParseError{Sheet: "S"}), log.ErrorTypeFormat},
		{context.DeadlineExceeded, log.ErrorTypeTimeout},
		{ErrUnexpected, log.ErrorTypeInternal},
	}
	for _, tt := range tests {
		if got := ErrorType(tt.err); got != tt.want {
			t.Errorf("ErrorType(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestTaskLifecycle(t *testing.T) {
	release := make(chan struct{})
	task := NewTask("total", func(ctx context.Context) (int, error) {
		<-release
		return 42, nil
	}, func() int { return 0 }, log.Discard())

	if s := task.Snapshot(); s.State != StateIdle || s.Value != 0 {
		t.Fatalf("initial snapshot = %+v", s)
	}

	ch := task.Refetch(context.Background())
	if s := task.Snapshot(); s.State != StateLoading {
		t.Fatalf("state after Refetch = %v, want loading", s.State)
	}
	close(release)

	res := <-ch
	if res.Err != nil || res.Value != 42 {
		t.Fatalf("result = %+v", res)
	}
	s := task.Snapshot()
	if s.State != StateSuccess || s.Value != 42 || s.UpdatedAt.IsZero() {
		t.Fatalf("final snapshot = %+v", s)
	}
	if v, ok := task.LastSuccess(); !ok || v != 42 {
		t.Fatalf("LastSuccess() = %v %v", v, ok)
	}
}

func TestTaskFailureStoresEmptyValue(t *testing.T) {
	var calls atomic.Int32
	task := NewTask("donors", func(ctx context.Context) ([]string, error) {
		if calls.Add(1) == 1 {
			return []string{"Budi"}, nil
		}
		return []string{"stale"}, &sheets.FetchError{Sheet: "Donasi Masuk", StatusCode: 503}
	}, func() []string { return []string{} }, log.Discard())

	task.Load(context.Background())
	res := task.Load(context.Background())

	if res.Message != "HTTP 503" {
		t.Fatalf("Message = %q", res.Message)
	}
	s := task.Snapshot()
	if s.State != StateError || len(s.Value) != 0 || s.Message != "HTTP 503" {
		t.Fatalf("snapshot = %+v", s)
	}
	if last, ok := task.LastSuccess(); !ok || len(last) != 1 || last[0] != "Budi" {
		t.Fatalf("LastSuccess() = %v %v, want the earlier success", last, ok)
	}
}

func TestTaskRecoversPanics(t *testing.T) {
	task := NewTask("total", func(ctx context.Context) (int, error) {
		panic("index out of range")
	}, func() int { return -1 }, log.Discard())

	res := task.Load(context.Background())
	if !errors.Is(res.Err, ErrUnexpected) || res.Message != MessageGeneric || res.Value != -1 {
		t.Fatalf("result = %+v", res)
	}
	if task.Snapshot().State != StateError {
		t.Fatalf("state = %v", task.Snapshot().State)
	}
}

func TestTaskLastFinishedFetchWins(t *testing.T) {
	slow := make(chan struct{})
	var calls atomic.Int32
	task := NewTask("total", func(ctx context.Context) (string, error) {
		if calls.Add(1) == 1 {
			<-slow
			return "first", nil
		}
		return "second", nil
	}, func() string { return "" }, log.Discard())

	first := task.Refetch(context.Background())
	for calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	second := <-task.Refetch(context.Background())
	if second.Value != "second" || task.Snapshot().Value != "second" {
		t.Fatalf("after second fetch: %+v", task.Snapshot())
	}

	close(slow)
	if r := <-first; r.Value != "first" {
		t.Fatalf("first result = %+v", r)
	}
	if got := task.Snapshot().Value; got != "first" {
		t.Fatalf("snapshot = %q, want the fetch that finished last", got)
	}
}

func TestTaskIgnoresCallerCancellation(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	task := NewTask("total", func(ctx context.Context) (int, error) {
		close(started)
		<-release
		return 7, ctx.Err()
	}, func() int { return 0 }, log.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	ch := task.Refetch(ctx)
	<-started
	cancel()
	close(release)

	if res := <-ch; res.Err != nil || res.Value != 7 {
		t.Fatalf("result = %+v, want success despite cancelled caller", res)
	}
	task.Wait()
}

func TestTaskKeepsCallerDeadline(t *testing.T) {
	task := NewTask("total", func(ctx context.Context) (int, error) {
		<-ctx.Done()
		return 0, fmt.Errorf("read: %w", ctx.Err())
	}, func() int { return 0 }, log.Discard())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if res := task.Load(ctx); res.Message != MessageTimeout {
		t.Fatalf("Message = %q, want %q", res.Message, MessageTimeout)
	}
}
