// AngelaMos | 2026
// mailbox.go

package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"
)

type Result[T any] struct {
	Value T
	Err   error
}

// Op is one background operation. ctx is cancelled when the pool closes.
type Op[T any] func(ctx context.Context) (T, error)

// Mailbox admits one outstanding operation for its category and holds
// the result until the foreground polls it.
type Mailbox[T any] struct {
	category string
	pool     *Pool
	busy     atomic.Bool
	results  chan Result[T]
}

// NewMailbox registers a category on pool. All mailboxes must be created
// before the pool runs any work.
func NewMailbox[T any](pool *Pool, category string) *Mailbox[T] {
	pool.reserve(category)
	return &Mailbox[T]{
		category: category,
		pool:     pool,
		results:  make(chan Result[T], 1),
	}
}

// Dispatch starts op in the background. It returns ErrRejected while an
// earlier operation's result has not been polled yet.
func (m *Mailbox[T]) Dispatch(op Op[T]) error {
	if !m.busy.CompareAndSwap(false, true) {
		return ErrRejected
	}

	err := m.pool.submit(func(ctx context.Context) {
		m.results <- m.run(ctx, op)
	})
	if err != nil {
		m.busy.Store(false)
		return fmt.Errorf("dispatch %s: %w", m.category, err)
	}
	return nil
}

func (m *Mailbox[T]) run(ctx context.Context, op Op[T]) (res Result[T]) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			slog.Error("background operation panicked",
				"category", m.category,
				"panic", r,
				"stack", string(debug.Stack()),
			)
			res = Result[T]{Err: fmt.Errorf("%w: %v", ErrPanic, r)}
		}
	}()

	v, err := op(ctx)

	slog.Debug("background operation finished",
		"category", m.category,
		"duration", time.Since(start),
		"error", err,
	)
	return Result[T]{Value: v, Err: err}
}

// Poll returns the finished result exactly once without blocking. The
// mailbox accepts a new operation afterwards.
func (m *Mailbox[T]) Poll() (Result[T], bool) {
	select {
	case r := <-m.results:
		m.busy.Store(false)
		return r, true
	default:
		return Result[T]{}, false
	}
}

// Busy reports whether an operation is running or its result is unread.
func (m *Mailbox[T]) Busy() bool {
	return m.busy.Load()
}
