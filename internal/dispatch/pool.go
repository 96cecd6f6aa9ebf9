// AngelaMos | 2026
// pool.go

package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	ErrRejected  = errors.New("operation already in flight")
	ErrSaturated = errors.New("all workers busy")
	ErrClosed    = errors.New("dispatcher closed")
	ErrPanic     = errors.New("operation panicked")
)

// slotsPerMailbox covers a mailbox's running operation plus the previous
// one, which may still be returning after its result was polled.
const slotsPerMailbox = 2

// Pool runs background operations on a bounded set of goroutines. Submit
// never blocks the caller. Every mailbox reserves its own slots, so one
// category can never starve another.
type Pool struct {
	group  *errgroup.Group
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	closed   bool
	started  bool
	limit    int
	reserved int
}

func NewPool(workers int) *Pool {
	if workers < 1 {
		workers = 1
	}

	g := &errgroup.Group{}
	g.SetLimit(workers)

	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		group:  g,
		ctx:    ctx,
		cancel: cancel,
		limit:  workers,
	}
}

// reserve raises the limit to cover one more mailbox. errgroup forbids
// resizing while work is active, so mailboxes must exist before the first
// submit.
func (p *Pool) reserve(category string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		panic(fmt.Sprintf("dispatch: mailbox %q created after work was submitted", category))
	}

	p.reserved += slotsPerMailbox
	if p.reserved > p.limit {
		p.limit = p.reserved
		p.group.SetLimit(p.limit)
	}
}

func (p *Pool) submit(task func(ctx context.Context)) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrClosed
	}
	p.started = true

	ok := p.group.TryGo(func() error {
		task(p.ctx)
		return nil
	})
	if !ok {
		return ErrSaturated
	}
	return nil
}

// Close cancels the context handed to running operations and waits for
// them to return, or for ctx to end. Operations that ignore cancellation
// keep running until their own timeouts fire.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.cancel()

	done := make(chan struct{})
	go func() {
		_ = p.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
