package measure

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/alexisbeaulieu97/floatkit/internal/domain/geometry"
	"github.com/alexisbeaulieu97/floatkit/internal/ports"
)

// ErrClosed is delivered to callbacks issued after Close.
var ErrClosed = errors.New("measure: measurer closed")

// ErrBusy is delivered when every worker slot is taken. The engine treats it
// like any other failed round and retries on the next frame.
var ErrBusy = errors.New("measure: too many measurements in flight")

// BlockingFunc measures an element and may block until layout is known.
type BlockingFunc func(ctx context.Context, h ports.Handle) (geometry.Rect, error)

// Blocking adapts a BlockingFunc to the callback Measurer port. Calls run on
// a bounded worker group; callbacks run on the worker goroutine.
type Blocking struct {
	fn     BlockingFunc
	ctx    context.Context
	cancel context.CancelFunc
	group  *errgroup.Group

	mu     sync.Mutex
	closed bool
}

// NewBlocking creates an adapter allowing at most limit concurrent calls.
// A limit <= 0 means unbounded. The adapter stops when ctx is cancelled.
func NewBlocking(ctx context.Context, limit int, fn BlockingFunc) *Blocking {
	ctx, cancel := context.WithCancel(ctx)
	group := &errgroup.Group{}
	if limit > 0 {
		group.SetLimit(limit)
	}
	return &Blocking{fn: fn, ctx: ctx, cancel: cancel, group: group}
}

// Measure implements ports.Measurer. It never blocks the caller.
func (b *Blocking) Measure(h ports.Handle, done ports.MeasureCallback) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		done(geometry.Rect{}, ErrClosed)
		return
	}
	if err := b.ctx.Err(); err != nil {
		b.mu.Unlock()
		done(geometry.Rect{}, err)
		return
	}

	// Held across TryGo so Close cannot start waiting between the check
	// and the spawn.
	started := b.group.TryGo(func() error {
		rect, err := b.fn(b.ctx, h)
		if err != nil {
			done(geometry.Rect{}, fmt.Errorf("measure %s: %w", h.Name(), err))
			return nil
		}
		done(rect, nil)
		return nil
	})
	b.mu.Unlock()
	if !started {
		done(geometry.Rect{}, ErrBusy)
	}
}

// Close cancels outstanding calls and waits for their callbacks to return.
func (b *Blocking) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	b.cancel()
	return b.group.Wait()
}
