package client

import (
	"context"
	"sync"
)

// --------------------------------------------------------------------------
// Future
// --------------------------------------------------------------------------

// Future is a single-assignment cell holding "the response, once it
// arrives". It is resolved exactly once by the client's dispatch operation;
// a second resolution attempt is a programming error and is ignored. After
// resolution the value is observable forever, by any number of readers.
type Future[T any] struct {
	ch   chan struct{} // Closed when the value is set
	mu   sync.Mutex
	val  *T
	once sync.Once
}

// newFuture allocates a new unset future
func newFuture[T any]() *Future[T] {
	return &Future[T]{
		ch: make(chan struct{}),
	}
}

// setValue resolves the future. Closing the channel signals all waiters.
func (f *Future[T]) setValue(v *T) {
	f.once.Do(func() {
		f.mu.Lock()
		f.val = v
		f.mu.Unlock()
		close(f.ch)
	})
}

// Done returns a read-only channel that is closed when the value is set.
// This allows integration with select-based waiting.
func (f *Future[T]) Done() <-chan struct{} {
	return f.ch
}

// Wait blocks until the future is resolved or the context is cancelled.
// If ctx is done first, it returns ctx.Err().
func (f *Future[T]) Wait(ctx context.Context) (*T, error) {
	select {
	case <-f.ch:
		f.mu.Lock()
		v := f.val
		f.mu.Unlock()
		return v, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Result returns the value and a boolean indicating whether the future has
// been resolved. If not resolved, it returns (nil, false) without blocking.
func (f *Future[T]) Result() (*T, bool) {
	select {
	case <-f.ch:
		f.mu.Lock()
		v := f.val
		f.mu.Unlock()
		return v, true
	default:
		return nil, false
	}
}
