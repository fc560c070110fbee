package waitset

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/ValentinKolb/dRPC/rpc/client"
	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/waitset")

// --------------------------------------------------------------------------
// Dispatch Contract
// --------------------------------------------------------------------------

// IWaitable is the uniform capability the wait set drives: access to the
// endpoint handle for readiness registration, and a drain operation invoked
// once per readiness notification. Both Client and Service implement it.
type IWaitable interface {
	// Handle returns the endpoint handle whose readiness channel the wait
	// set selects on
	Handle() node.IEndpointHandle

	// Execute drains at most one ready message. A spurious readiness
	// notification must result in a nil return with no side effect.
	Execute() error
}

// --------------------------------------------------------------------------
// WaitSet
// --------------------------------------------------------------------------

// WaitSet drives a set of waitables: it blocks until some endpoint signals
// readiness and then calls that endpoint's Execute once. A single
// endpoint's failure is local; Spin logs it and keeps servicing the others.
type WaitSet struct {
	mu        sync.Mutex
	waitables []IWaitable
}

// New creates an empty wait set
func New() *WaitSet {
	return &WaitSet{}
}

// Add registers a waitable with the wait set
func (w *WaitSet) Add(waitable IWaitable) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.waitables = append(w.waitables, waitable)
}

// Len returns the number of registered waitables
func (w *WaitSet) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.waitables)
}

// SpinOnce blocks until one endpoint signals readiness, then invokes its
// Execute once and returns its result. Returns ctx.Err() if the context is
// done first.
func (w *WaitSet) SpinOnce(ctx context.Context) error {
	w.mu.Lock()
	waitables := make([]IWaitable, len(w.waitables))
	copy(waitables, w.waitables)
	w.mu.Unlock()

	if len(waitables) == 0 {
		return fmt.Errorf("wait set is empty")
	}

	// Select over ctx.Done plus every readiness channel. The channel set
	// is dynamic, so reflect.Select is used instead of a select statement.
	cases := make([]reflect.SelectCase, 0, len(waitables)+1)
	cases = append(cases, reflect.SelectCase{
		Dir:  reflect.SelectRecv,
		Chan: reflect.ValueOf(ctx.Done()),
	})
	for _, waitable := range waitables {
		cases = append(cases, reflect.SelectCase{
			Dir:  reflect.SelectRecv,
			Chan: reflect.ValueOf(waitable.Handle().Ready()),
		})
	}

	chosen, _, _ := reflect.Select(cases)
	if chosen == 0 {
		return ctx.Err()
	}
	return waitables[chosen-1].Execute()
}

// Spin services the wait set until the context is done. Execute errors are
// logged and do not stop the loop: one endpoint failing does not mean the
// others are unusable.
func (w *WaitSet) Spin(ctx context.Context) error {
	for {
		err := w.SpinOnce(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			Logger.Errorf("execute failed: %v", err)
		}
	}
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

// SpinUntilFutureComplete services the wait set until the given future is
// resolved or the context is done
func SpinUntilFutureComplete[T any](ctx context.Context, w *WaitSet, future *client.Future[T]) (*T, error) {
	for {
		if v, ok := future.Result(); ok {
			return v, nil
		}
		if err := w.SpinOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			Logger.Errorf("execute failed: %v", err)
		}
	}
}
