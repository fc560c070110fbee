package waitset

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/client"
	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/ValentinKolb/dRPC/rpc/serializer"
	"github.com/ValentinKolb/dRPC/rpc/service"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/inproc"
)

// --------------------------------------------------------------------------
// Test Types and Fakes
// --------------------------------------------------------------------------

type addRequest struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

type addResponse struct {
	Sum int64 `json:"sum"`
}

// fakeWaitable is ready whenever its channel holds a pulse and counts its
// executions
type fakeWaitable struct {
	readyCh    chan struct{}
	executions atomic.Int64
	err        error
}

func newFakeWaitable() *fakeWaitable {
	return &fakeWaitable{readyCh: make(chan struct{}, 1)}
}

func (f *fakeWaitable) Handle() node.IEndpointHandle { return f }

func (f *fakeWaitable) Ready() <-chan struct{} { return f.readyCh }

func (f *fakeWaitable) Execute() error {
	f.executions.Add(1)
	return f.err
}

func (f *fakeWaitable) pulse() {
	select {
	case f.readyCh <- struct{}{}:
	default:
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestSpinOnceDispatchesReadyWaitable verifies exactly the signalled
// waitable is executed
func TestSpinOnceDispatchesReadyWaitable(t *testing.T) {
	w := New()
	a, b := newFakeWaitable(), newFakeWaitable()
	w.Add(a)
	w.Add(b)

	b.pulse()
	if err := w.SpinOnce(context.Background()); err != nil {
		t.Fatalf("spin once failed: %v", err)
	}

	if got := a.executions.Load(); got != 0 {
		t.Errorf("idle waitable executed %d times, want 0", got)
	}
	if got := b.executions.Load(); got != 1 {
		t.Errorf("ready waitable executed %d times, want 1", got)
	}
}

// TestSpinOnceEmptySetRejected verifies spinning an empty set is an error
// rather than a hang
func TestSpinOnceEmptySetRejected(t *testing.T) {
	w := New()
	if err := w.SpinOnce(context.Background()); err == nil {
		t.Fatal("expected error for empty wait set, got nil")
	}
}

// TestSpinOnceContextCancel verifies a done context unblocks the wait
func TestSpinOnceContextCancel(t *testing.T) {
	w := New()
	w.Add(newFakeWaitable())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	if err := w.SpinOnce(ctx); err != context.DeadlineExceeded {
		t.Fatalf("spin once returned %v, want %v", err, context.DeadlineExceeded)
	}
}

// TestSpinSurvivesExecuteError verifies one waitable failing does not stop
// the loop from servicing the others
func TestSpinSurvivesExecuteError(t *testing.T) {
	w := New()
	failing, healthy := newFakeWaitable(), newFakeWaitable()
	failing.err = errors.New("endpoint failed")
	w.Add(failing)
	w.Add(healthy)

	failing.pulse()
	healthy.pulse()

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if err := w.Spin(ctx); err != context.DeadlineExceeded {
		t.Fatalf("spin returned %v, want %v", err, context.DeadlineExceeded)
	}
	if got := failing.executions.Load(); got != 1 {
		t.Errorf("failing waitable executed %d times, want 1", got)
	}
	if got := healthy.executions.Load(); got != 1 {
		t.Errorf("healthy waitable executed %d times, want 1", got)
	}
}

// TestEndToEndOverInproc wires a client and a service over the in-memory
// transport into one wait set and resolves a call through it
func TestEndToEndOverInproc(t *testing.T) {
	n, err := node.New(common.NodeConfig{Name: "test"}, inproc.New())
	if err != nil {
		t.Fatalf("failed to create node: %v", err)
	}
	ser := serializer.NewJSONSerializer()

	svc, err := service.New[addRequest, addResponse](n, "add_two_ints", ser, transport.EndpointOptions{},
		func(_ transport.RequestID, req *addRequest, resp *addResponse) {
			resp.Sum = req.A + req.B
		})
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}

	cl, err := client.New[addRequest, addResponse](n, "add_two_ints", ser, transport.EndpointOptions{})
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}

	w := New()
	w.Add(svc)
	w.Add(cl)
	if w.Len() != 2 {
		t.Fatalf("wait set holds %d waitables, want 2", w.Len())
	}

	future, err := cl.CallAsync(&addRequest{A: 41, B: 1})
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := SpinUntilFutureComplete(ctx, w, future)
	if err != nil {
		t.Fatalf("spin until future complete failed: %v", err)
	}
	if resp.Sum != 42 {
		t.Errorf("call resolved to sum %d, want 42", resp.Sum)
	}

	// Teardown order: endpoints first, then the node
	if err := cl.Close(); err != nil {
		t.Errorf("failed to close client: %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Errorf("failed to close service: %v", err)
	}
	if err := n.Close(); err != nil {
		t.Errorf("failed to close node: %v", err)
	}
}
