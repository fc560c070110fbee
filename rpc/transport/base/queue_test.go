package base

import (
	"testing"

	"github.com/ValentinKolb/dRPC/rpc/transport"
)

// TestQueueFIFOOrder verifies messages pop in push order
func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(0)

	for i := int64(1); i <= 3; i++ {
		err := q.Push(Envelope{ID: transport.RequestID{SequenceNumber: i}})
		if err != nil {
			t.Fatalf("failed to push %d: %v", i, err)
		}
	}

	for i := int64(1); i <= 3; i++ {
		e, ok := q.Pop()
		if !ok {
			t.Fatalf("pop %d failed", i)
		}
		if e.ID.SequenceNumber != i {
			t.Errorf("popped sequence number %d, want %d", e.ID.SequenceNumber, i)
		}
	}

	if _, ok := q.Pop(); ok {
		t.Error("pop succeeded on empty queue")
	}
}

// TestQueueBounded verifies pushes beyond the capacity fail
func TestQueueBounded(t *testing.T) {
	q := NewQueue(2)

	for i := 0; i < 2; i++ {
		if err := q.Push(Envelope{}); err != nil {
			t.Fatalf("failed to push %d: %v", i, err)
		}
	}
	if err := q.Push(Envelope{}); err == nil {
		t.Error("push succeeded on full queue")
	}

	// Popping frees a slot again
	if _, ok := q.Pop(); !ok {
		t.Fatal("pop failed")
	}
	if err := q.Push(Envelope{}); err != nil {
		t.Errorf("push failed after pop: %v", err)
	}
}

// TestQueuePulseReArmed verifies a poller draining one message at a time
// per pulse never stalls, even when pushes outpace pops
func TestQueuePulseReArmed(t *testing.T) {
	q := NewQueue(0)

	// Two quick pushes; the capacity-one channel absorbs the second pulse
	for i := int64(1); i <= 2; i++ {
		if err := q.Push(Envelope{ID: transport.RequestID{SequenceNumber: i}}); err != nil {
			t.Fatalf("failed to push %d: %v", i, err)
		}
	}

	for i := int64(1); i <= 2; i++ {
		select {
		case <-q.Ready():
		default:
			t.Fatalf("no pulse pending before pop %d", i)
		}
		if _, ok := q.Pop(); !ok {
			t.Fatalf("pop %d failed", i)
		}
	}

	// Queue is empty now, the last pop must not have re-armed
	select {
	case <-q.Ready():
		t.Error("pulse pending on empty queue")
	default:
	}
}
