package base

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/dRPC/rpc/transport"
)

// DefaultQueueSize bounds the inbound buffer of one endpoint when the
// endpoint options do not specify a size
const DefaultQueueSize = 64

// Envelope is one buffered message together with its correlation id
type Envelope struct {
	ID   transport.RequestID
	Data []byte
}

// Queue is a bounded FIFO of envelopes with an advisory readiness channel.
// The readiness channel has capacity one; a pulse is dropped when one is
// already pending, so Pop re-arms the pulse while messages remain. A poller
// selecting on Ready therefore observes at least one pulse per buffered
// message, and possibly more.
type Queue struct {
	mu      sync.Mutex
	items   []Envelope
	max     int
	readyCh chan struct{}
}

// NewQueue creates a queue holding at most size messages (0 selects the
// default)
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Queue{
		max:     size,
		readyCh: make(chan struct{}, 1),
	}
}

// Push appends one envelope and pulses readiness
func (q *Queue) Push(e Envelope) error {
	q.mu.Lock()
	if len(q.items) >= q.max {
		q.mu.Unlock()
		return fmt.Errorf("queue full (%d messages)", q.max)
	}
	q.items = append(q.items, e)
	q.mu.Unlock()

	q.Pulse()
	return nil
}

// Pop removes the oldest envelope, re-arming the readiness pulse when more
// messages remain
func (q *Queue) Pop() (Envelope, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return Envelope{}, false
	}
	e := q.items[0]
	q.items = q.items[1:]
	remaining := len(q.items)
	q.mu.Unlock()

	if remaining > 0 {
		q.Pulse()
	}
	return e, true
}

// Ready returns the advisory readiness channel
func (q *Queue) Ready() <-chan struct{} {
	return q.readyCh
}

// Pulse signals readiness without blocking; a pending pulse absorbs it
func (q *Queue) Pulse() {
	select {
	case q.readyCh <- struct{}{}:
	default:
	}
}
