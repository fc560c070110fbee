package inproc

import (
	"crypto/rand"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/base"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("transport/inproc")

// --------------------------------------------------------------------------
// Topic state
// --------------------------------------------------------------------------

// topicState is the shared state of one topic: the (single) service
// endpoint's request queue, and the response queues of all client
// endpoints, keyed by writer GUID.
type topicState struct {
	mu       sync.Mutex
	desc     transport.TypeDescriptor
	service  *serviceEndpoint
	requests *base.Queue
	clients  *xsync.MapOf[[16]byte, *clientEndpoint]
}

// --------------------------------------------------------------------------
// Transport
// --------------------------------------------------------------------------

// Transport is an in-memory topic bus. All endpoints created from the same
// Transport instance share one topic namespace.
type Transport struct {
	topics *xsync.MapOf[string, *topicState]
}

// New creates a new in-memory transport
func New() *Transport {
	return &Transport{
		topics: xsync.NewMapOf[string, *topicState](),
	}
}

// topic returns the state of a topic, creating it on first use and
// validating the type descriptor on every later use
func (t *Transport) topic(name string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (*topicState, error) {
	state, _ := t.topics.LoadOrCompute(name, func() *topicState {
		return &topicState{
			desc:     desc,
			requests: base.NewQueue(opts.QueueSize),
			clients:  xsync.NewMapOf[[16]byte, *clientEndpoint](),
		}
	})
	if state.desc != desc {
		return nil, fmt.Errorf("topic %q carries type %q, not %q", name, state.desc, desc)
	}
	return state, nil
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.ITransport)
// --------------------------------------------------------------------------

func (t *Transport) InitClient(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (transport.IClientEndpoint, error) {
	state, err := t.topic(topic, desc, opts)
	if err != nil {
		return nil, err
	}

	ep := &clientEndpoint{
		topic:     topic,
		state:     state,
		responses: base.NewQueue(opts.QueueSize),
	}
	if _, err := rand.Read(ep.guid[:]); err != nil {
		return nil, fmt.Errorf("failed to generate endpoint guid: %w", err)
	}

	state.clients.Store(ep.guid, ep)
	Logger.Debugf("created client endpoint %x on topic %q", ep.guid[:4], topic)
	return ep, nil
}

func (t *Transport) InitService(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (transport.IServiceEndpoint, error) {
	state, err := t.topic(topic, desc, opts)
	if err != nil {
		return nil, err
	}

	state.mu.Lock()
	defer state.mu.Unlock()
	if state.service != nil {
		return nil, fmt.Errorf("topic %q already has a service endpoint", topic)
	}

	ep := &serviceEndpoint{
		topic: topic,
		state: state,
	}
	state.service = ep
	Logger.Debugf("created service endpoint on topic %q", topic)
	return ep, nil
}

// --------------------------------------------------------------------------
// Client Endpoint
// --------------------------------------------------------------------------

type clientEndpoint struct {
	topic     string
	guid      [16]byte
	state     *topicState
	nextSeq   atomic.Int64
	responses *base.Queue
	finalized atomic.Bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientEndpoint)
// --------------------------------------------------------------------------

func (c *clientEndpoint) SendRequest(req []byte) (int64, error) {
	if c.finalized.Load() {
		return 0, transport.ErrFinalized
	}

	seq := c.nextSeq.Add(1)
	e := base.Envelope{
		ID:   transport.RequestID{WriterGUID: c.guid, SequenceNumber: seq},
		Data: append([]byte(nil), req...),
	}
	if err := c.state.requests.Push(e); err != nil {
		return 0, fmt.Errorf("failed to send request on topic %q: %w", c.topic, err)
	}
	return seq, nil
}

func (c *clientEndpoint) TakeResponse() ([]byte, transport.RequestID, error) {
	if c.finalized.Load() {
		return nil, transport.RequestID{}, transport.ErrFinalized
	}

	e, ok := c.responses.Pop()
	if !ok {
		return nil, transport.RequestID{}, transport.ErrNoneAvailable
	}
	return e.Data, e.ID, nil
}

func (c *clientEndpoint) Ready() <-chan struct{} {
	return c.responses.Ready()
}

func (c *clientEndpoint) Finalize() error {
	if c.finalized.Swap(true) {
		return transport.ErrFinalized
	}
	c.state.clients.Delete(c.guid)
	return nil
}

// --------------------------------------------------------------------------
// Service Endpoint
// --------------------------------------------------------------------------

type serviceEndpoint struct {
	topic     string
	state     *topicState
	finalized atomic.Bool
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServiceEndpoint)
// --------------------------------------------------------------------------

func (s *serviceEndpoint) TakeRequest() ([]byte, transport.RequestID, error) {
	if s.finalized.Load() {
		return nil, transport.RequestID{}, transport.ErrFinalized
	}

	e, ok := s.state.requests.Pop()
	if !ok {
		return nil, transport.RequestID{}, transport.ErrNoneAvailable
	}
	return e.Data, e.ID, nil
}

func (s *serviceEndpoint) SendResponse(id transport.RequestID, resp []byte) error {
	if s.finalized.Load() {
		return transport.ErrFinalized
	}

	// Route by writer identity back to the originating client endpoint.
	// A response for a client that is gone is dropped, not an error.
	client, ok := s.state.clients.Load(id.WriterGUID)
	if !ok {
		Logger.Warningf("dropping response for unknown client %x on topic %q", id.WriterGUID[:4], s.topic)
		return nil
	}

	e := base.Envelope{
		ID:   id,
		Data: append([]byte(nil), resp...),
	}
	if err := client.responses.Push(e); err != nil {
		return fmt.Errorf("failed to send response %s on topic %q: %w", id, s.topic, err)
	}
	return nil
}

func (s *serviceEndpoint) Ready() <-chan struct{} {
	return s.state.requests.Ready()
}

func (s *serviceEndpoint) Finalize() error {
	if s.finalized.Swap(true) {
		return transport.ErrFinalized
	}
	s.state.mu.Lock()
	s.state.service = nil
	s.state.mu.Unlock()
	return nil
}
