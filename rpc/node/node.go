package node

import (
	"fmt"
	"sync"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/node")

// --------------------------------------------------------------------------
// Node
// --------------------------------------------------------------------------

// Node is the shared parent of all endpoints created in a process. Every
// endpoint handle co-owns its node: endpoint init and finalize run under the
// node's lock, and the node refuses teardown while endpoints are alive.
type Node struct {
	mu        sync.Mutex
	name      string
	transport transport.ITransport
	endpoints int // live endpoint handles
	closed    bool
}

// New creates a new node on top of the given transport
func New(config common.NodeConfig, t transport.ITransport) (*Node, error) {
	if t == nil {
		return nil, fmt.Errorf("node: transport must not be nil")
	}

	name := config.Name
	if name == "" {
		name = "drpc"
	}

	Logger.Infof("created node %q", name)

	return &Node{
		name:      name,
		transport: t,
	}, nil
}

// Name returns the node name
func (n *Node) Name() string {
	return n.name
}

// LiveEndpoints returns the number of endpoint handles that have not been
// closed yet
func (n *Node) LiveEndpoints() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.endpoints
}

// Close marks the node as torn down. It fails while endpoint handles are
// still alive: the handles co-own the node and must be closed first.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return fmt.Errorf("node %q is already closed", n.name)
	}
	if n.endpoints > 0 {
		return fmt.Errorf("node %q has %d live endpoints", n.name, n.endpoints)
	}

	n.closed = true
	Logger.Infof("closed node %q", n.name)
	return nil
}

// --------------------------------------------------------------------------
// Endpoint creation
// --------------------------------------------------------------------------

// InitClient creates the client side of a topic and wraps it in a handle.
// Initialization runs under the node lock.
func (n *Node) InitClient(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (*ClientHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, fmt.Errorf("node %q is closed", n.name)
	}

	ep, err := n.transport.InitClient(topic, desc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to init client endpoint on topic %q: %w", topic, err)
	}

	n.endpoints++
	return &ClientHandle{endpoint: ep, node: n}, nil
}

// InitService creates the service side of a topic and wraps it in a handle.
// Initialization runs under the node lock.
func (n *Node) InitService(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (*ServiceHandle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return nil, fmt.Errorf("node %q is closed", n.name)
	}

	ep, err := n.transport.InitService(topic, desc, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to init service endpoint on topic %q: %w", topic, err)
	}

	n.endpoints++
	return &ServiceHandle{endpoint: ep, node: n}, nil
}

// release is called by a handle when it is closed. Caller must hold n.mu.
func (n *Node) release() {
	n.endpoints--
}

// --------------------------------------------------------------------------
// Endpoint Handles
// --------------------------------------------------------------------------

// IEndpointHandle is the part of an endpoint handle an external poller needs
// for readiness registration
type IEndpointHandle interface {
	// Ready returns the advisory readiness channel of the wrapped endpoint
	Ready() <-chan struct{}
}

// ClientHandle exclusively owns one client endpoint. The wrapped endpoint is
// guarded by a mutex; every transport call goes through Locked so the lock
// is held for the duration of that single call only.
type ClientHandle struct {
	mu       sync.Mutex
	endpoint transport.IClientEndpoint
	node     *Node
	once     sync.Once
}

// Locked runs fn with the endpoint lock held
func (h *ClientHandle) Locked(fn func(ep transport.IClientEndpoint) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.endpoint)
}

// Ready returns the advisory readiness channel of the wrapped endpoint
func (h *ClientHandle) Ready() <-chan struct{} {
	return h.endpoint.Ready()
}

// Close finalizes the endpoint exactly once and releases the node
// reference. Finalization runs under the node lock so it can never overlap
// with node teardown.
func (h *ClientHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.node.mu.Lock()
		defer h.node.mu.Unlock()

		h.mu.Lock()
		defer h.mu.Unlock()

		err = h.endpoint.Finalize()
		h.node.release()
	})
	return err
}

// ServiceHandle exclusively owns one service endpoint. Same locking rules as
// ClientHandle.
type ServiceHandle struct {
	mu       sync.Mutex
	endpoint transport.IServiceEndpoint
	node     *Node
	once     sync.Once
}

// Locked runs fn with the endpoint lock held
func (h *ServiceHandle) Locked(fn func(ep transport.IServiceEndpoint) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.endpoint)
}

// Ready returns the advisory readiness channel of the wrapped endpoint
func (h *ServiceHandle) Ready() <-chan struct{} {
	return h.endpoint.Ready()
}

// Close finalizes the endpoint exactly once and releases the node reference
func (h *ServiceHandle) Close() error {
	var err error
	h.once.Do(func() {
		h.node.mu.Lock()
		defer h.node.mu.Unlock()

		h.mu.Lock()
		defer h.mu.Unlock()

		err = h.endpoint.Finalize()
		h.node.release()
	})
	return err
}
