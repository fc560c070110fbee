package client

import (
	"errors"
	"fmt"

	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/ValentinKolb/dRPC/rpc/serializer"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
)

var Logger = logger.GetLogger("rpc/client")

// --------------------------------------------------------------------------
// Client
// --------------------------------------------------------------------------

// Client submits typed requests over one endpoint and correlates the
// asynchronously delivered responses back to the submitter, either through a
// one-shot callback or through a Future. It is driven by an external poller
// that calls Execute whenever the endpoint signals readiness.
//
// The pending-request tables are keyed by the sequence number the transport
// assigns at send time. An entry whose response never arrives stays in the
// table: there is no eviction or timeout.
type Client[Req any, Resp any] struct {
	handle     *node.ClientHandle
	serializer serializer.ISerializer

	// Pending-request tables. Lookup-and-remove must be one atomic step
	// (LoadAndDelete) so a response can never resolve an entry twice.
	callbacks *xsync.MapOf[int64, func(resp *Resp)]
	futures   *xsync.MapOf[int64, *Future[Resp]]

	// Telemetry
	resolved  *metrics.Counter
	unmatched *metrics.Counter
	spurious  *metrics.Counter
}

// New creates a client for the given topic on the node. The serializer must
// match the one used by the topic's service.
func New[Req any, Resp any](
	n *node.Node,
	topic string,
	ser serializer.ISerializer,
	opts transport.EndpointOptions,
) (*Client[Req, Resp], error) {
	handle, err := n.InitClient(topic, serializer.TypeDescriptorFor[Req, Resp](), opts)
	if err != nil {
		return nil, err
	}

	Logger.Infof("created client for topic %q", topic)

	return &Client[Req, Resp]{
		handle:     handle,
		serializer: ser,
		callbacks:  xsync.NewMapOf[int64, func(resp *Resp)](),
		futures:    xsync.NewMapOf[int64, *Future[Resp]](),
		resolved:   metrics.GetOrCreateCounter(fmt.Sprintf(`drpc_client_resolved_total{topic=%q}`, topic)),
		unmatched:  metrics.GetOrCreateCounter(fmt.Sprintf(`drpc_client_unmatched_responses_total{topic=%q}`, topic)),
		spurious:   metrics.GetOrCreateCounter(fmt.Sprintf(`drpc_client_spurious_wakeups_total{topic=%q}`, topic)),
	}, nil
}

// --------------------------------------------------------------------------
// Request submission
// --------------------------------------------------------------------------

// SendRequestWithCallback sends a request and registers a one-shot callback
// for its response. The callback is invoked by Execute, never before this
// method returns, never more than once. If the send fails the callback is
// not registered.
func (c *Client[Req, Resp]) SendRequestWithCallback(req *Req, callback func(resp *Resp)) error {
	seq, err := c.send(req)
	if err != nil {
		return err
	}
	c.callbacks.Store(seq, callback)
	return nil
}

// CallAsync sends a request and returns a future for its response. The
// caller may wait on or poll the future independently of the dispatch loop.
// If the send fails no future is registered.
func (c *Client[Req, Resp]) CallAsync(req *Req) (*Future[Resp], error) {
	seq, err := c.send(req)
	if err != nil {
		return nil, err
	}
	f := newFuture[Resp]()
	c.futures.Store(seq, f)
	return f, nil
}

// send serializes the request and sends it under the handle lock. The
// transport's returned sequence number is the sole correlation key.
func (c *Client[Req, Resp]) send(req *Req) (int64, error) {
	b, err := c.serializer.Serialize(req)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize request: %w", err)
	}

	var seq int64
	err = c.handle.Locked(func(ep transport.IClientEndpoint) error {
		var sendErr error
		seq, sendErr = ep.SendRequest(b)
		return sendErr
	})
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// --------------------------------------------------------------------------
// Response dispatch
// --------------------------------------------------------------------------

// TakeResponse asks the transport for exactly one buffered response.
// transport.ErrNoneAvailable passes through untouched so Execute can treat
// it as a spurious wakeup.
func (c *Client[Req, Resp]) TakeResponse() (*Resp, transport.RequestID, error) {
	var (
		b  []byte
		id transport.RequestID
	)
	err := c.handle.Locked(func(ep transport.IClientEndpoint) error {
		var takeErr error
		b, id, takeErr = ep.TakeResponse()
		return takeErr
	})
	if err != nil {
		return nil, id, err
	}

	resp := new(Resp)
	if err := c.serializer.Deserialize(b, resp); err != nil {
		return nil, id, fmt.Errorf("failed to deserialize response %s: %w", id, err)
	}
	return resp, id, nil
}

// Execute drains exactly one ready response and resolves the matching
// pending entry. A take without data is a spurious wakeup and returns nil
// with no side effect. A response with no matching entry is dropped.
func (c *Client[Req, Resp]) Execute() error {
	resp, id, err := c.TakeResponse()
	if errors.Is(err, transport.ErrNoneAvailable) {
		// Spurious wakeup - the poller's readiness signal is advisory
		c.spurious.Inc()
		return nil
	}
	if err != nil {
		return err
	}

	if callback, ok := c.callbacks.LoadAndDelete(id.SequenceNumber); ok {
		callback(resp)
		c.resolved.Inc()
		return nil
	}
	if future, ok := c.futures.LoadAndDelete(id.SequenceNumber); ok {
		future.setValue(resp)
		c.resolved.Inc()
		return nil
	}

	// Late or unmatched response
	c.unmatched.Inc()
	Logger.Warningf("dropping response with unknown sequence number %d", id.SequenceNumber)
	return nil
}

// --------------------------------------------------------------------------
// Dispatch contract / lifetime
// --------------------------------------------------------------------------

// Handle returns the endpoint handle for readiness registration
func (c *Client[Req, Resp]) Handle() node.IEndpointHandle {
	return c.handle
}

// Pending returns the number of outstanding requests in the table
func (c *Client[Req, Resp]) Pending() int {
	return c.callbacks.Size() + c.futures.Size()
}

// Close finalizes the underlying endpoint
func (c *Client[Req, Resp]) Close() error {
	return c.handle.Close()
}
