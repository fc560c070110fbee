package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ValentinKolb/dRPC/rpc/node"
	"github.com/ValentinKolb/dRPC/rpc/serializer"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/VictoriaMetrics/metrics"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("rpc/service")

// --------------------------------------------------------------------------
// Service
// --------------------------------------------------------------------------

// Handler is the user-supplied request handler. It receives the correlation
// envelope and the request, and populates the response in place. The
// response is sent back tagged with the unmodified id after the handler
// returns.
type Handler[Req any, Resp any] func(id transport.RequestID, req *Req, resp *Resp)

// Service receives one request per dispatch, invokes exactly one handler,
// and sends back exactly one correlated response. Like the client it is
// driven by an external poller calling Execute on readiness.
type Service[Req any, Resp any] struct {
	handle     *node.ServiceHandle
	serializer serializer.ISerializer

	// The handler is guarded by its own mutex; the endpoint lock is never
	// held across a handler invocation.
	mu      sync.Mutex
	handler Handler[Req, Resp]

	handled *metrics.Counter
}

// New creates a service for the given topic on the node
func New[Req any, Resp any](
	n *node.Node,
	topic string,
	ser serializer.ISerializer,
	opts transport.EndpointOptions,
	handler Handler[Req, Resp],
) (*Service[Req, Resp], error) {
	if handler == nil {
		return nil, fmt.Errorf("service: handler must not be nil")
	}

	handle, err := n.InitService(topic, serializer.TypeDescriptorFor[Req, Resp](), opts)
	if err != nil {
		return nil, err
	}

	Logger.Infof("created service for topic %q", topic)

	return &Service[Req, Resp]{
		handle:     handle,
		serializer: ser,
		handler:    handler,
		handled:    metrics.GetOrCreateCounter(fmt.Sprintf(`drpc_service_requests_handled_total{topic=%q}`, topic)),
	}, nil
}

// --------------------------------------------------------------------------
// Request dispatch
// --------------------------------------------------------------------------

// TakeRequest asks the transport for exactly one buffered request.
// transport.ErrNoneAvailable passes through untouched so Execute can treat
// it as a spurious wakeup.
func (s *Service[Req, Resp]) TakeRequest() (*Req, transport.RequestID, error) {
	var (
		b  []byte
		id transport.RequestID
	)
	err := s.handle.Locked(func(ep transport.IServiceEndpoint) error {
		var takeErr error
		b, id, takeErr = ep.TakeRequest()
		return takeErr
	})
	if err != nil {
		return nil, id, err
	}

	req := new(Req)
	if err := s.serializer.Deserialize(b, req); err != nil {
		return nil, id, fmt.Errorf("failed to deserialize request %s: %w", id, err)
	}
	return req, id, nil
}

// Execute drains exactly one ready request, invokes the handler with a
// default-constructed response, and sends the populated response back
// tagged with the original request id. A take without data is a spurious
// wakeup and returns nil. Handler panics are not recovered; a failed
// response send propagates after the handler already ran.
func (s *Service[Req, Resp]) Execute() error {
	req, id, err := s.TakeRequest()
	if errors.Is(err, transport.ErrNoneAvailable) {
		// Spurious wakeup - the poller's readiness signal is advisory
		return nil
	}
	if err != nil {
		return err
	}

	resp := new(Resp)
	s.mu.Lock()
	s.handler(id, req, resp)
	s.mu.Unlock()

	b, err := s.serializer.Serialize(resp)
	if err != nil {
		return fmt.Errorf("failed to serialize response %s: %w", id, err)
	}

	err = s.handle.Locked(func(ep transport.IServiceEndpoint) error {
		return ep.SendResponse(id, b)
	})
	if err != nil {
		return err
	}

	s.handled.Inc()
	return nil
}

// --------------------------------------------------------------------------
// Dispatch contract / lifetime
// --------------------------------------------------------------------------

// Handle returns the endpoint handle for readiness registration
func (s *Service[Req, Resp]) Handle() node.IEndpointHandle {
	return s.handle
}

// Close finalizes the underlying endpoint
func (s *Service[Req, Resp]) Close() error {
	return s.handle.Close()
}
