package transport

import (
	"errors"
	"fmt"
)

// --------------------------------------------------------------------------
// Correlation Types
// --------------------------------------------------------------------------

// TypeDescriptor is an opaque token identifying the request/response pair
// carried on a topic. It is passed to InitClient/InitService unmodified and
// allows a transport to reject endpoints with mismatched types.
type TypeDescriptor string

// RequestID is the correlation envelope returned alongside every taken
// request or response. A service must echo it unmodified when sending its
// response so the transport can route the response back to the originating
// client endpoint.
type RequestID struct {
	// WriterGUID identifies the client endpoint that sent the request
	WriterGUID [16]byte
	// SequenceNumber identifies one request on that endpoint.
	// It is assigned by the transport at send time.
	SequenceNumber int64
}

// String returns a short representation for logging
func (id RequestID) String() string {
	return fmt.Sprintf("%x/%d", id.WriterGUID[:4], id.SequenceNumber)
}

// --------------------------------------------------------------------------
// Errors
// --------------------------------------------------------------------------

// ErrNoneAvailable is returned by TakeResponse and TakeRequest when no
// message is buffered. A readiness notification from a poller is advisory,
// so callers must treat this outcome as a benign no-op, not as a failure.
var ErrNoneAvailable = errors.New("transport: no message available")

// ErrFinalized is returned for any operation on an endpoint that has
// already been finalized.
var ErrFinalized = errors.New("transport: endpoint is finalized")

// --------------------------------------------------------------------------
// Endpoint Options
// --------------------------------------------------------------------------

// EndpointOptions configures a single endpoint at init time
type EndpointOptions struct {
	// QueueSize is the maximum number of buffered inbound messages per
	// endpoint. Zero selects the transport default.
	QueueSize int
}

// --------------------------------------------------------------------------
// Endpoint Interfaces
// --------------------------------------------------------------------------

// IClientEndpoint is the client side of one request/response topic.
// All methods are safe for concurrent use.
type IClientEndpoint interface {
	// SendRequest sends one serialized request and returns the sequence
	// number the transport assigned to it. The returned value is the sole
	// correlation key for the eventual response.
	SendRequest(req []byte) (seq int64, err error)

	// TakeResponse removes and returns exactly one buffered response
	// together with its correlation envelope. It never blocks; if nothing
	// is buffered it returns ErrNoneAvailable.
	TakeResponse() (resp []byte, id RequestID, err error)

	// Ready returns a channel that receives a pulse whenever a response
	// may be available. Pulses are advisory: a wakeup without data must be
	// expected.
	Ready() <-chan struct{}

	// Finalize releases the endpoint's transport resources. It must be
	// called exactly once.
	Finalize() error
}

// IServiceEndpoint is the service side of one request/response topic.
// All methods are safe for concurrent use.
type IServiceEndpoint interface {
	// TakeRequest removes and returns exactly one buffered request
	// together with its correlation envelope. It never blocks; if nothing
	// is buffered it returns ErrNoneAvailable.
	TakeRequest() (req []byte, id RequestID, err error)

	// SendResponse sends one serialized response tagged with the request
	// id of the request it answers. The id must be passed through
	// byte-identical to the one returned by TakeRequest.
	SendResponse(id RequestID, resp []byte) error

	// Ready returns a channel that receives a pulse whenever a request
	// may be available. Pulses are advisory.
	Ready() <-chan struct{}

	// Finalize releases the endpoint's transport resources. It must be
	// called exactly once.
	Finalize() error
}

// --------------------------------------------------------------------------
// Transport Interface
// --------------------------------------------------------------------------

// ITransport creates endpoints bound to named topics
type ITransport interface {
	// InitClient creates the client side of a request/response topic
	InitClient(topic string, desc TypeDescriptor, opts EndpointOptions) (IClientEndpoint, error)

	// InitService creates the service side of a request/response topic
	InitService(topic string, desc TypeDescriptor, opts EndpointOptions) (IServiceEndpoint, error)
}
