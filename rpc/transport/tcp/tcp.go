package tcp

import (
	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("transport/tcp")

// Transport implements the transport interfaces over framed TCP. One
// Transport instance serves one address: the service side listens on it,
// the client side dials it. The topic and type descriptor travel in the
// connection preamble so the service can reject mismatched peers.
type Transport struct {
	config common.TransportConfig
}

// New creates a TCP transport for the configured address
func New(config common.TransportConfig) *Transport {
	return &Transport{config: config}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.ITransport)
// --------------------------------------------------------------------------

func (t *Transport) InitClient(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (transport.IClientEndpoint, error) {
	return t.newClientEndpoint(topic, desc, opts)
}

func (t *Transport) InitService(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (transport.IServiceEndpoint, error) {
	return t.newServiceEndpoint(topic, desc, opts)
}
