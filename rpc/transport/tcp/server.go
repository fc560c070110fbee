package tcp

import (
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/base"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

// serverConn is one accepted client connection. Writes are guarded by a
// mutex held per frame; the guid is the writer identity announced in the
// client's hello preamble.
type serverConn struct {
	conn    net.Conn
	guid    [16]byte
	writeMu sync.Mutex // Protects writes to the connection
}

func (sc *serverConn) writeFrame(seq int64, data []byte) error {
	sc.writeMu.Lock()
	defer sc.writeMu.Unlock()
	return base.WriteFrame(sc.conn, seq, data)
}

// --------------------------------------------------------------------------
// Service Endpoint
// --------------------------------------------------------------------------

// serviceEndpoint is the listening side of one topic. Every accepted
// connection is read by its own goroutine; inbound frames land in a single
// request queue, tagged with the connection's writer GUID so responses can
// be routed back.
type serviceEndpoint struct {
	topic     string
	desc      transport.TypeDescriptor
	listener  net.Listener
	requests  *base.Queue
	conns     *xsync.MapOf[[16]byte, *serverConn]
	finalized atomic.Bool
}

// newServiceEndpoint starts listening and accepting connections
func (t *Transport) newServiceEndpoint(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (*serviceEndpoint, error) {
	listener, err := net.Listen("tcp", t.config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", t.config.Endpoint, err)
	}

	ep := &serviceEndpoint{
		topic:    topic,
		desc:     desc,
		listener: listener,
		requests: base.NewQueue(opts.QueueSize),
		conns:    xsync.NewMapOf[[16]byte, *serverConn](),
	}

	go ep.acceptLoop(t)

	Logger.Infof("listening on %s for topic %q", listener.Addr(), topic)
	return ep, nil
}

// acceptLoop accepts connections until the listener is closed
func (s *serviceEndpoint) acceptLoop(t *Transport) {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.finalized.Load() {
				return
			}
			Logger.Errorf("accept error on topic %q: %v", s.topic, err)
			continue
		}

		if err := t.upgradeConnection(conn); err != nil {
			Logger.Errorf("failed to upgrade connection from %s: %v", conn.RemoteAddr(), err)
			conn.Close()
			continue
		}

		// Handle the connection in a goroutine
		go s.handleConnection(conn)
	}
}

// handleConnection validates the hello preamble and moves request frames
// into the request queue
func (s *serviceEndpoint) handleConnection(conn net.Conn) {
	defer conn.Close()

	topic, desc, guid, err := base.ReadHello(conn)
	if err != nil {
		Logger.Errorf("failed to read hello from %s: %v", conn.RemoteAddr(), err)
		return
	}
	if topic != s.topic || transport.TypeDescriptor(desc) != s.desc {
		Logger.Errorf("rejecting connection from %s: topic %q type %q, want %q type %q",
			conn.RemoteAddr(), topic, desc, s.topic, s.desc)
		return
	}

	sc := &serverConn{
		conn: conn,
		guid: guid,
	}
	s.conns.Store(guid, sc)
	defer s.conns.Delete(guid)

	Logger.Infof("client %x connected to topic %q from %s", guid[:4], s.topic, conn.RemoteAddr())

	for {
		seq, data, err := base.ReadFrame(conn)
		if err != nil {
			if err == io.EOF || s.finalized.Load() {
				Logger.Infof("client %x disconnected from topic %q", guid[:4], s.topic)
			} else {
				Logger.Errorf("error reading request from %x on topic %q: %v", guid[:4], s.topic, err)
			}
			return
		}

		e := base.Envelope{
			ID:   transport.RequestID{WriterGUID: guid, SequenceNumber: seq},
			Data: data,
		}
		if err := s.requests.Push(e); err != nil {
			Logger.Warningf("dropping request %d from %x on topic %q: %v", seq, guid[:4], s.topic, err)
		}
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IServiceEndpoint)
// --------------------------------------------------------------------------

func (s *serviceEndpoint) TakeRequest() ([]byte, transport.RequestID, error) {
	if s.finalized.Load() {
		return nil, transport.RequestID{}, transport.ErrFinalized
	}

	e, ok := s.requests.Pop()
	if !ok {
		return nil, transport.RequestID{}, transport.ErrNoneAvailable
	}
	return e.Data, e.ID, nil
}

func (s *serviceEndpoint) SendResponse(id transport.RequestID, resp []byte) error {
	if s.finalized.Load() {
		return transport.ErrFinalized
	}

	// Route by writer identity back to the originating connection.
	// A response for a client that is gone is dropped, not an error.
	sc, ok := s.conns.Load(id.WriterGUID)
	if !ok {
		Logger.Warningf("dropping response for unknown client %x on topic %q", id.WriterGUID[:4], s.topic)
		return nil
	}

	if err := sc.writeFrame(id.SequenceNumber, resp); err != nil {
		return fmt.Errorf("failed to send response %s on topic %q: %w", id, s.topic, err)
	}
	return nil
}

func (s *serviceEndpoint) Ready() <-chan struct{} {
	return s.requests.Ready()
}

func (s *serviceEndpoint) Finalize() error {
	if s.finalized.Swap(true) {
		return transport.ErrFinalized
	}

	err := s.listener.Close()
	s.conns.Range(func(_ [16]byte, sc *serverConn) bool {
		sc.conn.Close()
		return true
	})
	return err
}
