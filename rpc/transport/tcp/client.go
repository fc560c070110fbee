package tcp

import (
	"crypto/rand"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/transport"
	"github.com/ValentinKolb/dRPC/rpc/transport/base"
)

// --------------------------------------------------------------------------
// Client Endpoint
// --------------------------------------------------------------------------

// clientEndpoint is the dialing side of one topic. A reader goroutine moves
// inbound frames into the response queue; the connection is written under a
// mutex held for the duration of a single frame only.
type clientEndpoint struct {
	topic     string
	guid      [16]byte
	conn      net.Conn
	writeMu   sync.Mutex
	nextSeq   atomic.Int64
	responses *base.Queue
	stopCh    chan struct{} // Close signal for the reader goroutine
	finalized atomic.Bool
}

// newClientEndpoint dials the service address, sends the hello preamble and
// starts the response reader
func (t *Transport) newClientEndpoint(topic string, desc transport.TypeDescriptor, opts transport.EndpointOptions) (*clientEndpoint, error) {
	conn, err := net.Dial("tcp", t.config.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", t.config.Endpoint, err)
	}

	if err := t.upgradeConnection(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to upgrade connection to %s: %w", t.config.Endpoint, err)
	}

	ep := &clientEndpoint{
		topic:     topic,
		conn:      conn,
		responses: base.NewQueue(opts.QueueSize),
		stopCh:    make(chan struct{}),
	}
	if _, err := rand.Read(ep.guid[:]); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to generate endpoint guid: %w", err)
	}

	if err := base.WriteHello(conn, topic, string(desc), ep.guid); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to send hello to %s: %w", t.config.Endpoint, err)
	}

	go ep.readResponses()

	Logger.Infof("connected to %s for topic %q", t.config.Endpoint, topic)
	return ep, nil
}

// readResponses reads response frames in a loop and buffers them for
// TakeResponse
func (c *clientEndpoint) readResponses() {
	for {
		seq, data, err := base.ReadFrame(c.conn)
		if err != nil {
			select {
			case <-c.stopCh:
				// Finalize closed the connection
			default:
				Logger.Errorf("error reading response on topic %q: %v", c.topic, err)
			}
			return
		}

		e := base.Envelope{
			ID:   transport.RequestID{WriterGUID: c.guid, SequenceNumber: seq},
			Data: data,
		}
		if err := c.responses.Push(e); err != nil {
			Logger.Warningf("dropping response %d on topic %q: %v", seq, c.topic, err)
		}
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see transport.IClientEndpoint)
// --------------------------------------------------------------------------

func (c *clientEndpoint) SendRequest(req []byte) (int64, error) {
	if c.finalized.Load() {
		return 0, transport.ErrFinalized
	}

	seq := c.nextSeq.Add(1)

	// Lock the connection only for writing
	c.writeMu.Lock()
	err := base.WriteFrame(c.conn, seq, req)
	c.writeMu.Unlock()

	if err != nil {
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
	close(c.stopCh)
	return c.conn.Close()
}

// --------------------------------------------------------------------------
// Helper Methods
// --------------------------------------------------------------------------

// upgradeConnection applies the configured TCP socket options
func (t *Transport) upgradeConnection(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tcpConn.SetNoDelay(t.config.TCPConf.TCPNoDelay); err != nil {
		return err
	}
	if t.config.TCPConf.TCPKeepAliveSec > 0 {
		if err := tcpConn.SetKeepAlive(true); err != nil {
			return err
		}
		if err := tcpConn.SetKeepAlivePeriod(time.Duration(t.config.TCPConf.TCPKeepAliveSec) * time.Second); err != nil {
			return err
		}
	}
	return nil
}
