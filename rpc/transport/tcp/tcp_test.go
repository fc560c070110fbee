package tcp

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/ValentinKolb/dRPC/rpc/common"
	"github.com/ValentinKolb/dRPC/rpc/transport"
)

const (
	testTopic = "add_two_ints"
	testDesc  = transport.TypeDescriptor("addRequest/addResponse")
)

// newPair starts a service endpoint on a free loopback port and dials it
// with a client endpoint
func newPair(t *testing.T) (*clientEndpoint, *serviceEndpoint) {
	t.Helper()

	srvTransport := New(common.TransportConfig{Endpoint: "127.0.0.1:0"})
	svc, err := srvTransport.newServiceEndpoint(testTopic, testDesc, transport.EndpointOptions{})
	if err != nil {
		t.Fatalf("failed to init service: %v", err)
	}
	t.Cleanup(func() { svc.Finalize() })

	clTransport := New(common.TransportConfig{Endpoint: svc.listener.Addr().String()})
	cl, err := clTransport.newClientEndpoint(testTopic, testDesc, transport.EndpointOptions{})
	if err != nil {
		t.Fatalf("failed to init client: %v", err)
	}
	t.Cleanup(func() { cl.Finalize() })

	return cl, svc
}

// take polls an endpoint's readiness channel until the take succeeds. The
// readiness signal is advisory, so takes without data are retried.
func take(t *testing.T, ready <-chan struct{}, takeFn func() ([]byte, transport.RequestID, error)) ([]byte, transport.RequestID) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for {
		data, id, err := takeFn()
		if err == nil {
			return data, id
		}
		if !errors.Is(err, transport.ErrNoneAvailable) {
			t.Fatalf("take failed: %v", err)
		}
		select {
		case <-ready:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("timed out waiting for a message")
		}
	}
}

// TestRequestResponseRoundTrip sends a request over loopback TCP, echoes
// its envelope back with a response, and verifies payloads and correlation
// ids on both sides
func TestRequestResponseRoundTrip(t *testing.T) {
	cl, svc := newPair(t)

	seq, err := cl.SendRequest([]byte("request payload"))
	if err != nil {
		t.Fatalf("failed to send request: %v", err)
	}

	reqData, id := take(t, svc.Ready(), svc.TakeRequest)
	if !bytes.Equal(reqData, []byte("request payload")) {
		t.Errorf("request payload changed: got %q", reqData)
	}
	if id.SequenceNumber != seq {
		t.Errorf("request carries sequence number %d, want %d", id.SequenceNumber, seq)
	}
	if id.WriterGUID != cl.guid {
		t.Errorf("request carries writer guid %x, want %x", id.WriterGUID, cl.guid)
	}

	if err := svc.SendResponse(id, []byte("response payload")); err != nil {
		t.Fatalf("failed to send response: %v", err)
	}

	respData, respID := take(t, cl.Ready(), cl.TakeResponse)
	if !bytes.Equal(respData, []byte("response payload")) {
		t.Errorf("response payload changed: got %q", respData)
	}
	if respID != id {
		t.Errorf("response envelope changed: got %s, want %s", respID, id)
	}
}

// TestMultipleClientsRoutedByGUID verifies responses reach the client that
// sent the request, not any other connection
func TestMultipleClientsRoutedByGUID(t *testing.T) {
	cl1, svc := newPair(t)

	clTransport := New(common.TransportConfig{Endpoint: svc.listener.Addr().String()})
	cl2, err := clTransport.newClientEndpoint(testTopic, testDesc, transport.EndpointOptions{})
	if err != nil {
		t.Fatalf("failed to init second client: %v", err)
	}
	t.Cleanup(func() { cl2.Finalize() })

	if _, err := cl1.SendRequest([]byte("from one")); err != nil {
		t.Fatalf("failed to send request: %v", err)
	}
	if _, err := cl2.SendRequest([]byte("from two")); err != nil {
		t.Fatalf("failed to send request: %v", err)
	}

	for i := 0; i < 2; i++ {
		data, id := take(t, svc.Ready(), svc.TakeRequest)
		if err := svc.SendResponse(id, append([]byte("echo "), data...)); err != nil {
			t.Fatalf("failed to send response: %v", err)
		}
	}

	resp1, _ := take(t, cl1.Ready(), cl1.TakeResponse)
	if !bytes.Equal(resp1, []byte("echo from one")) {
		t.Errorf("client one got %q, want %q", resp1, "echo from one")
	}
	resp2, _ := take(t, cl2.Ready(), cl2.TakeResponse)
	if !bytes.Equal(resp2, []byte("echo from two")) {
		t.Errorf("client two got %q, want %q", resp2, "echo from two")
	}
}

// TestMismatchedHelloRejected verifies the service drops connections whose
// preamble announces a different topic or type
func TestMismatchedHelloRejected(t *testing.T) {
	_, svc := newPair(t)

	clTransport := New(common.TransportConfig{Endpoint: svc.listener.Addr().String()})
	cl, err := clTransport.newClientEndpoint("other_topic", testDesc, transport.EndpointOptions{})
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { cl.Finalize() })

	if _, err := cl.SendRequest([]byte("x")); err != nil {
		// The service may have closed the connection already
		return
	}

	// The request must never reach the service's queue
	time.Sleep(100 * time.Millisecond)
	if _, _, err := svc.TakeRequest(); !errors.Is(err, transport.ErrNoneAvailable) {
		t.Errorf("request from mismatched client reached the service: %v", err)
	}
}

// TestFinalizedEndpointRejectsUse verifies operations after finalize fail
// with the sentinel
func TestFinalizedEndpointRejectsUse(t *testing.T) {
	cl, svc := newPair(t)

	if err := cl.Finalize(); err != nil {
		t.Fatalf("failed to finalize client: %v", err)
	}
	if err := cl.Finalize(); !errors.Is(err, transport.ErrFinalized) {
		t.Errorf("second finalize returned %v, want ErrFinalized", err)
	}
	if _, err := cl.SendRequest([]byte("x")); !errors.Is(err, transport.ErrFinalized) {
		t.Errorf("send after finalize returned %v, want ErrFinalized", err)
	}

	if err := svc.Finalize(); err != nil {
		t.Fatalf("failed to finalize service: %v", err)
	}
	if _, _, err := svc.TakeRequest(); !errors.Is(err, transport.ErrFinalized) {
		t.Errorf("take after finalize returned %v, want ErrFinalized", err)
	}
}
