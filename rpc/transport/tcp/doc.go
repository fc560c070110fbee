// Package tcp implements the transport interfaces over framed TCP.
//
// The service side listens on the configured address and accepts any number
// of client connections; each connection announces its topic, type
// descriptor and writer GUID in a hello preamble. Request frames from all
// connections land in a single request queue; responses are routed back to
// the originating connection by the writer GUID in the request id.
//
// Wire format per frame: 8-byte sequence number, 4-byte payload length,
// payload. The sequence number is assigned by the dialing endpoint at send
// time and echoed by the service side, giving each connection its own
// correlation space.
package tcp
