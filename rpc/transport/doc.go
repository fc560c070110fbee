// Package transport defines the interfaces and correlation types for the
// topic-based request/response transports. It provides a common contract
// that all transport implementations must fulfill, keeping the correlation
// engine in the client and service packages protocol-agnostic.
//
// The package focuses on:
//   - Defining clear interfaces for client and service endpoints
//   - The RequestID correlation envelope (writer identity + sequence number)
//   - The advisory-readiness contract shared with external pollers
//
// Key Components:
//
//   - ITransport: Factory interface that binds client and service endpoints
//     to named topics, checked against an opaque type descriptor.
//
//   - IClientEndpoint: Send one request (the transport assigns the sequence
//     number), take one buffered response at a time.
//
//   - IServiceEndpoint: Take one buffered request at a time, send the
//     correlated response tagged with the unmodified RequestID.
//
//   - ErrNoneAvailable: Sentinel returned by the take operations when a
//     readiness notification turns out to be spurious.
package transport
