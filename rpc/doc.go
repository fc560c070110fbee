// Package rpc provides a request/response correlation engine layered on
// asynchronous, topic-based transports. A client sends typed requests and
// later matches each asynchronously delivered response to the exact
// outstanding request that produced it; a service receives requests,
// invokes application logic and sends back correlated responses. Both are
// driven by an external poller through a uniform dispatch contract.
//
// The package is organized into several subpackages:
//
//   - common: Configuration structures and the logging integration shared
//     across the system.
//
//   - transport: The endpoint and correlation-envelope contracts, with
//     pluggable implementations (in-process bus, framed TCP) under
//     transport/inproc and transport/tcp, and shared building blocks under
//     transport/base.
//
//   - serializer: Message serialization with multiple format options
//     (JSON, GOB) for converting user types to the wire representation.
//
//   - node: Node and endpoint lifetime management; endpoint handles co-own
//     their node and are finalized exactly once under its lock.
//
//   - client: The client half: pending-request tables keyed by the
//     transport-assigned sequence number, one-shot callbacks and futures.
//
//   - service: The service half: take one request, run the handler, send
//     the correlated response.
//
//   - waitset: The poller that observes endpoint readiness and drives the
//     dispatch contract.
package rpc
