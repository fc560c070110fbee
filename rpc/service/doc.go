// Package service implements the service half of the request/response
// correlation engine: receive one request per dispatch, invoke exactly one
// user-supplied handler, send back exactly one response tagged with the
// request id the transport delivered the request under.
//
// The handler runs synchronously inside Execute; a long-running handler
// blocks the poller that drives this service and with it every other
// endpoint the same poller services. Handler panics are not recovered by
// this layer. A response send that fails after the handler ran propagates as
// an error - handler effects are not transactional with response delivery.
package service
