// Package inproc implements the transport interfaces on an in-memory topic
// bus. All endpoints created from one Transport instance share a topic
// namespace; requests flow into a per-topic queue, responses are routed back
// to the originating client endpoint by the writer GUID in the request id.
//
// Readiness channels have capacity one and are re-armed after every take
// while messages remain, so a poller selecting on them observes at least one
// pulse per buffered message - and possibly more, which the advisory-wakeup
// contract allows.
//
// The transport is used by the package tests, the demo command, and any
// composition that runs client and service in the same process.
package inproc
