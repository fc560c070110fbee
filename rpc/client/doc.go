// Package client implements the client half of the request/response
// correlation engine.
//
// A Client sends typed requests over one topic endpoint and matches each
// asynchronously delivered response to the exact outstanding request that
// produced it, keyed by the sequence number the transport assigned at send
// time. Two completion styles are supported: a one-shot callback registered
// at submission, or a Future the submitter can wait on or poll.
//
// The client performs no I/O of its own beyond single non-blocking take
// attempts: an external poller observes endpoint readiness and calls Execute
// once per notification. Readiness is advisory, so a take without data is a
// benign no-op instead of an error.
//
// Key Components:
//
//   - Client: request submission (SendRequestWithCallback, CallAsync), the
//     pending-request tables, and the Execute dispatch operation.
//
//   - Future: single-assignment cell with blocking-wait (context aware) and
//     non-blocking-poll access.
//
// Usage Example:
//
//	cli, _ := client.New[AddRequest, AddResponse](n, "add_two_ints",
//		serializer.NewJSONSerializer(), transport.EndpointOptions{})
//
//	fut, _ := cli.CallAsync(&AddRequest{A: 41, B: 1})
//	// ... a wait set drives cli.Execute() ...
//	resp, _ := fut.Wait(ctx)
//
// Thread Safety:
//
//	All client operations are safe for concurrent use. Per sequence number,
//	at most one resolution ever occurs, even when multiple goroutines race
//	on Execute.
package client
