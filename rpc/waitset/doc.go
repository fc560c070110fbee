// Package waitset implements the poller that drives clients and services.
//
// The wait set is the sole seam between the correlation engine and the
// event loop: its only job is to notice that an endpoint is ready and call
// Execute on it. All correlation logic stays inside the waitable. Readiness
// is advisory - an Execute that finds no data is a no-op by contract, so the
// wait set never needs to distinguish real wakeups from spurious ones.
//
// Key Components:
//
//   - IWaitable: the dispatch contract ("has a handle, can execute")
//     implemented by client.Client and service.Service.
//
//   - WaitSet: Add/SpinOnce/Spin. SpinOnce services exactly one readiness
//     notification; Spin loops until the context is done and treats a single
//     endpoint's failure as local.
//
//   - SpinUntilFutureComplete: convenience loop for the common
//     "send one request, wait for its future" pattern.
package waitset
