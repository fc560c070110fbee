// Package node implements node and endpoint lifetime management for the
// dRPC system.
//
// A Node is the shared parent of all endpoints created in a process. Every
// client or service endpoint is wrapped in a handle that co-owns its node:
// endpoint initialization and finalization run under the node's lock, the
// node counts live handles, and Node.Close refuses teardown while any handle
// is alive. This gives the longest holder of the node reference control over
// the node's lifetime and guarantees that an endpoint is never finalized
// against a node that is already mid-teardown.
//
// Key Components:
//
//   - Node: endpoint factory and lifetime anchor.
//
//   - ClientHandle / ServiceHandle: mutex-guarded exclusive owners of one
//     transport endpoint. All transport access goes through the Locked
//     scoped-acquisition helper; Close finalizes exactly once (sync.Once).
//
//   - IEndpointHandle: the readiness-registration surface handed to
//     external pollers.
package node
