// Package cmd implements the command-line interface for dRPC. It provides a
// hierarchical command structure for serving and calling the bundled demo
// service.
//
// The package is organized into several subpackages:
//
//   - serve: Run the add-two-ints demo service on a TCP endpoint
//   - call: Send one request to a running service and print the response
//   - demo: Run the full loop in one process over the in-memory transport
//   - util: Shared utilities for command-line processing and configuration (internal use)
//
// See drpc -help for a list of all commands.
package cmd
