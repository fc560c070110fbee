// Package common provides core data structures and utilities shared across
// the dRPC system. It defines configuration structures and the logging
// integration used by the other packages.
//
// The package focuses on:
//   - Configuration structures for node, client and service components
//   - Custom logging implementation integrated with the dragonboat logger
//
// Key Components:
//
//   - NodeConfig: Configuration for one node, the shared parent of all
//     endpoints created in a process.
//
//   - ClientConfig / ServiceConfig: Configuration for the two halves of a
//     request/response topic, including the transport selection.
//
//   - Logger: Custom logging implementation that plugs into the dragonboat
//     logging system while providing consistent formatting across the
//     application.
package common
