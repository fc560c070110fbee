// Package serializer provides message serialization for the dRPC system. It
// defines a common interface and multiple implementations for converting
// user-defined request and response values to and from the transport's wire
// representation.
//
// The package focuses on:
//   - Providing a consistent interface for different serialization formats
//   - Working with arbitrary user types rather than a fixed message protocol
//   - Deriving the opaque type descriptor token endpoints are initialized with
//
// Key Components:
//
//   - ISerializer: Core interface that all serializer implementations must
//     satisfy. Deserialize expects a pointer to the target value.
//
//   - jsonSerializerImpl: Implementation using JSON encoding, human-readable
//     and interoperable, the default for the CLI.
//
//   - gobSerializerImpl: Implementation using Go's built-in gob encoding,
//     tighter coupling to Go's type system, larger payloads for small values.
//
//   - TypeDescriptorFor: Derives the type descriptor of a request/response
//     pair. A transport may reject endpoints whose descriptors disagree.
//
// Thread Safety:
//
//	All serializer implementations are stateless and safe for concurrent use
//	across multiple goroutines without additional synchronization.
package serializer
