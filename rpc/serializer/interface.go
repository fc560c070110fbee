package serializer

import (
	"fmt"
	"reflect"

	"github.com/ValentinKolb/dRPC/rpc/transport"
)

// ISerializer is the interface for all message serializers. Implementations
// convert user-defined request and response values to and from the
// transport's wire representation.
type ISerializer interface {
	// Serialize serializes a message into a byte array
	// It returns the serialized byte array and an error if any
	Serialize(msg any) ([]byte, error)
	// Deserialize deserializes a byte array into a message
	// It takes a byte array and a pointer to a message as parameters
	// It returns an error if any
	Deserialize(b []byte, msg any) error
}

// TypeDescriptorFor derives the opaque type descriptor token for a
// request/response pair. Client and service endpoints of the same topic must
// be initialized with identical tokens.
func TypeDescriptorFor[Req any, Resp any]() transport.TypeDescriptor {
	var req Req
	var resp Resp
	return transport.TypeDescriptor(fmt.Sprintf("%s/%s",
		reflect.TypeOf(req).String(), reflect.TypeOf(resp).String()))
}
