// Package addtwoints defines the demo service type bundled with dRPC: a
// request carrying two integers, answered by their sum. It is used by the
// serve, call and demo commands and doubles as a minimal example of how to
// define a service type.
package addtwoints

import (
	"github.com/ValentinKolb/dRPC/rpc/transport"
)

// Topic is the default topic name the demo service is served on
const Topic = "add_two_ints"

// Request carries the two summands
type Request struct {
	A int64 `json:"a"`
	B int64 `json:"b"`
}

// Response carries the sum
type Response struct {
	Sum int64 `json:"sum"`
}

// Handler populates the response with the sum of the request's summands
func Handler(_ transport.RequestID, req *Request, resp *Response) {
	resp.Sum = req.A + req.B
}
