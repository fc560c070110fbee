package serializer

import (
	"reflect"
	"testing"
)

type testRequest struct {
	A int64  `json:"a"`
	B int64  `json:"b"`
	S string `json:"s"`
}

type testResponse struct {
	Sum int64 `json:"sum"`
}

// TestSerializerRoundTrip verifies both serializers reproduce a message
// exactly
func TestSerializerRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ser  ISerializer
	}{
		{"json", NewJSONSerializer()},
		{"gob", NewGOBSerializer()},
	}

	msg := testRequest{A: 41, B: 1, S: "hello"}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.ser.Serialize(msg)
			if err != nil {
				t.Fatalf("failed to serialize: %v", err)
			}

			var got testRequest
			if err := tt.ser.Deserialize(b, &got); err != nil {
				t.Fatalf("failed to deserialize: %v", err)
			}

			if !reflect.DeepEqual(got, msg) {
				t.Errorf("round trip changed message: got %+v, want %+v", got, msg)
			}
		})
	}
}

// TestDeserializeGarbage verifies both serializers reject malformed input
func TestDeserializeGarbage(t *testing.T) {
	tests := []struct {
		name string
		ser  ISerializer
	}{
		{"json", NewJSONSerializer()},
		{"gob", NewGOBSerializer()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got testRequest
			if err := tt.ser.Deserialize([]byte{0xff, 0x00, 0x42}, &got); err == nil {
				t.Error("expected error for malformed input, got nil")
			}
		})
	}
}

// TestTypeDescriptorFor verifies the descriptor is deterministic per type
// pair and distinguishes different pairs
func TestTypeDescriptorFor(t *testing.T) {
	d1 := TypeDescriptorFor[testRequest, testResponse]()
	d2 := TypeDescriptorFor[testRequest, testResponse]()
	if d1 != d2 {
		t.Errorf("descriptor not deterministic: %q vs %q", d1, d2)
	}

	d3 := TypeDescriptorFor[testResponse, testRequest]()
	if d1 == d3 {
		t.Errorf("descriptor does not distinguish swapped type pairs: %q", d1)
	}
}
