package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"
)

// maxFrameSize rejects frames whose declared payload length is implausible
const maxFrameSize = 64 << 20

// WriteFrame writes a frame to the connection with the format:
// - 8 bytes: sequence number (int64, big endian)
// - 4 bytes: data length (uint32, big endian)
// - N bytes: data payload
func WriteFrame(conn net.Conn, seq int64, data []byte) error {
	// Create the header (8 bytes for the sequence number + 4 bytes for the content length)
	header := make([]byte, 12)
	binary.BigEndian.PutUint64(header[:8], uint64(seq))
	binary.BigEndian.PutUint32(header[8:12], uint32(len(data)))

	b := net.Buffers{header, data}
	_, err := b.WriteTo(conn)
	return err
}

// ReadFrame reads one frame from the connection
func ReadFrame(conn net.Conn) (int64, []byte, error) {
	header := make([]byte, 12)
	if _, err := io.ReadFull(conn, header); err != nil {
		return 0, nil, err
	}

	seq := int64(binary.BigEndian.Uint64(header[:8]))
	contentLength := binary.BigEndian.Uint32(header[8:12])

	if contentLength > maxFrameSize {
		return 0, nil, fmt.Errorf("frame too large: %d bytes", contentLength)
	}
	if contentLength == 0 {
		return seq, []byte{}, nil
	}

	data := make([]byte, contentLength)
	if _, err := io.ReadFull(conn, data); err != nil {
		return 0, nil, err
	}
	return seq, data, nil
}

// WriteHello writes the connection preamble carrying the topic name, the
// type descriptor and the client endpoint's writer GUID so the service side
// can validate the peer and tag its requests
func WriteHello(conn net.Conn, topic, desc string, guid [16]byte) error {
	header := make([]byte, 4)
	binary.BigEndian.PutUint16(header[:2], uint16(len(topic)))
	binary.BigEndian.PutUint16(header[2:4], uint16(len(desc)))

	b := net.Buffers{header, []byte(topic), []byte(desc), guid[:]}
	_, err := b.WriteTo(conn)
	return err
}

// ReadHello reads the connection preamble
func ReadHello(conn net.Conn) (topic, desc string, guid [16]byte, err error) {
	header := make([]byte, 4)
	if _, err := io.ReadFull(conn, header); err != nil {
		return "", "", guid, err
	}

	topicLen := binary.BigEndian.Uint16(header[:2])
	descLen := binary.BigEndian.Uint16(header[2:4])

	buf := make([]byte, int(topicLen)+int(descLen)+16)
	if _, err := io.ReadFull(conn, buf); err != nil {
		return "", "", guid, err
	}
	copy(guid[:], buf[int(topicLen)+int(descLen):])
	return string(buf[:topicLen]), string(buf[topicLen : int(topicLen)+int(descLen)]), guid, nil
}
