package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"time"
)

// Transport is the byte stream a protocol reads and writes. Closing the
// transport is the only cancellation primitive: it aborts any in-flight
// read or write with an error.
type Transport interface {
	io.ReadWriter

	// Flush pushes buffered bytes to the peer.
	Flush() error

	// Close releases the transport.
	Close() error
}

// MemoryBuffer is an in-memory transport, used by tests and by drivers that
// decode values from argument strings.
type MemoryBuffer struct {
	bytes.Buffer
}

// NewMemoryBuffer creates an empty in-memory transport.
func NewMemoryBuffer() *MemoryBuffer {
	return &MemoryBuffer{}
}

// NewMemoryBufferLen creates an in-memory transport with preallocated space.
func NewMemoryBufferLen(size int) *MemoryBuffer {
	b := &MemoryBuffer{}
	b.Grow(size)
	return b
}

// Flush is a no-op for in-memory transports.
func (b *MemoryBuffer) Flush() error { return nil }

// Close resets the buffer.
func (b *MemoryBuffer) Close() error {
	b.Reset()
	return nil
}

// FramedTransport prefixes every flushed write with a 4-byte big-endian
// length and reads frames the same way.
type FramedTransport struct {
	inner Transport
	wbuf  bytes.Buffer
	rbuf  bytes.Reader
	rhdr  [4]byte
}

// NewFramedTransport wraps inner with length framing.
func NewFramedTransport(inner Transport) *FramedTransport {
	return &FramedTransport{inner: inner}
}

// Write buffers p until the next Flush.
func (t *FramedTransport) Write(p []byte) (int, error) {
	return t.wbuf.Write(p)
}

// Read reads from the current frame, pulling the next frame header from the
// inner transport when the current frame is exhausted.
func (t *FramedTransport) Read(p []byte) (int, error) {
	if t.rbuf.Len() == 0 {
		if err := t.readFrame(); err != nil {
			return 0, err
		}
	}
	return t.rbuf.Read(p)
}

func (t *FramedTransport) readFrame() error {
	if _, err := io.ReadFull(t.inner, t.rhdr[:]); err != nil {
		return err
	}
	size := binary.BigEndian.Uint32(t.rhdr[:])
	const maxFrameSize = 256 * 1024 * 1024
	if size > maxFrameSize {
		return NewProtocolError(fmt.Errorf("frame size %d exceeds limit", size))
	}
	frame := make([]byte, size)
	if _, err := io.ReadFull(t.inner, frame); err != nil {
		return err
	}
	t.rbuf.Reset(frame)
	return nil
}

// Flush writes the buffered frame with its length prefix and flushes the
// inner transport.
func (t *FramedTransport) Flush() error {
	var hdr [4]byte
	binary.BigEndian.PutUint32(hdr[:], uint32(t.wbuf.Len()))
	if _, err := t.inner.Write(hdr[:]); err != nil {
		return err
	}
	if _, err := t.inner.Write(t.wbuf.Bytes()); err != nil {
		return err
	}
	t.wbuf.Reset()
	return t.inner.Flush()
}

// Close closes the inner transport.
func (t *FramedTransport) Close() error {
	return t.inner.Close()
}

// Socket is a TCP transport.
type Socket struct {
	conn    net.Conn
	addr    string
	timeout time.Duration
}

// NewSocket creates an unopened TCP transport for the given address.
func NewSocket(addr string) *Socket {
	return &Socket{addr: addr}
}

// SetTimeout sets the per-operation deadline applied to reads and writes.
func (s *Socket) SetTimeout(d time.Duration) {
	s.timeout = d
}

// Open dials the peer.
func (s *Socket) Open() error {
	if s.conn != nil {
		return fmt.Errorf("socket already open")
	}
	conn, err := net.DialTimeout("tcp", s.addr, s.timeout)
	if err != nil {
		return err
	}
	s.conn = conn
	return nil
}

func (s *Socket) deadline() time.Time {
	if s.timeout == 0 {
		return time.Time{}
	}
	return time.Now().Add(s.timeout)
}

// Read reads from the connection.
func (s *Socket) Read(p []byte) (int, error) {
	if s.conn == nil {
		return 0, fmt.Errorf("socket not open")
	}
	if err := s.conn.SetReadDeadline(s.deadline()); err != nil {
		return 0, err
	}
	return s.conn.Read(p)
}

// Write writes to the connection.
func (s *Socket) Write(p []byte) (int, error) {
	if s.conn == nil {
		return 0, fmt.Errorf("socket not open")
	}
	if err := s.conn.SetWriteDeadline(s.deadline()); err != nil {
		return 0, err
	}
	return s.conn.Write(p)
}

// Flush is a no-op for unbuffered sockets.
func (s *Socket) Flush() error { return nil }

// Close closes the connection.
func (s *Socket) Close() error {
	if s.conn == nil {
		return nil
	}
	err := s.conn.Close()
	s.conn = nil
	return err
}
