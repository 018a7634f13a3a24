// Package mock in-memory stand-ins for a live network connection.
package mock

import (
	"io"
	"net"
	"time"
)

// NetworkStream is everything the request path needs from a connection:
// read the request, write the response, and know who is on the other side.
type NetworkStream interface {
	io.Reader
	io.Writer
	Flush() error
	PeerAddr() (net.Addr, error)
}

// fixed addresses of the synthetic connection
var (
	peerAddr  = &net.TCPAddr{IP: net.IPv6loopback, Port: 2468}
	localAddr = &net.TCPAddr{IP: net.IPv6loopback, Port: 3000}
)

// PeerAddr returns the fixed peer address `[::1]:2468` every Stream reports.
func PeerAddr() net.Addr { return copyAddr(peerAddr) }

// Stream a network stream over an in-memory buffer.
// reads drain the buffer, writes are accepted and dropped.
// It is not safe for concurrent use, Clone it instead of sharing.
type Stream struct {
	data []byte
	off  int // read cursor, 0 <= off <= len(data)
}

var (
	_ NetworkStream = (*Stream)(nil)
	_ net.Conn      = (*Stream)(nil)
)

// NewStream new a stream whose readable content is a copy of b.
func NewStream(b []byte) *Stream {
	return &Stream{data: append([]byte(nil), b...)}
}

// Clone returns an independent stream with the same original content,
// its read cursor at the start no matter how far sf has been read.
func (sf *Stream) Clone() *Stream {
	return NewStream(sf.data)
}

// Read reads from the unread content. It returns io.EOF once drained.
func (sf *Stream) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if sf.off >= len(sf.data) {
		return 0, io.EOF
	}
	n := copy(p, sf.data[sf.off:])
	sf.off += n
	return n, nil
}

// Write discards p and reports it as fully written.
func (sf *Stream) Write(p []byte) (int, error) { return len(p), nil }

// Flush nothing to flush.
func (sf *Stream) Flush() error { return nil }

// PeerAddr always `[::1]:2468`.
func (sf *Stream) PeerAddr() (net.Addr, error) { return PeerAddr(), nil }

// Len returns the number of unread bytes.
func (sf *Stream) Len() int { return len(sf.data) - sf.off }

// Reset rewinds the read cursor to the start of the content.
func (sf *Stream) Reset() { sf.off = 0 }

// Close implement net.Conn, the content stays readable.
func (sf *Stream) Close() error { return nil }

// LocalAddr implement net.Conn, always `[::1]:3000`.
func (sf *Stream) LocalAddr() net.Addr { return copyAddr(localAddr) }

// RemoteAddr implement net.Conn, same as PeerAddr.
func (sf *Stream) RemoteAddr() net.Addr             { return PeerAddr() }
func (sf *Stream) SetDeadline(time.Time) error      { return nil }
func (sf *Stream) SetReadDeadline(time.Time) error  { return nil }
func (sf *Stream) SetWriteDeadline(time.Time) error { return nil }

func copyAddr(a *net.TCPAddr) *net.TCPAddr {
	return &net.TCPAddr{IP: append(net.IP(nil), a.IP...), Port: a.Port, Zone: a.Zone}
}
