package mock

import (
	"errors"
	"net"
)

// ErrNoPeerAddr the wrapped connection does not know its remote address.
var ErrNoPeerAddr = errors.New("mock: connection has no peer address")

type flusher interface {
	Flush() error
}

// connStream simulate a NetworkStream with a net.Conn
type connStream struct {
	net.Conn
}

// FromConn adapts a net.Conn, a real one or a decorated Stream, to NetworkStream.
// Flush is forwarded when the conn has one, otherwise it is a no-op.
func FromConn(c net.Conn) NetworkStream {
	if ns, ok := c.(NetworkStream); ok {
		return ns
	}
	return &connStream{c}
}

func (sf *connStream) Flush() error {
	if f, ok := sf.Conn.(flusher); ok {
		return f.Flush()
	}
	return nil
}

func (sf *connStream) PeerAddr() (net.Addr, error) {
	addr := sf.Conn.RemoteAddr()
	if addr == nil {
		return nil, ErrNoPeerAddr
	}
	return addr, nil
}
