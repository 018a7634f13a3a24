// Package adorn decorators for a connection, to put transport behaviour
// between a mock.Stream and the request body.
package adorn

import (
	"net"

	"github.com/golang/snappy"
	"go.uber.org/atomic"
)

// Adorn decorates a conn.
type Adorn func(conn net.Conn) net.Conn

// Chain adorns applied in order, the last one ends up outermost,
// so on Read the last one runs first.
type Chain []Adorn

// Apply conn through every adorn of the chain.
func (sf Chain) Apply(conn net.Conn) net.Conn {
	for _, adorn := range sf {
		conn = adorn(conn)
	}
	return conn
}

// Counter byte counts of a counted conn.
type Counter struct {
	Read    atomic.Uint64
	Written atomic.Uint64
	Total   atomic.Uint64
}

type countConn struct {
	net.Conn
	c *Counter
}

// Count counts bytes going through the conn into c.
func Count(c *Counter) Adorn {
	return func(conn net.Conn) net.Conn {
		return &countConn{conn, c}
	}
}

func (sf *countConn) Read(p []byte) (int, error) {
	n, err := sf.Conn.Read(p)
	if n > 0 {
		sf.c.Read.Add(uint64(n))
		sf.c.Total.Add(uint64(n))
	}
	return n, err
}

func (sf *countConn) Write(p []byte) (int, error) {
	n, err := sf.Conn.Write(p)
	if n > 0 {
		sf.c.Written.Add(uint64(n))
		sf.c.Total.Add(uint64(n))
	}
	return n, err
}

type snappyConn struct {
	net.Conn
	w *snappy.Writer
	r *snappy.Reader
}

// Snappy snappy framed conn, reads decode and writes encode.
// disabled it returns the conn untouched.
func Snappy(enable bool) Adorn {
	if !enable {
		return func(conn net.Conn) net.Conn { return conn }
	}
	return func(conn net.Conn) net.Conn {
		return &snappyConn{
			conn,
			snappy.NewBufferedWriter(conn),
			snappy.NewReader(conn),
		}
	}
}

func (sf *snappyConn) Read(p []byte) (int, error) {
	return sf.r.Read(p)
}

// Write every write is flushed as its own frame.
func (sf *snappyConn) Write(p []byte) (int, error) {
	n, err := sf.w.Write(p)
	if err != nil {
		return n, err
	}
	return n, sf.w.Flush()
}

func (sf *snappyConn) Flush() error {
	return sf.w.Flush()
}
