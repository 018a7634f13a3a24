package request

import (
	"io"
	"net/http"
)

// Body the request body over a borrowed reader. It is read once, and closing it
// leaves the underlying reader alone.
type Body struct {
	r         io.Reader
	remaining int64 // -1: until end of stream
	closed    bool
}

var _ io.ReadCloser = (*Body)(nil)

// NewBody body reading r until it reports io.EOF.
func NewBody(r io.Reader) *Body {
	return &Body{r: r, remaining: -1}
}

// NewLimitBody body of exactly n bytes of r, a shorter r is io.ErrUnexpectedEOF.
func NewLimitBody(r io.Reader, n int64) *Body {
	return &Body{r: r, remaining: n}
}

// Read implement io.Reader
func (sf *Body) Read(p []byte) (int, error) {
	if sf.closed {
		return 0, http.ErrBodyReadAfterClose
	}
	if sf.remaining < 0 {
		return sf.r.Read(p)
	}
	if sf.remaining == 0 {
		return 0, io.EOF
	}
	if int64(len(p)) > sf.remaining {
		p = p[:sf.remaining]
	}
	n, err := sf.r.Read(p)
	sf.remaining -= int64(n)
	if err == io.EOF {
		if sf.remaining > 0 {
			return n, io.ErrUnexpectedEOF
		}
		err = nil
	}
	return n, err
}

// Close marks the body closed, later reads fail with http.ErrBodyReadAfterClose.
func (sf *Body) Close() error {
	sf.closed = true
	return nil
}
