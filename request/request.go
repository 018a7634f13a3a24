// Package request builds *http.Request values shaped like the ones http.Server
// hands to a handler, with the body read from an in-memory stream.
package request

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/thinkgos/mockhttp/extension"
	"github.com/thinkgos/mockhttp/mock"
	"github.com/thinkgos/mockhttp/pkg/izap"
)

type extensionsKey struct{}

var validate = validator.New()

// New build a request for method and u whose body is everything br yields
// until end of stream. Host, User-Agent, the local and remote address come
// from DefaultConfig unless overridden by opts.
// br is borrowed: the request must not outlive it.
// New panics if the resulting configuration or method is invalid, those are
// bugs in the test setup.
func New(method string, u *url.URL, br *bufio.Reader, opts ...Option) *http.Request {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := validate.Struct(cfg); err != nil {
		panic(fmt.Errorf("request: invalid config, %w", err))
	}
	if !ValidMethod(method) {
		panic(fmt.Errorf("request: invalid method %q", method))
	}
	if u == nil {
		panic("request: nil url")
	}
	if cfg.ctx == nil {
		cfg.ctx = context.Background()
	}
	if cfg.log == nil {
		cfg.log = izap.Logger()
	}

	host := cfg.host()
	localAddr := mustResolve(cfg.LocalAddr)
	remoteAddr := mustResolve(cfg.RemoteAddr)

	target := *u
	if target.Path == "" && target.Opaque == "" {
		target.Path = "/"
		target.RawPath = ""
	}

	var body *Body
	if br == nil {
		body = NewBody(strings.NewReader(""))
	} else if cfg.ContentLength < 0 {
		body = NewBody(br)
	} else {
		body = NewLimitBody(br, cfg.ContentLength)
	}

	header := make(http.Header)
	header.Set("Host", host)
	header.Set("User-Agent", cfg.UserAgent)
	if cfg.ContentLength >= 0 {
		header.Set("Content-Length", strconv.FormatInt(cfg.ContentLength, 10))
	}

	ctx := context.WithValue(cfg.ctx, http.LocalAddrContextKey, localAddr)
	ctx = context.WithValue(ctx, extensionsKey{}, extension.New())

	req := &http.Request{
		Method:        method,
		URL:           &target,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          body,
		ContentLength: cfg.ContentLength,
		Host:          host,
		RemoteAddr:    remoteAddr.String(),
		RequestURI:    target.RequestURI(),
	}
	cfg.log.Debug("mock request built",
		zap.String("method", method),
		zap.Stringer("url", &target),
		zap.String("host", host),
		zap.String("remoteAddr", req.RemoteAddr),
		zap.Int64("contentLength", cfg.ContentLength),
	)
	return req.WithContext(ctx)
}

// FromBytes build a request for method and rawURL whose body is body,
// the stream and buffered reader are created on the way.
func FromBytes(method, rawURL string, body []byte, opts ...Option) *http.Request {
	stream := mock.NewStream(body)
	return New(method, MustParseURL(rawURL), bufio.NewReader(stream), opts...)
}

// Extensions the property bag of a request built by New, nil for any other request.
func Extensions(r *http.Request) *extension.Map {
	m, _ := r.Context().Value(extensionsKey{}).(*extension.Map)
	return m
}

// MustParseURL like url.Parse but panics on error.
func MustParseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		panic(err)
	}
	return u
}

// ValidMethod reports whether m is a valid method token, see RFC 7230 section 3.1.1.
func ValidMethod(m string) bool {
	return len(m) > 0 && strings.IndexFunc(m, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !httpguts.IsTokenRune(r)
}

// host the Host header value, hostname of BaseURL and its port or DefaultPort.
func (sf *Config) host() string {
	u := MustParseURL(sf.BaseURL)
	port := u.Port()
	if port == "" {
		port = DefaultPort
	}
	host := net.JoinHostPort(u.Hostname(), port)
	if u.Hostname() == "" || !httpguts.ValidHostHeader(host) {
		panic(fmt.Errorf("request: invalid host %q in base url %q", host, sf.BaseURL))
	}
	return host
}

func mustResolve(addr string) *net.TCPAddr {
	a, err := net.ResolveTCPAddr("tcp", addr)
	if err != nil {
		panic(fmt.Errorf("request: invalid address, %w", err))
	}
	return a
}
