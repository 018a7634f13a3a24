package request

import (
	"bufio"
	"context"
	"io/ioutil"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"testing/quick"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/thinkgos/mockhttp/mock"
)

func TestNew(t *testing.T) {
	stream := mock.NewStream([]byte("Hello Google!"))
	buffer := bufio.NewReader(stream)

	req := New(http.MethodGet, MustParseURL("http://localhost:3000"), buffer)
	assert.Equal(t, http.MethodGet, req.Method)
	assert.Equal(t, "http://localhost:3000/", req.URL.String())

	body, err := ioutil.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello Google!"), body)

	// once only
	body, err = ioutil.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestNew_Defaults(t *testing.T) {
	f := func(method uint8, path string, body []byte) bool {
		methods := []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, "PURGE"}
		u := &url.URL{Scheme: "http", Host: "example.com", Path: "/" + path}
		req := New(methods[int(method)%len(methods)], u, bufio.NewReader(mock.NewStream(body)))
		return req.Header.Get("Host") == "127.0.0.1:3000" &&
			req.Header.Get("User-Agent") == DefaultUserAgent
	}
	require.NoError(t, quick.Check(f, nil))

	req := FromBytes(http.MethodPost, "http://localhost:3000/users?id=1", []byte("{}"))
	assert.Equal(t, "127.0.0.1:3000", req.Host)
	assert.Equal(t, "127.0.0.1:3000", req.RemoteAddr)
	assert.Equal(t, "/users?id=1", req.RequestURI)
	assert.Equal(t, "HTTP/1.1", req.Proto)
	assert.True(t, req.ProtoAtLeast(1, 1))
	assert.Equal(t, int64(-1), req.ContentLength)
	assert.Empty(t, req.Header.Get("Content-Length"))
	assert.Nil(t, req.TLS)

	local, ok := req.Context().Value(http.LocalAddrContextKey).(net.Addr)
	require.True(t, ok)
	assert.Equal(t, "127.0.0.1:3000", local.String())

	host, port, err := net.SplitHostPort(req.RemoteAddr)
	require.NoError(t, err)
	assert.True(t, net.ParseIP(host).IsLoopback())
	assert.Equal(t, DefaultPort, port)
}

func TestNew_URL(t *testing.T) {
	u := MustParseURL("http://localhost:3000")
	req := New(http.MethodGet, u, nil)
	assert.Equal(t, "http://localhost:3000/", req.URL.String())
	assert.Equal(t, "", u.Path, "caller's url untouched")

	req = FromBytes(http.MethodGet, "http://localhost:3000/a%2Fb?q=1", nil)
	assert.Equal(t, "http://localhost:3000/a%2Fb?q=1", req.URL.String())
	assert.Equal(t, "/a%2Fb?q=1", req.RequestURI)
}

func TestNew_Body(t *testing.T) {
	t.Run("exhausted stream", func(t *testing.T) {
		stream := mock.NewStream([]byte("abc"))
		_, err := ioutil.ReadAll(stream)
		require.NoError(t, err)

		req := New(http.MethodPost, MustParseURL("http://localhost/"), bufio.NewReader(stream))
		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Empty(t, body)
	})

	t.Run("nil reader", func(t *testing.T) {
		req := New(http.MethodGet, MustParseURL("http://localhost/"), nil)
		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Empty(t, body)
	})

	t.Run("remaining bytes", func(t *testing.T) {
		stream := mock.NewStream([]byte("GET / HTTP/1.1\r\n\r\npayload"))
		br := bufio.NewReader(stream)
		_, err := br.ReadString('\n')
		require.NoError(t, err)
		_, err = br.ReadString('\n')
		require.NoError(t, err)

		req := New(http.MethodPost, MustParseURL("http://localhost/"), br)
		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "payload", string(body))
	})

	t.Run("read after close", func(t *testing.T) {
		req := FromBytes(http.MethodPost, "http://localhost/", []byte("abc"))
		require.NoError(t, req.Body.Close())
		_, err := req.Body.Read(make([]byte, 1))
		assert.Equal(t, http.ErrBodyReadAfterClose, err)
	})

	t.Run("content length", func(t *testing.T) {
		req := FromBytes(http.MethodPost, "http://localhost/", []byte("Hello Google!"), WithContentLength(5))
		assert.Equal(t, int64(5), req.ContentLength)
		assert.Equal(t, "5", req.Header.Get("Content-Length"))

		body, err := ioutil.ReadAll(req.Body)
		require.NoError(t, err)
		assert.Equal(t, "Hello", string(body))
	})

	t.Run("content length too long", func(t *testing.T) {
		req := FromBytes(http.MethodPost, "http://localhost/", []byte("abc"), WithContentLength(10))
		_, err := ioutil.ReadAll(req.Body)
		assert.Error(t, err)
	})

	t.Run("content length reset", func(t *testing.T) {
		req := FromBytes(http.MethodPost, "http://localhost/", []byte("abc"), WithContentLength(1), WithContentLength(-5))
		assert.Equal(t, int64(-1), req.ContentLength)
	})
}

func TestNew_Options(t *testing.T) {
	type ctxKey struct{}
	ctx := context.WithValue(context.Background(), ctxKey{}, "parent")

	req := FromBytes(http.MethodGet, "http://localhost/", nil,
		WithBaseURL("https://example.com"),
		WithUserAgent("curl/7.64.1"),
		WithLocalAddr("[::1]:8080"),
		WithRemoteAddr("10.0.0.2:51000"),
		WithContext(ctx),
	)
	assert.Equal(t, "example.com:3000", req.Host)
	assert.Equal(t, "example.com:3000", req.Header.Get("Host"))
	assert.Equal(t, "curl/7.64.1", req.UserAgent())
	assert.Equal(t, "10.0.0.2:51000", req.RemoteAddr)
	assert.Equal(t, "[::1]:8080", req.Context().Value(http.LocalAddrContextKey).(net.Addr).String())
	assert.Equal(t, "parent", req.Context().Value(ctxKey{}))

	req = FromBytes(http.MethodGet, "http://localhost/", nil, WithBaseURL("http://127.0.0.1:8443"))
	assert.Equal(t, "127.0.0.1:8443", req.Host)
}

func TestNew_Panics(t *testing.T) {
	u := MustParseURL("http://localhost/")
	tests := []struct {
		name string
		fn   func()
	}{
		{"empty method", func() { New("", u, nil) }},
		{"bad method", func() { New("GE T", u, nil) }},
		{"nil url", func() { New(http.MethodGet, nil, nil) }},
		{"bad base url", func() { New(http.MethodGet, u, nil, WithBaseURL("::not a url")) }},
		{"base url without host", func() { New(http.MethodGet, u, nil, WithBaseURL("file:///tmp")) }},
		{"empty user agent", func() { New(http.MethodGet, u, nil, WithUserAgent("")) }},
		{"bad local addr", func() { New(http.MethodGet, u, nil, WithLocalAddr("localhost")) }},
		{"bad remote addr", func() { New(http.MethodGet, u, nil, WithRemoteAddr("1.2.3.4")) }},
		{"bad url", func() { MustParseURL("http://[::1") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, tt.fn)
		})
	}
}

func TestNew_Logger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	FromBytes(http.MethodPut, "http://localhost/item", []byte("x"), WithLogger(zap.New(core)))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "mock request built", entry.Message)
	assert.Equal(t, http.MethodPut, entry.ContextMap()["method"])
	assert.Equal(t, "http://localhost/item", entry.ContextMap()["url"])
}

func TestExtensions(t *testing.T) {
	a := FromBytes(http.MethodGet, "http://localhost/", nil)
	b := FromBytes(http.MethodGet, "http://localhost/", nil)

	ext := Extensions(a)
	require.NotNil(t, ext)
	assert.Zero(t, ext.Len())

	ext.Set("user", "alice")
	assert.False(t, Extensions(b).Has("user"))
	assert.True(t, Extensions(a.WithContext(a.Context())).Has("user"))

	assert.Nil(t, Extensions(httptest.NewRequest(http.MethodGet, "/", nil)))
}

func TestValidMethod(t *testing.T) {
	for _, m := range []string{"GET", "POST", "M-SEARCH", "PROPFIND", "get"} {
		assert.True(t, ValidMethod(m), m)
	}
	for _, m := range []string{"", "GE T", "GET\r\n", "ÄPFEL", "a(b)"} {
		assert.False(t, ValidMethod(m), m)
	}
}

func TestHandler(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, err := ioutil.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("X-Agent", r.UserAgent())
		w.Write(b) // nolint: errcheck
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, FromBytes(http.MethodPost, "http://localhost:3000/echo", []byte("Hello Google!")))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, DefaultUserAgent, rec.Header().Get("X-Agent"))
	assert.Equal(t, "Hello Google!", rec.Body.String())
}
