package request

import (
	"context"

	"go.uber.org/zap"
)

// defaults of every built request
const (
	DefaultBaseURL   = "http://127.0.0.1:3000"
	DefaultPort      = "3000"
	DefaultAddr      = "127.0.0.1:3000"
	DefaultUserAgent = "mockhttp"
)

// Config what New fills in besides method, url and body.
type Config struct {
	// Host header is the host of BaseURL, port defaults to DefaultPort
	BaseURL    string `yaml:"baseURL" json:"baseURL" validate:"required,url"`
	UserAgent  string `yaml:"userAgent" json:"userAgent" validate:"required,printascii"`
	LocalAddr  string `yaml:"localAddr" json:"localAddr" validate:"required,tcp_addr"`
	RemoteAddr string `yaml:"remoteAddr" json:"remoteAddr" validate:"required,tcp_addr"`
	// -1 means the body runs until the stream is drained
	ContentLength int64 `yaml:"contentLength" json:"contentLength" validate:"min=-1"`

	ctx context.Context
	log *zap.Logger
}

// DefaultConfig the fixture defaults.
func DefaultConfig() Config {
	return Config{
		BaseURL:       DefaultBaseURL,
		UserAgent:     DefaultUserAgent,
		LocalAddr:     DefaultAddr,
		RemoteAddr:    DefaultAddr,
		ContentLength: -1,
	}
}

// Option for New
type Option func(c *Config)

// WithBaseURL base url the Host header is taken from.
func WithBaseURL(baseURL string) Option {
	return func(c *Config) {
		c.BaseURL = baseURL
	}
}

// WithUserAgent User-Agent header value.
func WithUserAgent(ua string) Option {
	return func(c *Config) {
		c.UserAgent = ua
	}
}

// WithLocalAddr address the request was accepted on, host:port.
func WithLocalAddr(addr string) Option {
	return func(c *Config) {
		c.LocalAddr = addr
	}
}

// WithRemoteAddr address of the simulated client, host:port.
func WithRemoteAddr(addr string) Option {
	return func(c *Config) {
		c.RemoteAddr = addr
	}
}

// WithContentLength frame the body by length instead of end of stream,
// sets the Content-Length header. A negative n restores end of stream framing.
func WithContentLength(n int64) Option {
	return func(c *Config) {
		if n < 0 {
			n = -1
		}
		c.ContentLength = n
	}
}

// WithContext parent context of the request.
func WithContext(ctx context.Context) Option {
	return func(c *Config) {
		c.ctx = ctx
	}
}

// WithLogger logger, default izap.Logger().
func WithLogger(log *zap.Logger) Option {
	return func(c *Config) {
		c.log = log
	}
}
