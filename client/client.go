// Package client exposes the compositor's IPC methods as Go calls.
//
// Every method builds a request with a fixed method name, sends it through the
// transport and decodes the answer. The method names are the compositor's wire
// contract and are kept exactly as the compositor spells them, quirks included.
package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"wayfire-ipc/config"
	"wayfire-ipc/logging"
	"wayfire-ipc/message"
	"wayfire-ipc/middleware"
	"wayfire-ipc/transport"
)

// ErrInvalidArgument is returned when a call is rejected before reaching the compositor.
var ErrInvalidArgument = errors.New("client: invalid argument")

// Client is safe for concurrent use: calls are serialized over the single
// transport. A goroutine blocked in ReadNextEvent holds the client until an
// event arrives, so watchers should use a Client of their own.
type Client struct {
	mu      sync.Mutex
	t       *transport.Transport
	handler middleware.HandlerFunc
	log     *zap.Logger
}

type options struct {
	log         *zap.Logger
	middlewares []middleware.Middleware
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger for the client and the transport it dials.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithMiddleware appends middlewares around every call, outermost first.
func WithMiddleware(mws ...middleware.Middleware) Option {
	return func(o *options) { o.middlewares = append(o.middlewares, mws...) }
}

func buildOptions(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logging.Default()
	}
	return o
}

// New wraps an existing transport.
func New(t *transport.Transport, opts ...Option) *Client {
	o := buildOptions(opts)
	c := &Client{t: t, log: o.log}
	c.handler = middleware.Chain(o.middlewares...)(t.Send)
	return c
}

// Connect resolves the socket from the environment and dials it.
func Connect(ctx context.Context, opts ...Option) (*Client, error) {
	cfg, err := config.FromEnv()
	if err != nil {
		return nil, err
	}
	return ConnectConfig(ctx, cfg, opts...)
}

// ConnectConfig dials cfg.SocketPath and installs the timeout and rate limit
// middlewares cfg asks for, inside any given with WithMiddleware.
func ConnectConfig(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	o := buildOptions(opts)
	t, err := transport.Dial(ctx, cfg.SocketPath, transport.WithLogger(o.log))
	if err != nil {
		return nil, err
	}

	opts = append(opts, WithLogger(o.log), WithMiddleware(
		middleware.LoggingMiddleware(o.log),
		middleware.RateLimitMiddleware(cfg.Rate, cfg.Burst),
		middleware.TimeOutMiddleware(cfg.Timeout),
	))
	return New(t, opts...), nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.Close()
}

// Call sends an arbitrary method and returns the raw answer. Answers carrying
// "error" are returned, not turned into Go errors.
func (c *Client) Call(ctx context.Context, method string, data any) (message.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.handler(ctx, message.NewRequest(method, data))
}

// ReadNextEvent returns the oldest event buffered by earlier calls, or else the
// next document from the socket.
func (c *Client) ReadNextEvent(ctx context.Context) (message.Document, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.ReadNextEvent(ctx)
}

// Err reports why the connection became unusable, or nil while it is healthy.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.Err()
}

// PendingEvents returns how many events are buffered.
func (c *Client) PendingEvents() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t.Pending()
}

func callDecode[T any](ctx context.Context, c *Client, method string, data any) (T, error) {
	var out T
	doc, err := c.Call(ctx, method, data)
	if err != nil {
		return out, err
	}
	err = doc.Decode(&out)
	return out, err
}

func callField[T any](ctx context.Context, c *Client, method string, data any, field string) (T, error) {
	var out T
	doc, err := c.Call(ctx, method, data)
	if err != nil {
		return out, err
	}
	sub, err := doc.Field(field)
	if err != nil {
		return out, err
	}
	err = sub.Decode(&out)
	return out, err
}
