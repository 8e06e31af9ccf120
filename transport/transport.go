// Package transport owns the single connection to the compositor and matches
// answers to requests.
//
// The compositor protocol has no request ids. Correlation is positional: the
// compositor sends exactly one non-event document per request, and it is the
// first non-event frame after the request was written. Events may arrive at any
// time, including between a request and its answer. Those are parked in a FIFO
// queue and handed out later by ReadNextEvent.
//
//	Send(req) ──write frame──→ compositor
//	          ←── {"event":...}   → pending queue (tail)
//	          ←── {"event":...}   → pending queue (tail)
//	          ←── {"info":...}    → returned to caller
//
//	ReadNextEvent: pending queue (head), else next raw frame from the socket
//
// A Transport is not safe for concurrent use. Two calls in flight would consume
// each other's answers, so callers that share one must serialize access.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"

	"wayfire-ipc/codec"
	"wayfire-ipc/logging"
	"wayfire-ipc/message"
	"wayfire-ipc/protocol"
)

// ErrBroken is returned by every call after an I/O failure or cancellation has
// left the stream at an unknown position.
var ErrBroken = errors.New("transport: connection unusable")

// Transport is one session with the compositor: a connection plus the events
// seen while waiting for answers.
type Transport struct {
	conn    net.Conn
	codec   codec.Codec
	log     *zap.Logger
	pending []message.Document // FIFO, head at index 0
	err     error              // sticky; set once the stream position is unknown
}

// Option configures a Transport.
type Option func(*Transport)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(t *Transport) {
		if l != nil {
			t.log = l
		}
	}
}

// WithCodec replaces the JSON codec.
func WithCodec(c codec.Codec) Option {
	return func(t *Transport) {
		if c != nil {
			t.codec = c
		}
	}
}

// New wraps an established connection.
func New(conn net.Conn, opts ...Option) *Transport {
	t := &Transport{
		conn:  conn,
		codec: codec.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	if t.log == nil {
		t.log = logging.Default()
	}
	return t
}

// Send writes req and returns the first non-event document read afterwards.
// Events read on the way are appended to the pending queue. On failure the
// events already queued stay queued.
//
// Once the request is on the wire its answer must be consumed before anything
// else is sent, so a context that ends while the answer is outstanding retires
// the transport.
func (t *Transport) Send(ctx context.Context, req *message.Request) (message.Document, error) {
	if err := t.Write(ctx, req); err != nil {
		return message.Document{}, err
	}

	for {
		if ctx != nil && ctx.Err() != nil {
			return message.Document{}, t.fail(fmt.Errorf("transport: awaiting answer to %q: %w", req.Method, context.Cause(ctx)))
		}
		doc, err := t.ReadMessage(ctx)
		if err != nil {
			return message.Document{}, err
		}
		if doc.IsEvent() {
			t.log.Debug("queued event while awaiting answer",
				zap.String("method", req.Method),
				zap.String("event", doc.EventName()),
				zap.Int("pending", len(t.pending)+1))
			t.pending = append(t.pending, doc)
			continue
		}
		return doc, nil
	}
}

// Write encodes req and writes it as one frame.
func (t *Transport) Write(ctx context.Context, req *message.Request) error {
	if err := t.ready(ctx); err != nil {
		return err
	}

	body, err := t.codec.Encode(req)
	if err != nil {
		return fmt.Errorf("transport: encode %q: %w", methodOf(req), err)
	}

	w := t.watch(ctx)
	err = protocol.WriteFrame(t.conn, body)
	if cerr := t.unwatch(ctx, w, err); cerr != nil {
		return cerr
	}
	if err != nil {
		return t.fail(fmt.Errorf("transport: write %q: %w", req.Method, err))
	}
	return nil
}

// ReadMessage reads one frame and decodes it. A payload that is not valid JSON
// fails this call only: the length prefix was honoured, so the next frame is
// still aligned. Documents carrying "error" are logged and returned as-is.
func (t *Transport) ReadMessage(ctx context.Context) (message.Document, error) {
	if err := t.ready(ctx); err != nil {
		return message.Document{}, err
	}

	w := t.watch(ctx)
	body, err := protocol.ReadFrame(t.conn)
	if cerr := t.unwatch(ctx, w, err); cerr != nil {
		return message.Document{}, cerr
	}
	if err != nil {
		return message.Document{}, t.fail(fmt.Errorf("transport: read: %w", err))
	}

	var doc message.Document
	if err := t.codec.Decode(body, &doc); err != nil {
		t.log.Warn("undecodable frame", zap.Int("bytes", len(body)), zap.Error(err))
		return message.Document{}, fmt.Errorf("transport: %w", err)
	}

	if doc.IsError() {
		t.log.Warn("compositor returned an error", zap.String("error", doc.ErrorMessage()), zap.Stringer("response", doc))
	}
	return doc, nil
}

// ReadNextEvent returns the oldest queued event, or if none is queued, the
// next frame from the socket whatever its shape. Callers that are not sure an
// event comes next should check IsEvent on the result.
func (t *Transport) ReadNextEvent(ctx context.Context) (message.Document, error) {
	if len(t.pending) > 0 {
		doc := t.pending[0]
		t.pending[0] = message.Document{}
		t.pending = t.pending[1:]
		return doc, nil
	}
	return t.ReadMessage(ctx)
}

// Pending returns the number of queued events.
func (t *Transport) Pending() int {
	return len(t.pending)
}

// Err returns the error that made the transport unusable, if any.
func (t *Transport) Err() error {
	return t.err
}

// Close closes the connection. Queued events remain readable.
func (t *Transport) Close() error {
	if t.err == nil {
		t.err = ErrBroken
	}
	return t.conn.Close()
}

// ready fails fast without touching the stream, so an already cancelled
// context does not cost the connection.
func (t *Transport) ready(ctx context.Context) error {
	if t.err != nil {
		return t.err
	}
	if ctx != nil {
		return ctx.Err()
	}
	return nil
}

func (t *Transport) fail(err error) error {
	t.err = fmt.Errorf("%w: %w", ErrBroken, err)
	return err
}

type watcher struct {
	stop  func() bool
	fired chan struct{} // closed once the deadline has been set
}

// watch arranges for blocked I/O to return as soon as ctx is done.
func (t *Transport) watch(ctx context.Context) *watcher {
	if ctx == nil || ctx.Done() == nil {
		return nil
	}
	w := &watcher{fired: make(chan struct{})}
	w.stop = context.AfterFunc(ctx, func() {
		_ = t.conn.SetDeadline(time.Unix(1, 0))
		close(w.fired)
	})
	return w
}

// unwatch stops the watcher. If it fired while a frame was still moving
// (ioErr != nil) the frame may be cut half way and the transport is retired.
// If the frame went through whole the stream is still aligned, so only the
// deadline is cleared and the frame is kept.
func (t *Transport) unwatch(ctx context.Context, w *watcher, ioErr error) error {
	if w == nil || w.stop() {
		return nil
	}
	<-w.fired
	if ioErr == nil {
		if err := t.conn.SetDeadline(time.Time{}); err != nil {
			return t.fail(fmt.Errorf("transport: clear deadline: %w", err))
		}
		return nil
	}
	return t.fail(fmt.Errorf("transport: interrupted: %w", context.Cause(ctx)))
}

func methodOf(req *message.Request) string {
	if req == nil {
		return ""
	}
	return req.Method
}
