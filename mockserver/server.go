// Package mockserver is a scriptable stand-in for the compositor's IPC socket.
//
// It speaks the real frame format over a real listener, answers each request
// with whatever the registered handler returns, and can interleave events ahead
// of an answer or push them at any time. Tests use it to exercise the client
// without a running compositor.
//
// Request processing pipeline:
//
//	Accept conn → handleConn (single goroutine per conn, strictly in order)
//	  → protocol.ReadFrame → codec.Decode → handler → events..., answer → protocol.WriteFrame
//
// Requests on one connection are never handled in parallel: the client matches
// answers to requests by position, so answers must leave in request order.
package mockserver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"wayfire-ipc/codec"
	"wayfire-ipc/message"
	"wayfire-ipc/protocol"
)

// Reply is what the compositor sends back for one request: zero or more events,
// then exactly one answer.
type Reply struct {
	Events []any
	Answer any
}

// Answer is a Reply without events.
func Answer(v any) Reply {
	return Reply{Answer: v}
}

// Error is a Reply in the compositor's error shape.
func Error(msg string) Reply {
	return Reply{Answer: map[string]any{"error": msg}}
}

// HandlerFunc produces the reply for one request.
type HandlerFunc func(ctx context.Context, req *message.Request) Reply

// Server is the fake compositor.
type Server struct {
	mu       sync.Mutex
	handlers map[string]HandlerFunc // "window-rules/list-views" → handler
	conns    map[*conn]struct{}
	requests []message.Request // every request received, in arrival order
	listener net.Listener
	wg       sync.WaitGroup // tracks live connections for graceful shutdown
	shutdown atomic.Bool    // set during shutdown to suppress Accept errors
	codec    codec.Codec
	log      *zap.Logger
}

type conn struct {
	net.Conn
	writeMu sync.Mutex // answers and pushed events share the stream
}

// NewServer creates a server with no methods registered.
func NewServer(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		handlers: make(map[string]HandlerFunc),
		conns:    make(map[*conn]struct{}),
		codec:    codec.Default(),
		log:      log,
	}
}

// Handle registers h for method, replacing any previous handler.
func (s *Server) Handle(method string, h HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = h
}

// HandleValue registers a handler that always answers v.
func (s *Server) HandleValue(method string, v any) {
	s.Handle(method, func(context.Context, *message.Request) Reply { return Answer(v) })
}

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []message.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message.Request(nil), s.requests...)
}

// Serve accepts connections on l until Shutdown is called.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	for {
		c, err := l.Accept()
		if err != nil {
			if s.shutdown.Load() {
				return nil
			}
			return err
		}
		s.wg.Add(1)
		go s.handleConn(&conn{Conn: c})
	}
}

// ListenAndServe listens on the Unix socket at path and serves it.
func (s *Server) ListenAndServe(path string) error {
	l, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	return s.Serve(l)
}

// Start listens on path and serves in the background. Once Start returns the
// socket accepts connections and Shutdown will stop it.
func (s *Server) Start(path string) error {
	l, err := net.Listen("unix", path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = l
	s.mu.Unlock()

	go func() {
		if err := s.Serve(l); err != nil {
			s.log.Warn("serve", zap.Error(err))
		}
	}()
	return nil
}

// Push writes an event to every open connection.
func (s *Server) Push(event any) error {
	body, err := s.codec.Encode(event)
	if err != nil {
		return err
	}

	s.mu.Lock()
	targets := make([]*conn, 0, len(s.conns))
	for c := range s.conns {
		targets = append(targets, c)
	}
	s.mu.Unlock()

	var errs []error
	for _, c := range targets {
		c.writeMu.Lock()
		err := protocol.WriteFrame(c, body)
		c.writeMu.Unlock()
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Connections returns the number of open client connections.
func (s *Server) Connections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

func (s *Server) handleConn(c *conn) {
	defer s.wg.Done()
	s.mu.Lock()
	s.conns[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.conns, c)
		s.mu.Unlock()
		c.Close()
	}()

	for {
		body, err := protocol.ReadFrame(c)
		if err != nil {
			return // client went away or shutdown closed the conn
		}

		reply := s.dispatch(body)
		if err := s.writeReply(c, reply); err != nil {
			s.log.Debug("write reply", zap.Error(err))
			return
		}
	}
}

func (s *Server) dispatch(body []byte) Reply {
	var req message.Request
	if err := s.codec.Decode(body, &req); err != nil {
		return Error(fmt.Sprintf("Failed to parse request: %v", err))
	}

	s.mu.Lock()
	s.requests = append(s.requests, req)
	h, ok := s.handlers[req.Method]
	s.mu.Unlock()

	if !ok {
		s.log.Debug("unknown method", zap.String("method", req.Method))
		return Error("No such method found!")
	}
	return h(context.Background(), &req)
}

func (s *Server) writeReply(c *conn, reply Reply) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	for _, ev := range reply.Events {
		if err := s.writeValue(c, ev); err != nil {
			return err
		}
	}
	return s.writeValue(c, reply.Answer)
}

func (s *Server) writeValue(c *conn, v any) error {
	var body []byte
	switch raw := v.(type) {
	case []byte:
		body = raw // sent verbatim, malformed payloads included
	default:
		var err error
		if body, err = s.codec.Encode(v); err != nil {
			return err
		}
	}
	return protocol.WriteFrame(c, body)
}

// Shutdown stops accepting, closes every connection and waits for the
// connection goroutines to finish.
func (s *Server) Shutdown(timeout time.Duration) error {
	s.shutdown.Store(true)

	s.mu.Lock()
	if s.listener != nil {
		s.listener.Close()
	}
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-time.After(timeout):
		return fmt.Errorf("timeout waiting for connections to finish")
	}
}
