package transport

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"
)

// ConnectError reports a failed attempt to reach the compositor socket.
type ConnectError struct {
	Path string
	Err  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("transport: connect %s: %v", e.Path, e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// Dial connects to the Unix socket at path. There is exactly one attempt;
// deciding whether to try again is up to the caller.
func Dial(ctx context.Context, path string, opts ...Option) (*Transport, error) {
	d := &net.Dialer{}
	conn, err := d.DialContext(ctx, "unix", path)
	if err != nil {
		return nil, &ConnectError{Path: path, Err: err}
	}
	t := New(conn, opts...)
	t.log.Debug("connected to compositor", zap.String("socket", path))
	return t, nil
}
