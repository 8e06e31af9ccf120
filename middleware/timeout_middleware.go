package middleware

import (
	"context"
	"time"

	"wayfire-ipc/message"
)

// TimeOutMiddleware bounds each call. The transport treats an interrupted call
// as fatal to the connection, so a timeout here ends the session.
func TimeOutMiddleware(timeout time.Duration) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		if timeout <= 0 {
			return next
		}
		return func(ctx context.Context, req *message.Request) (message.Document, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			return next(ctx, req)
		}
	}
}
