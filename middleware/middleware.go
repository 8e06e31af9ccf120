// Package middleware wraps compositor calls with cross-cutting behaviour.
package middleware

import (
	"context"

	"wayfire-ipc/message"
)

// HandlerFunc performs one call and returns the compositor's answer.
type HandlerFunc func(ctx context.Context, req *message.Request) (message.Document, error)

// Middleware decorates a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// Chain 将多个中间件组合成一个中间件
func Chain(middlewares ...Middleware) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		for i := len(middlewares) - 1; i >= 0; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}
