package middleware

import (
	"context"
	"fmt"

	"golang.org/x/time/rate"

	"wayfire-ipc/message"
)

// RateLimitMiddleware 创建一个基于令牌桶算法的限流中间件
// Calls wait for a token instead of failing, so bursts are smoothed rather than
// dropped. r <= 0 disables limiting.
func RateLimitMiddleware(r float64, burst int) Middleware {
	if r <= 0 {
		return func(next HandlerFunc) HandlerFunc { return next }
	}
	if burst < 1 {
		burst = 1
	}
	limiter := rate.NewLimiter(rate.Limit(r), burst)
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Request) (message.Document, error) {
			if err := limiter.Wait(ctx); err != nil {
				return message.Document{}, fmt.Errorf("rate limit: %w", err)
			}
			return next(ctx, req)
		}
	}
}
