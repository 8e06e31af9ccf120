package middleware

import (
	"context"
	"time"

	"go.uber.org/zap"

	"wayfire-ipc/message"
)

func LoggingMiddleware(log *zap.Logger) Middleware {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx context.Context, req *message.Request) (message.Document, error) {
			start := time.Now()
			doc, err := next(ctx, req)
			duration := time.Since(start)
			if err != nil {
				log.Debug("call failed", zap.String("method", req.Method), zap.Duration("duration", duration), zap.Error(err))
				return doc, err
			}
			log.Debug("call", zap.String("method", req.Method), zap.Duration("duration", duration), zap.Bool("remote_error", doc.IsError()))
			return doc, nil
		}
	}
}
