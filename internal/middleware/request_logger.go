// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package middleware

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akademo-live/session-service/internal/logging"
)

// RequestLoggerMiddleware logs HTTP requests and responses. Health check
// endpoints (/livez and /readyz) are excluded to reduce noise.
func RequestLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now().UTC()

		path := c.Request.URL.Path
		isHealthCheck := path == "/livez" || path == "/readyz"

		// Request attributes ride on the context so every handler log
		// carries them.
		ctx := c.Request.Context()
		ctx = logging.AppendCtx(ctx, slog.String("method", c.Request.Method))
		ctx = logging.AppendCtx(ctx, slog.String("path", path))
		ctx = logging.AppendCtx(ctx, slog.String("remote_addr", c.ClientIP()))
		c.Request = c.Request.WithContext(ctx)

		if !isHealthCheck {
			slog.InfoContext(ctx, "HTTP request")
		}

		c.Next()

		if !isHealthCheck {
			slog.InfoContext(ctx, "HTTP response",
				"status", c.Writer.Status(),
				"duration", time.Since(start).String(),
			)
		}
	}
}
