// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package middleware contains the gin middleware of the HTTP surface.
package middleware

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/constants"
)

// RequestIDMiddleware attaches a request ID to the request context and the
// response headers. An inbound X-Request-Id is honored so callers can
// correlate retries.
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		ctx := logging.AppendCtx(c.Request.Context(), slog.String("request_id", requestID))
		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.RequestIDHeader, requestID)

		c.Next()
	}
}
