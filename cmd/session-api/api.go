// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/internal/service"
)

// SessionAPI exposes the HTTP surface of the session service.
type SessionAPI struct {
	sessionService *service.SessionService
	webhookService *service.WebhookService
	readyCheck     func() bool
}

// NewSessionAPI creates a new SessionAPI.
func NewSessionAPI(
	sessionService *service.SessionService,
	webhookService *service.WebhookService,
	readyCheck func() bool,
) *SessionAPI {
	return &SessionAPI{
		sessionService: sessionService,
		webhookService: webhookService,
		readyCheck:     readyCheck,
	}
}

// webhookEnvelope is the inbound webhook delivery body.
type webhookEnvelope struct {
	Event         string `json:"event"`
	EventTS       int64  `json:"event_ts"`
	Payload       any    `json:"payload"`
	DownloadToken string `json:"download_token"`
}

// handleWebhook receives conference provider webhook deliveries. Except for
// the URL-validation handshake, the response is always 200 with an ack body:
// a non-200 would make the provider retry deliveries this service has already
// consumed, and signature failures must not leak which part failed.
func (a *SessionAPI) handleWebhook(c *gin.Context) {
	ctx := c.Request.Context()

	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		slog.ErrorContext(ctx, "failed to read webhook body", logging.ErrKey, err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	var envelope webhookEnvelope
	if err := json.Unmarshal(rawBody, &envelope); err != nil {
		slog.ErrorContext(ctx, "failed to parse webhook body", logging.ErrKey, err)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	response, err := a.webhookService.ProcessWebhookEvent(ctx, service.WebhookRequest{
		Event:         envelope.Event,
		EventTS:       envelope.EventTS,
		Payload:       envelope.Payload,
		Signature:     c.GetHeader("x-zm-signature"),
		Timestamp:     c.GetHeader("x-zm-request-timestamp"),
		RawBody:       rawBody,
		DownloadToken: envelope.DownloadToken,
	})
	if err != nil {
		slog.ErrorContext(ctx, "webhook processing failed",
			logging.ErrKey, err,
			"event_type", envelope.Event,
		)
		c.JSON(http.StatusOK, gin.H{"received": true})
		return
	}

	if response.PlainToken != nil && response.EncryptedToken != nil {
		c.JSON(http.StatusOK, gin.H{
			"plainToken":     *response.PlainToken,
			"encryptedToken": *response.EncryptedToken,
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// handleScheduleSession creates a provider meeting and the session record.
func (a *SessionAPI) handleScheduleSession(c *gin.Context) {
	ctx := c.Request.Context()

	var req service.ScheduleSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	session, err := a.sessionService.ScheduleSession(ctx, req)
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

// handleGetSession returns one session by external meeting ID.
func (a *SessionAPI) handleGetSession(c *gin.Context) {
	session, err := a.sessionService.GetSession(c.Request.Context(), c.Param("meetingID"))
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

// handleListSessions returns all sessions.
func (a *SessionAPI) handleListSessions(c *gin.Context) {
	sessions, err := a.sessionService.ListSessions(c.Request.Context())
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessions)
}

// handleLivez is the liveness probe.
func (a *SessionAPI) handleLivez(c *gin.Context) {
	c.String(http.StatusOK, "OK")
}

// handleReadyz is the readiness probe.
func (a *SessionAPI) handleReadyz(c *gin.Context) {
	if a.readyCheck != nil && !a.readyCheck() {
		c.String(http.StatusServiceUnavailable, "service not ready")
		return
	}
	c.String(http.StatusOK, "OK")
}

// writeError maps a domain error to an HTTP response.
func (a *SessionAPI) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domain.GetErrorType(err) {
	case domain.ErrorTypeValidation:
		status = http.StatusBadRequest
	case domain.ErrorTypeNotFound:
		status = http.StatusNotFound
	case domain.ErrorTypeConflict:
		status = http.StatusConflict
	case domain.ErrorTypeUnavailable:
		status = http.StatusServiceUnavailable
	case domain.ErrorTypeAuth:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		slog.ErrorContext(c.Request.Context(), "request failed", logging.ErrKey, err)
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
