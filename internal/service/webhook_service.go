// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/pkg/utils"
)

// WebhookService handles inbound conference webhook event processing. It
// validates, normalizes and publishes events; all domain processing happens
// asynchronously off the NATS subjects.
type WebhookService struct {
	messageSender    domain.WebhookEventSender
	webhookValidator domain.WebhookValidator
}

// WebhookRequest represents the webhook processing request.
type WebhookRequest struct {
	Event     string
	EventTS   int64
	Payload   any
	Signature string
	Timestamp string
	RawBody   []byte
	// DownloadToken is the recording download token sent beside the payload
	// on recording.completed deliveries.
	DownloadToken string
}

// WebhookResponse represents the webhook processing response.
type WebhookResponse struct {
	Status         *string
	Message        *string
	PlainToken     *string
	EncryptedToken *string
}

// NewWebhookService creates a new WebhookService.
func NewWebhookService(
	messageSender domain.WebhookEventSender,
	webhookValidator domain.WebhookValidator,
) *WebhookService {
	return &WebhookService{
		messageSender:    messageSender,
		webhookValidator: webhookValidator,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *WebhookService) ServiceReady() bool {
	return s.messageSender != nil && s.webhookValidator != nil
}

// ProcessWebhookEvent processes an inbound conference webhook event.
func (s *WebhookService) ProcessWebhookEvent(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	if err := s.validateRequest(req); err != nil {
		return nil, err
	}

	if err := s.webhookValidator.ValidateSignature(req.RawBody, req.Signature, req.Timestamp); err != nil {
		return nil, domain.NewValidationError("invalid webhook signature", err)
	}

	// The URL-validation handshake is answered synchronously; everything
	// else is queued.
	if req.Event == "endpoint.url_validation" {
		return s.handleEndpointValidation(ctx, req)
	}

	return s.publishEvent(ctx, req)
}

// validateRequest validates the webhook request structure.
func (s *WebhookService) validateRequest(req WebhookRequest) error {
	if req.Event == "" {
		return domain.NewValidationError("missing event field")
	}

	if req.Payload == nil {
		return domain.NewValidationError("missing payload field")
	}

	if req.Signature == "" || req.Timestamp == "" {
		return domain.NewValidationError("missing signature headers")
	}

	return nil
}

// handleEndpointValidation answers the provider's URL-validation handshake.
func (s *WebhookService) handleEndpointValidation(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	logger := slog.With("component", "webhook_service", "method", "handleEndpointValidation")

	payloadMap, ok := req.Payload.(map[string]any)
	if !ok {
		logger.ErrorContext(ctx, "webhook payload is not a valid map for validation", "payload_type", fmt.Sprintf("%T", req.Payload))
		return nil, domain.NewValidationError("invalid validation payload format")
	}

	plainToken, ok := payloadMap["plainToken"].(string)
	if !ok || plainToken == "" {
		logger.ErrorContext(ctx, "missing plainToken in validation payload")
		return nil, domain.NewValidationError("missing plainToken in validation payload")
	}

	if s.webhookValidator.GetSecretToken() == "" {
		logger.ErrorContext(ctx, "webhook validator not properly configured")
		return nil, domain.NewInternalError("webhook validation not configured")
	}

	encryptedToken := s.webhookValidator.EncryptToken(plainToken)

	logger.InfoContext(ctx, "webhook endpoint validation completed successfully")

	return &WebhookResponse{
		PlainToken:     utils.StringPtr(plainToken),
		EncryptedToken: utils.StringPtr(encryptedToken),
	}, nil
}

// publishEvent publishes a regular webhook event to NATS for async processing.
func (s *WebhookService) publishEvent(ctx context.Context, req WebhookRequest) (*WebhookResponse, error) {
	logger := slog.With("component", "webhook_service", "method", "publishEvent")

	subject := getWebhookSubject(req.Event)
	if subject == "" {
		logger.WarnContext(ctx, "unsupported webhook event type", "event_type", req.Event)
		return nil, domain.NewValidationError(fmt.Sprintf("unsupported event type: %s", req.Event))
	}

	payloadMap, ok := req.Payload.(map[string]any)
	if !ok {
		logger.ErrorContext(ctx, "webhook payload is not a valid map", "payload_type", fmt.Sprintf("%T", req.Payload))
		return nil, domain.NewValidationError("invalid webhook payload format")
	}

	webhookMessage := models.WebhookEventMessage{
		EventType:     req.Event,
		EventTS:       req.EventTS,
		Payload:       payloadMap,
		DownloadToken: req.DownloadToken,
	}

	if meetingID, ok := models.ExtractExternalMeetingID(payloadMap); ok {
		logger = logger.With("external_meeting_id", meetingID)
	}

	if err := s.messageSender.PublishWebhookEvent(ctx, subject, webhookMessage); err != nil {
		logger.ErrorContext(ctx, "failed to publish webhook event to NATS", "error", err, "event_type", req.Event, "subject", subject)
		return nil, domain.NewInternalError("failed to process webhook event", err)
	}

	logger.InfoContext(ctx, "webhook event published to NATS", "event_type", req.Event, "subject", subject)

	return &WebhookResponse{
		Status:  utils.StringPtr("success"),
		Message: utils.StringPtr(fmt.Sprintf("Event %s queued for processing", req.Event)),
	}, nil
}

// getWebhookSubject maps provider event types to NATS subjects.
func getWebhookSubject(eventType string) string {
	eventSubjectMap := map[string]string{
		"meeting.started":            models.WebhookSessionStartedSubject,
		"meeting.ended":              models.WebhookSessionEndedSubject,
		"meeting.participant_joined": models.WebhookParticipantJoinedSubject,
		"meeting.participant_left":   models.WebhookParticipantLeftSubject,
		"recording.completed":        models.WebhookRecordingCompletedSubject,
	}

	return eventSubjectMap[eventType]
}
