// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package handlers contains the NATS message handlers consuming webhook
// events and follow-up tasks.
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/internal/service"
)

// SessionMessageHandler dispatches NATS messages to the session services.
type SessionMessageHandler struct {
	stateMachine          *service.SessionStateMachine
	participantReconciler *service.ParticipantReconciler
	ingestionSubmitter    *service.IngestionSubmitter
	messageBuilder        domain.MessageBuilder
}

// NewSessionMessageHandler creates a new SessionMessageHandler.
func NewSessionMessageHandler(
	stateMachine *service.SessionStateMachine,
	participantReconciler *service.ParticipantReconciler,
	ingestionSubmitter *service.IngestionSubmitter,
	messageBuilder domain.MessageBuilder,
) *SessionMessageHandler {
	return &SessionMessageHandler{
		stateMachine:          stateMachine,
		participantReconciler: participantReconciler,
		ingestionSubmitter:    ingestionSubmitter,
		messageBuilder:        messageBuilder,
	}
}

// HandlerReady checks if the handler is ready to process messages.
func (h *SessionMessageHandler) HandlerReady() bool {
	return h.stateMachine != nil && h.participantReconciler != nil &&
		h.ingestionSubmitter != nil && h.messageBuilder != nil
}

// HandleMessage implements the domain.MessageHandler interface.
func (h *SessionMessageHandler) HandleMessage(ctx context.Context, msg domain.Message) {
	subject := msg.Subject()
	ctx = logging.AppendCtx(ctx, slog.String("subject", subject))
	slog.DebugContext(ctx, "handling NATS message")

	handlers := map[string]func(ctx context.Context, msg domain.Message) error{
		models.WebhookSessionStartedSubject:     h.HandleSessionStarted,
		models.WebhookSessionEndedSubject:       h.HandleSessionEnded,
		models.WebhookParticipantJoinedSubject:  h.HandleParticipantJoined,
		models.WebhookParticipantLeftSubject:    h.HandleParticipantLeft,
		models.WebhookRecordingCompletedSubject: h.HandleRecordingCompleted,
		models.TaskReconcileParticipantsSubject: h.HandleReconcileParticipantsTask,
		models.TaskIngestRecordingSubject:       h.HandleIngestRecordingTask,
	}

	handler, ok := handlers[subject]
	if !ok {
		slog.WarnContext(ctx, "unknown subject")
		return
	}

	if err := handler(ctx, msg); err != nil {
		slog.ErrorContext(ctx, "error handling message",
			logging.ErrKey, err,
			"subject", subject,
		)
	}
}

// parseWebhookEvent parses a webhook event message.
func (h *SessionMessageHandler) parseWebhookEvent(ctx context.Context, msg domain.Message) (*models.WebhookEventMessage, error) {
	var webhookEvent models.WebhookEventMessage
	if err := json.Unmarshal(msg.Data(), &webhookEvent); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal webhook event", logging.ErrKey, err)
		return nil, err
	}
	return &webhookEvent, nil
}

// dropIfUnknownSession filters out errors for meetings this service never
// scheduled. Other tenants' webhooks legitimately reference unknown meetings;
// redelivering those would never succeed.
func dropIfUnknownSession(ctx context.Context, err error, externalMeetingID string) error {
	if domain.GetErrorType(err) == domain.ErrorTypeNotFound {
		slog.InfoContext(ctx, "no session for external meeting, dropping event",
			"external_meeting_id", externalMeetingID,
		)
		return nil
	}
	return err
}

// HandleSessionStarted handles meeting.started webhook events.
func (h *SessionMessageHandler) HandleSessionStarted(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := h.parseWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", webhookEvent.EventType))

	payload, err := webhookEvent.ToSessionStartedPayload()
	if err != nil {
		return fmt.Errorf("invalid meeting.started payload: %w", err)
	}

	externalMeetingID := payload.Object.ID.String()
	ctx = logging.AppendCtx(ctx, slog.String("external_meeting_id", externalMeetingID))

	err = h.stateMachine.ApplySessionStarted(ctx, externalMeetingID, payload.Object.StartTime)
	return dropIfUnknownSession(ctx, err, externalMeetingID)
}

// HandleSessionEnded handles meeting.ended webhook events.
func (h *SessionMessageHandler) HandleSessionEnded(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := h.parseWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", webhookEvent.EventType))

	payload, err := webhookEvent.ToSessionEndedPayload()
	if err != nil {
		return fmt.Errorf("invalid meeting.ended payload: %w", err)
	}

	externalMeetingID := payload.Object.ID.String()
	ctx = logging.AppendCtx(ctx, slog.String("external_meeting_id", externalMeetingID))

	// The ended payload sometimes carries an attendance count under one of
	// several field names; scan for it here so the reconciliation task can
	// prefer it over an extra API call.
	webhookCount := 0
	if object, ok := webhookEvent.Payload["object"].(map[string]any); ok {
		if count, source, found := models.ExtractAttendanceCount(object); found {
			webhookCount = count
			slog.DebugContext(ctx, "attendance count present in ended payload",
				"participant_count", count,
				"count_source", source,
			)
		}
	}

	err = h.stateMachine.ApplySessionEnded(ctx, externalMeetingID, payload.Object.EndTime, webhookCount)
	return dropIfUnknownSession(ctx, err, externalMeetingID)
}

// HandleParticipantJoined handles meeting.participant_joined webhook events.
func (h *SessionMessageHandler) HandleParticipantJoined(ctx context.Context, msg domain.Message) error {
	return h.handleParticipantEvent(ctx, msg, +1)
}

// HandleParticipantLeft handles meeting.participant_left webhook events.
func (h *SessionMessageHandler) HandleParticipantLeft(ctx context.Context, msg domain.Message) error {
	return h.handleParticipantEvent(ctx, msg, -1)
}

func (h *SessionMessageHandler) handleParticipantEvent(ctx context.Context, msg domain.Message, delta int) error {
	webhookEvent, err := h.parseWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", webhookEvent.EventType))

	var payload *models.ParticipantEventPayload
	if delta > 0 {
		payload, err = webhookEvent.ToParticipantJoinedPayload()
	} else {
		payload, err = webhookEvent.ToParticipantLeftPayload()
	}
	if err != nil {
		return fmt.Errorf("invalid participant event payload: %w", err)
	}

	externalMeetingID := payload.Object.ID.String()
	ctx = logging.AppendCtx(ctx, slog.String("external_meeting_id", externalMeetingID))

	err = h.stateMachine.ApplyLiveParticipantCount(ctx, externalMeetingID, delta)
	return dropIfUnknownSession(ctx, err, externalMeetingID)
}

// HandleRecordingCompleted handles recording.completed webhook events by
// enqueueing an ingestion task carrying the webhook's file listing and
// download token.
func (h *SessionMessageHandler) HandleRecordingCompleted(ctx context.Context, msg domain.Message) error {
	webhookEvent, err := h.parseWebhookEvent(ctx, msg)
	if err != nil {
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("event_type", webhookEvent.EventType))

	payload, err := webhookEvent.ToRecordingCompletedPayload()
	if err != nil {
		return fmt.Errorf("invalid recording.completed payload: %w", err)
	}

	externalMeetingID := payload.Object.ID.String()
	ctx = logging.AppendCtx(ctx, slog.String("external_meeting_id", externalMeetingID))

	slog.InfoContext(ctx, "recording completed",
		"topic", payload.Object.Topic,
		"recording_count", payload.Object.RecordingCount,
		"total_size", payload.Object.TotalSize,
	)

	return h.messageBuilder.SendIngestRecordingTask(ctx, models.IngestRecordingTask{
		ExternalMeetingID: externalMeetingID,
		Topic:             payload.Object.Topic,
		RecordingFiles:    payload.Object.RecordingFiles,
		DownloadToken:     webhookEvent.DownloadToken,
	})
}

// HandleReconcileParticipantsTask handles reconcile-participants tasks.
func (h *SessionMessageHandler) HandleReconcileParticipantsTask(ctx context.Context, msg domain.Message) error {
	var task models.ReconcileParticipantsTask
	if err := json.Unmarshal(msg.Data(), &task); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal reconcile participants task", logging.ErrKey, err)
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("external_meeting_id", task.ExternalMeetingID))

	err := h.participantReconciler.ReconcileParticipants(ctx, task)
	return dropIfUnknownSession(ctx, err, task.ExternalMeetingID)
}

// HandleIngestRecordingTask handles ingest-recording tasks.
func (h *SessionMessageHandler) HandleIngestRecordingTask(ctx context.Context, msg domain.Message) error {
	var task models.IngestRecordingTask
	if err := json.Unmarshal(msg.Data(), &task); err != nil {
		slog.ErrorContext(ctx, "failed to unmarshal ingest recording task", logging.ErrKey, err)
		return err
	}
	ctx = logging.AppendCtx(ctx, slog.String("external_meeting_id", task.ExternalMeetingID))

	err := h.ingestionSubmitter.IngestRecording(ctx, task)
	return dropIfUnknownSession(ctx, err, task.ExternalMeetingID)
}
