// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package messaging

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/logging"
)

// INatsConn is the NATS connection interface needed by the [MessageBuilder].
type INatsConn interface {
	IsConnected() bool
	Publish(subj string, data []byte) error
}

// MessageBuilder builds messages and sends them to the NATS server.
type MessageBuilder struct {
	NatsConn INatsConn
}

// NewMessageBuilder creates a new MessageBuilder.
func NewMessageBuilder(natsConn INatsConn) *MessageBuilder {
	return &MessageBuilder{
		NatsConn: natsConn,
	}
}

// sendMessage sends the message to the NATS server.
func (m *MessageBuilder) sendMessage(ctx context.Context, subject string, data []byte) error {
	err := m.NatsConn.Publish(subject, data)
	if err != nil {
		slog.ErrorContext(ctx, "error sending message to NATS", logging.ErrKey, err, "subject", subject)
		return err
	}
	slog.DebugContext(ctx, "sent message to NATS", "subject", subject)
	return nil
}

// marshalAndSend marshals the payload into JSON and sends it on the subject.
func (m *MessageBuilder) marshalAndSend(ctx context.Context, subject string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.ErrorContext(ctx, "error marshalling message into JSON", logging.ErrKey, err, "subject", subject)
		return err
	}
	return m.sendMessage(ctx, subject, data)
}

// PublishWebhookEvent publishes a conference webhook event to NATS for async processing.
func (m *MessageBuilder) PublishWebhookEvent(ctx context.Context, subject string, message models.WebhookEventMessage) error {
	slog.DebugContext(ctx, "publishing webhook event to NATS",
		"subject", subject,
		"event_type", message.EventType,
		"event_ts", message.EventTS,
	)

	return m.marshalAndSend(ctx, subject, message)
}

// SendReconcileParticipantsTask enqueues a participant reconciliation task for
// a session that just ended.
func (m *MessageBuilder) SendReconcileParticipantsTask(ctx context.Context, data models.ReconcileParticipantsTask) error {
	return m.marshalAndSend(ctx, models.TaskReconcileParticipantsSubject, data)
}

// SendIngestRecordingTask enqueues a recording ingestion task.
func (m *MessageBuilder) SendIngestRecordingTask(ctx context.Context, data models.IngestRecordingTask) error {
	return m.marshalAndSend(ctx, models.TaskIngestRecordingSubject, data)
}

// SendSessionStarted announces that a session went live.
func (m *MessageBuilder) SendSessionStarted(ctx context.Context, data models.SessionStartedMessage) error {
	return m.marshalAndSend(ctx, models.SessionStartedSubject, data)
}

// SendSessionEnded announces that a session ended.
func (m *MessageBuilder) SendSessionEnded(ctx context.Context, data models.SessionEndedMessage) error {
	return m.marshalAndSend(ctx, models.SessionEndedSubject, data)
}

// SendRecordingIngested announces that a session recording was handed off to
// the video host.
func (m *MessageBuilder) SendRecordingIngested(ctx context.Context, data models.RecordingIngestedMessage) error {
	return m.marshalAndSend(ctx, models.RecordingIngestedSubject, data)
}

// SendParticipantsReconciled announces that a session's attendance count was
// finalized.
func (m *MessageBuilder) SendParticipantsReconciled(ctx context.Context, data models.ParticipantsReconciledMessage) error {
	return m.marshalAndSend(ctx, models.ParticipantsReconciledSubject, data)
}
