// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/akademo-live/session-service/internal/domain/models"
)

// Message represents a domain message interface
type Message interface {
	Subject() string
	Data() []byte
	Respond(data []byte) error
	HasReply() bool
}

// MessageHandler defines how the service handles incoming messages
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg Message)
	HandlerReady() bool
}

// WebhookEventSender publishes normalized inbound webhook events for
// asynchronous processing.
type WebhookEventSender interface {
	PublishWebhookEvent(ctx context.Context, subject string, message models.WebhookEventMessage) error
}

// TaskSender enqueues decoupled follow-up work spawned by lifecycle
// transitions. Handing the work to a queue instead of spawning unawaited
// goroutines keeps failures visible and redeliverable.
type TaskSender interface {
	SendReconcileParticipantsTask(ctx context.Context, task models.ReconcileParticipantsTask) error
	SendIngestRecordingTask(ctx context.Context, task models.IngestRecordingTask) error
}

// SessionEventSender emits domain events for downstream notification and UI
// systems. Only the emission contract is owned here; consumers are external.
type SessionEventSender interface {
	SendSessionStarted(ctx context.Context, data models.SessionStartedMessage) error
	SendSessionEnded(ctx context.Context, data models.SessionEndedMessage) error
	SendRecordingIngested(ctx context.Context, data models.RecordingIngestedMessage) error
	SendParticipantsReconciled(ctx context.Context, data models.ParticipantsReconciledMessage) error
}

// MessageBuilder composes all messaging capabilities of the service.
type MessageBuilder interface {
	WebhookEventSender
	TaskSender
	SessionEventSender
}
