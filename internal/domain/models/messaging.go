// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package models

import "time"

// NATS subjects for conference webhook events. The webhook receiver publishes
// one message per inbound event; handlers consume them asynchronously so that
// the HTTP acknowledgment path never blocks on processing.
const (
	WebhookSessionStartedSubject     = "akademo.webhook.session.started"
	WebhookSessionEndedSubject       = "akademo.webhook.session.ended"
	WebhookRecordingCompletedSubject = "akademo.webhook.recording.completed"
	WebhookParticipantJoinedSubject  = "akademo.webhook.participant.joined"
	WebhookParticipantLeftSubject    = "akademo.webhook.participant.left"
)

// NATS subjects for follow-up tasks spawned by terminal lifecycle
// transitions. Tasks are idempotent and safe to redeliver.
const (
	TaskReconcileParticipantsSubject = "akademo.task.reconcile_participants"
	TaskIngestRecordingSubject       = "akademo.task.ingest_recording"
)

// NATS subjects for domain events emitted for downstream notification and
// UI systems.
const (
	SessionStartedSubject         = "akademo.session.started"
	SessionEndedSubject           = "akademo.session.ended"
	RecordingIngestedSubject      = "akademo.session.recording_ingested"
	ParticipantsReconciledSubject = "akademo.session.participants_reconciled"
)

// WebhookEventMessage is the normalized form of an inbound conference webhook
// event as published on NATS. The payload is kept loosely typed here; handlers
// convert it to a typed payload via the To*Payload helpers.
type WebhookEventMessage struct {
	EventType string         `json:"event_type"`
	EventTS   int64          `json:"event_ts"`
	Payload   map[string]any `json:"payload"`
	// DownloadToken is the webhook-embedded recording download token, present
	// only on recording.completed deliveries. It sits beside the payload in
	// the provider's envelope, so it is carried explicitly.
	DownloadToken string `json:"download_token,omitempty"`
}

// ReconcileParticipantsTask asks for the attendance count of an ended session
// to be reconciled against the conferencing provider.
type ReconcileParticipantsTask struct {
	ExternalMeetingID string `json:"external_meeting_id"`
	// WebhookCount is the count scanned from the session.ended payload,
	// zero when the payload carried none.
	WebhookCount int `json:"webhook_count"`
}

// IngestRecordingTask asks for the recording of a session to be resolved and
// submitted to the video host. The webhook-supplied file listing and download
// token ride along so the locator can try them before calling the provider.
type IngestRecordingTask struct {
	ExternalMeetingID string          `json:"external_meeting_id"`
	Topic             string          `json:"topic,omitempty"`
	RecordingFiles    []RecordingFile `json:"recording_files,omitempty"`
	DownloadToken     string          `json:"download_token,omitempty"`
}

// SessionStartedMessage is the domain event emitted when a session goes active.
type SessionStartedMessage struct {
	SessionUID        string    `json:"session_uid"`
	ExternalMeetingID string    `json:"external_meeting_id"`
	StartedAt         time.Time `json:"started_at"`
	Tags              []string  `json:"tags,omitempty"`
}

// SessionEndedMessage is the domain event emitted when a session ends.
type SessionEndedMessage struct {
	SessionUID        string    `json:"session_uid"`
	ExternalMeetingID string    `json:"external_meeting_id"`
	EndedAt           time.Time `json:"ended_at"`
	Tags              []string  `json:"tags,omitempty"`
}

// RecordingIngestedMessage is the domain event emitted when the video host
// accepts a fetch-based ingestion job for a session recording.
type RecordingIngestedMessage struct {
	SessionUID        string `json:"session_uid"`
	ExternalMeetingID string `json:"external_meeting_id"`
	RecordingAssetID  string `json:"recording_asset_id"`
	SourceTitle       string `json:"source_title,omitempty"`
}

// ParticipantsReconciledMessage is the domain event emitted when the
// attendance count of a session has been reconciled.
type ParticipantsReconciledMessage struct {
	SessionUID        string    `json:"session_uid"`
	ExternalMeetingID string    `json:"external_meeting_id"`
	ParticipantCount  int       `json:"participant_count"`
	ReconciledAt      time.Time `json:"reconciled_at"`
}
