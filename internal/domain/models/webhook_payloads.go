// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// SessionStartedPayload represents the payload for session.started webhook events
type SessionStartedPayload struct {
	Object struct {
		UUID      string      `json:"uuid"`
		ID        json.Number `json:"id"` // string in lifecycle events, numeric in recording events
		HostID    string      `json:"host_id"`
		Topic     string      `json:"topic"`
		Type      int         `json:"type"`
		StartTime time.Time   `json:"start_time"`
		Timezone  string      `json:"timezone"`
		Duration  int         `json:"duration"`
	} `json:"object"`
}

// SessionEndedPayload represents the payload for session.ended webhook events
type SessionEndedPayload struct {
	Object struct {
		UUID      string      `json:"uuid"`
		ID        json.Number `json:"id"`
		HostID    string      `json:"host_id"`
		Topic     string      `json:"topic"`
		Type      int         `json:"type"`
		StartTime time.Time   `json:"start_time"`
		EndTime   time.Time   `json:"end_time"`
		Duration  int         `json:"duration"`
		Timezone  string      `json:"timezone"`
	} `json:"object"`
}

// ParticipantEventPayload represents the payload for participant.joined and
// participant.left webhook events
type ParticipantEventPayload struct {
	Object struct {
		UUID        string      `json:"uuid"`
		ID          json.Number `json:"id"`
		HostID      string      `json:"host_id"`
		Topic       string      `json:"topic"`
		Type        int         `json:"type"`
		StartTime   time.Time   `json:"start_time"`
		Timezone    string      `json:"timezone"`
		Participant struct {
			UserID   string `json:"user_id"`
			UserName string `json:"user_name"`
			ID       string `json:"id"`
			Email    string `json:"email"`
		} `json:"participant"`
	} `json:"object"`
}

// RecordingCompletedPayload represents the payload for recording.completed webhook events
type RecordingCompletedPayload struct {
	Object struct {
		UUID           string          `json:"uuid"`
		ID             json.Number     `json:"id"`
		HostID         string          `json:"host_id"`
		Topic          string          `json:"topic"`
		Type           int             `json:"type"`
		StartTime      time.Time       `json:"start_time"`
		Timezone       string          `json:"timezone"`
		Duration       int             `json:"duration"`
		TotalSize      int64           `json:"total_size"`
		RecordingCount int             `json:"recording_count"`
		RecordingFiles []RecordingFile `json:"recording_files"`
	} `json:"object"`
}

// RecordingFile represents a recording file in webhook payloads and in
// recordings-by-meeting API responses
type RecordingFile struct {
	ID             string    `json:"id"`
	MeetingID      string    `json:"meeting_id"`
	RecordingStart time.Time `json:"recording_start"`
	RecordingEnd   time.Time `json:"recording_end"`
	FileType       string    `json:"file_type"`
	FileSize       int64     `json:"file_size"`
	PlayURL        string    `json:"play_url"`
	DownloadURL    string    `json:"download_url"`
	Status         string    `json:"status"`
	RecordingType  string    `json:"recording_type"`
}

// toTypedPayload converts the loosely typed webhook payload into the given
// typed payload struct by round-tripping through JSON.
func (m *WebhookEventMessage) toTypedPayload(expectedEvent string, out any) error {
	if m.EventType != expectedEvent {
		return fmt.Errorf("invalid event type: expected %s, got %s", expectedEvent, m.EventType)
	}

	data, err := json.Marshal(m.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to unmarshal %s payload: %w", expectedEvent, err)
	}

	return nil
}

// ToSessionStartedPayload converts the webhook event to a typed session started payload
func (m *WebhookEventMessage) ToSessionStartedPayload() (*SessionStartedPayload, error) {
	var payload SessionStartedPayload
	if err := m.toTypedPayload("meeting.started", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ToSessionEndedPayload converts the webhook event to a typed session ended payload
func (m *WebhookEventMessage) ToSessionEndedPayload() (*SessionEndedPayload, error) {
	var payload SessionEndedPayload
	if err := m.toTypedPayload("meeting.ended", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ToParticipantJoinedPayload converts the webhook event to a typed participant payload
func (m *WebhookEventMessage) ToParticipantJoinedPayload() (*ParticipantEventPayload, error) {
	var payload ParticipantEventPayload
	if err := m.toTypedPayload("meeting.participant_joined", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ToParticipantLeftPayload converts the webhook event to a typed participant payload
func (m *WebhookEventMessage) ToParticipantLeftPayload() (*ParticipantEventPayload, error) {
	var payload ParticipantEventPayload
	if err := m.toTypedPayload("meeting.participant_left", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// ToRecordingCompletedPayload converts the webhook event to a typed recording completed payload
func (m *WebhookEventMessage) ToRecordingCompletedPayload() (*RecordingCompletedPayload, error) {
	var payload RecordingCompletedPayload
	if err := m.toTypedPayload("recording.completed", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// IntFieldExtractor is one named attempt at pulling an integer value out of a
// loosely typed webhook object. Provider payloads expose the same value under
// different field names across schema versions, so extraction runs an ordered
// list of these instead of ad-hoc field checks in business logic.
type IntFieldExtractor struct {
	Name    string
	Extract func(object map[string]any) (int, bool)
}

func intField(name string) IntFieldExtractor {
	return IntFieldExtractor{
		Name: name,
		Extract: func(object map[string]any) (int, bool) {
			return numberAsInt(object[name])
		},
	}
}

// AttendanceCountExtractors is the priority-ordered list of known field-name
// variants for the attendance count in session.ended payloads. The first
// extractor yielding a value wins.
var AttendanceCountExtractors = []IntFieldExtractor{
	intField("participant_count"),
	intField("participants_count"),
	intField("total_participants"),
	{
		Name: "participants_length",
		Extract: func(object map[string]any) (int, bool) {
			participants, ok := object["participants"].([]any)
			if !ok {
				return 0, false
			}
			return len(participants), true
		},
	},
}

// ExtractAttendanceCount scans the webhook payload object for an attendance
// count using the known field-name variants in priority order. It returns the
// first value present, along with the name of the extractor that matched.
func ExtractAttendanceCount(object map[string]any) (count int, source string, ok bool) {
	for _, extractor := range AttendanceCountExtractors {
		if value, found := extractor.Extract(object); found {
			return value, extractor.Name, true
		}
	}
	return 0, "", false
}

// numberAsInt converts the JSON representations a numeric field can decode to.
func numberAsInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	case string:
		var num json.Number = json.Number(n)
		i, err := num.Int64()
		if err != nil {
			return 0, false
		}
		return int(i), true
	}
	return 0, false
}

// ExtractExternalMeetingID pulls the meeting ID out of a loosely typed webhook
// payload. The provider sends the ID as a string on lifecycle events and as a
// number on recording events; both normalize to the decimal string form.
func ExtractExternalMeetingID(payload map[string]any) (string, bool) {
	object, ok := payload["object"].(map[string]any)
	if !ok {
		return "", false
	}

	switch id := object["id"].(type) {
	case string:
		return id, id != ""
	case float64:
		return fmt.Sprintf("%.0f", id), true
	case json.Number:
		return id.String(), true
	}
	return "", false
}
