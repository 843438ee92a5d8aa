// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractAttendanceCount(t *testing.T) {
	tests := []struct {
		name           string
		object         map[string]any
		expectedCount  int
		expectedSource string
		expectedOK     bool
	}{
		{
			name:           "participant_count present",
			object:         map[string]any{"participant_count": float64(12)},
			expectedCount:  12,
			expectedSource: "participant_count",
			expectedOK:     true,
		},
		{
			name:           "participants_count variant",
			object:         map[string]any{"participants_count": float64(7)},
			expectedCount:  7,
			expectedSource: "participants_count",
			expectedOK:     true,
		},
		{
			name:           "total_participants variant",
			object:         map[string]any{"total_participants": "9"},
			expectedCount:  9,
			expectedSource: "total_participants",
			expectedOK:     true,
		},
		{
			name:           "participants array length",
			object:         map[string]any{"participants": []any{map[string]any{}, map[string]any{}}},
			expectedCount:  2,
			expectedSource: "participants_length",
			expectedOK:     true,
		},
		{
			name: "participant_count wins over later variants",
			object: map[string]any{
				"participant_count":  float64(3),
				"total_participants": float64(99),
				"participants":       []any{map[string]any{}},
			},
			expectedCount:  3,
			expectedSource: "participant_count",
			expectedOK:     true,
		},
		{
			name:       "no variant present",
			object:     map[string]any{"topic": "Physics"},
			expectedOK: false,
		},
		{
			name:       "non-numeric value ignored",
			object:     map[string]any{"participant_count": "not-a-number"},
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, source, ok := ExtractAttendanceCount(tt.object)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expectedCount, count)
				assert.Equal(t, tt.expectedSource, source)
			}
		})
	}
}

func TestExtractExternalMeetingID(t *testing.T) {
	tests := []struct {
		name       string
		payload    map[string]any
		expectedID string
		expectedOK bool
	}{
		{
			name:       "string id",
			payload:    map[string]any{"object": map[string]any{"id": "88213456789"}},
			expectedID: "88213456789",
			expectedOK: true,
		},
		{
			name:       "numeric id normalizes to decimal string",
			payload:    map[string]any{"object": map[string]any{"id": float64(88213456789)}},
			expectedID: "88213456789",
			expectedOK: true,
		},
		{
			name:       "json.Number id",
			payload:    map[string]any{"object": map[string]any{"id": json.Number("123456")}},
			expectedID: "123456",
			expectedOK: true,
		},
		{
			name:       "missing object",
			payload:    map[string]any{},
			expectedOK: false,
		},
		{
			name:       "empty string id",
			payload:    map[string]any{"object": map[string]any{"id": ""}},
			expectedOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractExternalMeetingID(tt.payload)
			assert.Equal(t, tt.expectedOK, ok)
			if tt.expectedOK {
				assert.Equal(t, tt.expectedID, id)
			}
		})
	}
}

func TestWebhookEventMessageTypedPayloads(t *testing.T) {
	message := WebhookEventMessage{
		EventType: "meeting.ended",
		EventTS:   1700000000000,
		Payload: map[string]any{
			"object": map[string]any{
				"id":       "88213456789",
				"uuid":     "abc==",
				"topic":    "Algebra II",
				"end_time": "2026-08-31T15:04:05Z",
			},
		},
	}

	payload, err := message.ToSessionEndedPayload()
	require.NoError(t, err)
	assert.Equal(t, "88213456789", payload.Object.ID.String())
	assert.Equal(t, "Algebra II", payload.Object.Topic)
	assert.Equal(t, 2026, payload.Object.EndTime.Year())

	// Wrong event type is rejected
	_, err = message.ToSessionStartedPayload()
	assert.Error(t, err)
}

func TestWebhookEventMessageRecordingPayload(t *testing.T) {
	message := WebhookEventMessage{
		EventType: "recording.completed",
		Payload: map[string]any{
			"object": map[string]any{
				"id":    float64(88213456789),
				"topic": "Physics",
				"recording_files": []any{
					map[string]any{
						"id":             "file-1",
						"file_type":      "MP4",
						"recording_type": "speaker_view",
						"download_url":   "https://zoom.us/rec/download/file-1",
					},
				},
			},
		},
		DownloadToken: "tok-123",
	}

	payload, err := message.ToRecordingCompletedPayload()
	require.NoError(t, err)
	assert.Equal(t, "88213456789", payload.Object.ID.String())
	require.Len(t, payload.Object.RecordingFiles, 1)
	assert.Equal(t, "MP4", payload.Object.RecordingFiles[0].FileType)
	assert.Equal(t, "speaker_view", payload.Object.RecordingFiles[0].RecordingType)
}
