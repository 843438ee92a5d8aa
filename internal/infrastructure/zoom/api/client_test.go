// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/mocks"
)

func newTestClient(serverURL string) (*Client, *mocks.MockTokenProvider) {
	tokenProvider := new(mocks.MockTokenProvider)
	tokenProvider.On("GetToken", context.Background()).Return("test-token", nil).Maybe()
	return NewClient(Config{BaseURL: serverURL}, tokenProvider), tokenProvider
}

func TestGetMeetingRecordings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/meetings/88213456789/recordings", r.URL.Path)
		assert.Equal(t, "download_access_token", r.URL.Query().Get("include_fields"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": 88213456789,
			"topic": "Algebra II",
			"download_access_token": "dat-123",
			"recording_files": [
				{"id": "f1", "file_type": "MP4", "recording_type": "speaker_view", "download_url": "https://zoom.us/rec/f1"},
				{"id": "f2", "file_type": "CHAT", "download_url": "https://zoom.us/rec/f2"}
			]
		}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	recordings, err := client.GetMeetingRecordings(context.Background(), "88213456789", true)
	require.NoError(t, err)
	assert.Equal(t, "88213456789", recordings.MeetingID)
	assert.Equal(t, "Algebra II", recordings.Topic)
	assert.Equal(t, "dat-123", recordings.DownloadAccessToken)
	require.Len(t, recordings.RecordingFiles, 2)
	assert.Equal(t, "MP4", recordings.RecordingFiles[0].FileType)
}

func TestGetMeetingRecordingsWithoutDownloadToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("include_fields"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"topic": "Physics", "recording_files": []}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	recordings, err := client.GetMeetingRecordings(context.Background(), "123", false)
	require.NoError(t, err)
	assert.Empty(t, recordings.DownloadAccessToken)
}

func TestGetMeetingRecordingsErrorClassification(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		expectedType domain.ErrorType
	}{
		{"not found", http.StatusNotFound, domain.ErrorTypeNotFound},
		{"unauthorized", http.StatusUnauthorized, domain.ErrorTypeAuth},
		{"rate limited", http.StatusTooManyRequests, domain.ErrorTypeUnavailable},
		{"server error", http.StatusInternalServerError, domain.ErrorTypeUnavailable},
		{"unexpected", http.StatusTeapot, domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"code": 3301, "message": "error from provider"}`))
			}))
			defer server.Close()

			client, _ := newTestClient(server.URL)

			_, err := client.GetMeetingRecordings(context.Background(), "123", true)
			require.Error(t, err)
			assert.Equal(t, tt.expectedType, domain.GetErrorType(err))
		})
	}
}

func TestGetMeetingAttendancePagination(t *testing.T) {
	var requests int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		assert.Equal(t, "/past_meetings/88213456789/participants", r.URL.Path)
		assert.Equal(t, "300", r.URL.Query().Get("page_size"))

		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("next_page_token") {
		case "":
			_, _ = w.Write([]byte(`{
				"next_page_token": "page-2",
				"participants": [
					{"id": "p1", "name": "Alice", "user_email": "alice@example.com", "duration": 1800}
				]
			}`))
		case "page-2":
			_, _ = w.Write([]byte(`{
				"next_page_token": "",
				"participants": [
					{"id": "p2", "name": "Bob", "user_email": "bob@example.com", "duration": 900}
				]
			}`))
		default:
			t.Errorf("unexpected page token %q", r.URL.Query().Get("next_page_token"))
		}
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	records, err := client.GetMeetingAttendance(context.Background(), "88213456789")
	require.NoError(t, err)
	assert.Equal(t, 2, requests)
	require.Len(t, records, 2)
	assert.Equal(t, "alice@example.com", records[0].Email)
	assert.Equal(t, "Bob", records[1].Name)
}

func TestCreateMeeting(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/users/me/meetings", r.URL.Path)

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Algebra II", body["topic"])
		assert.Equal(t, float64(meetingTypeScheduled), body["type"])
		settings, ok := body["settings"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "cloud", settings["auto_recording"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{
			"id": 88213456789,
			"uuid": "abc==",
			"topic": "Algebra II",
			"join_url": "https://zoom.us/j/88213456789",
			"start_url": "https://zoom.us/s/88213456789",
			"password": "123456"
		}`))
	}))
	defer server.Close()

	client, _ := newTestClient(server.URL)

	meeting, err := client.CreateMeeting(context.Background(), "Algebra II", 90)
	require.NoError(t, err)
	assert.Equal(t, "88213456789", meeting.ID)
	assert.Equal(t, "https://zoom.us/j/88213456789", meeting.JoinURL)
	assert.Equal(t, "https://zoom.us/s/88213456789", meeting.HostStartURL)
	assert.Equal(t, "123456", meeting.Passcode)
}

func TestDoRequestTokenFailure(t *testing.T) {
	tokenProvider := new(mocks.MockTokenProvider)
	tokenProvider.On("GetToken", context.Background()).
		Return("", domain.NewAuthError("credential exchange failed"))

	client := NewClient(Config{BaseURL: "http://unused.invalid"}, tokenProvider)

	_, err := client.GetMeetingRecordings(context.Background(), "123", true)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeAuth, domain.GetErrorType(err))
}
