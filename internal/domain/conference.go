// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/akademo-live/session-service/internal/domain/models"
)

// MeetingRecordings is the file listing returned by the conferencing
// provider's recordings-by-meeting endpoint. DownloadAccessToken is only
// populated when the elevated download-authorization field was requested.
type MeetingRecordings struct {
	MeetingID           string
	Topic               string
	RecordingFiles      []models.RecordingFile
	DownloadAccessToken string
}

// AttendanceRecord is one raw join/leave record from the provider's
// attendance-by-meeting endpoint. The same person appears once per
// join/leave cycle.
type AttendanceRecord struct {
	ID       string
	UserID   string
	Name     string
	Email    string
	Duration int
}

// ScheduledMeeting is the provider-side meeting created for a session.
type ScheduledMeeting struct {
	ID           string
	UUID         string
	Topic        string
	JoinURL      string
	HostStartURL string
	Passcode     string
}

// ConferenceClient defines outbound operations against the conferencing
// provider's REST API. Every call is authenticated through the credential
// cache and carries a bounded timeout.
type ConferenceClient interface {
	CreateMeeting(ctx context.Context, topic string, durationMinutes int) (*ScheduledMeeting, error)
	GetMeetingRecordings(ctx context.Context, meetingID string, includeDownloadToken bool) (*MeetingRecordings, error)
	GetMeetingAttendance(ctx context.Context, meetingID string) ([]AttendanceRecord, error)
}

// TokenProvider yields a valid OAuth access token for the conferencing
// provider, refreshing and coalescing as needed.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// FetchIngestion is a fetch-based ingestion job accepted by the video host.
type FetchIngestion struct {
	AssetID string
	Title   string
}

// VideoHostClient defines outbound operations against the video-hosting
// provider. The host pulls the source bytes itself; none pass through this
// service.
type VideoHostClient interface {
	FetchRemoteVideo(ctx context.Context, sourceURL, authHeaderValue, title string) (*FetchIngestion, error)
}

// WebhookValidator validates inbound webhook deliveries and answers the
// provider's URL-validation handshake.
type WebhookValidator interface {
	ValidateSignature(body []byte, signature, timestamp string) error
	EncryptToken(plainToken string) string
	GetSecretToken() string
}
