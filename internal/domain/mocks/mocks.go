// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package mocks provides testify mocks for the domain interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
)

// MockConferenceClient is a mock implementation of domain.ConferenceClient.
type MockConferenceClient struct {
	mock.Mock
}

func (m *MockConferenceClient) CreateMeeting(ctx context.Context, topic string, durationMinutes int) (*domain.ScheduledMeeting, error) {
	args := m.Called(ctx, topic, durationMinutes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ScheduledMeeting), args.Error(1)
}

func (m *MockConferenceClient) GetMeetingRecordings(ctx context.Context, meetingID string, includeDownloadToken bool) (*domain.MeetingRecordings, error) {
	args := m.Called(ctx, meetingID, includeDownloadToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.MeetingRecordings), args.Error(1)
}

func (m *MockConferenceClient) GetMeetingAttendance(ctx context.Context, meetingID string) ([]domain.AttendanceRecord, error) {
	args := m.Called(ctx, meetingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.AttendanceRecord), args.Error(1)
}

// MockTokenProvider is a mock implementation of domain.TokenProvider.
type MockTokenProvider struct {
	mock.Mock
}

func (m *MockTokenProvider) GetToken(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockVideoHostClient is a mock implementation of domain.VideoHostClient.
type MockVideoHostClient struct {
	mock.Mock
}

func (m *MockVideoHostClient) FetchRemoteVideo(ctx context.Context, sourceURL, authHeaderValue, title string) (*domain.FetchIngestion, error) {
	args := m.Called(ctx, sourceURL, authHeaderValue, title)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FetchIngestion), args.Error(1)
}

// MockWebhookValidator is a mock implementation of domain.WebhookValidator.
type MockWebhookValidator struct {
	mock.Mock
}

func (m *MockWebhookValidator) ValidateSignature(body []byte, signature, timestamp string) error {
	args := m.Called(body, signature, timestamp)
	return args.Error(0)
}

func (m *MockWebhookValidator) EncryptToken(plainToken string) string {
	args := m.Called(plainToken)
	return args.String(0)
}

func (m *MockWebhookValidator) GetSecretToken() string {
	args := m.Called()
	return args.String(0)
}

// MockMessageBuilder is a mock implementation of domain.MessageBuilder.
type MockMessageBuilder struct {
	mock.Mock
}

func (m *MockMessageBuilder) PublishWebhookEvent(ctx context.Context, subject string, message models.WebhookEventMessage) error {
	args := m.Called(ctx, subject, message)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendReconcileParticipantsTask(ctx context.Context, data models.ReconcileParticipantsTask) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendIngestRecordingTask(ctx context.Context, data models.IngestRecordingTask) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendSessionStarted(ctx context.Context, data models.SessionStartedMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendSessionEnded(ctx context.Context, data models.SessionEndedMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendRecordingIngested(ctx context.Context, data models.RecordingIngestedMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}

func (m *MockMessageBuilder) SendParticipantsReconciled(ctx context.Context, data models.ParticipantsReconciledMessage) error {
	args := m.Called(ctx, data)
	return args.Error(0)
}
