// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package service contains the business logic of the session service.
package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/constants"
)

// SessionService implements session scheduling and read operations.
type SessionService struct {
	sessionRepository domain.SessionRepository
	conferenceClient  domain.ConferenceClient
	messageBuilder    domain.MessageBuilder
	clock             domain.Clock
}

// NewSessionService creates a new SessionService.
func NewSessionService(
	sessionRepository domain.SessionRepository,
	conferenceClient domain.ConferenceClient,
	messageBuilder domain.MessageBuilder,
	clock domain.Clock,
) *SessionService {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &SessionService{
		sessionRepository: sessionRepository,
		conferenceClient:  conferenceClient,
		messageBuilder:    messageBuilder,
		clock:             clock,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *SessionService) ServiceReady() bool {
	return s.sessionRepository != nil && s.conferenceClient != nil && s.messageBuilder != nil
}

// ScheduleSessionRequest is the request to schedule a new live session.
type ScheduleSessionRequest struct {
	Title           string `json:"title"`
	DurationMinutes int    `json:"duration_minutes,omitempty"`
}

// ScheduleSession creates a provider meeting with cloud recording enabled and
// persists the corresponding session record in the scheduled state.
func (s *SessionService) ScheduleSession(ctx context.Context, req ScheduleSessionRequest) (*models.LiveSession, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, domain.NewValidationError("title is required")
	}
	if req.DurationMinutes < 0 || req.DurationMinutes > constants.MaxSessionDurationMinutes {
		return nil, domain.NewValidationError("duration_minutes out of range")
	}

	meeting, err := s.conferenceClient.CreateMeeting(ctx, title, req.DurationMinutes)
	if err != nil {
		slog.ErrorContext(ctx, "failed to create provider meeting", logging.ErrKey, err)
		return nil, err
	}

	now := s.clock.Now()
	session := &models.LiveSession{
		UID:               uuid.New().String(),
		ExternalMeetingID: meeting.ID,
		Title:             title,
		Status:            models.SessionStatusScheduled,
		JoinURL:           meeting.JoinURL,
		HostStartURL:      meeting.HostStartURL,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.sessionRepository.Create(ctx, session); err != nil {
		slog.ErrorContext(ctx, "failed to persist scheduled session",
			logging.ErrKey, err,
			"external_meeting_id", session.ExternalMeetingID,
			logging.PriorityCritical())
		return nil, err
	}

	slog.InfoContext(ctx, "scheduled new session",
		"session_uid", session.UID,
		"external_meeting_id", session.ExternalMeetingID,
		"title", session.Title,
	)

	return session, nil
}

// GetSession returns the session for the given external meeting ID.
func (s *SessionService) GetSession(ctx context.Context, externalMeetingID string) (*models.LiveSession, error) {
	if externalMeetingID == "" {
		return nil, domain.NewValidationError("external meeting ID is required")
	}
	return s.sessionRepository.Get(ctx, externalMeetingID)
}

// ListSessions returns all known sessions.
func (s *SessionService) ListSessions(ctx context.Context) ([]*models.LiveSession, error) {
	return s.sessionRepository.ListAll(ctx)
}
