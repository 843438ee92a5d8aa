// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/constants"
	"github.com/akademo-live/session-service/pkg/utils"
)

// SessionStateMachine drives the live session lifecycle off conference
// webhook events. Every transition is a read-with-revision followed by a
// revision-conditioned update; a conflict means another delivery got there
// first, so the whole decision is re-evaluated against the fresh record.
type SessionStateMachine struct {
	sessionRepository domain.SessionRepository
	messageBuilder    domain.MessageBuilder
	clock             domain.Clock
}

// NewSessionStateMachine creates a new SessionStateMachine.
func NewSessionStateMachine(
	sessionRepository domain.SessionRepository,
	messageBuilder domain.MessageBuilder,
	clock domain.Clock,
) *SessionStateMachine {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &SessionStateMachine{
		sessionRepository: sessionRepository,
		messageBuilder:    messageBuilder,
		clock:             clock,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *SessionStateMachine) ServiceReady() bool {
	return s.sessionRepository != nil && s.messageBuilder != nil
}

// mutateResult describes the outcome of one lifecycle mutation attempt.
type mutateResult struct {
	session *models.LiveSession
	applied bool
}

// mutateSession runs the given mutation under optimistic concurrency. The
// mutation callback inspects the freshly read session and either changes it
// and returns true, or returns false to signal an idempotent no-op.
func (s *SessionStateMachine) mutateSession(
	ctx context.Context,
	externalMeetingID string,
	mutate func(session *models.LiveSession) bool,
) (*mutateResult, error) {
	var lastErr error
	for attempt := 0; attempt < constants.StatusUpdateMaxAttempts; attempt++ {
		session, revision, err := s.sessionRepository.GetWithRevision(ctx, externalMeetingID)
		if err != nil {
			return nil, err
		}

		if !mutate(session) {
			return &mutateResult{session: session, applied: false}, nil
		}

		session.UpdatedAt = s.clock.Now()
		err = s.sessionRepository.Update(ctx, session, revision)
		if err == nil {
			return &mutateResult{session: session, applied: true}, nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return nil, err
		}

		lastErr = err
		slog.DebugContext(ctx, "session update conflict, retrying",
			"external_meeting_id", externalMeetingID,
			"attempt", attempt+1,
		)
	}

	slog.ErrorContext(ctx, "session update conflicts exhausted retries",
		"external_meeting_id", externalMeetingID,
		logging.ErrKey, lastErr,
		logging.PriorityCritical())
	return nil, lastErr
}

// ApplySessionStarted transitions a session to active. Duplicate or late
// deliveries are idempotent no-ops.
func (s *SessionStateMachine) ApplySessionStarted(ctx context.Context, externalMeetingID string, startedAt time.Time) error {
	if startedAt.IsZero() {
		startedAt = s.clock.Now()
	}

	result, err := s.mutateSession(ctx, externalMeetingID, func(session *models.LiveSession) bool {
		if !session.CanTransitionTo(models.SessionStatusActive) {
			slog.DebugContext(ctx, "ignoring session.started for non-forward transition",
				"external_meeting_id", externalMeetingID,
				"current_status", session.Status,
			)
			return false
		}
		session.Status = models.SessionStatusActive
		session.StartedAt = utils.TimePtr(startedAt)
		return true
	})
	if err != nil {
		return err
	}
	if !result.applied {
		return nil
	}

	slog.InfoContext(ctx, "session started",
		"session_uid", result.session.UID,
		"external_meeting_id", externalMeetingID,
	)

	// Event emission is best-effort: the transition already persisted.
	if err := s.messageBuilder.SendSessionStarted(ctx, models.SessionStartedMessage{
		SessionUID:        result.session.UID,
		ExternalMeetingID: externalMeetingID,
		StartedAt:         startedAt,
		Tags:              result.session.Tags(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to emit session started event", logging.ErrKey, err,
			"external_meeting_id", externalMeetingID)
	}

	return nil
}

// ApplySessionEnded transitions a session to ended and enqueues the
// decoupled follow-up work: participant reconciliation and, when the
// recording completes separately, nothing here depends on it.
func (s *SessionStateMachine) ApplySessionEnded(ctx context.Context, externalMeetingID string, endedAt time.Time, webhookCount int) error {
	if endedAt.IsZero() {
		endedAt = s.clock.Now()
	}

	result, err := s.mutateSession(ctx, externalMeetingID, func(session *models.LiveSession) bool {
		if !session.CanTransitionTo(models.SessionStatusEnded) {
			slog.DebugContext(ctx, "ignoring session.ended for non-forward transition",
				"external_meeting_id", externalMeetingID,
				"current_status", session.Status,
			)
			return false
		}
		session.Status = models.SessionStatusEnded
		session.EndedAt = utils.TimePtr(endedAt)
		return true
	})
	if err != nil {
		return err
	}
	if !result.applied {
		return nil
	}

	slog.InfoContext(ctx, "session ended",
		"session_uid", result.session.UID,
		"external_meeting_id", externalMeetingID,
	)

	// The ended transition spawns follow-up tasks instead of doing the work
	// inline: each task is idempotent and safe to redeliver.
	if err := s.messageBuilder.SendReconcileParticipantsTask(ctx, models.ReconcileParticipantsTask{
		ExternalMeetingID: externalMeetingID,
		WebhookCount:      webhookCount,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to enqueue participant reconciliation task",
			logging.ErrKey, err,
			"external_meeting_id", externalMeetingID,
			logging.PriorityCritical())
	}

	if err := s.messageBuilder.SendSessionEnded(ctx, models.SessionEndedMessage{
		SessionUID:        result.session.UID,
		ExternalMeetingID: externalMeetingID,
		EndedAt:           endedAt,
		Tags:              result.session.Tags(),
	}); err != nil {
		slog.ErrorContext(ctx, "failed to emit session ended event", logging.ErrKey, err,
			"external_meeting_id", externalMeetingID)
	}

	return nil
}

// ApplyLiveParticipantCount adjusts the running participant count from
// participant joined/left events. The running count is only tracked while the
// session is active and never touches a reconciled count.
func (s *SessionStateMachine) ApplyLiveParticipantCount(ctx context.Context, externalMeetingID string, delta int) error {
	result, err := s.mutateSession(ctx, externalMeetingID, func(session *models.LiveSession) bool {
		if session.ParticipantsReconciledAt != nil {
			return false
		}
		if session.Status != models.SessionStatusActive {
			return false
		}
		count := utils.IntValue(session.ParticipantCount) + delta
		if count < 0 {
			count = 0
		}
		session.ParticipantCount = utils.IntPtr(count)
		return true
	})
	if err != nil {
		return err
	}

	if result.applied {
		slog.DebugContext(ctx, "updated live participant count",
			"external_meeting_id", externalMeetingID,
			"participant_count", utils.IntValue(result.session.ParticipantCount),
		)
	}
	return nil
}
