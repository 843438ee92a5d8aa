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

// ParticipantReconciler settles the final attendance count of an ended
// session. The count scanned from the webhook payload is preferred; when the
// payload carried none, the provider's attendance listing is fetched and
// deduplicated. A count that is already set and non-zero is never overwritten.
type ParticipantReconciler struct {
	sessionRepository domain.SessionRepository
	conferenceClient  domain.ConferenceClient
	messageBuilder    domain.MessageBuilder
	clock             domain.Clock
}

// NewParticipantReconciler creates a new ParticipantReconciler.
func NewParticipantReconciler(
	sessionRepository domain.SessionRepository,
	conferenceClient domain.ConferenceClient,
	messageBuilder domain.MessageBuilder,
	clock domain.Clock,
) *ParticipantReconciler {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &ParticipantReconciler{
		sessionRepository: sessionRepository,
		conferenceClient:  conferenceClient,
		messageBuilder:    messageBuilder,
		clock:             clock,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *ParticipantReconciler) ServiceReady() bool {
	return s.sessionRepository != nil && s.conferenceClient != nil && s.messageBuilder != nil
}

// ReconcileParticipants resolves and persists the final attendance count for
// the session named by the task. Redeliveries are no-ops once a count is set.
func (s *ParticipantReconciler) ReconcileParticipants(ctx context.Context, task models.ReconcileParticipantsTask) error {
	session, err := s.sessionRepository.Get(ctx, task.ExternalMeetingID)
	if err != nil {
		return err
	}

	if !session.NeedsParticipantCount() {
		slog.InfoContext(ctx, "session already has a participant count, skipping reconciliation",
			"external_meeting_id", task.ExternalMeetingID,
			"participant_count", utils.IntValue(session.ParticipantCount),
		)
		return nil
	}

	count := task.WebhookCount
	source := "webhook"
	if count <= 0 {
		count, err = s.countDistinctAttendees(ctx, task.ExternalMeetingID)
		if err != nil {
			return err
		}
		source = "attendance_api"
	}

	if count <= 0 {
		slog.WarnContext(ctx, "no attendance information available for session",
			"external_meeting_id", task.ExternalMeetingID,
		)
		return nil
	}

	reconciledAt := s.clock.Now()
	if err := s.persistCount(ctx, task.ExternalMeetingID, count, reconciledAt); err != nil {
		return err
	}

	slog.InfoContext(ctx, "reconciled session participants",
		"session_uid", session.UID,
		"external_meeting_id", task.ExternalMeetingID,
		"participant_count", count,
		"count_source", source,
	)

	if err := s.messageBuilder.SendParticipantsReconciled(ctx, models.ParticipantsReconciledMessage{
		SessionUID:        session.UID,
		ExternalMeetingID: task.ExternalMeetingID,
		ParticipantCount:  count,
		ReconciledAt:      reconciledAt,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to emit participants reconciled event", logging.ErrKey, err,
			"external_meeting_id", task.ExternalMeetingID)
	}

	return nil
}

// countDistinctAttendees fetches the raw attendance records and deduplicates
// them into distinct people. The same person appears once per join/leave
// cycle; records are keyed by email when present, otherwise by display name.
func (s *ParticipantReconciler) countDistinctAttendees(ctx context.Context, externalMeetingID string) (int, error) {
	records, err := s.conferenceClient.GetMeetingAttendance(ctx, externalMeetingID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch meeting attendance",
			logging.ErrKey, err,
			"external_meeting_id", externalMeetingID,
		)
		return 0, err
	}

	distinct := make(map[string]struct{}, len(records))
	for _, record := range records {
		key := utils.CoalesceString(record.Email, record.Name)
		if key == "" {
			continue
		}
		distinct[key] = struct{}{}
	}

	return len(distinct), nil
}

// persistCount writes the reconciled count under optimistic concurrency,
// re-checking the fill-don't-overwrite gate on every attempt.
func (s *ParticipantReconciler) persistCount(ctx context.Context, externalMeetingID string, count int, reconciledAt time.Time) error {
	var lastErr error
	for attempt := 0; attempt < constants.StatusUpdateMaxAttempts; attempt++ {
		session, revision, err := s.sessionRepository.GetWithRevision(ctx, externalMeetingID)
		if err != nil {
			return err
		}

		if !session.NeedsParticipantCount() {
			slog.InfoContext(ctx, "participant count set by concurrent reconciliation",
				"external_meeting_id", externalMeetingID,
				"participant_count", utils.IntValue(session.ParticipantCount),
			)
			return nil
		}

		session.ParticipantCount = utils.IntPtr(count)
		session.ParticipantsReconciledAt = utils.TimePtr(reconciledAt)
		session.UpdatedAt = s.clock.Now()

		err = s.sessionRepository.Update(ctx, session, revision)
		if err == nil {
			return nil
		}
		if domain.GetErrorType(err) != domain.ErrorTypeConflict {
			return err
		}
		lastErr = err
	}

	slog.ErrorContext(ctx, "failed to persist participant count after retries",
		"external_meeting_id", externalMeetingID,
		"participant_count", count,
		logging.ErrKey, lastErr,
		logging.PriorityCritical())
	return lastErr
}
