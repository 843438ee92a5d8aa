// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/constants"
	"github.com/akademo-live/session-service/pkg/utils"
)

// IngestionSubmitter hands a located recording to the video host as a fetch
// job and records the resulting asset on the session. The recording asset is
// attached at most once: a session that already carries one turns any further
// ingestion attempt into a no-op, which makes task redelivery safe.
type IngestionSubmitter struct {
	sessionRepository domain.SessionRepository
	recordingLocator  *RecordingLocator
	videoHostClient   domain.VideoHostClient
	messageBuilder    domain.MessageBuilder
	clock             domain.Clock
}

// NewIngestionSubmitter creates a new IngestionSubmitter.
func NewIngestionSubmitter(
	sessionRepository domain.SessionRepository,
	recordingLocator *RecordingLocator,
	videoHostClient domain.VideoHostClient,
	messageBuilder domain.MessageBuilder,
	clock domain.Clock,
) *IngestionSubmitter {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &IngestionSubmitter{
		sessionRepository: sessionRepository,
		recordingLocator:  recordingLocator,
		videoHostClient:   videoHostClient,
		messageBuilder:    messageBuilder,
		clock:             clock,
	}
}

// ServiceReady checks if the service is ready to process requests.
func (s *IngestionSubmitter) ServiceReady() bool {
	return s.sessionRepository != nil && s.recordingLocator != nil &&
		s.videoHostClient != nil && s.messageBuilder != nil
}

// IngestRecording resolves the recording for the task and submits it to the
// video host, then persists the asset ID on the session.
func (s *IngestionSubmitter) IngestRecording(ctx context.Context, task models.IngestRecordingTask) error {
	session, err := s.sessionRepository.Get(ctx, task.ExternalMeetingID)
	if err != nil {
		return err
	}

	// Idempotency guard: the asset is set at most once.
	if session.HasRecording() {
		slog.InfoContext(ctx, "session already has a recording asset, skipping ingestion",
			"external_meeting_id", task.ExternalMeetingID,
			"recording_asset_id", utils.StringValue(session.RecordingAssetID),
		)
		return nil
	}

	located, err := s.recordingLocator.Locate(ctx, task)
	if err != nil {
		return err
	}

	title := utils.CoalesceString(session.Title, located.Topic, task.ExternalMeetingID)

	ingestion, err := s.videoHostClient.FetchRemoteVideo(ctx, located.File.DownloadURL, located.AuthHeader, title)
	if err != nil {
		slog.ErrorContext(ctx, "video host rejected fetch job",
			logging.ErrKey, err,
			"external_meeting_id", task.ExternalMeetingID,
			logging.PriorityCritical())
		return err
	}

	if err := s.persistAssetID(ctx, task.ExternalMeetingID, ingestion.AssetID); err != nil {
		return err
	}

	slog.InfoContext(ctx, "recording handed off to video host",
		"session_uid", session.UID,
		"external_meeting_id", task.ExternalMeetingID,
		"recording_asset_id", ingestion.AssetID,
		"file_source", located.FileSource,
		"auth_source", located.AuthSource,
	)

	if err := s.messageBuilder.SendRecordingIngested(ctx, models.RecordingIngestedMessage{
		SessionUID:        session.UID,
		ExternalMeetingID: task.ExternalMeetingID,
		RecordingAssetID:  ingestion.AssetID,
		SourceTitle:       title,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to emit recording ingested event", logging.ErrKey, err,
			"external_meeting_id", task.ExternalMeetingID)
	}

	return nil
}

// persistAssetID attaches the asset ID to the session under optimistic
// concurrency. A concurrent ingestion that already attached an asset wins;
// this one logs and stands down rather than overwriting it.
func (s *IngestionSubmitter) persistAssetID(ctx context.Context, externalMeetingID, assetID string) error {
	var lastErr error
	for attempt := 0; attempt < constants.StatusUpdateMaxAttempts; attempt++ {
		session, revision, err := s.sessionRepository.GetWithRevision(ctx, externalMeetingID)
		if err != nil {
			return err
		}

		if session.HasRecording() {
			slog.WarnContext(ctx, "recording asset already attached by concurrent ingestion",
				"external_meeting_id", externalMeetingID,
				"existing_asset_id", utils.StringValue(session.RecordingAssetID),
				"orphaned_asset_id", assetID,
			)
			return nil
		}

		session.RecordingAssetID = utils.StringPtr(assetID)
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

	slog.ErrorContext(ctx, "failed to persist recording asset after retries",
		"external_meeting_id", externalMeetingID,
		"recording_asset_id", assetID,
		logging.ErrKey, lastErr,
		logging.PriorityCritical())
	return lastErr
}
