// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/utils"
)

// Preferred recording view types, best first. The combined screen-plus-speaker
// view is what students actually want to rewatch.
const (
	recordingTypeSharedScreenSpeaker = "shared_screen_with_speaker_view"
	recordingTypeSpeakerView         = "speaker_view"
	videoFileType                    = "MP4"
)

// LocatedRecording is a downloadable recording resolved for ingestion.
type LocatedRecording struct {
	File models.RecordingFile
	// Topic is the provider-side meeting topic, used to title the asset.
	Topic string
	// AuthHeader is the Authorization header value the video host must
	// present when downloading the file. Empty means the URL needs no auth.
	AuthHeader string
	// FileSource and AuthSource name the policies that resolved the file and
	// the credential, for log correlation.
	FileSource string
	AuthSource string
}

// RecordingLocator resolves which recording file of an ended session to
// ingest and which credential authorizes its download.
type RecordingLocator struct {
	conferenceClient domain.ConferenceClient
	tokenProvider    domain.TokenProvider
}

// NewRecordingLocator creates a new RecordingLocator.
func NewRecordingLocator(conferenceClient domain.ConferenceClient, tokenProvider domain.TokenProvider) *RecordingLocator {
	return &RecordingLocator{
		conferenceClient: conferenceClient,
		tokenProvider:    tokenProvider,
	}
}

// selectRecordingFile picks the preferred playable file from a listing.
func selectRecordingFile(files []models.RecordingFile) (models.RecordingFile, string, bool) {
	byType := func(recordingType string) func() (models.RecordingFile, bool) {
		return func() (models.RecordingFile, bool) {
			for _, f := range files {
				if strings.EqualFold(f.FileType, videoFileType) && f.RecordingType == recordingType && f.DownloadURL != "" {
					return f, true
				}
			}
			return models.RecordingFile{}, false
		}
	}

	return utils.ResolveFirst([]utils.Policy[models.RecordingFile]{
		{Name: recordingTypeSharedScreenSpeaker, Resolve: byType(recordingTypeSharedScreenSpeaker)},
		{Name: recordingTypeSpeakerView, Resolve: byType(recordingTypeSpeakerView)},
		{Name: "any_mp4", Resolve: func() (models.RecordingFile, bool) {
			for _, f := range files {
				if strings.EqualFold(f.FileType, videoFileType) && f.DownloadURL != "" {
					return f, true
				}
			}
			return models.RecordingFile{}, false
		}},
	})
}

// Locate resolves the recording for the given ingestion task. The provider
// listing is always refreshed: it carries fresher download URLs than the
// webhook payload plus the elevated download access token. The
// webhook-supplied listing is the fallback when the refresh fails or has no
// playable file.
func (l *RecordingLocator) Locate(ctx context.Context, task models.IngestRecordingTask) (*LocatedRecording, error) {
	topic := task.Topic
	downloadAccessToken := ""

	file, fileSource, found := selectRecordingFile(task.RecordingFiles)

	recordings, err := l.conferenceClient.GetMeetingRecordings(ctx, task.ExternalMeetingID, true)
	switch {
	case err != nil && !found:
		slog.ErrorContext(ctx, "failed to refresh recording listing",
			logging.ErrKey, err,
			"external_meeting_id", task.ExternalMeetingID,
		)
		return nil, err
	case err != nil:
		slog.WarnContext(ctx, "failed to refresh recording listing, using webhook listing",
			logging.ErrKey, err,
			"external_meeting_id", task.ExternalMeetingID,
		)
	default:
		topic = utils.CoalesceString(recordings.Topic, topic)
		if freshFile, freshSource, ok := selectRecordingFile(recordings.RecordingFiles); ok {
			// The access token authorizes the refreshed URLs, so it is only
			// adopted together with a refreshed file.
			file, fileSource, found = freshFile, freshSource, true
			downloadAccessToken = recordings.DownloadAccessToken
		}
	}

	if !found {
		return nil, domain.NewNotFoundError("no playable recording file for meeting " + task.ExternalMeetingID)
	}

	authHeader, authSource, err := l.resolveAuthorization(ctx, downloadAccessToken, task.DownloadToken)
	if err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "located recording for ingestion",
		"external_meeting_id", task.ExternalMeetingID,
		"recording_file_id", file.ID,
		"file_source", fileSource,
		"auth_source", authSource,
	)

	return &LocatedRecording{
		File:       file,
		Topic:      topic,
		AuthHeader: authHeader,
		FileSource: fileSource,
		AuthSource: authSource,
	}, nil
}

// resolveAuthorization picks the download credential in precedence order:
// the elevated download access token from the recordings listing, then an
// OAuth bearer token, then the webhook-embedded download token.
func (l *RecordingLocator) resolveAuthorization(ctx context.Context, downloadAccessToken, webhookToken string) (string, string, error) {
	var tokenErr error
	header, source, ok := utils.ResolveFirst([]utils.Policy[string]{
		{Name: "download_access_token", Resolve: func() (string, bool) {
			return "Bearer " + downloadAccessToken, downloadAccessToken != ""
		}},
		{Name: "oauth_bearer", Resolve: func() (string, bool) {
			token, err := l.tokenProvider.GetToken(ctx)
			if err != nil {
				tokenErr = err
				return "", false
			}
			return "Bearer " + token, true
		}},
		{Name: "webhook_download_token", Resolve: func() (string, bool) {
			return "Bearer " + webhookToken, webhookToken != ""
		}},
	})
	if ok {
		return header, source, nil
	}

	if tokenErr != nil {
		return "", "", tokenErr
	}
	return "", "", domain.NewAuthError("no credential available for recording download")
}
