// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/mocks"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/infrastructure/store"
	"github.com/akademo-live/session-service/pkg/utils"
)

type submitterFixture struct {
	repo       *store.MockSessionRepository
	conference *mocks.MockConferenceClient
	tokens     *mocks.MockTokenProvider
	videoHost  *mocks.MockVideoHostClient
	builder    *mocks.MockMessageBuilder
	submitter  *IngestionSubmitter
}

func newSubmitterFixture() *submitterFixture {
	f := &submitterFixture{
		repo:       store.NewMockSessionRepository(),
		conference: new(mocks.MockConferenceClient),
		tokens:     new(mocks.MockTokenProvider),
		videoHost:  new(mocks.MockVideoHostClient),
		builder:    new(mocks.MockMessageBuilder),
	}
	f.conference.On("GetMeetingRecordings", mock.Anything, "88213456789", true).
		Return(&domain.MeetingRecordings{
			MeetingID:           "88213456789",
			DownloadAccessToken: "dat-123",
			RecordingFiles:      []models.RecordingFile{mp4File("f1", "shared_screen_with_speaker_view")},
		}, nil).Maybe()
	f.submitter = NewIngestionSubmitter(
		f.repo,
		NewRecordingLocator(f.conference, f.tokens),
		f.videoHost,
		f.builder,
		domain.RealClock{},
	)
	return f
}

func ingestTask() models.IngestRecordingTask {
	return models.IngestRecordingTask{
		ExternalMeetingID: "88213456789",
		Topic:             "Provider Topic",
		RecordingFiles:    []models.RecordingFile{mp4File("f1", "shared_screen_with_speaker_view")},
		DownloadToken:     "webhook-token",
	}
}

func TestIngestRecording(t *testing.T) {
	f := newSubmitterFixture()
	seedSession(t, f.repo, models.SessionStatusEnded)

	f.videoHost.On("FetchRemoteVideo", mock.Anything,
		"https://zoom.us/rec/download/f1", "Bearer dat-123", "Algebra II").
		Return(&domain.FetchIngestion{AssetID: "asset-abc", Title: "Algebra II"}, nil)
	f.builder.On("SendRecordingIngested", mock.Anything, mock.MatchedBy(func(msg models.RecordingIngestedMessage) bool {
		return msg.RecordingAssetID == "asset-abc" && msg.ExternalMeetingID == "88213456789"
	})).Return(nil)

	require.NoError(t, f.submitter.IngestRecording(context.Background(), ingestTask()))

	session, err := f.repo.Get(context.Background(), "88213456789")
	require.NoError(t, err)
	assert.Equal(t, "asset-abc", utils.StringValue(session.RecordingAssetID))
	f.videoHost.AssertExpectations(t)
	f.builder.AssertExpectations(t)
}

func TestIngestRecordingTitleFallsBackToTopic(t *testing.T) {
	f := newSubmitterFixture()
	session := seedSession(t, f.repo, models.SessionStatusEnded)
	session.Title = ""
	_, revision, err := f.repo.GetWithRevision(context.Background(), session.ExternalMeetingID)
	require.NoError(t, err)
	require.NoError(t, f.repo.Update(context.Background(), session, revision))

	f.videoHost.On("FetchRemoteVideo", mock.Anything, mock.Anything, mock.Anything, "Provider Topic").
		Return(&domain.FetchIngestion{AssetID: "asset-abc"}, nil)
	f.builder.On("SendRecordingIngested", mock.Anything, mock.Anything).Return(nil)

	require.NoError(t, f.submitter.IngestRecording(context.Background(), ingestTask()))
	f.videoHost.AssertExpectations(t)
}

func TestIngestRecordingIdempotentSkip(t *testing.T) {
	f := newSubmitterFixture()
	session := seedSession(t, f.repo, models.SessionStatusEnded)
	session.RecordingAssetID = utils.StringPtr("asset-existing")
	_, revision, err := f.repo.GetWithRevision(context.Background(), session.ExternalMeetingID)
	require.NoError(t, err)
	require.NoError(t, f.repo.Update(context.Background(), session, revision))

	require.NoError(t, f.submitter.IngestRecording(context.Background(), ingestTask()))

	f.videoHost.AssertNotCalled(t, "FetchRemoteVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	stored, err := f.repo.Get(context.Background(), "88213456789")
	require.NoError(t, err)
	assert.Equal(t, "asset-existing", utils.StringValue(stored.RecordingAssetID))
}

func TestIngestRecordingUnknownSession(t *testing.T) {
	f := newSubmitterFixture()

	err := f.submitter.IngestRecording(context.Background(), ingestTask())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestIngestRecordingVideoHostFailure(t *testing.T) {
	f := newSubmitterFixture()
	seedSession(t, f.repo, models.SessionStatusEnded)

	f.videoHost.On("FetchRemoteVideo", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.NewUnavailableError("video host server error"))

	err := f.submitter.IngestRecording(context.Background(), ingestTask())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))

	session, err := f.repo.Get(context.Background(), "88213456789")
	require.NoError(t, err)
	assert.False(t, session.HasRecording())
}

func TestPersistAssetIDStandsDownOnConcurrentAttach(t *testing.T) {
	f := newSubmitterFixture()
	session := seedSession(t, f.repo, models.SessionStatusEnded)
	session.RecordingAssetID = utils.StringPtr("asset-winner")
	_, revision, err := f.repo.GetWithRevision(context.Background(), session.ExternalMeetingID)
	require.NoError(t, err)
	require.NoError(t, f.repo.Update(context.Background(), session, revision))

	require.NoError(t, f.submitter.persistAssetID(context.Background(), "88213456789", "asset-loser"))

	stored, err := f.repo.Get(context.Background(), "88213456789")
	require.NoError(t, err)
	assert.Equal(t, "asset-winner", utils.StringValue(stored.RecordingAssetID))
}
