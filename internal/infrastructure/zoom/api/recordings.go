// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
)

// getRecordingsResponse is the provider's recordings-by-meeting payload.
type getRecordingsResponse struct {
	ID                  any                    `json:"id"`
	Topic               string                 `json:"topic"`
	RecordingFiles      []models.RecordingFile `json:"recording_files"`
	DownloadAccessToken string                 `json:"download_access_token"`
}

// GetMeetingRecordings fetches the recording file listing for a meeting. When
// includeDownloadToken is set, the request asks the provider for an elevated
// download access token alongside the listing.
func (c *Client) GetMeetingRecordings(ctx context.Context, meetingID string, includeDownloadToken bool) (*domain.MeetingRecordings, error) {
	path := fmt.Sprintf("/meetings/%s/recordings", url.PathEscape(meetingID))
	if includeDownloadToken {
		path += "?include_fields=download_access_token"
	}

	resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyResponse(ctx, resp, "get meeting recordings")
	}

	var payload getRecordingsResponse
	if err := decodeResponse(resp, &payload); err != nil {
		return nil, err
	}

	return &domain.MeetingRecordings{
		MeetingID:           meetingID,
		Topic:               payload.Topic,
		RecordingFiles:      payload.RecordingFiles,
		DownloadAccessToken: payload.DownloadAccessToken,
	}, nil
}
