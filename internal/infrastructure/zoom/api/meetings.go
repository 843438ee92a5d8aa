// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/pkg/constants"
)

// meetingTypeScheduled is the provider's meeting type for a scheduled
// (non-recurring) meeting.
const meetingTypeScheduled = 2

// createMeetingRequest is the provider's create-meeting payload.
type createMeetingRequest struct {
	Topic    string                `json:"topic"`
	Type     int                   `json:"type"`
	Duration int                   `json:"duration"`
	Settings createMeetingSettings `json:"settings"`
}

type createMeetingSettings struct {
	AutoRecording  string `json:"auto_recording"`
	JoinBeforeHost bool   `json:"join_before_host"`
	MuteUponEntry  bool   `json:"mute_upon_entry"`
}

// createMeetingResponse is the provider's create-meeting response.
type createMeetingResponse struct {
	ID       json.Number `json:"id"`
	UUID     string      `json:"uuid"`
	Topic    string      `json:"topic"`
	JoinURL  string      `json:"join_url"`
	StartURL string      `json:"start_url"`
	Password string      `json:"password"`
}

// CreateMeeting creates a scheduled provider meeting with cloud recording
// enabled so the recording.completed webhook fires when the host ends the
// session.
func (c *Client) CreateMeeting(ctx context.Context, topic string, durationMinutes int) (*domain.ScheduledMeeting, error) {
	if durationMinutes <= 0 {
		durationMinutes = constants.DefaultSessionDurationMinutes
	}

	request := createMeetingRequest{
		Topic:    topic,
		Type:     meetingTypeScheduled,
		Duration: durationMinutes,
		Settings: createMeetingSettings{
			AutoRecording:  "cloud",
			JoinBeforeHost: false,
			MuteUponEntry:  true,
		},
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/users/me/meetings", request)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, c.classifyResponse(ctx, resp, "create meeting")
	}

	var payload createMeetingResponse
	if err := decodeResponse(resp, &payload); err != nil {
		return nil, err
	}

	return &domain.ScheduledMeeting{
		ID:           payload.ID.String(),
		UUID:         payload.UUID,
		Topic:        payload.Topic,
		JoinURL:      payload.JoinURL,
		HostStartURL: payload.StartURL,
		Passcode:     payload.Password,
	}, nil
}
