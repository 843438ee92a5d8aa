// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/akademo-live/session-service/internal/domain"
)

// attendancePageSize is the maximum page size the provider accepts for the
// past-meeting participants endpoint.
const attendancePageSize = 300

// getParticipantsResponse is one page of the provider's past-meeting
// participants payload.
type getParticipantsResponse struct {
	NextPageToken string `json:"next_page_token"`
	Participants  []struct {
		ID        string `json:"id"`
		UserID    string `json:"user_id"`
		Name      string `json:"name"`
		UserEmail string `json:"user_email"`
		Duration  int    `json:"duration"`
	} `json:"participants"`
}

// GetMeetingAttendance fetches all raw attendance records for a past meeting,
// following pagination. Records are returned as-is: the same person appears
// once per join/leave cycle and deduplication is the caller's concern.
func (c *Client) GetMeetingAttendance(ctx context.Context, meetingID string) ([]domain.AttendanceRecord, error) {
	var records []domain.AttendanceRecord

	pageToken := ""
	for {
		path := fmt.Sprintf("/past_meetings/%s/participants?page_size=%d",
			url.PathEscape(meetingID), attendancePageSize)
		if pageToken != "" {
			path += "&next_page_token=" + url.QueryEscape(pageToken)
		}

		resp, err := c.doRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			return nil, c.classifyResponse(ctx, resp, "get meeting attendance")
		}

		var page getParticipantsResponse
		if err := decodeResponse(resp, &page); err != nil {
			return nil, err
		}

		for _, p := range page.Participants {
			records = append(records, domain.AttendanceRecord{
				ID:       p.ID,
				UserID:   p.UserID,
				Name:     p.Name,
				Email:    p.UserEmail,
				Duration: p.Duration,
			})
		}

		if page.NextPageToken == "" {
			return records, nil
		}
		pageToken = page.NextPageToken
	}
}
