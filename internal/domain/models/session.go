// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package models

import (
	"time"
)

// SessionStatus is the lifecycle state of a live session.
type SessionStatus string

const (
	SessionStatusScheduled SessionStatus = "scheduled"
	SessionStatusActive    SessionStatus = "active"
	SessionStatusEnded     SessionStatus = "ended"
)

// statusRank orders lifecycle states so that transitions can be checked
// for forward progression. Higher rank means later in the lifecycle.
func statusRank(s SessionStatus) int {
	switch s {
	case SessionStatusScheduled:
		return 0
	case SessionStatusActive:
		return 1
	case SessionStatusEnded:
		return 2
	}
	return -1
}

// LiveSession represents one scheduled, in-progress or finished live class.
type LiveSession struct {
	UID                      string        `json:"uid"`
	ExternalMeetingID        string        `json:"external_meeting_id"` // Conferencing provider meeting ID (unique)
	Title                    string        `json:"title"`
	Status                   SessionStatus `json:"status"`
	StartedAt                *time.Time    `json:"started_at,omitempty"`
	EndedAt                  *time.Time    `json:"ended_at,omitempty"`
	ParticipantCount         *int          `json:"participant_count,omitempty"`
	ParticipantsReconciledAt *time.Time    `json:"participants_reconciled_at,omitempty"`
	RecordingAssetID         *string       `json:"recording_asset_id,omitempty"` // Video host asset ID, set at most once
	JoinURL                  string        `json:"join_url,omitempty"`
	HostStartURL             string        `json:"host_start_url,omitempty"`
	CreatedAt                time.Time     `json:"created_at"`
	UpdatedAt                time.Time     `json:"updated_at"`
}

// CanTransitionTo reports whether moving to the given status is a forward
// lifecycle progression. Transitions to the same or an earlier status are
// not allowed; such events are treated as idempotent duplicates.
func (s *LiveSession) CanTransitionTo(next SessionStatus) bool {
	return statusRank(next) > statusRank(s.Status)
}

// HasRecording reports whether a recording asset has already been attached.
func (s *LiveSession) HasRecording() bool {
	return s.RecordingAssetID != nil && *s.RecordingAssetID != ""
}

// NeedsParticipantCount reports whether the participant count may be filled.
// The count follows a "fill, don't overwrite" policy: only a nil or zero
// value may be replaced.
func (s *LiveSession) NeedsParticipantCount() bool {
	return s.ParticipantCount == nil || *s.ParticipantCount == 0
}

// Tags generates a set of tags for the session used in messaging payloads.
func (s *LiveSession) Tags() []string {
	tags := []string{
		s.UID,
		s.ExternalMeetingID,
		string(s.Status),
	}
	if s.Title != "" {
		tags = append(tags, s.Title)
	}
	return tags
}
