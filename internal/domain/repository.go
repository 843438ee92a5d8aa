// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package domain

import (
	"context"

	"github.com/akademo-live/session-service/internal/domain/models"
)

// SessionRepository defines the interface for live session storage.
// This interface can be implemented by different storage backends (NATS KV,
// PostgreSQL, etc.). All mutations are revision-conditioned so that status
// transitions stay monotonic when two webhook deliveries for the same
// meeting race.
type SessionRepository interface {
	Create(ctx context.Context, session *models.LiveSession) error
	Exists(ctx context.Context, externalMeetingID string) (bool, error)

	Get(ctx context.Context, externalMeetingID string) (*models.LiveSession, error)
	GetWithRevision(ctx context.Context, externalMeetingID string) (*models.LiveSession, uint64, error)
	Update(ctx context.Context, session *models.LiveSession, revision uint64) error

	ListAll(ctx context.Context) ([]*models.LiveSession, error)
}
