// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
)

// NatsSessionRepository is the NATS KV store backed repository for live
// sessions. Records are keyed by the external meeting ID so webhook handlers
// can address them directly from the payload.
type NatsSessionRepository struct {
	*NatsBaseRepository[models.LiveSession]
}

// NewNatsSessionRepository creates a new NATS KV sessions repository.
func NewNatsSessionRepository(kvStore INatsKeyValue) *NatsSessionRepository {
	return &NatsSessionRepository{
		NatsBaseRepository: NewNatsBaseRepository[models.LiveSession](kvStore, "session"),
	}
}

func (s *NatsSessionRepository) Create(ctx context.Context, session *models.LiveSession) error {
	if session.ExternalMeetingID == "" {
		return domain.NewValidationError("external meeting ID is required")
	}
	return s.NatsBaseRepository.Create(ctx, session.ExternalMeetingID, session)
}

func (s *NatsSessionRepository) Exists(ctx context.Context, externalMeetingID string) (bool, error) {
	return s.NatsBaseRepository.Exists(ctx, externalMeetingID)
}

func (s *NatsSessionRepository) Get(ctx context.Context, externalMeetingID string) (*models.LiveSession, error) {
	return s.NatsBaseRepository.Get(ctx, externalMeetingID)
}

func (s *NatsSessionRepository) GetWithRevision(ctx context.Context, externalMeetingID string) (*models.LiveSession, uint64, error) {
	return s.NatsBaseRepository.GetWithRevision(ctx, externalMeetingID)
}

func (s *NatsSessionRepository) Update(ctx context.Context, session *models.LiveSession, revision uint64) error {
	if session.ExternalMeetingID == "" {
		return domain.NewValidationError("external meeting ID is required")
	}
	return s.NatsBaseRepository.Update(ctx, session.ExternalMeetingID, session, revision)
}

func (s *NatsSessionRepository) ListAll(ctx context.Context) ([]*models.LiveSession, error) {
	return s.NatsBaseRepository.ListEntities(ctx)
}
