// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
)

// MockSessionRepository is an in-memory implementation of
// domain.SessionRepository for tests. It mirrors the NATS KV revision
// semantics so optimistic-concurrency paths can be exercised without a
// running server.
type MockSessionRepository struct {
	mu        sync.RWMutex
	sessions  map[string]*models.LiveSession
	revisions map[string]uint64
}

// NewMockSessionRepository creates a new in-memory sessions repository.
func NewMockSessionRepository() *MockSessionRepository {
	return &MockSessionRepository{
		sessions:  make(map[string]*models.LiveSession),
		revisions: make(map[string]uint64),
	}
}

func (m *MockSessionRepository) Create(_ context.Context, session *models.LiveSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if session.ExternalMeetingID == "" {
		return domain.NewValidationError("external meeting ID is required")
	}

	key := session.ExternalMeetingID
	copied := *session
	m.sessions[key] = &copied
	m.revisions[key]++
	return nil
}

func (m *MockSessionRepository) Exists(_ context.Context, externalMeetingID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.sessions[externalMeetingID]
	return ok, nil
}

func (m *MockSessionRepository) Get(ctx context.Context, externalMeetingID string) (*models.LiveSession, error) {
	session, _, err := m.GetWithRevision(ctx, externalMeetingID)
	return session, err
}

func (m *MockSessionRepository) GetWithRevision(_ context.Context, externalMeetingID string) (*models.LiveSession, uint64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, ok := m.sessions[externalMeetingID]
	if !ok {
		return nil, 0, domain.NewNotFoundError(
			fmt.Sprintf("session with key '%s' not found", externalMeetingID))
	}

	copied := *session
	return &copied, m.revisions[externalMeetingID], nil
}

func (m *MockSessionRepository) Update(_ context.Context, session *models.LiveSession, revision uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := session.ExternalMeetingID
	if _, ok := m.sessions[key]; !ok {
		return domain.NewNotFoundError("session not found")
	}
	if m.revisions[key] != revision {
		return domain.NewConflictError("session has been modified")
	}

	copied := *session
	m.sessions[key] = &copied
	m.revisions[key]++
	return nil
}

func (m *MockSessionRepository) ListAll(_ context.Context) ([]*models.LiveSession, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sessions := make([]*models.LiveSession, 0, len(m.sessions))
	for _, session := range m.sessions {
		copied := *session
		sessions = append(sessions, &copied)
	}
	return sessions, nil
}
