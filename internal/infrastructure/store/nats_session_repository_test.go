// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
)

// fakeKVEntry implements jetstream.KeyValueEntry for tests.
type fakeKVEntry struct {
	key      string
	value    []byte
	revision uint64
}

func (e *fakeKVEntry) Bucket() string                  { return KVStoreNameSessions }
func (e *fakeKVEntry) Key() string                     { return e.key }
func (e *fakeKVEntry) Value() []byte                   { return e.value }
func (e *fakeKVEntry) Revision() uint64                { return e.revision }
func (e *fakeKVEntry) Created() time.Time              { return time.Time{} }
func (e *fakeKVEntry) Delta() uint64                   { return 0 }
func (e *fakeKVEntry) Operation() jetstream.KeyValueOp { return jetstream.KeyValuePut }

// fakeKeyLister implements jetstream.KeyLister for tests.
type fakeKeyLister struct {
	keys []string
}

func (l *fakeKeyLister) Keys() <-chan string {
	ch := make(chan string, len(l.keys))
	for _, key := range l.keys {
		ch <- key
	}
	close(ch)
	return ch
}

func (l *fakeKeyLister) Stop() error { return nil }

// fakeKeyValue is an in-memory INatsKeyValue backed by a map.
type fakeKeyValue struct {
	entries   map[string]*fakeKVEntry
	updateErr error
}

func newFakeKeyValue() *fakeKeyValue {
	return &fakeKeyValue{entries: make(map[string]*fakeKVEntry)}
}

func (kv *fakeKeyValue) ListKeys(_ context.Context, _ ...jetstream.WatchOpt) (jetstream.KeyLister, error) {
	keys := make([]string, 0, len(kv.entries))
	for key := range kv.entries {
		keys = append(keys, key)
	}
	return &fakeKeyLister{keys: keys}, nil
}

func (kv *fakeKeyValue) Get(_ context.Context, key string) (jetstream.KeyValueEntry, error) {
	entry, ok := kv.entries[key]
	if !ok {
		return nil, jetstream.ErrKeyNotFound
	}
	return entry, nil
}

func (kv *fakeKeyValue) Put(_ context.Context, key string, value []byte) (uint64, error) {
	revision := uint64(1)
	if existing, ok := kv.entries[key]; ok {
		revision = existing.revision + 1
	}
	kv.entries[key] = &fakeKVEntry{key: key, value: value, revision: revision}
	return revision, nil
}

func (kv *fakeKeyValue) Update(_ context.Context, key string, value []byte, revision uint64) (uint64, error) {
	if kv.updateErr != nil {
		return 0, kv.updateErr
	}
	existing, ok := kv.entries[key]
	if !ok {
		return 0, jetstream.ErrKeyNotFound
	}
	if existing.revision != revision {
		return 0, errors.New("nats: wrong last sequence: 4")
	}
	kv.entries[key] = &fakeKVEntry{key: key, value: value, revision: revision + 1}
	return revision + 1, nil
}

func (kv *fakeKeyValue) Delete(_ context.Context, key string, _ ...jetstream.KVDeleteOpt) error {
	delete(kv.entries, key)
	return nil
}

func testSession(externalMeetingID string) *models.LiveSession {
	return &models.LiveSession{
		UID:               "uid-" + externalMeetingID,
		ExternalMeetingID: externalMeetingID,
		Title:             "Algebra II",
		Status:            models.SessionStatusScheduled,
	}
}

func TestSessionRepositoryCreateAndGet(t *testing.T) {
	repo := NewNatsSessionRepository(newFakeKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("88213456789")))

	session, revision, err := repo.GetWithRevision(ctx, "88213456789")
	require.NoError(t, err)
	assert.Equal(t, uint64(1), revision)
	assert.Equal(t, "uid-88213456789", session.UID)
	assert.Equal(t, models.SessionStatusScheduled, session.Status)

	exists, err := repo.Exists(ctx, "88213456789")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.Exists(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSessionRepositoryCreateRequiresMeetingID(t *testing.T) {
	repo := NewNatsSessionRepository(newFakeKeyValue())

	err := repo.Create(context.Background(), &models.LiveSession{UID: "uid-1"})
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
}

func TestSessionRepositoryGetNotFound(t *testing.T) {
	repo := NewNatsSessionRepository(newFakeKeyValue())

	_, err := repo.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeNotFound, domain.GetErrorType(err))
}

func TestSessionRepositoryUpdate(t *testing.T) {
	repo := NewNatsSessionRepository(newFakeKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("88213456789")))

	session, revision, err := repo.GetWithRevision(ctx, "88213456789")
	require.NoError(t, err)

	session.Status = models.SessionStatusActive
	require.NoError(t, repo.Update(ctx, session, revision))

	updated, newRevision, err := repo.GetWithRevision(ctx, "88213456789")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusActive, updated.Status)
	assert.Equal(t, revision+1, newRevision)
}

func TestSessionRepositoryUpdateStaleRevisionConflicts(t *testing.T) {
	repo := NewNatsSessionRepository(newFakeKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("88213456789")))

	session, revision, err := repo.GetWithRevision(ctx, "88213456789")
	require.NoError(t, err)

	session.Status = models.SessionStatusActive
	require.NoError(t, repo.Update(ctx, session, revision))

	// A second writer holding the old revision must not win.
	session.Status = models.SessionStatusEnded
	err = repo.Update(ctx, session, revision)
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeConflict, domain.GetErrorType(err))
}

func TestSessionRepositoryListAll(t *testing.T) {
	repo := NewNatsSessionRepository(newFakeKeyValue())
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testSession("1")))
	require.NoError(t, repo.Create(ctx, testSession("2")))

	sessions, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionRepositoryNotReady(t *testing.T) {
	repo := NewNatsSessionRepository(nil)

	_, err := repo.Get(context.Background(), "88213456789")
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeUnavailable, domain.GetErrorType(err))
}
