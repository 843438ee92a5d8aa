// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademo-live/session-service/internal/domain"
)

// testClock is a mutable fake clock.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTokenServer(t *testing.T, exchanges *atomic.Int64, status int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		exchanges.Add(1)

		require.NoError(t, r.ParseForm())
		assert.Equal(t, "account_credentials", r.Form.Get("grant_type"))
		assert.Equal(t, "test-account", r.Form.Get("account_id"))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status == http.StatusOK {
			_, _ = w.Write([]byte(`{"access_token":"tok-abc","token_type":"bearer","expires_in":3600}`))
		} else {
			_, _ = w.Write([]byte(`{"reason":"invalid client"}`))
		}
	}))
}

func newTestCache(serverURL string, clock domain.Clock) *CredentialCache {
	return NewCredentialCache(Config{
		AccountID:    "test-account",
		ClientID:     "test-client",
		ClientSecret: "test-secret",
		AuthURL:      serverURL,
	}, clock)
}

func TestGetTokenCachesUntilExpiry(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, http.StatusOK)
	defer server.Close()

	clock := &testClock{now: time.Now().UTC()}
	cache := newTestCache(server.URL, clock)

	token, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, int64(1), exchanges.Load())

	// Second call is served from the cache.
	token, err = cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", token)
	assert.Equal(t, int64(1), exchanges.Load())

	// Within the safety margin the token counts as expired.
	clock.Advance(3600*time.Second - 30*time.Second)
	_, err = cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestGetTokenExpiryFollowsInjectedClock(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, http.StatusOK)
	defer server.Close()

	// The injected clock runs five minutes behind the wall clock. The cache
	// horizon comes out of the injected clock alone, so the token stays valid
	// for the full lifetime plus the skew in injected-clock time.
	clock := &testClock{now: time.Now().UTC().Add(-5 * time.Minute)}
	cache := newTestCache(server.URL, clock)

	_, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(1), exchanges.Load())

	clock.Advance(3600*time.Second + 5*time.Minute - 90*time.Second)
	_, err = cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), exchanges.Load())

	clock.Advance(60 * time.Second)
	_, err = cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestGetTokenCoalescesConcurrentCallers(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, http.StatusOK)
	defer server.Close()

	clock := &testClock{now: time.Now().UTC()}
	cache := newTestCache(server.URL, clock)

	const callers = 10
	var wg sync.WaitGroup
	errs := make([]error, callers)
	tokens := make([]string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = cache.GetToken(context.Background())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Equal(t, "tok-abc", tokens[i])
	}
	assert.Equal(t, int64(1), exchanges.Load(), "concurrent callers must share one exchange")
}

func TestGetTokenExchangeFailure(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, http.StatusUnauthorized)
	defer server.Close()

	cache := newTestCache(server.URL, &testClock{now: time.Now().UTC()})

	_, err := cache.GetToken(context.Background())
	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeAuth, domain.GetErrorType(err))
}

func TestInvalidateForcesRefresh(t *testing.T) {
	var exchanges atomic.Int64
	server := newTokenServer(t, &exchanges, http.StatusOK)
	defer server.Close()

	cache := newTestCache(server.URL, &testClock{now: time.Now().UTC()})

	_, err := cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), exchanges.Load())

	cache.Invalidate()

	_, err = cache.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(2), exchanges.Load())
}
