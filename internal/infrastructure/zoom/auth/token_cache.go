// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package auth implements Server-to-Server OAuth token management for the
// conference provider API.
package auth

import (
	"context"
	"log/slog"
	"net/url"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/logging"
)

const (
	// DefaultAuthURL is the OAuth token endpoint for Server-to-Server apps.
	DefaultAuthURL = "https://zoom.us/oauth/token"

	// expiryMargin is subtracted from the provider-reported token lifetime so
	// a token is refreshed before it can expire mid-request.
	expiryMargin = 60 * time.Second
)

// Config holds the Server-to-Server OAuth credentials.
type Config struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	// Optional: override auth URL for testing
	AuthURL string
}

// CredentialCache caches a Server-to-Server OAuth access token until shortly
// before its expiry. Concurrent callers that find the cache empty or expired
// share a single token exchange rather than each hitting the provider.
type CredentialCache struct {
	oauthConfig *clientcredentials.Config
	clock       domain.Clock

	mu     sync.RWMutex
	token  string
	expiry time.Time

	group singleflight.Group
}

// NewCredentialCache creates a credential cache for the given account.
func NewCredentialCache(config Config, clock domain.Clock) *CredentialCache {
	if config.AuthURL == "" {
		config.AuthURL = DefaultAuthURL
	}
	if clock == nil {
		clock = domain.RealClock{}
	}

	// Zoom Server-to-Server OAuth requires grant_type=account_credentials
	// and the account ID as form parameters.
	oauthConfig := &clientcredentials.Config{
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		TokenURL:     config.AuthURL,
		EndpointParams: url.Values{
			"grant_type": []string{"account_credentials"},
			"account_id": []string{config.AccountID},
		},
		AuthStyle: oauth2.AuthStyleInParams,
	}

	return &CredentialCache{
		oauthConfig: oauthConfig,
		clock:       clock,
	}
}

// GetToken returns a valid access token, exchanging credentials with the
// provider only when the cached token is missing or about to expire.
func (c *CredentialCache) GetToken(ctx context.Context) (string, error) {
	if token, ok := c.cachedToken(); ok {
		return token, nil
	}

	// The exchange runs detached from the caller's cancellation because its
	// result is shared: one aborted caller must not fail the others in the
	// same flight.
	exchangeCtx := context.WithoutCancel(ctx)
	result, err, shared := c.group.Do("token", func() (any, error) {
		// Re-check under the flight: another caller may have refreshed the
		// cache between our miss and this function running.
		if token, ok := c.cachedToken(); ok {
			return token, nil
		}
		return c.exchange(exchangeCtx)
	})
	if err != nil {
		return "", err
	}
	if shared {
		slog.DebugContext(ctx, "token exchange shared with concurrent caller")
	}

	return result.(string), nil
}

// Invalidate drops the cached token so the next GetToken performs a fresh
// exchange. Called when the provider rejects a token that has not yet hit
// its recorded expiry.
func (c *CredentialCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = ""
	c.expiry = time.Time{}
}

func (c *CredentialCache) cachedToken() (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.token == "" || !c.clock.Now().Before(c.expiry) {
		return "", false
	}
	return c.token, true
}

func (c *CredentialCache) exchange(ctx context.Context) (string, error) {
	token, err := c.oauthConfig.Token(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "OAuth token exchange failed", logging.ErrKey, err)
		return "", domain.NewAuthError("failed to obtain provider access token", err)
	}
	if token.AccessToken == "" {
		return "", domain.NewAuthError("provider returned an empty access token")
	}

	now := c.clock.Now()
	lifetime := token.Expiry.Sub(now)
	expiry := now.Add(lifetime - expiryMargin)

	c.mu.Lock()
	c.token = token.AccessToken
	c.expiry = expiry
	c.mu.Unlock()

	slog.DebugContext(ctx, "obtained provider access token", "expires_in", lifetime.String())

	return token.AccessToken, nil
}
