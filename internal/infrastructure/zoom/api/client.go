// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package api implements the conference provider REST client.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/constants"
)

const (
	// BaseURL is the base URL for the provider REST API.
	BaseURL = "https://api.zoom.us/v2"
)

// Config holds the configuration for the provider API client.
type Config struct {
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Client is the provider REST API client. Requests are single-attempt with a
// bounded timeout: the callers run inside webhook-triggered flows where
// failing fast and leaving a log trail beats stalling the pipeline.
type Client struct {
	httpClient    *http.Client
	config        Config
	tokenProvider domain.TokenProvider
}

// Ensure that Client implements ConferenceClient.
var _ domain.ConferenceClient = (*Client)(nil)

// NewClient creates a new provider API client.
func NewClient(config Config, tokenProvider domain.TokenProvider) *Client {
	if config.BaseURL == "" {
		config.BaseURL = BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = constants.ProviderRequestTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		config:        config,
		tokenProvider: tokenProvider,
	}
}

// doRequest performs an authenticated HTTP request to the provider API.
func (c *Client) doRequest(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, domain.NewInternalError("failed to marshal request body", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, bodyReader)
	if err != nil {
		return nil, domain.NewInternalError("failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	slog.DebugContext(ctx, "making provider API request", "method", method, "path", path)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		slog.ErrorContext(ctx, "provider API request failed",
			"method", method,
			"path", path,
			"duration", duration.String(),
			logging.ErrKey, err)
		return nil, domain.NewUnavailableError("provider API request failed", err)
	}

	slog.InfoContext(ctx, "provider API request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration", duration.String(),
	)

	return resp, nil
}

// classifyResponse maps a non-2xx provider response to a domain error and
// closes the body.
func (c *Client) classifyResponse(ctx context.Context, resp *http.Response, operation string) error {
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()

	slog.ErrorContext(ctx, "provider API error response",
		"operation", operation,
		"status", resp.StatusCode,
		"body", string(body),
		logging.ErrKey, fmt.Errorf("status: %d", resp.StatusCode))

	apiErr := parseErrorResponse(body)
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return domain.NewNotFoundError(fmt.Sprintf("%s: resource not found", operation), apiErr)
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return domain.NewAuthError(fmt.Sprintf("%s: provider rejected credentials", operation), apiErr)
	case resp.StatusCode == http.StatusTooManyRequests:
		return domain.NewUnavailableError(fmt.Sprintf("%s: provider rate limit exceeded", operation), apiErr)
	case resp.StatusCode >= http.StatusInternalServerError:
		return domain.NewUnavailableError(fmt.Sprintf("%s: provider server error", operation), apiErr)
	default:
		return domain.NewInternalError(fmt.Sprintf("%s: unexpected provider response", operation), apiErr)
	}
}

// decodeResponse unmarshals a 2xx response body and closes it.
func decodeResponse(resp *http.Response, out any) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.NewInternalError("failed to read provider response", err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return domain.NewInternalError("failed to parse provider response", err)
	}
	return nil
}

// parseErrorResponse attempts to parse a provider API error response.
func parseErrorResponse(body []byte) error {
	var errResp struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Message != "" {
		return fmt.Errorf("provider API error (code %d): %s", errResp.Code, errResp.Message)
	}
	return fmt.Errorf("provider API error: %s", string(body))
}
