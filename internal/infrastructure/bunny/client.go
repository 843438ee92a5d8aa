// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package bunny implements the Bunny Stream video host client.
package bunny

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

// BaseURL is the base URL for the Bunny Stream API.
const BaseURL = "https://video.bunnycdn.com"

// Config holds the configuration for the Bunny Stream client.
type Config struct {
	LibraryID string
	APIKey    string
	// Optional: override base URL for testing
	BaseURL string
	// Optional: override timeout for HTTP requests
	Timeout time.Duration
}

// Client is the Bunny Stream API client. It only submits fetch jobs: the host
// pulls the recording bytes from the source URL itself, so no video data
// passes through this service.
type Client struct {
	httpClient *http.Client
	config     Config
}

// Ensure that Client implements VideoHostClient.
var _ domain.VideoHostClient = (*Client)(nil)

// NewClient creates a new Bunny Stream client.
func NewClient(config Config) *Client {
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
		config: config,
	}
}

// fetchVideoRequest is the Bunny Stream fetch-job payload. The headers map is
// forwarded by the host when it downloads the source URL.
type fetchVideoRequest struct {
	URL     string            `json:"url"`
	Title   string            `json:"title"`
	Headers map[string]string `json:"headers,omitempty"`
}

// fetchVideoResponse is the Bunny Stream fetch-job response.
type fetchVideoResponse struct {
	GUID    string `json:"guid"`
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FetchRemoteVideo submits a fetch job for the given source URL. When
// authHeaderValue is non-empty it is forwarded as the Authorization header
// the host presents to the source.
func (c *Client) FetchRemoteVideo(ctx context.Context, sourceURL, authHeaderValue, title string) (*domain.FetchIngestion, error) {
	if c.config.LibraryID == "" || c.config.APIKey == "" {
		return nil, domain.NewInternalError("video host credentials not configured")
	}
	if sourceURL == "" {
		return nil, domain.NewValidationError("source URL is required")
	}

	request := fetchVideoRequest{
		URL:   sourceURL,
		Title: title,
	}
	if authHeaderValue != "" {
		request.Headers = map[string]string{
			"Authorization": authHeaderValue,
		}
	}

	jsonBody, err := json.Marshal(request)
	if err != nil {
		return nil, domain.NewInternalError("failed to marshal fetch request", err)
	}

	url := fmt.Sprintf("%s/library/%s/videos/fetch", c.config.BaseURL, c.config.LibraryID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, domain.NewInternalError("failed to create fetch request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("AccessKey", c.config.APIKey)

	slog.DebugContext(ctx, "submitting video fetch job", "title", title)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		slog.ErrorContext(ctx, "video host request failed",
			"duration", duration.String(), logging.ErrKey, err)
		return nil, domain.NewUnavailableError("video host request failed", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, domain.NewInternalError("failed to read video host response", err)
	}

	slog.InfoContext(ctx, "video host request completed",
		"status", resp.StatusCode,
		"duration", duration.String(),
	)

	if resp.StatusCode != http.StatusOK {
		slog.ErrorContext(ctx, "video host error response",
			"status", resp.StatusCode,
			"body", string(body),
			logging.ErrKey, fmt.Errorf("status: %d", resp.StatusCode))
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			return nil, domain.NewAuthError("video host rejected credentials")
		case resp.StatusCode >= http.StatusInternalServerError:
			return nil, domain.NewUnavailableError("video host server error")
		default:
			return nil, domain.NewInternalError(
				fmt.Sprintf("unexpected video host response: status %d", resp.StatusCode))
		}
	}

	var payload fetchVideoResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, domain.NewInternalError("failed to parse video host response", err)
	}

	assetID := payload.GUID
	if assetID == "" {
		assetID = payload.ID
	}
	if assetID == "" {
		return nil, domain.NewInternalError("video host response missing asset identifier")
	}

	return &domain.FetchIngestion{
		AssetID: assetID,
		Title:   title,
	}, nil
}
