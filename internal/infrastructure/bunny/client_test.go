// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package bunny

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akademo-live/session-service/internal/domain"
)

func TestFetchRemoteVideo(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/library/lib-42/videos/fetch", r.URL.Path)
		assert.Equal(t, "key-123", r.Header.Get("AccessKey"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "https://zoom.us/rec/download/f1", body["url"])
		assert.Equal(t, "Algebra II", body["title"])
		headers, ok := body["headers"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Bearer dat-123", headers["Authorization"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"guid": "asset-abc", "success": true}`))
	}))
	defer server.Close()

	client := NewClient(Config{LibraryID: "lib-42", APIKey: "key-123", BaseURL: server.URL})

	ingestion, err := client.FetchRemoteVideo(context.Background(),
		"https://zoom.us/rec/download/f1", "Bearer dat-123", "Algebra II")
	require.NoError(t, err)
	assert.Equal(t, "asset-abc", ingestion.AssetID)
	assert.Equal(t, "Algebra II", ingestion.Title)
}

func TestFetchRemoteVideoOmitsEmptyAuthHeader(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_, hasHeaders := body["headers"]
		assert.False(t, hasHeaders)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "asset-xyz"}`))
	}))
	defer server.Close()

	client := NewClient(Config{LibraryID: "lib-42", APIKey: "key-123", BaseURL: server.URL})

	ingestion, err := client.FetchRemoteVideo(context.Background(),
		"https://zoom.us/rec/download/f1", "", "Physics")
	require.NoError(t, err)
	assert.Equal(t, "asset-xyz", ingestion.AssetID)
}

func TestFetchRemoteVideoErrors(t *testing.T) {
	tests := []struct {
		name         string
		status       int
		body         string
		expectedType domain.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, `{"message": "bad key"}`, domain.ErrorTypeAuth},
		{"server error", http.StatusInternalServerError, `{}`, domain.ErrorTypeUnavailable},
		{"bad request", http.StatusBadRequest, `{}`, domain.ErrorTypeInternal},
		{"missing asset id", http.StatusOK, `{"success": true}`, domain.ErrorTypeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(Config{LibraryID: "lib-42", APIKey: "key-123", BaseURL: server.URL})

			_, err := client.FetchRemoteVideo(context.Background(),
				"https://zoom.us/rec/download/f1", "", "Physics")
			require.Error(t, err)
			assert.Equal(t, tt.expectedType, domain.GetErrorType(err))
		})
	}
}

func TestFetchRemoteVideoValidation(t *testing.T) {
	t.Run("missing credentials", func(t *testing.T) {
		client := NewClient(Config{})
		_, err := client.FetchRemoteVideo(context.Background(), "https://example.com/v.mp4", "", "t")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeInternal, domain.GetErrorType(err))
	})

	t.Run("missing source URL", func(t *testing.T) {
		client := NewClient(Config{LibraryID: "lib-42", APIKey: "key-123"})
		_, err := client.FetchRemoteVideo(context.Background(), "", "", "t")
		require.Error(t, err)
		assert.Equal(t, domain.ErrorTypeValidation, domain.GetErrorType(err))
	})
}
