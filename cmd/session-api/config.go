// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/akademo-live/session-service/internal/logging"
)

// flags are the command line flags for the session service.
type flags struct {
	Debug bool
	Port  string
	Bind  string
}

// environment are the environment variables for the session service.
type environment struct {
	Port    string
	NatsURL string
	Zoom    zoomConfig
	Bunny   bunnyConfig
}

// zoomConfig holds the conferencing provider credentials.
type zoomConfig struct {
	AccountID          string
	ClientID           string
	ClientSecret       string
	WebhookSecretToken string
}

// bunnyConfig holds the video host credentials.
type bunnyConfig struct {
	LibraryID string
	APIKey    string
}

// parseFlags parses command line flags for the session service.
func parseFlags(defaultPort string) flags {
	var debug = flag.Bool("d", false, "enable debug logging")
	var port = flag.String("p", defaultPort, "listen port")
	var bind = flag.String("bind", "*", "interface to bind on")

	flag.Usage = func() {
		flag.PrintDefaults()
		os.Exit(2)
	}
	flag.Parse()

	// Based on the debug flag, set the log level environment variable used by
	// [logging.InitStructureLogConfig].
	if *debug {
		err := os.Setenv("LOG_LEVEL", "debug")
		if err != nil {
			slog.With(logging.ErrKey, err).Error("error setting log level")
			os.Exit(1)
		}
	}

	return flags{
		Debug: *debug,
		Port:  *port,
		Bind:  *bind,
	}
}

// parseEnv parses environment variables for the session service. A local
// .env file is loaded first when present.
func parseEnv() environment {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	return environment{
		Port:    port,
		NatsURL: natsURL,
		Zoom:    parseZoomConfig(),
		Bunny:   parseBunnyConfig(),
	}
}

// parseZoomConfig parses the conferencing provider configuration.
func parseZoomConfig() zoomConfig {
	accountID := os.Getenv("ZOOM_ACCOUNT_ID")
	if accountID == "" {
		slog.Error("ZOOM_ACCOUNT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientID := os.Getenv("ZOOM_CLIENT_ID")
	if clientID == "" {
		slog.Error("ZOOM_CLIENT_ID environment variable is required but not set")
		os.Exit(1)
	}

	clientSecret := os.Getenv("ZOOM_CLIENT_SECRET")
	if clientSecret == "" {
		slog.Error("ZOOM_CLIENT_SECRET environment variable is required but not set")
		os.Exit(1)
	}

	webhookSecretToken := os.Getenv("ZOOM_WEBHOOK_SECRET_TOKEN")
	if webhookSecretToken == "" {
		slog.Error("ZOOM_WEBHOOK_SECRET_TOKEN environment variable is required but not set")
		os.Exit(1)
	}

	return zoomConfig{
		AccountID:          accountID,
		ClientID:           clientID,
		ClientSecret:       clientSecret,
		WebhookSecretToken: webhookSecretToken,
	}
}

// parseBunnyConfig parses the video host configuration.
func parseBunnyConfig() bunnyConfig {
	libraryID := os.Getenv("BUNNY_STREAM_LIBRARY_ID")
	if libraryID == "" {
		slog.Error("BUNNY_STREAM_LIBRARY_ID environment variable is required but not set")
		os.Exit(1)
	}

	apiKey := os.Getenv("BUNNY_STREAM_API_KEY")
	if apiKey == "" {
		slog.Error("BUNNY_STREAM_API_KEY environment variable is required but not set")
		os.Exit(1)
	}

	return bunnyConfig{
		LibraryID: libraryID,
		APIKey:    apiKey,
	}
}
