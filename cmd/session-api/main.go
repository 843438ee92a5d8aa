// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package main is the session service API that receives conference webhook
// events, drives the live session lifecycle, and hands finished recordings
// to the video host.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/handlers"
	"github.com/akademo-live/session-service/internal/infrastructure/bunny"
	"github.com/akademo-live/session-service/internal/infrastructure/messaging"
	"github.com/akademo-live/session-service/internal/infrastructure/zoom/api"
	"github.com/akademo-live/session-service/internal/infrastructure/zoom/auth"
	"github.com/akademo-live/session-service/internal/infrastructure/zoom/webhook"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/internal/service"
)

func main() {
	env := parseEnv()
	flags := parseFlags(env.Port)

	logging.InitStructureLogConfig()

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	gracefulCloseWG := sync.WaitGroup{}

	// Setup NATS connection and the sessions KV store
	natsConn, err := setupNATS(env, &gracefulCloseWG, done)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up NATS")
		return
	}

	sessionRepository, err := setupSessionRepository(ctx, natsConn)
	if err != nil {
		slog.With(logging.ErrKey, err).Error("error setting up session repository")
		return
	}

	clock := domain.RealClock{}
	messageBuilder := messaging.NewMessageBuilder(natsConn)

	// Conferencing provider clients
	credentialCache := auth.NewCredentialCache(auth.Config{
		AccountID:    env.Zoom.AccountID,
		ClientID:     env.Zoom.ClientID,
		ClientSecret: env.Zoom.ClientSecret,
	}, clock)
	conferenceClient := api.NewClient(api.Config{}, credentialCache)
	webhookValidator := webhook.NewValidator(env.Zoom.WebhookSecretToken, clock)

	// Video host client
	videoHostClient := bunny.NewClient(bunny.Config{
		LibraryID: env.Bunny.LibraryID,
		APIKey:    env.Bunny.APIKey,
	})

	// Services
	sessionService := service.NewSessionService(sessionRepository, conferenceClient, messageBuilder, clock)
	webhookService := service.NewWebhookService(messageBuilder, webhookValidator)
	stateMachine := service.NewSessionStateMachine(sessionRepository, messageBuilder, clock)
	participantReconciler := service.NewParticipantReconciler(sessionRepository, conferenceClient, messageBuilder, clock)
	recordingLocator := service.NewRecordingLocator(conferenceClient, credentialCache)
	ingestionSubmitter := service.NewIngestionSubmitter(sessionRepository, recordingLocator, videoHostClient, messageBuilder, clock)

	// NATS message handler
	messageHandler := handlers.NewSessionMessageHandler(stateMachine, participantReconciler, ingestionSubmitter, messageBuilder)

	readyCheck := func() bool {
		return natsConn.IsConnected() &&
			sessionService.ServiceReady() &&
			webhookService.ServiceReady() &&
			messageHandler.HandlerReady()
	}
	sessionAPI := NewSessionAPI(sessionService, webhookService, readyCheck)

	httpServer := setupHTTPServer(flags, sessionAPI, &gracefulCloseWG)

	if err := createNatsSubscriptions(ctx, messageHandler, natsConn); err != nil {
		slog.With(logging.ErrKey, err).Error("error creating NATS subscriptions")
		return
	}

	slog.Info("session service started", "port", flags.Port)

	// This next line blocks until SIGINT or SIGTERM is received.
	<-done

	gracefulShutdown(httpServer, natsConn, &gracefulCloseWG, cancel)
}
