// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/internal/middleware"
)

// setupRouter builds the gin router with middleware and routes.
func setupRouter(api *SessionAPI, debug bool) *gin.Engine {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.RequestLoggerMiddleware())

	router.POST("/webhooks/zoom", api.handleWebhook)

	router.POST("/sessions", api.handleScheduleSession)
	router.GET("/sessions", api.handleListSessions)
	router.GET("/sessions/:meetingID", api.handleGetSession)

	router.GET("/livez", api.handleLivez)
	router.GET("/readyz", api.handleReadyz)

	return router
}

// setupHTTPServer configures and starts the HTTP server.
func setupHTTPServer(flags flags, api *SessionAPI, gracefulCloseWG *sync.WaitGroup) *http.Server {
	router := setupRouter(api, flags.Debug)

	var addr string
	if flags.Bind == "*" {
		addr = ":" + flags.Port
	} else {
		addr = flags.Bind + ":" + flags.Port
	}

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}

	gracefulCloseWG.Add(1)
	go func() {
		defer gracefulCloseWG.Done()
		slog.With("addr", addr).Debug("starting http server, listening on port " + flags.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.With(logging.ErrKey, err).Error("http server error")
		}
	}()

	return httpServer
}
