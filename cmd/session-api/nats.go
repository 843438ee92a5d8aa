// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/akademo-live/session-service/internal/domain"
	"github.com/akademo-live/session-service/internal/domain/models"
	"github.com/akademo-live/session-service/internal/infrastructure/store"
	"github.com/akademo-live/session-service/internal/logging"
	"github.com/akademo-live/session-service/pkg/concurrent"
)

// natsQueueName is the queue group name shared by service replicas so each
// message is delivered to exactly one instance.
const natsQueueName = "session-service"

// natsConnectTimeout bounds the initial NATS connection attempt.
const natsConnectTimeout = 10 * time.Second

// natsMsg wraps a NATS message to implement the domain.Message interface.
type natsMsg struct {
	msg *nats.Msg
}

func (m *natsMsg) Subject() string {
	return m.msg.Subject
}

func (m *natsMsg) Data() []byte {
	return m.msg.Data
}

func (m *natsMsg) Respond(data []byte) error {
	if !m.HasReply() {
		return nil
	}
	return m.msg.Respond(data)
}

func (m *natsMsg) HasReply() bool {
	return m.msg.Reply != ""
}

// setupNATS establishes the NATS connection with reconnection handling and
// graceful close wiring.
func setupNATS(env environment, gracefulCloseWG *sync.WaitGroup, done chan os.Signal) (*nats.Conn, error) {
	natsConn, err := nats.Connect(
		env.NatsURL,
		nats.Timeout(natsConnectTimeout),
		nats.DrainTimeout(25*time.Second),
		nats.ConnectHandler(func(nc *nats.Conn) {
			slog.With("nats_url", nc.ConnectedUrlRedacted()).Info("NATS connection established")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			if sub != nil {
				slog.With(logging.ErrKey, err, "subject", sub.Subject, "queue", sub.Queue).Error("async NATS error")
				return
			}
			slog.With(logging.ErrKey, err).Error("async NATS error outside subscription")
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			slog.Info("NATS connection closed")
			gracefulCloseWG.Done()
			// Signal shutdown in case the close was not requested.
			select {
			case done <- os.Interrupt:
			default:
			}
		}),
	)
	if err != nil {
		return nil, err
	}

	// Counterpart to the Done() in the closed handler.
	gracefulCloseWG.Add(1)

	return natsConn, nil
}

// setupSessionRepository creates or binds the sessions KV bucket and wraps it
// in the repository.
func setupSessionRepository(ctx context.Context, natsConn *nats.Conn) (*store.NatsSessionRepository, error) {
	js, err := jetstream.New(natsConn)
	if err != nil {
		return nil, err
	}

	kv, err := js.KeyValue(ctx, store.KVStoreNameSessions)
	if err != nil {
		if err != jetstream.ErrBucketNotFound {
			return nil, err
		}
		kv, err = js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
			Bucket:  store.KVStoreNameSessions,
			History: 5,
		})
		if err != nil {
			return nil, err
		}
	}

	return store.NewNatsSessionRepository(kv), nil
}

// createNatsSubscriptions subscribes the message handler to the webhook event
// and follow-up task subjects.
func createNatsSubscriptions(ctx context.Context, handler domain.MessageHandler, natsConn *nats.Conn) error {
	subjects := []string{
		models.WebhookSessionStartedSubject,
		models.WebhookSessionEndedSubject,
		models.WebhookParticipantJoinedSubject,
		models.WebhookParticipantLeftSubject,
		models.WebhookRecordingCompletedSubject,
		models.TaskReconcileParticipantsSubject,
		models.TaskIngestRecordingSubject,
	}

	for _, subject := range subjects {
		subject := subject
		_, err := natsConn.QueueSubscribe(subject, natsQueueName, func(msg *nats.Msg) {
			handler.HandleMessage(ctx, &natsMsg{msg: msg})
		})
		if err != nil {
			return err
		}
		slog.With("subject", subject, "queue", natsQueueName).Debug("subscribed to NATS subject")
	}

	return nil
}

// gracefulShutdown drains the NATS connection and stops the HTTP server.
func gracefulShutdown(httpServer interface {
	Shutdown(ctx context.Context) error
}, natsConn *nats.Conn, gracefulCloseWG *sync.WaitGroup, cancel context.CancelFunc) {
	slog.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// The HTTP server and the NATS connection shut down independently; run
	// both teardown steps concurrently and collect every failure.
	pool := concurrent.NewWorkerPool(2)
	for _, err := range pool.RunAll(shutdownCtx,
		func() error {
			return httpServer.Shutdown(shutdownCtx)
		},
		func() error {
			if natsConn == nil || natsConn.IsClosed() {
				return nil
			}
			return natsConn.Drain()
		},
	) {
		slog.With(logging.ErrKey, err).Error("error during shutdown")
	}

	gracefulCloseWG.Wait()
	slog.Info("shutdown complete")
}
