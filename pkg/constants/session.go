// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package constants

import "time"

// Session scheduling constraints
const (
	// DefaultSessionDurationMinutes is the duration used when a session is
	// scheduled without an explicit duration.
	DefaultSessionDurationMinutes = 60

	// MaxSessionDurationMinutes is the maximum duration of a session in minutes
	MaxSessionDurationMinutes = 600
)

// Outbound provider call limits
const (
	// ProviderRequestTimeout bounds every outbound call to an external
	// provider. Retries, if any, happen out of band.
	ProviderRequestTimeout = 10 * time.Second

	// StatusUpdateMaxAttempts bounds the compare-and-swap retry loop when a
	// conditional session update loses a revision race.
	StatusUpdateMaxAttempts = 3
)

// RequestIDHeader carries the request correlation ID on HTTP responses.
const RequestIDHeader = "X-Request-Id"
