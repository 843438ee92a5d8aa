// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

// Package webhook validates inbound conference provider webhook deliveries.
package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/akademo-live/session-service/internal/domain"
)

// ReplayWindow is the maximum age of a webhook delivery before it is rejected
// as a possible replay.
const ReplayWindow = 5 * time.Minute

// Validator handles validation of provider webhook signatures.
type Validator struct {
	SecretToken string
	Clock       domain.Clock
}

// Ensure that Validator implements WebhookValidator.
var _ domain.WebhookValidator = (*Validator)(nil)

// NewValidator creates a new webhook validator.
func NewValidator(secretToken string, clock domain.Clock) *Validator {
	if clock == nil {
		clock = domain.RealClock{}
	}
	return &Validator{
		SecretToken: secretToken,
		Clock:       clock,
	}
}

// ValidateSignature validates the webhook signature and rejects deliveries
// older than the replay window.
func (v *Validator) ValidateSignature(body []byte, signature, timestamp string) error {
	if v.SecretToken == "" {
		return domain.NewInternalError("webhook secret token not configured")
	}

	if signature == "" {
		return domain.NewAuthError("missing webhook signature")
	}

	if timestamp == "" {
		return domain.NewAuthError("missing webhook timestamp")
	}

	ts, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return domain.NewAuthError("invalid webhook timestamp", err)
	}
	age := v.Clock.Now().Sub(time.Unix(ts, 0))
	if age > ReplayWindow || age < -ReplayWindow {
		slog.Warn("webhook delivery outside replay window", "age", age.String())
		return domain.NewAuthError("webhook timestamp outside allowed window")
	}

	// The signed message is v0:{timestamp}:{body}.
	message := fmt.Sprintf("v0:%s:%s", timestamp, body)

	h := hmac.New(sha256.New, []byte(v.SecretToken))
	h.Write([]byte(message))
	expectedSignature := "v0=" + hex.EncodeToString(h.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expectedSignature)) {
		slog.Error("webhook signature does not match expected signature")
		return domain.NewAuthError("webhook signature does not match expected signature")
	}

	return nil
}

// EncryptToken computes the HMAC-SHA256 of the plain token for the provider's
// URL-validation handshake.
func (v *Validator) EncryptToken(plainToken string) string {
	h := hmac.New(sha256.New, []byte(v.SecretToken))
	h.Write([]byte(plainToken))
	return hex.EncodeToString(h.Sum(nil))
}

// GetSecretToken returns the configured secret token.
func (v *Validator) GetSecretToken() string {
	return v.SecretToken
}

// IsValidEvent checks if the event type is supported.
func (v *Validator) IsValidEvent(eventType string) bool {
	validEvents := map[string]bool{
		"meeting.started":            true,
		"meeting.ended":              true,
		"meeting.participant_joined": true,
		"meeting.participant_left":   true,
		"recording.completed":        true,
		"endpoint.url_validation":    true,
	}

	return validEvents[eventType]
}
