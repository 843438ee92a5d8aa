// Copyright Akademo Live and each contributor.
// SPDX-License-Identifier: MIT

package domain

import "time"

// Clock abstracts time access so that token expiry and reconciliation
// timestamps are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}
