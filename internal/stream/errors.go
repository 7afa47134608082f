// Copyright (c) 2025 The chatraghu-tui Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrTimeout is the cancellation cause used when the idle deadline expires.
	ErrTimeout = errors.New("request timed out")

	// ErrCanceled is the cancellation cause for user aborts and superseded sends.
	ErrCanceled = errors.New("request canceled")

	// ErrNoBody is returned when a 2xx response carries no body.
	ErrNoBody = errors.New("response has no body")
)

// HTTPError is a non-2xx response from the remote endpoint.
type HTTPError struct {
	Status int
	Reason string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("remote returned status %d", e.Status)
	}
	return fmt.Sprintf("remote returned status %d: %s", e.Status, e.Reason)
}
