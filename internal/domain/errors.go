package domain

import "github.com/cockroachdb/errors"

// Error taxonomy for the upstream access layer. Call sites match with
// errors.Is; wrapping adds context without losing the sentinel.
var (
	// ErrAuthConfig means credentials are missing from configuration.
	// Fatal for live calls, never retried.
	ErrAuthConfig = errors.New("upstream credentials not configured")

	// ErrAuthFailure means the upstream login call was rejected.
	ErrAuthFailure = errors.New("upstream login rejected")

	// ErrSessionExpired is surfaced on a 401 so the call site can
	// invalidate the cached session and retry once.
	ErrSessionExpired = errors.New("upstream session expired")

	// ErrPlayerNotFound means the profile lookup returned no profiles.
	ErrPlayerNotFound = errors.New("player not found")

	// ErrUpstreamStatus covers any other non-success upstream status
	// after transport retries are exhausted.
	ErrUpstreamStatus = errors.New("unexpected upstream status")

	// ErrModeLocked rejects demo-mode toggles outside dev mode.
	ErrModeLocked = errors.New("mode toggle only allowed in dev mode")
)
