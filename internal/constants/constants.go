package constants

import "time"

const (
	// SessionTTL is how long an upstream session ticket stays valid.
	SessionTTL = 2 * time.Hour

	FetchMaxAttempts = 3
	FetchRetryDelay  = 300 * time.Millisecond
)

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	MaxConnsPerHost     = 100
	ClientReadTimeout   = 10 * time.Second
	ClientWriteTimeout  = 10 * time.Second
	MaxIdleConnDuration = 1 * time.Minute
)
