package constants

import "time"

// Retry policy for dialing the editor. Retries never re-send a command that
// reached the socket.
const (
	DefaultMaxRetries     = 0
	DefaultRetryDelay     = 500 * time.Millisecond
	UpstreamMaxRetryDelay = 10 * time.Second
	RetryBackoffFactor    = 2.0
)

// Error handling limits
const (
	MaxErrorMessageLength = 512
)
