// Package constants collects default timeouts and size limits shared across
// the transport, request, and websocket packages.
package constants

import "time"

// Connection timeouts.
const (
	DefaultConnTimeout = 10 * time.Second
	DefaultDNSTimeout  = 5 * time.Second
	DefaultReadTimeout = 30 * time.Second
	DefaultPingPeriod  = 15 * time.Second
)

// HTTP framing limits.
const (
	MaxHeaderBytes   = 64 * 1024
	MaxContentLength = 1024 * 1024 * 1024 * 1024 // 1TB, a sanity cap not a real expectation
)

// Body storage defaults.
const (
	DefaultBodyMemLimit = 4 * 1024 * 1024
	MaxRawBufferSize    = 100 * 1024 * 1024
)

// Read buffer defaults.
const (
	// DefaultReadChunkSize is buffer_size: the per-Read chunk size used
	// while scanning for the end of headers and while draining the body.
	DefaultReadChunkSize = 1024
)

// Redirect defaults.
const (
	DefaultMaxRedirects = 8
)
