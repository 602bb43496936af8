// Package server provides the HTTP status API and WebSocket event stream
package server

import "time"

// Server configuration constants
const (
	// Events returned by /api/history when no limit is given; 0 means all retained
	DefaultHistoryLimit = 20

	// Per-connection WebSocket rate limiting
	RateLimitMessages = 10
	RateLimitWindow   = time.Second

	// Upper bound on a single broadcast write
	WriteTimeout = 5 * time.Second

	// http.Server timeouts
	ReadHeaderTimeout = 10 * time.Second
	ShutdownTimeout   = 5 * time.Second
)
