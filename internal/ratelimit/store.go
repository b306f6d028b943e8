// Package ratelimit implements fixed-window request limiting keyed by
// client identifier. The counter table lives behind the Store interface so a
// single process can use in-process memory while a multi-worker deployment
// shares one Redis-backed table.
package ratelimit

import (
	"context"
	"time"
)

// Status describes one client's current window.
type Status struct {
	Count     int
	Limit     int
	ResetAt   time.Time
	Remaining int
}

// Store tracks request counts per client within a fixed window.
type Store interface {
	// Allow records one request for the client and reports whether it is
	// within the limit. The first request of a window starts it.
	Allow(ctx context.Context, clientID string) (bool, *Status, error)
	// Close releases the store's resources.
	Close() error
}

// Config carries the window parameters.
type Config struct {
	Limit  int
	Window time.Duration
}

// DefaultConfig is 20 requests per 60-second window.
func DefaultConfig() Config {
	return Config{Limit: 20, Window: time.Minute}
}
