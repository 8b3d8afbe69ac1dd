// Package timeouts provides centralized timeout values for handler
// operations.
//
// These are used with context.WithTimeout around database work in HTTP
// handlers. Centralizing the values keeps them consistent and easy to
// adjust.
//
// Guidelines:
//   - Ping:   health checks and connectivity verification
//   - Short:  single-document reads or lookups
//   - Medium: list queries, moderate writes, multi-step reads
//   - Long:   transactional writes touching multiple collections
package timeouts

import (
	"sync"
	"time"
)

// Default timeout values (used if Configure is not called).
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

var mu sync.RWMutex

var (
	ping   = DefaultPing
	short  = DefaultShort
	medium = DefaultMedium
	long   = DefaultLong
)

// Configure overrides the default timeouts. Zero values keep the
// current setting. Safe to call once at startup.
func Configure(p, s, m, l time.Duration) {
	mu.Lock()
	defer mu.Unlock()
	if p > 0 {
		ping = p
	}
	if s > 0 {
		short = s
	}
	if m > 0 {
		medium = m
	}
	if l > 0 {
		long = l
	}
}

// Ping returns the timeout for health checks.
func Ping() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return ping
}

// Short returns the timeout for single-document reads.
func Short() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return short
}

// Medium returns the timeout for list queries and moderate writes.
func Medium() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return medium
}

// Long returns the timeout for transactional multi-collection writes.
func Long() time.Duration {
	mu.RLock()
	defer mu.RUnlock()
	return long
}
