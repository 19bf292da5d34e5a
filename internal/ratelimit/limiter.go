// Package ratelimit provides per-user request rate limiting.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config defines the rate limiting configuration.
type Config struct {
	RPS             float64       // Sustained requests per second per user
	Burst           int           // Burst size per user
	CleanupInterval time.Duration // How often to drop idle limiters
}

// DefaultConfig provides sensible defaults.
var DefaultConfig = Config{
	RPS:             10,
	Burst:           20,
	CleanupInterval: time.Hour,
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastUsed time.Time
}

// Limiter manages one token bucket per user id.
type Limiter struct {
	mu      sync.RWMutex
	entries map[string]*limiterEntry
	config  Config

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New creates a limiter and starts its background cleanup goroutine.
func New(config Config) *Limiter {
	l := &Limiter{
		entries: make(map[string]*limiterEntry),
		config:  config,
		stopCh:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.cleanupLoop()
	return l
}

// Allow reports whether a request from the given user is within limits.
func (l *Limiter) Allow(userID string) bool {
	return l.get(userID).Allow()
}

// Tokens returns the approximate number of tokens left for the user.
func (l *Limiter) Tokens(userID string) float64 {
	return l.get(userID).Tokens()
}

func (l *Limiter) get(userID string) *rate.Limiter {
	l.mu.RLock()
	entry, ok := l.entries[userID]
	if ok {
		entry.lastUsed = time.Now()
		l.mu.RUnlock()
		return entry.limiter
	}
	l.mu.RUnlock()

	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok = l.entries[userID]; ok {
		entry.lastUsed = time.Now()
		return entry.limiter
	}

	entry = &limiterEntry{
		limiter:  rate.NewLimiter(rate.Limit(l.config.RPS), l.config.Burst),
		lastUsed: time.Now(),
	}
	l.entries[userID] = entry
	return entry.limiter
}

// Cleanup removes limiters idle for longer than the cleanup interval.
func (l *Limiter) Cleanup() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := time.Now().Add(-l.config.CleanupInterval)
	for userID, entry := range l.entries {
		if entry.lastUsed.Before(cutoff) {
			delete(l.entries, userID)
		}
	}
}

func (l *Limiter) cleanupLoop() {
	defer l.wg.Done()

	ticker := time.NewTicker(l.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			l.Cleanup()
		case <-l.stopCh:
			return
		}
	}
}

// Stop halts the cleanup goroutine. Call on shutdown.
func (l *Limiter) Stop() {
	close(l.stopCh)
	l.wg.Wait()
}

// Len returns the number of tracked users. Useful for tests and monitoring.
func (l *Limiter) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
