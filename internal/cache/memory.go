package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a stored value with its expiration instant.
type entry struct {
	value     []byte
	expiresAt time.Time
}

// expired reports whether the entry is past its TTL at instant now.
func (e entry) expired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// Memory is an in-process Cache implementation backed by a map with a
// background janitor that evicts expired entries. Reads also check expiry so
// a stale entry is never returned between janitor sweeps.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
	stop    chan struct{}
	stopped sync.Once
}

// MemoryOption configures a Memory cache.
type MemoryOption func(*Memory)

// WithClock overrides the time source, used by tests to control expiry.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) {
		m.now = now
	}
}

// NewMemory creates a Memory cache and starts its janitor goroutine with the
// given sweep interval. Call Close to stop the janitor.
func NewMemory(sweepInterval time.Duration, opts ...MemoryOption) *Memory {
	m := &Memory{
		entries: make(map[string]entry),
		now:     func() time.Time { return time.Now().UTC() },
		stop:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(m)
	}

	go m.janitor(sweepInterval)

	return m
}

// Get returns the value stored under key if present and not expired.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || e.expired(m.now()) {
		return nil, false, nil
	}

	// Copy so callers cannot mutate the stored value.
	value := make([]byte, len(e.value))
	copy(value, e.value)

	return value, true, nil
}

// Set stores value under key for at most ttl, replacing any previous entry.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	m.entries[key] = entry{value: stored, expiresAt: m.now().Add(ttl)}
	m.mu.Unlock()

	return nil
}

// Delete removes key. Absent keys are ignored.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()

	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close stops the janitor goroutine. Safe to call more than once.
func (m *Memory) Close() {
	m.stopped.Do(func() {
		close(m.stop)
	})
}

// janitor periodically evicts expired entries until Close is called.
func (m *Memory) janitor(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			m.evictExpired()
		}
	}
}

// evictExpired removes all entries past their TTL.
func (m *Memory) evictExpired() {
	now := m.now()

	m.mu.Lock()
	for key, e := range m.entries {
		if e.expired(now) {
			delete(m.entries, key)
		}
	}
	m.mu.Unlock()
}
