// Package correlation maps the timestamp of a prep request posted in the shared
// channel to the user and meeting it was posted for, so the assistant's
// threaded reply can be routed back to that user.
//
// The table lives in process memory and is lost on restart.
package correlation

import (
	"strings"
	"sync"
	"time"
)

// Pending is the routing record kept for one outstanding prep request.
type Pending struct {
	UserID       string
	MeetingID    string
	MeetingTitle string
	CreatedAt    time.Time
}

// Table is a concurrency-safe token to Pending map. A zero TTL keeps
// entries until they are resolved.
type Table struct {
	mu      sync.Mutex
	entries map[string]Pending
	ttl     time.Duration
	now     func() time.Time
}

type Option func(*Table)

// WithTTL evicts entries older than ttl. Eviction runs on Track and expired
// entries are reported as misses by Resolve.
func WithTTL(ttl time.Duration) Option {
	return func(t *Table) {
		if ttl > 0 {
			t.ttl = ttl
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(t *Table) {
		if now != nil {
			t.now = now
		}
	}
}

func New(opts ...Option) *Table {
	t := &Table{
		entries: map[string]Pending{},
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Track stores p under token, replacing any previous entry.
func (t *Table) Track(token string, p Pending) {
	token = strings.TrimSpace(token)
	if token == "" {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	t.sweepLocked(now)
	t.entries[token] = p
}

// Resolve returns and removes the entry for token. A second call with the
// same token misses.
func (t *Table) Resolve(token string) (Pending, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Pending{}, false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	p, ok := t.entries[token]
	if !ok {
		return Pending{}, false
	}
	delete(t.entries, token)
	if t.expired(p, t.now()) {
		return Pending{}, false
	}
	return p, true
}

// Len returns the number of outstanding entries, including expired ones not yet swept.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

func (t *Table) sweepLocked(now time.Time) {
	if t.ttl <= 0 {
		return
	}
	for token, p := range t.entries {
		if t.expired(p, now) {
			delete(t.entries, token)
		}
	}
}

func (t *Table) expired(p Pending, now time.Time) bool {
	return t.ttl > 0 && now.Sub(p.CreatedAt) > t.ttl
}
