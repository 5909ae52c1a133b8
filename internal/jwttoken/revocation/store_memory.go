package revocation

import (
	"context"
	"sync"
	"time"
)

// MemoryList is an in-process revocation list for single-instance deployments
// and tests. Expired entries are pruned lazily on lookup.
type MemoryList struct {
	mu      sync.RWMutex
	revoked map[string]time.Time
	clock   func() time.Time
}

// MemoryListOption configures a MemoryList instance.
type MemoryListOption func(*MemoryList)

// WithClock sets the clock function for testability.
func WithClock(clock func() time.Time) MemoryListOption {
	return func(l *MemoryList) {
		if clock != nil {
			l.clock = clock
		}
	}
}

// NewMemoryList constructs an in-memory revocation list.
func NewMemoryList(opts ...MemoryListOption) *MemoryList {
	l := &MemoryList{
		revoked: make(map[string]time.Time),
		clock:   time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	return l
}

// Revoke marks a JTI revoked until its token would have expired anyway.
func (l *MemoryList) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if jti == "" {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.revoked[jti] = l.clock().Add(ttl)
	return nil
}

// IsRevoked reports whether the JTI is currently revoked.
func (l *MemoryList) IsRevoked(_ context.Context, jti string) (bool, error) {
	if jti == "" {
		return false, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	expiresAt, ok := l.revoked[jti]
	if !ok {
		return false, nil
	}
	if l.clock().After(expiresAt) {
		delete(l.revoked, jti)
		return false, nil
	}
	return true, nil
}
