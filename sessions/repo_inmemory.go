package sessions

import (
	"context"
	"fmt"
	"maps"
	"sync"
	"time"
)

type memoryRecord struct {
	entries   map[string]string
	expiresAt time.Time
}

// InMemoryRepo is a thread-safe in-memory session repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]memoryRecord // sessionID -> entries
	nowTime  func() time.Time
}

// InMemoryRepoOption modifies an InMemoryRepo
type InMemoryRepoOption func(*InMemoryRepo)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) InMemoryRepoOption {
	return func(r *InMemoryRepo) {
		r.nowTime = nowFunc
	}
}

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo(options ...InMemoryRepoOption) *InMemoryRepo {
	r := &InMemoryRepo{
		sessions: make(map[string]memoryRecord),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Put creates or replaces a session
func (r *InMemoryRepo) Put(_ context.Context, sessionID string, entries map[string]string, ttl time.Duration) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}

	record := memoryRecord{entries: maps.Clone(entries)}
	if ttl > 0 {
		record.expiresAt = r.nowTime().Add(ttl)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = record
	return nil
}

// Get returns a copy of the session entries
func (r *InMemoryRepo) Get(_ context.Context, sessionID string) (map[string]string, error) {
	if sessionID == "" {
		return map[string]string{}, nil
	}

	r.mu.RLock()
	record, ok := r.sessions[sessionID]
	r.mu.RUnlock()

	if !ok {
		return map[string]string{}, nil
	}
	if r.expired(record) {
		r.deleteIfExpired(sessionID)
		return map[string]string{}, nil
	}
	return maps.Clone(record.entries), nil
}

func (r *InMemoryRepo) expired(record memoryRecord) bool {
	return !record.expiresAt.IsZero() && r.nowTime().After(record.expiresAt)
}

// deleteIfExpired re-reads the record under the write lock so a concurrent Put survives
func (r *InMemoryRepo) deleteIfExpired(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if record, ok := r.sessions[sessionID]; ok && r.expired(record) {
		delete(r.sessions, sessionID)
	}
}

// Delete removes a session
func (r *InMemoryRepo) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

// DeleteExpired drops sessions past their expiry
func (r *InMemoryRepo) DeleteExpired(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, record := range r.sessions {
		if r.expired(record) {
			delete(r.sessions, id)
		}
	}
	return nil
}

// Close implements Repo
func (r *InMemoryRepo) Close() error {
	return nil
}
