package sessions

import (
	"context"
	"time"
)

// Repo persists the entries of browser sessions.
// Put and Delete must be atomic: readers never observe a partially written or partially
// removed session.
type Repo interface {
	// Put replaces all entries of a session and refreshes its expiry
	Put(ctx context.Context, sessionID string, entries map[string]string, ttl time.Duration) error

	// Get returns the entries of a session, or an empty map when it does not exist
	Get(ctx context.Context, sessionID string) (map[string]string, error)

	// Delete removes every entry of a session
	Delete(ctx context.Context, sessionID string) error

	// Close releases the underlying connection
	Close() error
}
