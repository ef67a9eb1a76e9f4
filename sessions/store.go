package sessions

import (
	"context"
	"time"

	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/rs/zerolog/log"
)

// Store reads and writes whole sessions on top of a Repo.
//
// Save and Clear are all-or-nothing. Load never fails: an unreadable, partial or
// inconsistent session is reported as logged out.
type Store struct {
	repo Repo
	ttl  time.Duration
}

// NewStore creates a session store. A ttl of zero keeps sessions until cleared.
func NewStore(repo Repo, ttl time.Duration) *Store {
	return &Store{repo: repo, ttl: ttl}
}

// Save replaces the session stored under sessionID
func (s *Store) Save(ctx context.Context, sessionID string, session Session) error {
	if sessionID == "" {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "[Store Save] empty session id")
	}
	if !session.Valid() {
		return apperrors.Wrapf(apperrors.ErrInvalidSession, "[Store Save] authentication flag, user and token disagree")
	}
	entries, err := session.toEntries()
	if err != nil {
		return apperrors.Wrapf(err, "[Store Save] encode session")
	}
	if err := s.repo.Put(ctx, sessionID, entries, s.ttl); err != nil {
		return apperrors.Wrapf(err, "[Store Save] write session")
	}
	return nil
}

// Load rebuilds the session stored under sessionID
func (s *Store) Load(ctx context.Context, sessionID string) Session {
	if sessionID == "" {
		return Session{}
	}
	entries, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		log.Err(err).Msg("Session storage unavailable, treating request as logged out")
		return Session{}
	}
	return fromEntries(entries)
}

// Clear removes every entry of the session
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.repo.Delete(ctx, sessionID); err != nil {
		return apperrors.Wrapf(err, "[Store Clear] delete session")
	}
	return nil
}
