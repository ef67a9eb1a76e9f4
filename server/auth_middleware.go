package server

import (
	"context"
	"net/http"

	"github.com/jrsteele09/go-library-web/guard"
	"github.com/jrsteele09/go-library-web/sessions"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeySessionID stores the browser session id taken from the session cookie
	ContextKeySessionID ContextKey = "session_id"
	// ContextKeySession stores the session snapshot loaded for the request
	ContextKeySession ContextKey = "session"
)

// RequireSession loads the session on every request, evaluates the route requirement and
// either redirects to the login page or injects the session into the request context.
// Sessions are never cached between requests, so a logout or login in another request is
// observed on the next navigation.
func (s *Server) RequireSession(requirement guard.Requirement) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			sessionID := s.ensureSessionID(w, r)
			session := s.store.Load(r.Context(), sessionID).Normalise()

			if guard.Evaluate(session, requirement) != guard.Allow {
				redirectSuccess(w, r, RouteLogin)
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeySessionID, sessionID)
			ctx = context.WithValue(ctx, ContextKeySession, session)
			next(w, r.WithContext(ctx))
		}
	}
}

// sessionFromContext returns the session injected by RequireSession, or the logged out session
func sessionFromContext(ctx context.Context) sessions.Session {
	session, _ := ctx.Value(ContextKeySession).(sessions.Session)
	return session
}

// sessionIDFromContext returns the browser session id injected by RequireSession
func sessionIDFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(ContextKeySessionID).(string)
	return sessionID
}
