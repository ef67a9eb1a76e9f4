package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-library-web/sessions"
	"github.com/rs/zerolog/log"
)

// sessionCookieName is the cookie carrying the opaque browser session id
const sessionCookieName = "library_session"

// ensureSessionID returns the session id of the request, issuing a new cookie when the
// request carries none or carries a value that is not a session id.
func (s *Server) ensureSessionID(w http.ResponseWriter, r *http.Request) string {
	if cookie, err := r.Cookie(sessionCookieName); err == nil {
		if id, err := uuid.Parse(cookie.Value); err == nil {
			return id.String()
		}
	}
	sessionID := newSessionID()
	s.SetSessionCookie(w, r, sessionID)
	return sessionID
}

func newSessionID() string {
	return uuid.NewString()
}

// SetSessionCookie writes the session cookie. It has no Max-Age or Expires, so the browser
// drops it when the browser session ends.
func (s *Server) SetSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.GetSecureCookies() || getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
	})
}

// rotateSession moves a freshly authenticated session onto a new id. The pre-login id
// is cleared and never carries an authenticated session.
func (s *Server) rotateSession(ctx context.Context, w http.ResponseWriter, r *http.Request, oldID string, session sessions.Session) {
	newID := newSessionID()
	if err := s.store.Save(ctx, newID, session); err != nil {
		log.Err(err).Msg("Failed to rotate session id, keeping the current one")
		return
	}
	if err := s.store.Clear(ctx, oldID); err != nil {
		log.Err(err).Msg("Failed to clear the pre-login session")
	}
	s.SetSessionCookie(w, r, newID)
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, withQuery(path, "error", errorMsg))
}

// redirectWithNotice carries an informational message to the next page
func redirectWithNotice(w http.ResponseWriter, r *http.Request, path, notice string) {
	redirectSuccess(w, r, withQuery(path, "notice", notice))
}

// withQuery appends one query parameter, keeping any already present on the path
func withQuery(path, key, value string) string {
	u, err := url.Parse(path)
	if err != nil {
		return path
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String()
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
