package server

import (
	"net/http"

	"github.com/jrsteele09/go-library-web/backend"
	"github.com/jrsteele09/go-library-web/library"
	"github.com/jrsteele09/go-library-web/sessions"
)

// Page is the data every template receives through the layout
type Page struct {
	AppName string
	Title   string
	Session sessions.Session
	Error   string
	Notice  string
	Fields  map[string]string // Field errors keyed by form field name
	Form    map[string]string // Submitted values to redisplay
}

// newPage builds the shared page data, picking up flash messages from the query string
func (s *Server) newPage(r *http.Request, title string) Page {
	return Page{
		AppName: s.config.GetAppName(),
		Title:   title,
		Session: sessionFromContext(r.Context()),
		Error:   r.URL.Query().Get("error"),
		Notice:  r.URL.Query().Get("notice"),
	}
}

// FieldError returns the message for one form field, or an empty string
func (p Page) FieldError(field string) string {
	return p.Fields[field]
}

// Value returns the submitted value of one form field, or an empty string
func (p Page) Value(field string) string {
	return p.Form[field]
}

// libraryFor binds the library service to the bearer token of the request's session
func (s *Server) libraryFor(r *http.Request) *library.Service {
	return s.library.WithToken(sessionFromContext(r.Context()).Token())
}

// sessionRejected handles a 401 from the backend on an authenticated page: the stored
// token is no longer accepted, so the session is cleared and the user sent to log in.
func (s *Server) sessionRejected(w http.ResponseWriter, r *http.Request, err error) bool {
	if backend.StatusCodeOf(err) != http.StatusUnauthorized || !sessionFromContext(r.Context()).IsAuthenticated {
		return false
	}
	if err := s.auth.Logout(r.Context(), sessionIDFromContext(r.Context())); err != nil {
		logHandlerError(r, err, "Failed to clear rejected session")
	}
	redirectWithError(w, r, RouteLogin, MessageSessionExpired)
	return true
}
