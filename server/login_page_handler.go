package server

import (
	"net/http"

	"github.com/jrsteele09/go-library-web/auth"
	"github.com/jrsteele09/go-library-web/users"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Page
	Email      string // Preserve email on error
	Submitting bool   // A submission for this browser session is still in flight
}

// LoginPageUIHandler displays the login page (GET /login)
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if sessionFromContext(r.Context()).IsAuthenticated {
			redirectSuccess(w, r, RouteIndex)
			return
		}

		data := LoginPageData{
			Page:       s.newPage(r, "Log in"),
			Email:      r.URL.Query().Get("email"),
			Submitting: s.auth.State(sessionIDFromContext(r.Context())) == auth.StateSubmitting,
		}
		render(w, loginTmpl, http.StatusOK, data)
	}
}

// LoginSubmissionHandler processes the login form submission (POST /login)
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	loginTmpl := mustParseTemplate("login.html")

	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		sessionID := sessionIDFromContext(r.Context())
		outcome := s.auth.Login(r.Context(), sessionID, users.Credentials{
			Email:    r.FormValue("email"),
			Password: r.FormValue("password"),
		})

		switch outcome.State {
		case auth.StateAuthenticated:
			s.rotateSession(r.Context(), w, r, sessionID, outcome.Session)
			redirectSuccess(w, r, RouteIndex)
		case auth.StateNeedsVerification:
			redirectWithNotice(w, r, withQuery(RouteVerify, "email", outcome.Email), outcome.Message)
		default:
			if outcome.Err != nil {
				logHandlerError(r, outcome.Err, "Login failed")
			}
			page := s.newPage(r, "Log in")
			page.Error = outcome.Message
			page.Notice = ""
			page.Fields = outcome.Fields
			render(w, loginTmpl, http.StatusUnprocessableEntity, LoginPageData{Page: page, Email: outcome.Email})
		}
	}
}

// LogoutHandler clears the session and starts a fresh anonymous one (POST /logout)
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := sessionIDFromContext(r.Context())
		if err := s.auth.Logout(r.Context(), sessionID); err != nil {
			logHandlerError(r, err, "Logout: failed to clear session")
			redirectWithError(w, r, RouteIndex, MessageLogoutFailed)
			return
		}
		s.SetSessionCookie(w, r, newSessionID())
		redirectWithNotice(w, r, RouteLogin, MessageLoggedOut)
	}
}
