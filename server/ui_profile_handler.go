package server

import (
	"net/http"

	"github.com/jrsteele09/go-library-web/backend"
	"github.com/jrsteele09/go-library-web/library"
)

// ProfilePageData is the template model for the profile page
type ProfilePageData struct {
	Page
	Profile library.Profile
}

// ProfileHandler renders the account record of the logged in user (GET /profile)
func (s *Server) ProfileHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("profile.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := ProfilePageData{Page: s.newPage(r, "Profile")}
		user := data.Session.User

		profile, err := s.libraryFor(r).Profile(r.Context(), user.ID)
		if err != nil {
			if s.sessionRejected(w, r, err) {
				return
			}
			logHandlerError(r, err, "Failed to load profile")
			data.Error = backend.MessageOf(err)
			// Fall back to what the token told us
			profile = library.Profile{Name: user.DisplayName, Email: user.Email, Role: string(user.Role)}
		}
		data.Profile = profile

		render(w, tmpl, http.StatusOK, data)
	}
}
