package server

import (
	"net/http"

	"github.com/jrsteele09/go-library-web/auth"
	"github.com/jrsteele09/go-library-web/users"
)

// VerifyPageData is the template model for the verification page
type VerifyPageData struct {
	Page
	Email string
}

// registrationFields are the sign up form fields redisplayed after a failed submission
var registrationFields = []string{"nombre", "apellido", "cedula", "usuario", "email", "telefono"}

// SignupGetHandler renders the signup page (GET /register)
func (s *Server) SignupGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		render(w, tmpl, http.StatusOK, s.newPage(r, "Sign up"))
	}
}

// SignupPostHandler handles the registration form submission (POST /register)
func (s *Server) SignupPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("register.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		outcome := s.auth.Register(r.Context(), sessionIDFromContext(r.Context()), users.Registration{
			FirstName:  r.FormValue("nombre"),
			LastName:   r.FormValue("apellido"),
			NationalID: r.FormValue("cedula"),
			Username:   r.FormValue("usuario"),
			Email:      r.FormValue("email"),
			Phone:      r.FormValue("telefono"),
			Password:   r.FormValue("pass"),
		})
		if outcome.State == auth.StateNeedsVerification {
			redirectWithNotice(w, r, withQuery(RouteVerify, "email", outcome.Email), outcome.Message)
			return
		}

		if outcome.Err != nil {
			logHandlerError(r, outcome.Err, "Registration failed")
		}
		page := s.newPage(r, "Sign up")
		page.Error = outcome.Message
		page.Fields = outcome.Fields
		page.Form = make(map[string]string, len(registrationFields))
		for _, field := range registrationFields {
			page.Form[field] = r.FormValue(field)
		}
		render(w, tmpl, http.StatusUnprocessableEntity, page)
	}
}

// VerifyGetHandler renders the verification code page (GET /verify)
func (s *Server) VerifyGetHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("verify.html")
	return func(w http.ResponseWriter, r *http.Request) {
		data := VerifyPageData{
			Page:  s.newPage(r, "Verify your account"),
			Email: r.URL.Query().Get("email"),
		}
		render(w, tmpl, http.StatusOK, data)
	}
}

// VerifyPostHandler submits the verification code (POST /verify)
func (s *Server) VerifyPostHandler() http.HandlerFunc {
	tmpl := mustParseTemplate("verify.html")
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		outcome := s.auth.Verify(r.Context(), sessionIDFromContext(r.Context()), r.FormValue("email"), r.FormValue("code"))
		if outcome.State == auth.StateIdle {
			redirectWithNotice(w, r, withQuery(RouteLogin, "email", outcome.Email), outcome.Message)
			return
		}

		if outcome.Err != nil {
			logHandlerError(r, outcome.Err, "Verification failed")
		}
		page := s.newPage(r, "Verify your account")
		page.Error = outcome.Message
		page.Notice = ""
		page.Fields = outcome.Fields
		render(w, tmpl, http.StatusUnprocessableEntity, VerifyPageData{Page: page, Email: outcome.Email})
	}
}

// ResendVerificationHandler asks for a new verification code (POST /verify/resend)
func (s *Server) ResendVerificationHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		outcome := s.auth.Resend(r.Context(), sessionIDFromContext(r.Context()), r.FormValue("email"))
		back := withQuery(RouteVerify, "email", outcome.Email)
		if outcome.State == auth.StateNeedsVerification {
			redirectWithNotice(w, r, back, outcome.Message)
			return
		}

		message := outcome.Message
		if fieldMessage, ok := outcome.Fields["email"]; ok {
			message = fieldMessage
		}
		redirectWithError(w, r, back, message)
	}
}
