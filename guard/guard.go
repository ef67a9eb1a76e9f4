// Package guard decides whether a navigation may proceed for the current session.
package guard

import "github.com/jrsteele09/go-library-web/sessions"

// Requirement is the access level a view demands
type Requirement int

const (
	None          Requirement = iota // Public view
	Authenticated                    // Any logged in user
	Admin                            // Logged in administrator
)

func (r Requirement) String() string {
	switch r {
	case Authenticated:
		return "authenticated"
	case Admin:
		return "admin"
	default:
		return "none"
	}
}

// Decision is the outcome of evaluating a requirement
type Decision int

const (
	Allow Decision = iota
	RedirectToLogin
)

func (d Decision) String() string {
	if d == Allow {
		return "allow"
	}
	return "redirect_to_login"
}

// Evaluate decides a navigation. It holds no state, so callers must pass the session as
// loaded for this request. Users lacking the admin role are redirected exactly like anonymous ones.
func Evaluate(session sessions.Session, requirement Requirement) Decision {
	session = session.Normalise()
	switch requirement {
	case None:
		return Allow
	case Authenticated:
		if session.IsAuthenticated {
			return Allow
		}
	case Admin:
		if session.IsAdmin() {
			return Allow
		}
	}
	return RedirectToLogin
}
