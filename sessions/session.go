package sessions

import (
	"encoding/json"
	"strconv"

	"github.com/jrsteele09/go-library-web/users"
	"golang.org/x/oauth2"
)

// Entry names written for every session. Each field is an independent entry so a session
// can be rebuilt from storage on any request without a round trip to the backend.
const (
	EntryAuthenticated = "isAuthenticated"
	EntryUser          = "userData"
	EntryAdmin         = "isAdmin"
	EntryAccessToken   = "auth_token"
	EntryRefreshToken  = "refresh_token"
)

// Entries lists every entry name a session owns
var Entries = []string{EntryAuthenticated, EntryUser, EntryAdmin, EntryAccessToken, EntryRefreshToken}

// Session is the client side identity record for one browser session.
//
// Invariant: IsAuthenticated == (AccessToken != "") == (User != nil).
// A session violating it is treated as logged out.
type Session struct {
	IsAuthenticated bool
	User            *users.Profile
	AccessToken     string
	RefreshToken    string
}

// Authenticated builds a logged in session
func Authenticated(user users.Profile, accessToken, refreshToken string) Session {
	return Session{
		IsAuthenticated: true,
		User:            &user,
		AccessToken:     accessToken,
		RefreshToken:    refreshToken,
	}
}

// Valid reports whether the session honours the authentication invariant
func (s Session) Valid() bool {
	hasToken := s.AccessToken != ""
	hasUser := s.User != nil
	return s.IsAuthenticated == hasToken && hasToken == hasUser
}

// Normalise returns the session itself when valid, or the logged out session otherwise
func (s Session) Normalise() Session {
	if !s.Valid() {
		return Session{}
	}
	return s
}

// IsAdmin returns true for an authenticated administrator
func (s Session) IsAdmin() bool {
	return s.IsAuthenticated && s.User.IsAdmin()
}

// Token exposes the stored token pair in the shape the HTTP transport expects
func (s Session) Token() *oauth2.Token {
	if !s.IsAuthenticated {
		return nil
	}
	return &oauth2.Token{
		AccessToken:  s.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: s.RefreshToken,
	}
}

// toEntries flattens a valid session into its storage entries
func (s Session) toEntries() (map[string]string, error) {
	userData := ""
	if s.User != nil {
		raw, err := json.Marshal(s.User)
		if err != nil {
			return nil, err
		}
		userData = string(raw)
	}
	return map[string]string{
		EntryAuthenticated: strconv.FormatBool(s.IsAuthenticated),
		EntryUser:          userData,
		EntryAdmin:         strconv.FormatBool(s.IsAdmin()),
		EntryAccessToken:   s.AccessToken,
		EntryRefreshToken:  s.RefreshToken,
	}, nil
}

// fromEntries rebuilds a session. A missing, corrupt or incomplete profile forces the logged out state.
func fromEntries(entries map[string]string) Session {
	if len(entries) == 0 {
		return Session{}
	}

	var user *users.Profile
	if raw := entries[EntryUser]; raw != "" {
		var profile users.Profile
		if err := json.Unmarshal([]byte(raw), &profile); err == nil && profile.ID != "" && profile.DisplayName != "" {
			if role, ok := users.ParseRole(string(profile.Role)); ok {
				profile.Role = role
				user = &profile
			}
		}
	}
	if user == nil {
		return Session{}
	}

	authenticated, _ := strconv.ParseBool(entries[EntryAuthenticated])
	return Session{
		IsAuthenticated: authenticated,
		User:            user,
		AccessToken:     entries[EntryAccessToken],
		RefreshToken:    entries[EntryRefreshToken],
	}.Normalise()
}
