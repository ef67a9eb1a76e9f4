package users

import "strings"

// RoleType is the role a library account holds
type RoleType string

const (
	RoleUser  RoleType = "USER"  // Can browse the catalog, fill a cart and request loans
	RoleAdmin RoleType = "ADMIN" // Can additionally manage books and loan statuses
)

// ParseRole maps a claim value onto a known role. Unknown roles are rejected.
func ParseRole(value string) (RoleType, bool) {
	switch RoleType(strings.ToUpper(strings.TrimSpace(value))) {
	case RoleUser:
		return RoleUser, true
	case RoleAdmin:
		return RoleAdmin, true
	}
	return "", false
}

// Profile is the identity of the logged in user, derived from the access token claims
type Profile struct {
	ID          string   `json:"id"`              // Backend user id
	DisplayName string   `json:"nombre"`          // Name shown in the navigation bar
	Role        RoleType `json:"rol"`             // USER or ADMIN
	Email       string   `json:"email,omitempty"` // Optional, not every token carries it
}

// IsAdmin returns true if the profile holds the admin role
func (p *Profile) IsAdmin() bool {
	return p != nil && p.Role == RoleAdmin
}

// Credentials are the transient login form input. They are never persisted.
type Credentials struct {
	Email    string
	Password string
}

// Registration holds the sign up form fields, named as the backend expects them
type Registration struct {
	FirstName  string `json:"nombre"`
	LastName   string `json:"apellido"`
	NationalID string `json:"cedula"`
	Username   string `json:"usuario"`
	Email      string `json:"email"`
	Phone      string `json:"telefono"`
	Password   string `json:"pass"`
}
