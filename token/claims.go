package token

import (
	"strconv"
	"strings"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/users"
)

// Claims is the decoded, unverified payload of an access token.
// It is derived data: recompute it from the raw token rather than storing it.
type Claims jwtlib.MapClaims

// Claim names issued by the library backend, with the registered JWT names as fallbacks.
var (
	userIDClaims = []string{"userId", "sub"}
	nameClaims   = []string{"nombre", "name"}
	roleClaims   = []string{"rol", "role"}
)

// Identity extracts the user profile carried by the claims.
// A missing id, name or role, or a role other than USER/ADMIN, is ErrIdentityUnusable.
func (c Claims) Identity() (users.Profile, error) {
	id, ok := c.scalar(userIDClaims)
	if !ok {
		return users.Profile{}, apperrors.Wrapf(apperrors.ErrIdentityUnusable, "[Identity] missing user id claim")
	}
	name, ok := c.scalar(nameClaims)
	if !ok {
		return users.Profile{}, apperrors.Wrapf(apperrors.ErrIdentityUnusable, "[Identity] missing name claim")
	}
	rawRole, ok := c.scalar(roleClaims)
	if !ok {
		return users.Profile{}, apperrors.Wrapf(apperrors.ErrIdentityUnusable, "[Identity] missing role claim")
	}
	role, ok := users.ParseRole(rawRole)
	if !ok {
		return users.Profile{}, apperrors.Wrapf(apperrors.ErrIdentityUnusable, "[Identity] unknown role %q", rawRole)
	}

	email, _ := c["email"].(string)
	return users.Profile{
		ID:          id,
		DisplayName: name,
		Role:        role,
		Email:       strings.ToLower(strings.TrimSpace(email)),
	}, nil
}

// scalar returns the first non-empty string or number found under any of the keys
func (c Claims) scalar(keys []string) (string, bool) {
	for _, key := range keys {
		switch v := c[key].(type) {
		case string:
			if v = strings.TrimSpace(v); v != "" {
				return v, true
			}
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), true
		}
	}
	return "", false
}
