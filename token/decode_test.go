package token_test

import (
	"encoding/base64"
	"testing"

	jwtlib "github.com/golang-jwt/jwt/v5"
	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/token"
	"github.com/jrsteele09/go-library-web/users"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwtlib.MapClaims) string {
	t.Helper()
	raw, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func withPayload(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + payload + ".c2lnbmF0dXJl"
}

func TestDecode(t *testing.T) {
	t.Run("signed token", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"userId": 7, "nombre": "Ana", "rol": "ADMIN"})

		claims, err := token.Decode(raw)
		require.NoError(t, err)
		require.Equal(t, float64(7), claims["userId"])
		require.Equal(t, "Ana", claims["nombre"])
	})

	t.Run("signature is not verified", func(t *testing.T) {
		raw := signedToken(t, jwtlib.MapClaims{"sub": "42"})
		tampered := raw[:len(raw)-4] + "AAAA"

		claims, err := token.Decode(tampered)
		require.NoError(t, err)
		require.Equal(t, "42", claims["sub"])
	})

	t.Run("explicit padding", func(t *testing.T) {
		payload := base64.URLEncoding.EncodeToString([]byte(`{"a":1}`))
		require.Contains(t, payload, "=")

		claims, err := token.Decode(withPayload(payload))
		require.NoError(t, err)
		require.Equal(t, float64(1), claims["a"])
	})

	t.Run("standard alphabet payload", func(t *testing.T) {
		// ">>>" and "???" encode to "+" and "/" in the standard alphabet
		payload := base64.StdEncoding.EncodeToString([]byte(`{"n":">>>???"}`))

		claims, err := token.Decode(withPayload(payload))
		require.NoError(t, err)
		require.Equal(t, ">>>???", claims["n"])
	})

	malformed := map[string]string{
		"empty":            "",
		"single segment":   "abc",
		"two segments":     "abc.def",
		"four segments":    "a.b.c.d",
		"empty payload":    "a..c",
		"invalid base64":   withPayload("!!!*"),
		"not json":         withPayload(base64.RawURLEncoding.EncodeToString([]byte("hello"))),
		"json array":       withPayload(base64.RawURLEncoding.EncodeToString([]byte(`[1,2]`))),
		"json null":        withPayload(base64.RawURLEncoding.EncodeToString([]byte(`null`))),
		"json string":      withPayload(base64.RawURLEncoding.EncodeToString([]byte(`"x"`))),
		"impossible width": withPayload("a"),
	}
	for name, raw := range malformed {
		t.Run(name, func(t *testing.T) {
			claims, err := token.Decode(raw)
			require.Error(t, err)
			require.ErrorIs(t, err, apperrors.ErrMalformedToken)
			require.Nil(t, claims)
		})
	}
}

func TestClaims_Identity(t *testing.T) {
	t.Run("library claims", func(t *testing.T) {
		claims, err := token.Decode(signedToken(t, jwtlib.MapClaims{
			"userId": 7,
			"nombre": "Ana",
			"rol":    "ADMIN",
			"email":  " Ana@Test.com ",
		}))
		require.NoError(t, err)

		profile, err := claims.Identity()
		require.NoError(t, err)
		require.Equal(t, users.Profile{ID: "7", DisplayName: "Ana", Role: users.RoleAdmin, Email: "ana@test.com"}, profile)
	})

	t.Run("registered claim fallbacks", func(t *testing.T) {
		claims := token.Claims{"sub": "u-1", "name": "Luis", "role": "user"}

		profile, err := claims.Identity()
		require.NoError(t, err)
		require.Equal(t, "u-1", profile.ID)
		require.Equal(t, users.RoleUser, profile.Role)
	})

	unusable := map[string]token.Claims{
		"missing id":   {"nombre": "Ana", "rol": "USER"},
		"missing name": {"userId": 1, "rol": "USER"},
		"missing role": {"userId": 1, "nombre": "Ana"},
		"unknown role": {"userId": 1, "nombre": "Ana", "rol": "LIBRARIAN"},
		"blank name":   {"userId": 1, "nombre": "  ", "rol": "USER"},
		"object id":    {"userId": map[string]any{"v": 1}, "nombre": "Ana", "rol": "USER"},
	}
	for name, claims := range unusable {
		t.Run(name, func(t *testing.T) {
			_, err := claims.Identity()
			require.ErrorIs(t, err, apperrors.ErrIdentityUnusable)
		})
	}
}

func FuzzDecode(f *testing.F) {
	f.Add("")
	f.Add("a.b.c")
	f.Add("...")
	f.Add(withPayload("eyJ1c2VySWQiOjd9"))
	f.Add(withPayload("e30"))
	f.Add(withPayload("W10"))
	f.Add(withPayload("!!!"))
	f.Add("eyJ.eyJ.eyJ.eyJ")

	f.Fuzz(func(t *testing.T, raw string) {
		claims, err := token.Decode(raw)
		if err != nil {
			require.ErrorIs(t, err, apperrors.ErrMalformedToken)
			return
		}
		require.NotNil(t, claims)
		_, _ = claims.Identity()
	})
}
