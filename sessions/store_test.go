package sessions_test

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/jrsteele09/go-library-web/internal/errors"
	"github.com/jrsteele09/go-library-web/sessions"
	"github.com/jrsteele09/go-library-web/users"
	"github.com/stretchr/testify/require"
)

var errStorageDown = errors.New("storage down")

type brokenRepo struct{}

func (brokenRepo) Put(context.Context, string, map[string]string, time.Duration) error {
	return errStorageDown
}

func (brokenRepo) Get(context.Context, string) (map[string]string, error) {
	return nil, errStorageDown
}

func (brokenRepo) Delete(context.Context, string) error { return errStorageDown }

func (brokenRepo) Close() error { return nil }

func testProfile() users.Profile {
	return users.Profile{ID: "7", DisplayName: "Ana", Role: users.RoleAdmin, Email: "ana@test.com"}
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()
	store := sessions.NewStore(repo, time.Hour)

	saved := sessions.Authenticated(testProfile(), "access", "refresh")
	require.NoError(t, store.Save(ctx, "s1", saved))

	loaded := store.Load(ctx, "s1")
	require.Equal(t, saved, loaded)
	require.True(t, loaded.IsAdmin())

	entries, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Equal(t, "true", entries[sessions.EntryAuthenticated])
	require.Equal(t, "true", entries[sessions.EntryAdmin])
	require.Equal(t, "access", entries[sessions.EntryAccessToken])
	require.Equal(t, "refresh", entries[sessions.EntryRefreshToken])
	require.JSONEq(t, `{"id":"7","nombre":"Ana","rol":"ADMIN","email":"ana@test.com"}`, entries[sessions.EntryUser])
}

func TestStore_SaveRejectsInconsistentSession(t *testing.T) {
	ctx := context.Background()
	store := sessions.NewStore(sessions.NewInMemoryRepo(), time.Hour)
	profile := testProfile()

	invalid := map[string]sessions.Session{
		"flag without token":  {IsAuthenticated: true, User: &profile},
		"flag without user":   {IsAuthenticated: true, AccessToken: "access"},
		"token without flag":  {User: &profile, AccessToken: "access"},
		"user without flag":   {User: &profile},
		"token only":          {AccessToken: "access"},
		"authenticated empty": {IsAuthenticated: true},
	}
	for name, session := range invalid {
		t.Run(name, func(t *testing.T) {
			err := store.Save(ctx, "s1", session)
			require.ErrorIs(t, err, apperrors.ErrInvalidSession)
			require.False(t, store.Load(ctx, "s1").IsAuthenticated)
		})
	}

	t.Run("empty session id", func(t *testing.T) {
		err := store.Save(ctx, "", sessions.Authenticated(profile, "a", "r"))
		require.ErrorIs(t, err, apperrors.ErrInvalidSession)
	})
}

func TestStore_LoadDegradesToLoggedOut(t *testing.T) {
	ctx := context.Background()

	cases := map[string]map[string]string{
		"missing profile": {
			sessions.EntryAuthenticated: "true",
			sessions.EntryAccessToken:   "access",
		},
		"corrupt profile": {
			sessions.EntryAuthenticated: "true",
			sessions.EntryUser:          "{not json",
			sessions.EntryAccessToken:   "access",
		},
		"profile without id": {
			sessions.EntryAuthenticated: "true",
			sessions.EntryUser:          `{"nombre":"Ana","rol":"USER"}`,
			sessions.EntryAccessToken:   "access",
		},
		"missing token": {
			sessions.EntryAuthenticated: "true",
			sessions.EntryUser:          `{"id":"1","nombre":"Ana","rol":"USER"}`,
		},
		"blank display name": {
			sessions.EntryAuthenticated: "true",
			sessions.EntryUser:          `{"id":"7","nombre":"","rol":"USER"}`,
			sessions.EntryAccessToken:   "access",
		},
		"unknown role": {
			sessions.EntryAuthenticated: "true",
			sessions.EntryUser:          `{"id":"7","nombre":"Ana","rol":"SUPERUSER"}`,
			sessions.EntryAccessToken:   "access",
		},
		"flag not set": {
			sessions.EntryAuthenticated: "false",
			sessions.EntryUser:          `{"id":"1","nombre":"Ana","rol":"USER"}`,
			sessions.EntryAccessToken:   "access",
		},
	}
	for name, entries := range cases {
		t.Run(name, func(t *testing.T) {
			repo := sessions.NewInMemoryRepo()
			require.NoError(t, repo.Put(ctx, "s1", entries, 0))

			loaded := sessions.NewStore(repo, 0).Load(ctx, "s1")
			require.Equal(t, sessions.Session{}, loaded)
		})
	}

	t.Run("storage unavailable", func(t *testing.T) {
		loaded := sessions.NewStore(brokenRepo{}, 0).Load(ctx, "s1")
		require.Equal(t, sessions.Session{}, loaded)
	})

	t.Run("unknown session", func(t *testing.T) {
		loaded := sessions.NewStore(sessions.NewInMemoryRepo(), 0).Load(ctx, "missing")
		require.Equal(t, sessions.Session{}, loaded)
	})
}

func TestStore_AdminEntryIsNotAuthoritative(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()
	require.NoError(t, repo.Put(ctx, "s1", map[string]string{
		sessions.EntryAuthenticated: "true",
		sessions.EntryUser:          `{"id":"1","nombre":"Luis","rol":"USER"}`,
		sessions.EntryAdmin:         "true",
		sessions.EntryAccessToken:   "access",
	}, 0))

	loaded := sessions.NewStore(repo, 0).Load(ctx, "s1")
	require.True(t, loaded.IsAuthenticated)
	require.False(t, loaded.IsAdmin())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	repo := sessions.NewInMemoryRepo()
	store := sessions.NewStore(repo, time.Hour)

	require.NoError(t, store.Save(ctx, "s1", sessions.Authenticated(testProfile(), "access", "refresh")))
	require.NoError(t, store.Clear(ctx, "s1"))
	require.Equal(t, sessions.Session{}, store.Load(ctx, "s1"))

	entries, err := repo.Get(ctx, "s1")
	require.NoError(t, err)
	require.Empty(t, entries)

	require.NoError(t, store.Clear(ctx, "s1"))
	require.Error(t, sessions.NewStore(brokenRepo{}, 0).Clear(ctx, "s1"))
}

func TestStore_SaveFailure(t *testing.T) {
	err := sessions.NewStore(brokenRepo{}, 0).Save(context.Background(), "s1", sessions.Authenticated(testProfile(), "a", "r"))
	require.ErrorIs(t, err, errStorageDown)
}

func TestSession_Token(t *testing.T) {
	require.Nil(t, sessions.Session{}.Token())

	tok := sessions.Authenticated(testProfile(), "access", "refresh").Token()
	require.NotNil(t, tok)
	require.Equal(t, "access", tok.AccessToken)
	require.Equal(t, "Bearer", tok.Type())
}

func TestStore_TTLIsNotExtendedByLoad(t *testing.T) {
	ctx := context.Background()
	clock := newClock()
	store := sessions.NewStore(sessions.NewInMemoryRepo(sessions.WithNowTime(clock.Now)), time.Hour)
	require.NoError(t, store.Save(ctx, "s1", sessions.Authenticated(testProfile(), "access", "refresh")))

	clock.Advance(30 * time.Minute)
	require.True(t, store.Load(ctx, "s1").IsAuthenticated)

	clock.Advance(31 * time.Minute)
	require.Equal(t, sessions.Session{}, store.Load(ctx, "s1"))
}
