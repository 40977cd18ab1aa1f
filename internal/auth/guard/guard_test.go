package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/internal/auth/repository"
)

var testRoutes = Routes{
	SignIn:          "/auth",
	Dashboard:       "/dashboard",
	DashboardPrefix: "/dashboard",
}

func newStore(t *testing.T) *repository.SessionStore {
	t.Helper()
	return repository.NewSessionStore(repository.NewMemoryStorage())
}

func seedValidSession(t *testing.T, store *repository.SessionStore) {
	t.Helper()
	require.NoError(t, store.SaveSession(&domain.SessionRecord{
		UID:          "user-1",
		Email:        "user@example.com",
		IDToken:      "token",
		RefreshToken: "refresh",
	}))
}

func rawSessionStore(idToken, userData string) *repository.SessionStore {
	storage := repository.NewMemoryStorage()
	if idToken != "" {
		storage.Set(domain.StorageKeyIDToken, idToken)
	}
	if userData != "" {
		storage.Set(domain.StorageKeyUserData, userData)
	}
	return repository.NewSessionStore(storage)
}

func TestRequireAuthenticatedWithValidSession(t *testing.T) {
	store := newStore(t)
	seedValidSession(t, store)

	decision := New(store, testRoutes).RequireAuthenticated()
	assert.True(t, decision.Allowed())
}

func TestRequireAuthenticatedWithoutSession(t *testing.T) {
	store := newStore(t)

	decision := New(store, testRoutes).RequireAuthenticated()
	assert.False(t, decision.Allowed())
	assert.Equal(t, "/auth", decision.Redirect)
}

func TestRequireAuthenticatedClearsCorruptedSession(t *testing.T) {
	tests := []struct {
		name     string
		idToken  string
		userData string
	}{
		{name: "unparseable record", idToken: "token", userData: "{not json"},
		{name: "missing email", idToken: "token", userData: `{"uid":"user-1"}`},
		{name: "missing uid", idToken: "token", userData: `{"email":"user@example.com"}`},
		{name: "record without token", idToken: "", userData: `{"uid":"user-1","email":"user@example.com"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := rawSessionStore(tt.idToken, tt.userData)

			decision := New(store, testRoutes).RequireAuthenticated()
			assert.Equal(t, "/auth", decision.Redirect)

			_, hasToken := store.IDToken()
			_, hasData := store.RawUserData()
			assert.False(t, hasToken)
			assert.False(t, hasData)
		})
	}
}

func TestRequireGuestRedirectsAuthenticatedUser(t *testing.T) {
	store := newStore(t)
	seedValidSession(t, store)

	decision := New(store, testRoutes).RequireGuest()
	assert.Equal(t, "/dashboard", decision.Redirect)
}

func TestRequireGuestNeverClearsStorage(t *testing.T) {
	store := rawSessionStore("token", `{"uid":"user-1"}`)

	decision := New(store, testRoutes).RequireGuest()
	assert.True(t, decision.Allowed())

	// The corrupted record is left in place for RequireAuthenticated to
	// clean up.
	_, hasToken := store.IDToken()
	assert.True(t, hasToken)
}

func TestDashboardPrefix(t *testing.T) {
	store := newStore(t)
	guards := New(store, testRoutes)

	assert.True(t, guards.DashboardPrefix("/about").Allowed())
	assert.Equal(t, "/auth", guards.DashboardPrefix("/dashboard").Redirect)
	assert.Equal(t, "/auth", guards.DashboardPrefix("/dashboard/documents").Redirect)

	seedValidSession(t, store)
	assert.True(t, guards.DashboardPrefix("/dashboard/documents").Allowed())
}

func TestNilReaderSkipsAllGuards(t *testing.T) {
	guards := New(nil, testRoutes)

	assert.True(t, guards.RequireAuthenticated().Allowed())
	assert.True(t, guards.RequireGuest().Allowed())
	assert.True(t, guards.DashboardPrefix("/dashboard").Allowed())
}
