package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/internal/auth/guard"
	"github.com/themilan1337/nerdie/internal/auth/repository"
)

func newGuardedEcho(t *testing.T, store *repository.SessionStore) *echo.Echo {
	t.Helper()
	InitGuardMiddleware(guard.New(store, guard.Routes{
		SignIn:          "/auth",
		Dashboard:       "/dashboard",
		DashboardPrefix: "/dashboard",
	}))

	e := echo.New()
	e.Use(DashboardGuardMiddleware(store))
	handler := func(c echo.Context) error { return c.String(http.StatusOK, "ok") }
	e.GET("/about", handler)
	e.GET("/dashboard", handler)
	e.GET("/dashboard/documents", handler)
	return e
}

func doRequest(e *echo.Echo, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGuardMiddlewareRedirectsUnauthenticated(t *testing.T) {
	store := repository.NewSessionStore(repository.NewMemoryStorage())
	e := newGuardedEcho(t, store)

	rec := doRequest(e, "/dashboard/documents")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}

func TestGuardMiddlewareAllowsOutsidePrefix(t *testing.T) {
	store := repository.NewSessionStore(repository.NewMemoryStorage())
	e := newGuardedEcho(t, store)

	rec := doRequest(e, "/about")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestGuardMiddlewareAllowsValidSession(t *testing.T) {
	store := repository.NewSessionStore(repository.NewMemoryStorage())
	require.NoError(t, store.SaveSession(&domain.SessionRecord{
		UID:          "user-1",
		Email:        "user@example.com",
		IDToken:      "token",
		RefreshToken: "refresh",
	}))
	e := newGuardedEcho(t, store)

	assert.Equal(t, http.StatusOK, doRequest(e, "/dashboard").Code)
	// Second request is served off the cached decision.
	assert.Equal(t, http.StatusOK, doRequest(e, "/dashboard").Code)
}

func TestUnguardedPathsDoNotPoisonCache(t *testing.T) {
	storage := repository.NewMemoryStorage()
	storage.Set(domain.StorageKeyIDToken, "token-partial-record")
	storage.Set(domain.StorageKeyUserData, `{"uid":"user-1"}`)
	store := repository.NewSessionStore(storage)
	e := newGuardedEcho(t, store)

	// An unguarded request must not cache an allow for the stored token.
	require.Equal(t, http.StatusOK, doRequest(e, "/about").Code)

	rec := doRequest(e, "/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))

	// The strict predicate ran and cleaned up the partial record.
	_, hasToken := store.IDToken()
	assert.False(t, hasToken)
}

func TestInvalidateGuardCache(t *testing.T) {
	store := repository.NewSessionStore(repository.NewMemoryStorage())
	require.NoError(t, store.SaveSession(&domain.SessionRecord{
		UID:          "user-1",
		Email:        "user@example.com",
		IDToken:      "token",
		RefreshToken: "refresh",
	}))
	e := newGuardedEcho(t, store)

	require.Equal(t, http.StatusOK, doRequest(e, "/dashboard").Code)

	// Sign out: the trio is cleared and the cached decision dropped.
	store.Clear()
	InvalidateGuardCache("token")

	rec := doRequest(e, "/dashboard")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/auth", rec.Header().Get("Location"))
}
