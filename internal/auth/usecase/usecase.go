package usecase

import (
	"context"

	"github.com/themilan1337/nerdie/internal/auth/domain"
)

// AuthUsecase is the single composed surface for the client session
// lifecycle. Route guards and HTTP clients depend on AuthHeader and
// IsAuthenticated only, never on the internals.
type AuthUsecase interface {
	// Bootstrap replays the current identity and resolves a pending
	// redirect sign-in. Must be called once at startup.
	Bootstrap(ctx context.Context) (*domain.SessionRecord, error)
	SignIn(ctx context.Context) error
	CompleteRedirectSignIn(ctx context.Context) (*domain.SessionRecord, error)
	SignOut(ctx context.Context) error
	FetchCurrentUser(ctx context.Context) (*UserInfo, error)
	// CheckValidity downgrades any FetchCurrentUser failure to a boolean.
	CheckValidity(ctx context.Context) bool
	// AuthHeader is a pure synchronous read of the session store. It never
	// makes network calls and never refreshes.
	AuthHeader() (string, bool)

	IsAuthenticated() bool
	State() domain.AuthState
	IsLoading() bool
	LastError() string
	SessionRecord() *domain.SessionRecord
	CurrentIdentity() *domain.Identity
}

// Exchanger trades an external credential for an application session.
type Exchanger interface {
	Exchange(ctx context.Context, idToken string) (*domain.SessionRecord, error)
}

// Navigator is the injected navigation capability, so the facade stays
// testable without a router.
type Navigator interface {
	Navigate(route string) error
}

// Routes names the two landing routes of the client.
type Routes struct {
	SignIn    string
	Dashboard string
}
