package identity

import (
	"context"

	"github.com/themilan1337/nerdie/internal/auth/domain"
)

// Strategy selects how the interactive sign-in flow completes. The two are
// mutually exclusive per deployment.
type Strategy string

const (
	// StrategyRedirect launches the flow and returns immediately; the
	// credential is parked as a pending result and consumed on a later
	// startup.
	StrategyRedirect Strategy = "redirect"
	// StrategyPopup blocks in place until the flow resolves.
	StrategyPopup Strategy = "popup"
)

//go:generate mockgen -destination=../test/mock_provider.go -package=test github.com/themilan1337/nerdie/internal/auth/identity Provider
type Provider interface {
	// BeginSignIn starts the interactive flow. Under StrategyPopup it blocks
	// and returns the external identity. Under StrategyRedirect it returns
	// (nil, nil) once the flow is launched; completion is picked up by
	// ConsumeRedirectResult.
	BeginSignIn(ctx context.Context) (*domain.Identity, error)

	// ConsumeRedirectResult returns the parked credential of a completed
	// redirect flow, or (nil, nil) when there is none. The pending result is
	// consumed exactly once: a second call returns (nil, nil).
	ConsumeRedirectResult(ctx context.Context) (*domain.Identity, error)

	// SignOut revokes the provider-side session for the given identity.
	// Best effort; id may be nil.
	SignOut(ctx context.Context, id *domain.Identity) error
}
