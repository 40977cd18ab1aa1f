package identity

import (
	"context"
	"fmt"
	"sync"

	"github.com/themilan1337/nerdie/internal/auth/domain"
)

// Bridge owns the live external identity and fans its changes out to
// observers. It is the only component that talks to the Provider directly.
type Bridge struct {
	provider Provider

	mu        sync.Mutex
	current   *domain.Identity
	loading   bool
	observers []func(*domain.Identity)
}

func NewBridge(provider Provider) *Bridge {
	return &Bridge{
		provider: provider,
		// Loading starts true and stays true until the first identity
		// notification resolves the unknown state.
		loading: true,
	}
}

// Observe subscribes to every identity change for the lifetime of the
// process. Notifications are delivered in the order the identity changed.
func (b *Bridge) Observe(fn func(*domain.Identity)) {
	b.mu.Lock()
	b.observers = append(b.observers, fn)
	b.mu.Unlock()
}

// NotifyCurrent replays the current identity to all observers. Called once
// at startup so consumers leave the unknown state even when nobody signs in.
func (b *Bridge) NotifyCurrent() {
	b.mu.Lock()
	current := b.current
	b.loading = false
	observers := append([]func(*domain.Identity){}, b.observers...)
	b.mu.Unlock()
	for _, fn := range observers {
		fn(current)
	}
}

// Restore seeds the live identity from a persisted session without
// notifying observers. NotifyCurrent publishes it afterwards.
func (b *Bridge) Restore(id *domain.Identity) {
	b.mu.Lock()
	b.current = id
	b.mu.Unlock()
}

// BeginInteractiveSignIn launches the provider flow. The loading flag is set
// immediately; under the redirect strategy it is deliberately left true
// across the launch boundary, to be reconciled when the result is resolved.
func (b *Bridge) BeginInteractiveSignIn(ctx context.Context) (*domain.Identity, error) {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	id, err := b.provider.BeginSignIn(ctx)
	if err != nil {
		// Only the popup strategy's own error path reaches this branch; the
		// redirect strategy has already handed control away.
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	if id == nil {
		// Redirect strategy: flow launched, completion comes later.
		return nil, nil
	}

	b.setIdentity(id)
	return id, nil
}

// ResolveInteractiveSignIn must be called unconditionally on every startup.
// It returns (nil, nil) when this startup is not the tail of a redirect flow.
func (b *Bridge) ResolveInteractiveSignIn(ctx context.Context) (*domain.Identity, error) {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	id, err := b.provider.ConsumeRedirectResult(ctx)
	if err != nil {
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	if id == nil {
		b.mu.Lock()
		b.loading = false
		b.mu.Unlock()
		return nil, nil
	}

	b.setIdentity(id)
	return id, nil
}

// SignOut revokes the provider session and clears the live identity. The
// identity is cleared even when revocation fails.
func (b *Bridge) SignOut(ctx context.Context) error {
	b.mu.Lock()
	current := b.current
	b.mu.Unlock()

	err := b.provider.SignOut(ctx, current)
	b.setIdentity(nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrProvider, err)
	}
	return nil
}

func (b *Bridge) CurrentIdentity() *domain.Identity {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.current
}

func (b *Bridge) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *Bridge) setIdentity(id *domain.Identity) {
	b.mu.Lock()
	b.current = id
	b.loading = false
	observers := append([]func(*domain.Identity){}, b.observers...)
	b.mu.Unlock()
	for _, fn := range observers {
		fn(id)
	}
}
