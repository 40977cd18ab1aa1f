package identity

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themilan1337/nerdie/internal/auth/domain"
)

type stubProvider struct {
	signInResult  *domain.Identity
	signInErr     error
	consumeResult *domain.Identity
	consumeErr    error
	signOutErr    error

	signedOutWith *domain.Identity
}

func (s *stubProvider) BeginSignIn(ctx context.Context) (*domain.Identity, error) {
	return s.signInResult, s.signInErr
}

func (s *stubProvider) ConsumeRedirectResult(ctx context.Context) (*domain.Identity, error) {
	return s.consumeResult, s.consumeErr
}

func (s *stubProvider) SignOut(ctx context.Context, id *domain.Identity) error {
	s.signedOutWith = id
	return s.signOutErr
}

func liveIdentity() *domain.Identity {
	return &domain.Identity{Subject: "user-1", Email: "user@example.com", IDToken: "token"}
}

func TestBridgeStartsLoading(t *testing.T) {
	bridge := NewBridge(&stubProvider{})
	assert.True(t, bridge.Loading())
	assert.Nil(t, bridge.CurrentIdentity())
}

func TestNotifyCurrentReplaysAndClearsLoading(t *testing.T) {
	bridge := NewBridge(&stubProvider{})

	var notified []*domain.Identity
	bridge.Observe(func(id *domain.Identity) {
		notified = append(notified, id)
	})

	bridge.NotifyCurrent()

	require.Len(t, notified, 1)
	assert.Nil(t, notified[0])
	assert.False(t, bridge.Loading())
}

func TestBeginInteractiveSignInNotifiesObservers(t *testing.T) {
	bridge := NewBridge(&stubProvider{signInResult: liveIdentity()})

	var notified []*domain.Identity
	bridge.Observe(func(id *domain.Identity) {
		notified = append(notified, id)
	})

	id, err := bridge.BeginInteractiveSignIn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, id)

	require.Len(t, notified, 1)
	assert.Equal(t, "user-1", notified[0].Subject)
	assert.Equal(t, id, bridge.CurrentIdentity())
	assert.False(t, bridge.Loading())
}

func TestBeginInteractiveSignInFailureResetsLoading(t *testing.T) {
	bridge := NewBridge(&stubProvider{signInErr: errors.New("window closed")})

	_, err := bridge.BeginInteractiveSignIn(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.False(t, bridge.Loading())
	assert.Nil(t, bridge.CurrentIdentity())
}

func TestBeginInteractiveSignInRedirectKeepsLoading(t *testing.T) {
	bridge := NewBridge(&stubProvider{})

	id, err := bridge.BeginInteractiveSignIn(context.Background())
	require.NoError(t, err)

	assert.Nil(t, id)
	assert.True(t, bridge.Loading())
}

func TestResolveInteractiveSignInWithoutResult(t *testing.T) {
	bridge := NewBridge(&stubProvider{})

	id, err := bridge.ResolveInteractiveSignIn(context.Background())
	require.NoError(t, err)

	assert.Nil(t, id)
	assert.False(t, bridge.Loading())
}

func TestResolveInteractiveSignInPublishesResult(t *testing.T) {
	bridge := NewBridge(&stubProvider{consumeResult: liveIdentity()})

	var notified []*domain.Identity
	bridge.Observe(func(id *domain.Identity) {
		notified = append(notified, id)
	})

	id, err := bridge.ResolveInteractiveSignIn(context.Background())
	require.NoError(t, err)
	require.NotNil(t, id)
	require.Len(t, notified, 1)
	assert.Equal(t, id, notified[0])
}

func TestSignOutClearsIdentityEvenOnRevocationFailure(t *testing.T) {
	provider := &stubProvider{signInResult: liveIdentity(), signOutErr: errors.New("revoke failed")}
	bridge := NewBridge(provider)

	_, err := bridge.BeginInteractiveSignIn(context.Background())
	require.NoError(t, err)

	err = bridge.SignOut(context.Background())
	require.Error(t, err)

	assert.ErrorIs(t, err, domain.ErrProvider)
	assert.Nil(t, bridge.CurrentIdentity())
	require.NotNil(t, provider.signedOutWith)
	assert.Equal(t, "user-1", provider.signedOutWith.Subject)
}

func TestRestoreSeedsWithoutNotifying(t *testing.T) {
	bridge := NewBridge(&stubProvider{})

	var notifications int
	bridge.Observe(func(*domain.Identity) { notifications++ })

	bridge.Restore(liveIdentity())
	assert.Equal(t, 0, notifications)
	assert.True(t, bridge.Loading())

	bridge.NotifyCurrent()
	assert.Equal(t, 1, notifications)
	require.NotNil(t, bridge.CurrentIdentity())
	assert.Equal(t, "user-1", bridge.CurrentIdentity().Subject)
}
