package identity

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/themilan1337/nerdie/internal/auth/domain"
)

func pendingProvider(t *testing.T) *GoogleProvider {
	t.Helper()
	return NewGoogleProvider(GoogleConfig{
		PendingResultPath: filepath.Join(t.TempDir(), "pending_signin.json"),
	})
}

func TestConsumeRedirectResultWhenNonePending(t *testing.T) {
	provider := pendingProvider(t)

	id, err := provider.ConsumeRedirectResult(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestConsumeRedirectResultConsumedOnce(t *testing.T) {
	provider := pendingProvider(t)

	parked := &domain.Identity{Subject: "user-1", Email: "user@example.com", IDToken: "token"}
	raw, err := json.Marshal(parked)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(provider.cfg.PendingResultPath, raw, 0o600))

	id, err := provider.ConsumeRedirectResult(context.Background())
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, "user-1", id.Subject)
	assert.Equal(t, "token", id.IDToken)

	id, err = provider.ConsumeRedirectResult(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestConsumeRedirectResultCorruptedFileIsStillConsumed(t *testing.T) {
	provider := pendingProvider(t)
	require.NoError(t, os.WriteFile(provider.cfg.PendingResultPath, []byte("{not json"), 0o600))

	_, err := provider.ConsumeRedirectResult(context.Background())
	require.Error(t, err)

	// The broken result must not wedge every subsequent startup.
	id, err := provider.ConsumeRedirectResult(context.Background())
	require.NoError(t, err)
	assert.Nil(t, id)
}

func TestBeginSignInRequiresConfiguration(t *testing.T) {
	provider := pendingProvider(t)

	_, err := provider.BeginSignIn(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestSignOutWithoutIdentityOnlyDropsPendingResult(t *testing.T) {
	provider := pendingProvider(t)
	require.NoError(t, os.WriteFile(provider.cfg.PendingResultPath, []byte("{}"), 0o600))

	require.NoError(t, provider.SignOut(context.Background(), nil))

	_, err := os.Stat(provider.cfg.PendingResultPath)
	assert.True(t, os.IsNotExist(err))
}

func TestConsentURLCarriesOfflineAccess(t *testing.T) {
	provider := NewGoogleProvider(GoogleConfig{ClientID: "client-1", CallbackPort: 53682})

	consent := provider.consentURL("state-1", "http://127.0.0.1:53682/auth/callback")
	assert.Contains(t, consent, "client_id=client-1")
	assert.Contains(t, consent, "access_type=offline")
	assert.Contains(t, consent, "state=state-1")
	assert.Contains(t, consent, "scope=openid+email+profile")
}
