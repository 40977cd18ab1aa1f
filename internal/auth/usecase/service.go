package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/internal/auth/identity"
	"github.com/themilan1337/nerdie/internal/auth/repository"
	"github.com/themilan1337/nerdie/pkg/apierror"
	"github.com/themilan1337/nerdie/pkg/logger"
)

// Single-flight keys, one per operation kind. A second concurrent call joins
// the in-flight one instead of racing the shared loading and error flags.
const (
	opSignIn           = "sign-in"
	opCompleteRedirect = "complete-redirect"
	opSignOut          = "sign-out"
	opFetchUser        = "fetch-user"
)

// AuthService composes the identity bridge, the session exchange client and
// the persisted session store into the auth facade. One instance is created
// at startup; there is no module-level state.
type AuthService struct {
	bridge    *identity.Bridge
	exchanger Exchanger
	repo      repository.SessionRepository
	navigator Navigator
	routes    Routes

	authBaseURL string
	httpClient  *http.Client

	mu        sync.Mutex
	identity  *domain.Identity
	record    *domain.SessionRecord
	state     domain.AuthState
	loading   bool
	lastError string

	flight singleflight.Group
}

func NewAuthService(bridge *identity.Bridge, exchanger Exchanger, repo repository.SessionRepository, navigator Navigator, routes Routes, authBaseURL string) AuthUsecase {
	s := &AuthService{
		bridge:      bridge,
		exchanger:   exchanger,
		repo:        repo,
		navigator:   navigator,
		routes:      routes,
		authBaseURL: authBaseURL,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		state:       domain.StateUnknown,
		loading:     true,
	}
	bridge.Observe(s.onIdentityChanged)
	return s
}

// onIdentityChanged mirrors every identity change into the facade state and
// reconciles the persisted session record: a live identity picks up the
// stored record, a cleared identity tears the trio down.
func (s *AuthService) onIdentityChanged(id *domain.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.identity = id
	if id != nil {
		record, err := s.repo.LoadSession()
		if err != nil {
			logger.Error("Failed to load stored session record:", err)
		} else if record != nil {
			s.record = record
		}
	} else {
		s.record = nil
		s.repo.Clear()
	}
	s.recalcStateLocked()
	s.loading = false
}

func (s *AuthService) recalcStateLocked() {
	if s.identity != nil && s.record != nil {
		s.state = domain.StateAuthenticated
	} else {
		s.state = domain.StateUnauthenticated
	}
}

func (s *AuthService) Bootstrap(ctx context.Context) (*domain.SessionRecord, error) {
	// A stored record survives process restarts; the live identity does not.
	// Reseed it before the replay so the startup notification does not tear
	// down a valid session.
	if record, err := s.repo.LoadSession(); err != nil {
		logger.Error("Failed to load stored session record:", err)
	} else if record != nil {
		s.bridge.Restore(domain.IdentityFromSession(record))
	}
	s.bridge.NotifyCurrent()
	return s.CompleteRedirectSignIn(ctx)
}

func (s *AuthService) SignIn(ctx context.Context) error {
	_, err, _ := s.flight.Do(opSignIn, func() (any, error) {
		return nil, s.signIn(ctx)
	})
	return err
}

func (s *AuthService) signIn(ctx context.Context) error {
	s.setLoading(true)
	s.setLastError("")

	id, err := s.bridge.BeginInteractiveSignIn(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	if id == nil {
		// Redirect strategy launched: loading stays true across the
		// boundary until the result is resolved.
		return nil
	}

	_, err = s.exchangeAndLand(ctx, id)
	return err
}

func (s *AuthService) CompleteRedirectSignIn(ctx context.Context) (*domain.SessionRecord, error) {
	v, err, _ := s.flight.Do(opCompleteRedirect, func() (any, error) {
		return s.completeRedirectSignIn(ctx)
	})
	record, _ := v.(*domain.SessionRecord)
	return record, err
}

func (s *AuthService) completeRedirectSignIn(ctx context.Context) (*domain.SessionRecord, error) {
	id, err := s.bridge.ResolveInteractiveSignIn(ctx)
	if err != nil {
		s.fail(err)
		return nil, err
	}
	if id == nil {
		// Normal startup, not the tail of a redirect.
		s.setLoading(false)
		return nil, nil
	}
	return s.exchangeAndLand(ctx, id)
}

func (s *AuthService) exchangeAndLand(ctx context.Context, id *domain.Identity) (*domain.SessionRecord, error) {
	record, err := s.exchanger.Exchange(ctx, id.IDToken)
	if err != nil {
		s.fail(err)
		return nil, err
	}

	s.mu.Lock()
	s.record = record
	s.recalcStateLocked()
	s.loading = false
	s.mu.Unlock()

	if err := s.navigator.Navigate(s.routes.Dashboard); err != nil {
		logger.Error("Failed to navigate to dashboard:", err)
	}
	return record, nil
}

func (s *AuthService) SignOut(ctx context.Context) error {
	_, err, _ := s.flight.Do(opSignOut, func() (any, error) {
		return nil, s.signOut(ctx)
	})
	return err
}

func (s *AuthService) signOut(ctx context.Context) error {
	s.setLoading(true)
	s.setLastError("")

	// Provider revocation is best effort: local clearing happens regardless.
	revokeErr := s.bridge.SignOut(ctx)

	s.repo.Clear()
	s.mu.Lock()
	s.identity = nil
	s.record = nil
	s.state = domain.StateUnauthenticated
	s.loading = false
	s.mu.Unlock()

	if err := s.navigator.Navigate(s.routes.SignIn); err != nil {
		logger.Error("Failed to navigate to sign-in:", err)
	}

	if revokeErr != nil {
		s.setLastError(revokeErr.Error())
		return revokeErr
	}
	return nil
}

func (s *AuthService) FetchCurrentUser(ctx context.Context) (*UserInfo, error) {
	v, err, _ := s.flight.Do(opFetchUser, func() (any, error) {
		return s.fetchCurrentUser(ctx)
	})
	info, _ := v.(*UserInfo)
	return info, err
}

func (s *AuthService) fetchCurrentUser(ctx context.Context) (*UserInfo, error) {
	token, ok := s.repo.IDToken()
	if !ok {
		s.fail(domain.ErrNotAuthenticated)
		return nil, domain.ErrNotAuthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.authBaseURL+"/auth/me", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
		s.fail(wrapped)
		return nil, wrapped
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized {
		// The one automatic cross-component side effect: an expired session
		// forces a sign-out before the error is surfaced.
		logger.Warn("Stored token rejected with 401, signing out")
		if err := s.signOut(ctx); err != nil {
			logger.Error("Forced sign-out failed:", err)
		}
		s.setLastError(domain.ErrSessionExpired.Error())
		return nil, domain.ErrSessionExpired
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		wrapped := fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
		s.fail(wrapped)
		return nil, wrapped
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		wrapped := fmt.Errorf("%w: %s", domain.ErrBackendRejected, apierror.Message(resp.StatusCode, body))
		s.fail(wrapped)
		return nil, wrapped
	}

	info := &UserInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		wrapped := fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
		s.fail(wrapped)
		return nil, wrapped
	}
	return info, nil
}

func (s *AuthService) CheckValidity(ctx context.Context) bool {
	_, err := s.FetchCurrentUser(ctx)
	return err == nil
}

func (s *AuthService) AuthHeader() (string, bool) {
	token, ok := s.repo.IDToken()
	if !ok {
		return "", false
	}
	return "Bearer " + token, true
}

func (s *AuthService) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity != nil && s.record != nil
}

func (s *AuthService) State() domain.AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *AuthService) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *AuthService) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

func (s *AuthService) SessionRecord() *domain.SessionRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record
}

func (s *AuthService) CurrentIdentity() *domain.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

func (s *AuthService) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *AuthService) setLastError(msg string) {
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
}

func (s *AuthService) fail(err error) {
	s.mu.Lock()
	s.lastError = err.Error()
	s.loading = false
	s.mu.Unlock()
}
