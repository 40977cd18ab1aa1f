package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/pkg/logger"
)

const (
	googleAuthURL     = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenURL    = "https://oauth2.googleapis.com/token"
	googleRevokeURL   = "https://oauth2.googleapis.com/revoke"
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"

	// A detached redirect flow is abandoned if the user never completes the
	// consent screen.
	redirectFlowTimeout = 5 * time.Minute
)

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	CallbackPort int
	Strategy     Strategy
	// PendingResultPath is where a completed redirect flow parks the
	// credential until the next startup consumes it.
	PendingResultPath string
}

// GoogleProvider implements the interactive Google sign-in flow: it opens
// the consent screen in the user's browser and receives the authorization
// code on a loopback callback, then exchanges it for tokens.
type GoogleProvider struct {
	cfg         GoogleConfig
	httpClient  *http.Client
	openBrowser func(url string) error
}

func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyRedirect
	}
	return &GoogleProvider{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		openBrowser: openBrowser,
	}
}

type googleTokenResponse struct {
	AccessToken  string `json:"access_token"`
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type googleUserInfo struct {
	Subject string `json:"sub"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}

func (p *GoogleProvider) BeginSignIn(ctx context.Context) (*domain.Identity, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return nil, errors.New("google OAuth is not configured")
	}

	state := uuid.NewString()
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d/auth/callback", p.cfg.CallbackPort)

	codeCh := make(chan string, 1)
	failCh := make(chan error, 1)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/auth/callback", func(c echo.Context) error {
		if reason := c.QueryParam("error"); reason != "" {
			failCh <- fmt.Errorf("sign-in was cancelled: %s", reason)
			return c.HTML(http.StatusOK, callbackPage("Sign-in was cancelled."))
		}
		if c.QueryParam("state") != state {
			failCh <- errors.New("state parameter mismatch")
			return c.HTML(http.StatusBadRequest, callbackPage("Invalid sign-in state."))
		}
		code := c.QueryParam("code")
		if code == "" {
			failCh <- errors.New("authorization code is missing")
			return c.HTML(http.StatusBadRequest, callbackPage("Authorization code is missing."))
		}
		codeCh <- code
		return c.HTML(http.StatusOK, callbackPage("Signed in. You can close this window."))
	})

	go func() {
		if err := e.Start(fmt.Sprintf("127.0.0.1:%d", p.cfg.CallbackPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failCh <- fmt.Errorf("failed to start callback listener: %w", err)
		}
	}()

	consentURL := p.consentURL(state, redirectURI)
	if err := p.openBrowser(consentURL); err != nil {
		logger.Warn("Could not open a browser, visit the URL manually", "url", consentURL)
	}

	if p.cfg.Strategy == StrategyRedirect {
		// Hand control away: the credential is parked for a later startup.
		go func() {
			defer shutdownQuietly(e)
			waitCtx, cancel := context.WithTimeout(context.Background(), redirectFlowTimeout)
			defer cancel()
			id, err := p.awaitCallback(waitCtx, redirectURI, codeCh, failCh)
			if err != nil {
				logger.Error("Redirect sign-in flow failed:", err)
				return
			}
			if err := p.parkPendingResult(id); err != nil {
				logger.Error("Failed to park sign-in result:", err)
			}
		}()
		return nil, nil
	}

	defer shutdownQuietly(e)
	return p.awaitCallback(ctx, redirectURI, codeCh, failCh)
}

func (p *GoogleProvider) ConsumeRedirectResult(ctx context.Context) (*domain.Identity, error) {
	raw, err := os.ReadFile(p.cfg.PendingResultPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read pending sign-in result: %w", err)
	}

	// The pending result is consumed exactly once, even when it turns out
	// to be unreadable.
	if err := os.Remove(p.cfg.PendingResultPath); err != nil {
		logger.Error("Failed to remove pending sign-in result:", err)
	}

	id := &domain.Identity{}
	if err := json.Unmarshal(raw, id); err != nil {
		return nil, fmt.Errorf("pending sign-in result is corrupted: %w", err)
	}
	return id, nil
}

func (p *GoogleProvider) SignOut(ctx context.Context, id *domain.Identity) error {
	_ = os.Remove(p.cfg.PendingResultPath)
	if id == nil {
		return nil
	}

	token := id.RefreshToken
	if token == "" {
		token = id.IDToken
	}
	form := url.Values{"token": {token}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleRevokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("token revocation failed with status %d", resp.StatusCode)
	}
	return nil
}

func (p *GoogleProvider) consentURL(state, redirectURI string) string {
	query := url.Values{
		"client_id":     {p.cfg.ClientID},
		"redirect_uri":  {redirectURI},
		"response_type": {"code"},
		"scope":         {"openid email profile"},
		"state":         {state},
		"access_type":   {"offline"},
		"prompt":        {"consent"},
	}
	return googleAuthURL + "?" + query.Encode()
}

func (p *GoogleProvider) awaitCallback(ctx context.Context, redirectURI string, codeCh <-chan string, failCh <-chan error) (*domain.Identity, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-failCh:
		return nil, err
	case code := <-codeCh:
		return p.completeSignIn(ctx, code, redirectURI)
	}
}

func (p *GoogleProvider) completeSignIn(ctx context.Context, code, redirectURI string) (*domain.Identity, error) {
	tokens, err := p.exchangeCodeForTokens(ctx, code, redirectURI)
	if err != nil {
		return nil, err
	}

	info, err := p.fetchUserInfo(ctx, tokens.AccessToken)
	if err != nil {
		return nil, err
	}

	return &domain.Identity{
		Subject:      info.Subject,
		Email:        info.Email,
		DisplayName:  info.Name,
		PhotoURL:     info.Picture,
		IDToken:      tokens.IDToken,
		RefreshToken: tokens.RefreshToken,
	}, nil
}

func (p *GoogleProvider) exchangeCodeForTokens(ctx context.Context, code, redirectURI string) (*googleTokenResponse, error) {
	form := url.Values{
		"code":          {code},
		"client_id":     {p.cfg.ClientID},
		"client_secret": {p.cfg.ClientSecret},
		"redirect_uri":  {redirectURI},
		"grant_type":    {"authorization_code"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, googleTokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token exchange failed with status %d", resp.StatusCode)
	}

	tokens := &googleTokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(tokens); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokens.IDToken == "" {
		return nil, errors.New("token response is missing an id token")
	}
	return tokens, nil
}

func (p *GoogleProvider) fetchUserInfo(ctx context.Context, accessToken string) (*googleUserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, googleUserInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo request failed with status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	info := &googleUserInfo{}
	if err := json.Unmarshal(body, info); err != nil {
		return nil, fmt.Errorf("failed to parse userinfo response: %w", err)
	}
	return info, nil
}

func (p *GoogleProvider) parkPendingResult(id *domain.Identity) error {
	raw, err := json.Marshal(id)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(p.cfg.PendingResultPath), 0o700); err != nil {
		return err
	}
	return os.WriteFile(p.cfg.PendingResultPath, raw, 0o600)
}

func shutdownQuietly(e *echo.Echo) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Failed to shut down callback listener:", err)
	}
}

func callbackPage(message string) string {
	return "<html><body><p>" + message + "</p></body></html>"
}

func openBrowser(target string) error {
	switch runtime.GOOS {
	case "darwin":
		return exec.Command("open", target).Start()
	case "windows":
		return exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	default:
		return exec.Command("xdg-open", target).Start()
	}
}

var _ Provider = (*GoogleProvider)(nil)
