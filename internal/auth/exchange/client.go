package exchange

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/internal/auth/repository"
	"github.com/themilan1337/nerdie/pkg/apierror"
	"github.com/themilan1337/nerdie/pkg/logger"
	"github.com/themilan1337/nerdie/pkg/validator"
)

// Client exchanges an external identity credential for an application
// session at the auth backend. Writing the resulting record into the session
// store is its only side effect; it never navigates.
type Client struct {
	baseURL    string
	httpClient *http.Client
	repo       repository.SessionRepository
}

func NewClient(baseURL string, repo repository.SessionRepository) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		repo:       repo,
	}
}

type exchangeRequest struct {
	IDToken string `json:"idToken"`
}

// Exchange POSTs the credential to the backend verification endpoint and
// persists the returned session record.
func (c *Client) Exchange(ctx context.Context, idToken string) (*domain.SessionRecord, error) {
	payload, err := json.Marshal(exchangeRequest{IDToken: idToken})
	if err != nil {
		return nil, fmt.Errorf("failed to encode exchange request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/google", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build exchange request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s", domain.ErrBackendRejected, apierror.Message(resp.StatusCode, body))
	}

	record := &domain.SessionRecord{}
	if err := json.Unmarshal(body, record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	if err := validator.Struct(record); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}

	if err := c.repo.SaveSession(record); err != nil {
		return nil, fmt.Errorf("failed to persist session record: %w", err)
	}

	logger.Info("Session exchanged", "uid", record.UID)
	return record, nil
}
