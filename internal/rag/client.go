package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/internal/chat"
	"github.com/themilan1337/nerdie/pkg/apierror"
	"github.com/themilan1337/nerdie/pkg/logger"
)

const defaultTopK = 10

// TokenSource supplies the bearer header. The auth facade satisfies it.
type TokenSource interface {
	AuthHeader() (string, bool)
}

// Client queries the retrieval-augmented-generation backend.
type Client struct {
	baseURL    string
	tokens     TokenSource
	httpClient *http.Client
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:    baseURL,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type queryRequest struct {
	Query  string `json:"query"`
	UserID string `json:"user_id"`
	TopK   int    `json:"top_k"`
}

type QueryResponse struct {
	Answer  string        `json:"answer"`
	Sources []chat.Source `json:"sources,omitempty"`
}

// Query asks the RAG service a question over the user's ingested documents.
func (c *Client) Query(ctx context.Context, query, userID string) (*QueryResponse, error) {
	payload, err := json.Marshal(queryRequest{
		Query:  query,
		UserID: userID,
		TopK:   defaultTopK,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/rag/query", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if header, ok := c.tokens.AuthHeader(); ok {
		req.Header.Set("Authorization", header)
	}

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

	result := &QueryResponse{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return result, nil
}

// Health probes the RAG service. Failures are downgraded: an unreachable
// service reads as not healthy rather than an error.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("RAG health probe failed:", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
