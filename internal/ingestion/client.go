package ingestion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/themilan1337/nerdie/internal/auth/domain"
	"github.com/themilan1337/nerdie/pkg/apierror"
)

// TokenSource supplies the bearer header. The auth facade satisfies it.
type TokenSource interface {
	AuthHeader() (string, bool)
}

// Client is the typed wrapper over the ingestion backend. Uploads run on a
// dedicated HTTP client with a generous timeout, since embedding large
// documents is slow.
type Client struct {
	baseURL      string
	tokens       TokenSource
	httpClient   *http.Client
	uploadClient *http.Client
}

func NewClient(baseURL string, tokens TokenSource) *Client {
	return &Client{
		baseURL:      baseURL,
		tokens:       tokens,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		uploadClient: &http.Client{Timeout: 5 * time.Minute},
	}
}

// IngestText submits raw text for chunking and embedding.
func (c *Client) IngestText(ctx context.Context, input TextInput) (*Response, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode text input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ingest/text", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachAuth(req)

	return c.do(c.httpClient, req)
}

// IngestPDF uploads a PDF document. onProgress, when non-nil, receives the
// upload percentage as bytes go out.
func (c *Client) IngestPDF(ctx context.Context, path string, onProgress func(percent int)) (*Response, error) {
	return c.uploadFile(ctx, "/ingest/pdf", path, onProgress)
}

// IngestImage uploads an image for OCR ingestion.
func (c *Client) IngestImage(ctx context.Context, path string, onProgress func(percent int)) (*Response, error) {
	return c.uploadFile(ctx, "/ingest/image", path, onProgress)
}

// UploadDocument dispatches a file to the endpoint matching its type: PDFs
// and images go to their dedicated endpoints, anything else to the generic
// upload.
func (c *Client) UploadDocument(ctx context.Context, path string, onProgress func(percent int)) (*Response, error) {
	switch {
	case strings.EqualFold(filepath.Ext(path), ".pdf"):
		return c.IngestPDF(ctx, path, onProgress)
	case isImagePath(path):
		return c.IngestImage(ctx, path, onProgress)
	default:
		return c.uploadFile(ctx, "/ingest/upload", path, onProgress)
	}
}

// VectorInsert inserts a pre-embedded chunk.
func (c *Client) VectorInsert(ctx context.Context, input VectorInsertInput) (*Response, error) {
	payload, err := json.Marshal(input)
	if err != nil {
		return nil, fmt.Errorf("failed to encode vector input: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/vector/insert", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	c.attachAuth(req)

	return c.do(c.httpClient, req)
}

// FetchDocuments lists the caller's ingested documents.
func (c *Client) FetchDocuments(ctx context.Context) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/ingest/documents", nil)
	if err != nil {
		return nil, err
	}
	c.attachAuth(req)

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

	var documents []Document
	if err := json.Unmarshal(body, &documents); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return documents, nil
}

// Health probes the ingestion service without auth.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ingestion service unhealthy: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) attachAuth(req *http.Request) {
	if header, ok := c.tokens.AuthHeader(); ok {
		req.Header.Set("Authorization", header)
	}
}

func (c *Client) do(client *http.Client, req *http.Request) (*Response, error) {
	resp, err := client.Do(req)
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

	result := &Response{}
	if err := json.Unmarshal(body, result); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedResponse, err)
	}
	return result, nil
}

func isImagePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp":
		return true
	}
	return false
}
