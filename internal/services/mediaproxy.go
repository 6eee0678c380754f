// HTTP client for the media proxy that stores task photos and videos
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
)

// ProxyResolver resolves file IDs to fetchable URLs via the media proxy.
//
// The proxy owns the binary media; this service only ever exchanges
// identifiers with it.
type ProxyResolver struct {
	baseURL    string
	httpClient *http.Client
}

var _ MediaResolver = (*ProxyResolver)(nil)

// NewProxyResolver creates a media proxy client.
func NewProxyResolver(baseURL string, client *http.Client) *ProxyResolver {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &ProxyResolver{
		baseURL:    baseURL,
		httpClient: client,
	}
}

// resolveResponse is the proxy's answer to a resolve request.
type resolveResponse struct {
	FileID string `json:"file_id"`
	URL    string `json:"url"`
}

// Resolve returns a fetchable URL for the given file ID.
func (p *ProxyResolver) Resolve(ctx context.Context, fileID string) (string, error) {
	fullURL := fmt.Sprintf("%s/files/%s/url", p.baseURL, url.PathEscape(fileID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("proxy returned status %d for file %s", resp.StatusCode, fileID)
	}

	var parsed resolveResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse proxy response: %w", err)
	}
	if parsed.URL == "" {
		return "", fmt.Errorf("proxy returned empty URL for file %s", fileID)
	}

	return parsed.URL, nil
}

// purgeRequest is the body sent to the proxy's purge endpoint.
type purgeRequest struct {
	FileIDs []string `json:"file_ids"`
}

// Purge asks the proxy to delete binary data for the given file IDs.
func (p *ProxyResolver) Purge(ctx context.Context, fileIDs []string) error {
	if len(fileIDs) == 0 {
		return nil
	}

	payload, err := json.Marshal(purgeRequest{FileIDs: fileIDs})
	if err != nil {
		return fmt.Errorf("failed to marshal purge request: %w", err)
	}

	fullURL := p.baseURL + "/files/purge"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("proxy purge returned status %d", resp.StatusCode)
	}

	return nil
}
