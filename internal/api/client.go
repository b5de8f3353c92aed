package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"skylift/pkg/logging"
)

// defaultHTTPTimeout bounds resource API requests.
const defaultHTTPTimeout = 30 * time.Second

// Authenticator supplies a usable access token for outbound requests. It is
// satisfied by *oauth.Client; the indirection keeps this package testable
// without a live identity provider.
type Authenticator interface {
	// EnsureAuthenticated makes the held credential usable or fails.
	EnsureAuthenticated(ctx context.Context) error
	// AccessToken returns the current access token.
	AccessToken() string
}

// APIError is a non-2xx response from the resource API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API request failed with status %d", e.StatusCode)
}

// Client is the authenticated gate to the resource API. Every request runs
// EnsureAuthenticated first, so callers never see an expired token rejected
// by the server when a refresh could have prevented it.
type Client struct {
	baseURL    string
	auth       Authenticator
	httpClient *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for API requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// NewClient creates an API client rooted at baseURL.
func NewClient(baseURL string, auth Authenticator, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get performs an authenticated GET against the given API path. The path is
// joined to the base URL with a trailing slash, matching the server's
// routing. Query values and the optional body pass through unmodified; a nil
// body sends none. Non-2xx responses fail with *APIError.
func (c *Client) Get(ctx context.Context, path string, query url.Values, body io.Reader) ([]byte, error) {
	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	// The server redirects slashless paths; request the canonical form.
	endpoint := fmt.Sprintf("%s/%s/", c.baseURL, strings.Trim(path, "/"))
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create API request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.auth.AccessToken())
	req.Header.Set("Accept", "application/json")

	logging.Debug("API", "GET %s", endpoint)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read API response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Debug("API", "Request failed: status=%d body=%s", resp.StatusCode, string(respBody))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	return respBody, nil
}
