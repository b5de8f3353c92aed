package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"skylift/pkg/logging"
)

// defaultHTTPTimeout bounds token endpoint requests.
const defaultHTTPTimeout = 30 * time.Second

// TokenSet is the raw token endpoint response. expires_in and
// refresh_expires_in default to 0 when omitted, which means non-expiring.
type TokenSet struct {
	AccessToken      string `json:"access_token"`
	ExpiresIn        int64  `json:"expires_in"`
	RefreshToken     string `json:"refresh_token"`
	RefreshExpiresIn int64  `json:"refresh_expires_in"`
	TokenType        string `json:"token_type"`
	Scope            string `json:"scope"`
}

// TokenExchanger performs the two token endpoint operations: exchanging an
// authorization code for a token set, and exchanging a refresh token for a
// renewed one. Both are synchronous form-encoded POSTs.
type TokenExchanger struct {
	endpoint    string
	clientID    string
	redirectURI string
	httpClient  *http.Client
}

// NewTokenExchanger creates an exchanger for the given token endpoint and
// public client. A nil httpClient gets a default with a 30s timeout.
func NewTokenExchanger(endpoint, clientID, redirectURI string, httpClient *http.Client) *TokenExchanger {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultHTTPTimeout}
	}
	return &TokenExchanger{
		endpoint:    endpoint,
		clientID:    clientID,
		redirectURI: redirectURI,
		httpClient:  httpClient,
	}
}

// ExchangeCode exchanges an authorization code plus its PKCE verifier for a
// token set. Non-2xx responses fail with *TokenEndpointError; a 2xx
// response without access_token fails with *InvalidTokenResponseError.
func (e *TokenExchanger) ExchangeCode(ctx context.Context, code, codeVerifier string) (*TokenSet, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("client_id", e.clientID)
	data.Set("code", code)
	data.Set("redirect_uri", e.redirectURI)
	data.Set("code_verifier", codeVerifier)

	logging.Debug("OAuth", "Exchanging authorization code (endpoint=%s)", e.endpoint)
	return e.post(ctx, data)
}

// ExchangeRefresh exchanges a refresh token for a renewed token set.
// Same failure contract as ExchangeCode.
func (e *TokenExchanger) ExchangeRefresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("client_id", e.clientID)
	data.Set("refresh_token", refreshToken)

	logging.Debug("OAuth", "Refreshing access token (endpoint=%s)", e.endpoint)
	return e.post(ctx, data)
}

func (e *TokenExchanger) post(ctx context.Context, data url.Values) (*TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Body may carry error hints; keep it out of the message, log at
		// debug only.
		logging.Debug("OAuth", "Token endpoint error: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &TokenEndpointError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var ts TokenSet
	if err := json.Unmarshal(body, &ts); err != nil {
		return nil, fmt.Errorf("failed to parse token response: %w", err)
	}

	if ts.AccessToken == "" {
		logging.Debug("OAuth", "Token response missing access_token: body=%s", string(body))
		return nil, &InvalidTokenResponseError{Body: string(body)}
	}

	return &ts, nil
}
