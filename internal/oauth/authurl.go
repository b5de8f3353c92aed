package oauth

import (
	"fmt"
	"net/url"

	"github.com/google/uuid"
)

// PendingAuthorization holds the per-attempt secrets of one interactive
// login: the anti-forgery state and the PKCE pair. It lives only for the
// duration of the attempt and is discarded once the redirect is captured,
// whether or not the attempt succeeded.
type PendingAuthorization struct {
	State string
	PKCE  *PKCEChallenge
}

// NewPendingAuthorization generates a fresh state value and PKCE pair.
// Neither is ever reused across attempts.
func NewPendingAuthorization() (*PendingAuthorization, error) {
	pkce, err := GeneratePKCE()
	if err != nil {
		return nil, err
	}

	return &PendingAuthorization{
		State: uuid.NewString(),
		PKCE:  pkce,
	}, nil
}

// BuildAuthorizationURL assembles the browser-facing authorization request
// URL from the fixed client configuration and a pending attempt.
func BuildAuthorizationURL(endpoint, clientID, redirectURI string, pending *PendingAuthorization) (string, error) {
	authURL, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid authorization endpoint: %w", err)
	}

	query := authURL.Query()
	query.Set("client_id", clientID)
	query.Set("response_type", "code")
	query.Set("scope", "openid")
	query.Set("redirect_uri", redirectURI)
	query.Set("state", pending.State)
	query.Set("code_challenge", pending.PKCE.CodeChallenge)
	query.Set("code_challenge_method", CodeChallengeMethod)
	authURL.RawQuery = query.Encode()

	return authURL.String(), nil
}
