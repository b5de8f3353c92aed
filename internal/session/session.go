// Package session converts credentials to and from a flat string map, the
// shape embedding applications (web session stores, secret managers) tend to
// hold them in. Nothing here touches disk; persistence is the embedder's
// decision and responsibility.
package session

import (
	"fmt"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"skylift/internal/oauth"
)

// Map keys for the exported credential.
const (
	KeyAccessToken      = "access_token"
	KeyAccessExpiresIn  = "access_token_expires_in"
	KeyAccessExpiresAt  = "access_token_expires_at"
	KeyRefreshToken     = "refresh_token"
	KeyRefreshExpiresIn = "refresh_token_expires_in"
	KeyRefreshExpiresAt = "refresh_token_expires_at"
)

// Export flattens a credential into a string map. Expiry instants are
// RFC 3339 in UTC; zero instants export as empty strings.
func Export(cred oauth.Credential) map[string]string {
	out := map[string]string{
		KeyAccessToken:      cred.AccessToken,
		KeyAccessExpiresIn:  strconv.FormatInt(cred.AccessExpiresIn, 10),
		KeyRefreshToken:     cred.RefreshToken,
		KeyRefreshExpiresIn: strconv.FormatInt(cred.RefreshExpiresIn, 10),
	}
	if !cred.AccessExpiresAt.IsZero() {
		out[KeyAccessExpiresAt] = oauth.FormatExpiry(cred.AccessExpiresAt)
	} else {
		out[KeyAccessExpiresAt] = ""
	}
	if !cred.RefreshExpiresAt.IsZero() {
		out[KeyRefreshExpiresAt] = oauth.FormatExpiry(cred.RefreshExpiresAt)
	} else {
		out[KeyRefreshExpiresAt] = ""
	}
	return out
}

// Restore rebuilds a credential from an exported map. A map without an
// access token restores as the zero credential (unauthenticated); malformed
// numeric or timestamp values are errors, since silently dropping them would
// turn an expired credential into a non-expiring one.
func Restore(data map[string]string) (oauth.Credential, error) {
	if data[KeyAccessToken] == "" {
		return oauth.Credential{}, nil
	}

	cred := oauth.Credential{
		AccessToken:  data[KeyAccessToken],
		RefreshToken: data[KeyRefreshToken],
	}

	var err error
	if cred.AccessExpiresIn, err = parseExpiresIn(data[KeyAccessExpiresIn]); err != nil {
		return oauth.Credential{}, fmt.Errorf("invalid %s: %w", KeyAccessExpiresIn, err)
	}
	if cred.RefreshExpiresIn, err = parseExpiresIn(data[KeyRefreshExpiresIn]); err != nil {
		return oauth.Credential{}, fmt.Errorf("invalid %s: %w", KeyRefreshExpiresIn, err)
	}
	if cred.AccessExpiresAt, err = parseExpiresAt(data[KeyAccessExpiresAt]); err != nil {
		return oauth.Credential{}, fmt.Errorf("invalid %s: %w", KeyAccessExpiresAt, err)
	}
	if cred.RefreshExpiresAt, err = parseExpiresAt(data[KeyRefreshExpiresAt]); err != nil {
		return oauth.Credential{}, fmt.Errorf("invalid %s: %w", KeyRefreshExpiresAt, err)
	}

	return cred, nil
}

func parseExpiresIn(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func parseExpiresAt(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return oauth.ParseExpiry(s)
}

// FromOAuth2Token converts an oauth2.Token obtained elsewhere into a
// credential. A zero Expiry maps to a non-expiring access token, matching
// the oauth2 package's convention.
func FromOAuth2Token(tok *oauth2.Token, now time.Time) oauth.Credential {
	if tok == nil || tok.AccessToken == "" {
		return oauth.Credential{}
	}

	cred := oauth.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		cred.AccessExpiresAt = tok.Expiry.UTC().Truncate(time.Second)
		if in := int64(tok.Expiry.Sub(now) / time.Second); in > 0 {
			cred.AccessExpiresIn = in
		} else {
			cred.AccessExpiresIn = 1 // already expired, but not non-expiring
		}
	}
	return cred
}
