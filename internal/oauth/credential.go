package oauth

import (
	"time"

	"golang.org/x/oauth2"
)

// ExpiryFormat is the fixed timestamp format for exporting expiry values to
// external stores (sessions). RFC 3339 in UTC: second precision, explicit
// offset, no timezone ambiguity on reimport.
const ExpiryFormat = time.RFC3339

// State is the derived lifecycle state of a Credential. It is computed from
// the credential and the wall clock on every check, never stored, so it can
// not go stale between checks.
type State int

const (
	// StateUnauthenticated means no access token is held.
	StateUnauthenticated State = iota

	// StateValid means the access token can be used as-is.
	StateValid

	// StateAccessExpired means the access token is expired but the refresh
	// token is still usable.
	StateAccessExpired

	// StateFullyExpired means both tokens are expired (or no refresh token
	// is held); only a new interactive login can recover.
	StateFullyExpired
)

// String makes State satisfy fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateValid:
		return "valid"
	case StateAccessExpired:
		return "access_expired"
	case StateFullyExpired:
		return "fully_expired"
	default:
		return "unknown"
	}
}

// Credential is the unit of authentication state held by a client. It is
// replaced atomically as a whole when a token set is applied; the access and
// refresh halves are never updated independently.
//
// A token whose ExpiresIn is 0 never expires, regardless of the stored
// timestamp. This lets a caller seed a long-lived or externally managed
// token without the client trying to refresh it.
type Credential struct {
	AccessToken      string
	AccessExpiresIn  int64
	AccessExpiresAt  time.Time
	RefreshToken     string
	RefreshExpiresIn int64
	RefreshExpiresAt time.Time
}

// IsZero reports whether no access token is held. A credential without an
// access token is "not logged in"; its expiry fields are meaningless.
func (c Credential) IsZero() bool {
	return c.AccessToken == ""
}

// AccessExpired reports whether the access token is expired at now.
// A token is expired exactly at its expiry instant (>= comparison, no grace
// window). Non-expiring tokens (ExpiresIn == 0) are never expired.
func (c Credential) AccessExpired(now time.Time) bool {
	if c.AccessExpiresIn == 0 {
		return false
	}
	return !now.Before(c.AccessExpiresAt)
}

// RefreshExpired reports whether the refresh token is expired at now.
// An absent refresh token counts as expired.
func (c Credential) RefreshExpired(now time.Time) bool {
	if c.RefreshToken == "" {
		return true
	}
	if c.RefreshExpiresIn == 0 {
		return false
	}
	return !now.Before(c.RefreshExpiresAt)
}

// StateAt derives the credential's lifecycle state at the given instant.
func (c Credential) StateAt(now time.Time) State {
	if c.IsZero() {
		return StateUnauthenticated
	}
	if !c.AccessExpired(now) {
		return StateValid
	}
	if !c.RefreshExpired(now) {
		return StateAccessExpired
	}
	return StateFullyExpired
}

// NewCredential builds a credential from a token endpoint response, with
// expiry timestamps computed at the moment of application:
// expires_at = now (UTC, second precision) + expires_in. The whole
// credential is replaced; a missing refresh_token in the response means the
// new credential has no refresh half, even if the old one did.
func NewCredential(ts *TokenSet, now time.Time) Credential {
	applied := now.UTC().Truncate(time.Second)
	return Credential{
		AccessToken:      ts.AccessToken,
		AccessExpiresIn:  ts.ExpiresIn,
		AccessExpiresAt:  applied.Add(time.Duration(ts.ExpiresIn) * time.Second),
		RefreshToken:     ts.RefreshToken,
		RefreshExpiresIn: ts.RefreshExpiresIn,
		RefreshExpiresAt: applied.Add(time.Duration(ts.RefreshExpiresIn) * time.Second),
	}
}

// ToOAuth2Token converts the credential to an oauth2.Token for use with
// golang.org/x/oauth2-based HTTP stacks. Non-expiring access tokens map to
// a zero Expiry, which oauth2 likewise treats as never expiring.
func (c Credential) ToOAuth2Token() *oauth2.Token {
	token := &oauth2.Token{
		AccessToken:  c.AccessToken,
		TokenType:    "Bearer",
		RefreshToken: c.RefreshToken,
	}
	if c.AccessExpiresIn != 0 {
		token.Expiry = c.AccessExpiresAt
	}
	return token
}

// FormatExpiry renders an expiry timestamp in the fixed export format.
func FormatExpiry(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(ExpiryFormat)
}

// ParseExpiry parses a timestamp previously produced by FormatExpiry.
func ParseExpiry(s string) (time.Time, error) {
	return time.Parse(ExpiryFormat, s)
}
