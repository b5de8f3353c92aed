package oauth

import (
	"errors"
	"fmt"
)

// ErrReauthenticationRequired is returned when both the access and refresh
// credentials are expired. The client never starts an interactive login on
// its own in this situation; automated callers must fail loudly instead of
// hanging on a browser prompt.
var ErrReauthenticationRequired = errors.New("access and refresh tokens expired, please log in again")

// ErrListenerTimeout is returned when the redirect listener's deadline
// passes before the browser callback arrives.
var ErrListenerTimeout = errors.New("timed out waiting for authorization callback")

// ListenerError indicates that the local redirect listener failed to
// capture the authorization callback: the port could not be bound, the wait
// was interrupted, the callback query string was malformed, or the returned
// state did not match the pending attempt.
type ListenerError struct {
	Reason string
	Err    error
}

// Error implements the error interface.
func (e *ListenerError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("callback listener: %s: %v", e.Reason, e.Err)
	}
	return "callback listener: " + e.Reason
}

// Unwrap returns the underlying error for errors.Is/As inspection.
func (e *ListenerError) Unwrap() error {
	return e.Err
}

// TokenEndpointError is a non-2xx response from the token endpoint during
// code exchange or refresh. It is never retried automatically: a failure
// here usually means an invalid or already-consumed code or refresh token.
type TokenEndpointError struct {
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *TokenEndpointError) Error() string {
	return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
}

// InvalidTokenResponseError is a 2xx token endpoint response that violates
// the protocol by omitting access_token. Always fatal for the attempt.
type InvalidTokenResponseError struct {
	Body string
}

// Error implements the error interface.
func (e *InvalidTokenResponseError) Error() string {
	return "token response did not contain access_token"
}

// LoginError wraps any failure of the interactive login flow: listener
// capture, state verification, or the code exchange.
type LoginError struct {
	Err error
}

// Error implements the error interface.
func (e *LoginError) Error() string {
	return fmt.Sprintf("login failed: %v", e.Err)
}

// Unwrap returns the underlying error for errors.Is/As inspection.
func (e *LoginError) Unwrap() error {
	return e.Err
}
