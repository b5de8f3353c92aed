// Package oauth implements the credential lifecycle for the skylift client:
// Authorization Code with PKCE against the configured realm, a single-shot
// local listener that captures the browser redirect, and the expiry-driven
// decision between using, refreshing, or re-obtaining the credential.
//
// # Flow
//
//  1. A caller (the API gate) invokes Client.EnsureAuthenticated before
//     every outbound request.
//  2. With no credential held, the client builds an authorization URL with
//     a fresh state and PKCE pair, binds the loopback callback listener,
//     hands the URL to the browser, waits for exactly one redirect, and
//     exchanges the code for tokens.
//  3. With an expired access token and a usable refresh token, only the
//     refresh grant runs.
//  4. With both tokens expired the client fails with
//     ErrReauthenticationRequired rather than surprising automated callers
//     with an interactive prompt.
//
// Credential state (valid, access expired, fully expired) is derived from
// the wall clock on every check. Expiry timestamps are absolute UTC values
// computed when a token set is applied; a token issued with expires_in == 0
// never expires. Credentials live in process memory only and are never
// written to disk.
//
// The Client serializes the whole decision procedure under one lock, so a
// shared instance never runs two logins or two refreshes concurrently.
// Failures are never retried internally; every retry decision belongs to
// the caller.
package oauth
