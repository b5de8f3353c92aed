// Package logging provides structured, leveled logging for skylift.
//
// It is a thin wrapper around Go's standard slog package that adds a
// subsystem tag to every entry so log output can be filtered by origin
// (OAuth, API, Config, Bootstrap).
//
// Usage:
//
//	logging.Init(logging.LevelInfo, os.Stderr)
//	logging.Debug("OAuth", "exchanging authorization code (endpoint=%s)", url)
//	logging.Error("API", err, "request failed")
//
// Secrets policy: access tokens, refresh tokens, and PKCE verifiers are
// never logged at any level. Token endpoint response bodies may be logged
// at Debug only.
package logging
