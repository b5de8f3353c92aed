package oauth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
)

// pkceVerifierBytes is the number of random bytes for the PKCE code
// verifier. 40 bytes (320 bits) encodes to 54 base64url characters, within
// the 43-128 range RFC 7636 allows.
const pkceVerifierBytes = 40

// CodeChallengeMethod is the only challenge method this client uses.
// Plain is not allowed for public clients.
const CodeChallengeMethod = "S256"

// PKCEChallenge represents a PKCE (Proof Key for Code Exchange) pair.
// It is generated fresh per login attempt, consumed once by the token
// exchange, and never persisted.
type PKCEChallenge struct {
	// CodeVerifier is the cryptographically random secret. It is sent only
	// to the token endpoint, never to the browser.
	CodeVerifier string

	// CodeChallenge is the S256 hash of the verifier (base64url, no
	// padding), sent in the authorization request.
	CodeChallenge string
}

// GeneratePKCE generates a new PKCE code verifier and challenge.
// The challenge is deterministic given the verifier:
// base64url(sha256(verifier)) without padding.
func GeneratePKCE() (*PKCEChallenge, error) {
	verifierBytes := make([]byte, pkceVerifierBytes)
	if _, err := rand.Read(verifierBytes); err != nil {
		// Entropy source exhaustion; nothing sane to do but fail the attempt.
		return nil, fmt.Errorf("failed to generate random bytes for PKCE: %w", err)
	}

	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	return &PKCEChallenge{
		CodeVerifier:  verifier,
		CodeChallenge: challenge,
	}, nil
}
