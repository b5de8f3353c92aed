// Package api is the authenticated gate to the skylift resource API: every
// outbound request first runs the credential lifecycle check, then attaches
// the resulting bearer token. It also resolves use cases to their deployment
// inference endpoints and can invoke them.
package api
