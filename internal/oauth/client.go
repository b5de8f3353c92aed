package oauth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"runtime"
	"sync"
	"time"

	"skylift/internal/config"
	"skylift/pkg/logging"
)

// Client owns one credential set and decides, before every authenticated
// operation, whether to proceed, refresh, or require a new login. There is
// exactly one credential per Client; callers that share a Client across
// goroutines get the serialization they need from the Client itself: the
// whole decision procedure runs under one exclusive lock, released only
// after the credential has been atomically replaced or the attempt failed.
// Refresh tokens are typically single-use server-side, so two racing
// refreshes would waste one of them.
type Client struct {
	cfg       config.Config
	exchanger *TokenExchanger

	mu   sync.Mutex
	cred Credential

	now         func() time.Time
	openBrowser func(string) error
	authPrompt  func(string)
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client used for token endpoint requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.exchanger = NewTokenExchanger(
			c.cfg.TokenEndpoint(), c.cfg.AuthClientID, c.cfg.AuthRedirectURI, httpClient)
	}
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithBrowserLauncher overrides how the authorization URL is opened.
func WithBrowserLauncher(open func(string) error) Option {
	return func(c *Client) { c.openBrowser = open }
}

// WithAuthPrompt overrides how the authorization URL is presented to the
// user when a login starts.
func WithAuthPrompt(prompt func(authURL string)) Option {
	return func(c *Client) { c.authPrompt = prompt }
}

// WithCredential pre-seeds the client with a credential a caller already
// holds, e.g. one restored from an external session.
func WithCredential(cred Credential) Option {
	return func(c *Client) { c.cred = cred }
}

// NewClient creates a client from the given configuration.
func NewClient(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		cfg:         cfg,
		exchanger:   NewTokenExchanger(cfg.TokenEndpoint(), cfg.AuthClientID, cfg.AuthRedirectURI, nil),
		now:         time.Now,
		openBrowser: launchBrowser,
		authPrompt:  defaultAuthPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultAuthPrompt(authURL string) {
	fmt.Fprintln(os.Stderr, "Please open the following URL to authenticate with skylift:")
	fmt.Fprintln(os.Stderr, "  "+authURL)
}

// launchBrowser hands the authorization URL to the platform's URL opener
// without waiting; the browser process outlives the login flow. Overridable
// per client with WithBrowserLauncher.
func launchBrowser(url string) error {
	var argv []string
	switch runtime.GOOS {
	case "darwin":
		argv = []string{"open", url}
	case "windows":
		argv = []string{"cmd", "/c", "start", url}
	case "linux":
		argv = []string{"xdg-open", url}
	default:
		return fmt.Errorf("no browser launcher for platform %s", runtime.GOOS)
	}

	if err := exec.Command(argv[0], argv[1:]...).Start(); err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}
	return nil
}

// EnsureAuthenticated makes the credential usable or fails:
//
//  1. no access token: run the full interactive login;
//  2. access token valid: return immediately, no network call;
//  3. access expired, refresh usable: refresh only;
//  4. both expired: fail with ErrReauthenticationRequired. An interactive
//     login is never started implicitly here.
func (c *Client) EnsureAuthenticated(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch state := c.cred.StateAt(c.now()); state {
	case StateUnauthenticated:
		logging.Debug("OAuth", "No credential held, starting interactive login")
		return c.loginLocked(ctx)
	case StateValid:
		return nil
	case StateAccessExpired:
		logging.Debug("OAuth", "Access token expired, refreshing")
		return c.refreshLocked(ctx)
	default: // StateFullyExpired
		logging.Debug("OAuth", "Access and refresh tokens expired")
		return ErrReauthenticationRequired
	}
}

// Login runs the full interactive login flow regardless of current state,
// replacing the credential on success.
func (c *Client) Login(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loginLocked(ctx)
}

// loginLocked drives one interactive login attempt: fresh state and PKCE
// pair, local redirect listener, browser hand-off, code exchange. Any
// failure is wrapped in *LoginError; the pending attempt is discarded
// without touching the credential.
func (c *Client) loginLocked(ctx context.Context) error {
	pending, err := NewPendingAuthorization()
	if err != nil {
		return &LoginError{Err: err}
	}

	authURL, err := BuildAuthorizationURL(
		c.cfg.AuthorizationEndpoint(), c.cfg.AuthClientID, c.cfg.AuthRedirectURI, pending)
	if err != nil {
		return &LoginError{Err: err}
	}

	server := NewCallbackServer(c.cfg.CallbackPort)
	if err := server.Start(ctx); err != nil {
		return &LoginError{Err: err}
	}
	defer server.Stop()

	c.authPrompt(authURL)

	if c.cfg.OpenBrowser {
		if err := c.openBrowser(authURL); err != nil {
			// The URL was already shown; the user can open it by hand.
			logging.Warn("OAuth", "Could not open browser automatically: %v", err)
		}
	}

	result, err := server.WaitForCallback(ctx, c.cfg.CallbackTimeout)
	if err != nil {
		return &LoginError{Err: err}
	}

	if result.IsError() {
		return &LoginError{Err: fmt.Errorf("authorization server returned %s: %s",
			result.Error, result.ErrorDescription)}
	}

	// Anti-CSRF: the callback must echo this attempt's state.
	if result.State != pending.State {
		return &LoginError{Err: &ListenerError{Reason: "state mismatch on callback"}}
	}

	ts, err := c.exchanger.ExchangeCode(ctx, result.Code, pending.PKCE.CodeVerifier)
	if err != nil {
		return &LoginError{Err: err}
	}

	c.cred = NewCredential(ts, c.now())
	logging.Info("OAuth", "Login successful (access expires %s)",
		expiryForLog(c.cred.AccessExpiresIn, c.cred.AccessExpiresAt))
	return nil
}

// refreshLocked renews the credential via the refresh grant. The exchange's
// errors surface unchanged; the credential is only replaced on success.
func (c *Client) refreshLocked(ctx context.Context) error {
	ts, err := c.exchanger.ExchangeRefresh(ctx, c.cred.RefreshToken)
	if err != nil {
		return err
	}

	c.cred = NewCredential(ts, c.now())
	logging.Info("OAuth", "Token refreshed (access expires %s)",
		expiryForLog(c.cred.AccessExpiresIn, c.cred.AccessExpiresAt))
	return nil
}

func expiryForLog(expiresIn int64, expiresAt time.Time) string {
	if expiresIn == 0 {
		return "never"
	}
	return FormatExpiry(expiresAt)
}

// AccessToken returns the currently held access token, or "" when not
// logged in. Call EnsureAuthenticated first.
func (c *Client) AccessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred.AccessToken
}

// Credential returns a snapshot of the current credential.
func (c *Client) Credential() Credential {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred
}

// SetCredential replaces the credential wholesale, e.g. with one restored
// from an external session.
func (c *Client) SetCredential(cred Credential) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cred = cred
}

// State derives the credential's state at the current instant.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cred.StateAt(c.now())
}

// Config returns the immutable configuration the client was built with.
func (c *Client) Config() config.Config {
	return c.cfg
}
