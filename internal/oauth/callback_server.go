package oauth

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"skylift/pkg/logging"
)

// callbackSuccessHTML is served to the browser after the redirect is
// captured. The exact content is not contractually significant; it just has
// to tell the user the window can be closed.
const callbackSuccessHTML = `<!DOCTYPE html>
<html>
<head><title>skylift login</title></head>
<body>
<p>Successfully authenticated with skylift. You can close this window.</p>
<script>window.close();</script>
</body>
</html>
`

// CallbackResult is the transient outcome of one captured redirect. It is
// consumed immediately by the token exchange.
type CallbackResult struct {
	// Code is the authorization code from the authorization server.
	Code string

	// State echoes the state parameter of the original request.
	State string

	// Error and ErrorDescription are set when the authorization server
	// redirected back with an error instead of a code.
	Error            string
	ErrorDescription string
}

// IsError reports whether the authorization server returned an error.
func (r *CallbackResult) IsError() bool {
	return r.Error != ""
}

// CallbackServer is the single-shot local HTTP endpoint that captures the
// authorization code delivered by the browser redirect. After one matching
// request it stops accepting connections: the client runs one login attempt
// at a time, so there is never a second callback to wait for.
type CallbackServer struct {
	port     int
	server   *http.Server
	listener net.Listener
	resultCh chan *CallbackResult
	errorCh  chan error
	done     chan struct{}
	once     sync.Once
	stopOnce sync.Once
}

// NewCallbackServer creates a callback server for the configured port.
func NewCallbackServer(port int) *CallbackServer {
	return &CallbackServer{
		port:     port,
		resultCh: make(chan *CallbackResult, 1),
		errorCh:  make(chan error, 1),
		done:     make(chan struct{}),
	}
}

// Start binds the local port and begins listening for the redirect.
// It returns a *ListenerError if the port cannot be bound.
func (s *CallbackServer) Start(ctx context.Context) error {
	addr := fmt.Sprintf("127.0.0.1:%d", s.port)

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return &ListenerError{Reason: "failed to bind " + addr, Err: err}
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", s.handleCallback)

	s.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := s.server.Serve(listener); err != nil && err != http.ErrServerClosed {
			select {
			case s.errorCh <- &ListenerError{Reason: "serve failed", Err: err}:
			default:
			}
		}
	}()

	// Unbind if the caller's context goes away before a callback arrives.
	// The done channel releases this watcher once the server stops, so a
	// non-cancellable context does not pin the goroutine forever.
	go func() {
		select {
		case <-ctx.Done():
			s.Stop()
		case <-s.done:
		}
	}()

	logging.Debug("OAuth", "Callback listener bound on %s", addr)
	return nil
}

// WaitForCallback blocks until exactly one redirect arrives, the timeout
// passes, or the context is cancelled. It returns ErrListenerTimeout when
// the deadline is exceeded and a *ListenerError when interrupted or when
// the callback query string was malformed.
func (s *CallbackServer) WaitForCallback(ctx context.Context, timeout time.Duration) (*CallbackResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-s.resultCh:
		return result, nil
	case err := <-s.errorCh:
		return nil, err
	case <-timer.C:
		return nil, ErrListenerTimeout
	case <-ctx.Done():
		return nil, &ListenerError{Reason: "interrupted before callback arrived", Err: ctx.Err()}
	}
}

// handleCallback captures the single redirect. Later requests get a 400.
func (s *CallbackServer) handleCallback(w http.ResponseWriter, r *http.Request) {
	var handled bool
	s.once.Do(func() {
		handled = true
		s.processCallback(w, r)
	})

	if !handled {
		http.Error(w, "Callback already processed", http.StatusBadRequest)
	}
}

func (s *CallbackServer) processCallback(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	// A standard parser instead of naive splitting: repeated keys and bad
	// escapes surface as ListenerError, not a panic downstream.
	query, err := url.ParseQuery(r.URL.RawQuery)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		select {
		case s.errorCh <- &ListenerError{Reason: "malformed callback query", Err: err}:
		default:
		}
		s.deferredStop()
		return
	}

	result := &CallbackResult{
		Code:             query.Get("code"),
		State:            query.Get("state"),
		Error:            query.Get("error"),
		ErrorDescription: query.Get("error_description"),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, callbackSuccessHTML)

	select {
	case s.resultCh <- result:
	default:
	}

	s.deferredStop()
}

// deferredStop shuts the server down shortly after the response is written,
// giving the browser time to receive it.
func (s *CallbackServer) deferredStop() {
	go func() {
		time.Sleep(time.Second)
		s.Stop()
	}()
}

// Stop unbinds the listener and shuts the server down. Safe to call more
// than once; always safe to call mid-attempt since a pending authorization
// is never applied to the credential.
func (s *CallbackServer) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		if s.server != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = s.server.Shutdown(ctx)
		}
		if s.listener != nil {
			_ = s.listener.Close()
		}
	})
}

// Port returns the configured listener port.
func (s *CallbackServer) Port() int {
	return s.port
}
