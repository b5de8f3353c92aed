package oauth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"testing"
	"time"
)

// freePort asks the kernel for an available loopback port.
func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("could not find a free port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func TestCallbackServer_CapturesCodeAndState(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		resp, err := http.Get(fmt.Sprintf("http://127.0.0.1:%d/callback?code=test-code&state=test-state", port))
		if err == nil {
			resp.Body.Close()
		}
	}()

	result, err := server.WaitForCallback(ctx, 5*time.Second)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}

	if result.Code != "test-code" {
		t.Errorf("Code = %q, want %q", result.Code, "test-code")
	}
	if result.State != "test-state" {
		t.Errorf("State = %q, want %q", result.State, "test-state")
	}
	if result.IsError() {
		t.Error("IsError() = true for a success callback")
	}
}

func TestCallbackServer_CapturesProviderError(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		resp, err := http.Get(fmt.Sprintf(
			"http://127.0.0.1:%d/callback?error=access_denied&error_description=user+cancelled", port))
		if err == nil {
			resp.Body.Close()
		}
	}()

	result, err := server.WaitForCallback(ctx, 5*time.Second)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}

	if !result.IsError() {
		t.Fatal("expected an error result")
	}
	if result.Error != "access_denied" {
		t.Errorf("Error = %q, want access_denied", result.Error)
	}
	if result.ErrorDescription != "user cancelled" {
		t.Errorf("ErrorDescription = %q, want %q", result.ErrorDescription, "user cancelled")
	}
}

func TestCallbackServer_PortAlreadyBound(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("setup listener failed: %v", err)
	}
	defer l.Close()
	port := l.Addr().(*net.TCPAddr).Port

	server := NewCallbackServer(port)
	err = server.Start(context.Background())
	if err == nil {
		server.Stop()
		t.Fatal("expected bind failure on occupied port")
	}

	var listenerErr *ListenerError
	if !errors.As(err, &listenerErr) {
		t.Errorf("error type = %T, want *ListenerError", err)
	}
}

func TestCallbackServer_Timeout(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	_, err := server.WaitForCallback(ctx, 50*time.Millisecond)
	if !errors.Is(err, ErrListenerTimeout) {
		t.Errorf("error = %v, want ErrListenerTimeout", err)
	}
}

func TestCallbackServer_InterruptedByContext(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	ctx, cancel := context.WithCancel(context.Background())
	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := server.WaitForCallback(ctx, 5*time.Second)

	var listenerErr *ListenerError
	if !errors.As(err, &listenerErr) {
		t.Fatalf("error type = %T, want *ListenerError", err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error should wrap context.Canceled, got %v", err)
	}
}

func TestCallbackServer_SingleShot(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	url := fmt.Sprintf("http://127.0.0.1:%d/callback?code=first&state=s", port)

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("first callback request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("first callback status = %d, want 200", resp.StatusCode)
	}

	// A second callback inside the shutdown grace window is rejected.
	resp2, err := http.Get(url)
	if err == nil {
		defer resp2.Body.Close()
		if resp2.StatusCode != http.StatusBadRequest {
			t.Errorf("second callback status = %d, want 400", resp2.StatusCode)
		}
	}

	result, err := server.WaitForCallback(ctx, 5*time.Second)
	if err != nil {
		t.Fatalf("WaitForCallback failed: %v", err)
	}
	if result.Code != "first" {
		t.Errorf("Code = %q, want %q (first request wins)", result.Code, "first")
	}
}

func TestCallbackServer_StopReleasesContextWatcher(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	// A non-cancellable context must not pin the watcher goroutine past Stop.
	if err := server.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	server.Stop()

	select {
	case <-server.done:
	case <-time.After(time.Second):
		t.Fatal("watcher release channel still open after Stop")
	}
}

func TestCallbackServer_MalformedQuery(t *testing.T) {
	port := freePort(t)
	server := NewCallbackServer(port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := server.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer server.Stop()

	go func() {
		time.Sleep(50 * time.Millisecond)
		// Invalid percent-escape in the query string.
		conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", port))
		if err != nil {
			return
		}
		defer conn.Close()
		fmt.Fprintf(conn, "GET /callback?code=%%zz HTTP/1.1\r\nHost: localhost\r\n\r\n")
		buf := make([]byte, 1024)
		_, _ = conn.Read(buf)
	}()

	_, err := server.WaitForCallback(ctx, 5*time.Second)

	var listenerErr *ListenerError
	if !errors.As(err, &listenerErr) {
		t.Errorf("error type = %T (%v), want *ListenerError", err, err)
	}
}
