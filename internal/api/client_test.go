package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"skylift/internal/oauth"
)

// fakeAuth satisfies Authenticator with a fixed token and records how often
// the gate was exercised.
type fakeAuth struct {
	token   string
	err     error
	ensured atomic.Int32
}

func (f *fakeAuth) EnsureAuthenticated(ctx context.Context) error {
	f.ensured.Add(1)
	return f.err
}

func (f *fakeAuth) AccessToken() string { return f.token }

func TestClient_Get(t *testing.T) {
	var gotPath, gotAuth string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.String()
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"ok": true}`))
	}))
	defer srv.Close()

	auth := &fakeAuth{token: "AT"}
	client := NewClient(srv.URL, auth)

	body, err := client.Get(context.Background(), "use_cases/mine", nil, nil)
	require.NoError(t, err)

	assert.JSONEq(t, `{"ok": true}`, string(body))
	assert.Equal(t, "/use_cases/mine/", gotPath, "API paths are requested with a trailing slash")
	assert.Equal(t, "Bearer AT", gotAuth)
	assert.Equal(t, int32(1), auth.ensured.Load(), "every request must pass the credential gate")
}

func TestClient_Get_Query(t *testing.T) {
	var gotQuery url.Values

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeAuth{token: "AT"})

	query := url.Values{}
	query.Set("page", "2")
	query.Set("size", "50")
	_, err := client.Get(context.Background(), "use_cases/mine", query, nil)
	require.NoError(t, err)

	assert.Equal(t, "2", gotQuery.Get("page"))
	assert.Equal(t, "50", gotQuery.Get("size"))
}

func TestClient_Get_Body(t *testing.T) {
	var gotBody []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		require.NoError(t, err)
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeAuth{token: "AT"})

	// The body passes through unmodified alongside the GET.
	_, err := client.Get(context.Background(), "use_cases/mine", nil,
		strings.NewReader(`{"filter": {"status": "deployed"}}`))
	require.NoError(t, err)

	assert.JSONEq(t, `{"filter": {"status": "deployed"}}`, string(gotBody))
}

func TestClient_Get_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "not found"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, &fakeAuth{token: "AT"})

	_, err := client.Get(context.Background(), "use_cases/mine/nope", nil, nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "not found")
}

func TestClient_Get_AuthFailureShortCircuits(t *testing.T) {
	var serverHit atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		serverHit.Add(1)
	}))
	defer srv.Close()

	auth := &fakeAuth{err: oauth.ErrReauthenticationRequired}
	client := NewClient(srv.URL, auth)

	_, err := client.Get(context.Background(), "use_cases/mine", nil, nil)
	assert.True(t, errors.Is(err, oauth.ErrReauthenticationRequired))
	assert.Equal(t, int32(0), serverHit.Load(), "an unusable credential must never reach the API")
}
