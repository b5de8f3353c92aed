package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.CallbackPort)
	assert.Equal(t, 5*time.Minute, cfg.CallbackTimeout)
	assert.Equal(t, "https://api.skylift.cloud/api/v1", cfg.APIURL)
	assert.Equal(t, "https://auth.skylift.cloud", cfg.AuthURL)
	assert.Equal(t, "skylift", cfg.AuthRealm)
	assert.Equal(t, "skylift-cli", cfg.AuthClientID)
	assert.Equal(t, "http://localhost:8000/callback", cfg.AuthRedirectURI)
	assert.True(t, cfg.OpenBrowser)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SKYLIFT_CALLBACK_PORT", "9123")
	t.Setenv("SKYLIFT_CALLBACK_TIMEOUT", "90s")
	t.Setenv("SKYLIFT_AUTH_CLIENT_ID", "skylift-sdk")
	t.Setenv("SKYLIFT_OPEN_BROWSER", "false")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 9123, cfg.CallbackPort)
	assert.Equal(t, 90*time.Second, cfg.CallbackTimeout)
	assert.Equal(t, "skylift-sdk", cfg.AuthClientID)
	assert.False(t, cfg.OpenBrowser)

	// Untouched keys keep their defaults.
	assert.Equal(t, "skylift", cfg.AuthRealm)
}

func TestLoad_YAMLFileThenEnvPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := "auth_realm: acme\nauth_client_id: acme-cli\ncallback_port: 8100\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Setenv("SKYLIFT_AUTH_CLIENT_ID", "acme-override")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.AuthRealm)
	assert.Equal(t, 8100, cfg.CallbackPort)
	// Environment wins over file.
	assert.Equal(t, "acme-override", cfg.AuthClientID)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults are valid", func(c *Config) {}, true},
		{"port zero", func(c *Config) { c.CallbackPort = 0 }, false},
		{"port too large", func(c *Config) { c.CallbackPort = 70000 }, false},
		{"zero timeout", func(c *Config) { c.CallbackTimeout = 0 }, false},
		{"empty api url", func(c *Config) { c.APIURL = "" }, false},
		{"empty realm", func(c *Config) { c.AuthRealm = "" }, false},
		{"empty client id", func(c *Config) { c.AuthClientID = "" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestEndpoints(t *testing.T) {
	cfg := Default()
	cfg.AuthURL = "https://auth.example.com/"
	cfg.AuthRealm = "tenant-1"

	assert.Equal(t,
		"https://auth.example.com/realms/tenant-1/protocol/openid-connect/auth",
		cfg.AuthorizationEndpoint())
	assert.Equal(t,
		"https://auth.example.com/realms/tenant-1/protocol/openid-connect/token",
		cfg.TokenEndpoint())
}
