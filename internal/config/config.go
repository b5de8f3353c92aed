package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"skylift/pkg/logging"
)

// envPrefix is the prefix for all skylift environment variables,
// e.g. SKYLIFT_AUTH_CLIENT_ID.
const envPrefix = "SKYLIFT_"

// Config holds the full skylift configuration. It is read once at client
// construction and is immutable for the client's lifetime.
type Config struct {
	// CallbackPort is the local port the OAuth redirect listener binds to.
	CallbackPort int `koanf:"callback_port"`

	// CallbackTimeout bounds how long the redirect listener waits for the
	// browser callback before failing with ErrListenerTimeout.
	CallbackTimeout time.Duration `koanf:"callback_timeout"`

	// APIURL is the base URL of the skylift resource API.
	APIURL string `koanf:"api_url"`

	// AuthURL is the base URL of the authorization server.
	AuthURL string `koanf:"auth_url"`

	// AuthRealm is the realm (tenant) on the authorization server.
	AuthRealm string `koanf:"auth_realm"`

	// AuthClientID is the OAuth public client identifier.
	AuthClientID string `koanf:"auth_client_id"`

	// AuthRedirectURI is the redirect URI registered for the client. Its
	// port must match CallbackPort.
	AuthRedirectURI string `koanf:"auth_redirect_uri"`

	// OpenBrowser controls whether login auto-launches the default browser.
	OpenBrowser bool `koanf:"open_browser"`

	// InferenceURL is the base URL for deployed model inference.
	InferenceURL string `koanf:"inference_url"`

	// InferenceHost is the FQDN suffix used to build the inference host header.
	InferenceHost string `koanf:"inference_host"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
}

// Default returns the built-in configuration defaults.
func Default() Config {
	return Config{
		CallbackPort:    8000,
		CallbackTimeout: 5 * time.Minute,
		APIURL:          "https://api.skylift.cloud/api/v1",
		AuthURL:         "https://auth.skylift.cloud",
		AuthRealm:       "skylift",
		AuthClientID:    "skylift-cli",
		AuthRedirectURI: "http://localhost:8000/callback",
		OpenBrowser:     true,
		InferenceURL:    "https://inference.skylift.cloud/v2/models",
		InferenceHost:   "inf.skylift.cloud",
		LogLevel:        "info",
	}
}

// Load builds the configuration from, in order of increasing precedence:
// built-in defaults, an optional YAML file at path, and SKYLIFT_-prefixed
// environment variables (SKYLIFT_AUTH_CLIENT_ID -> auth_client_id).
// An empty path skips file loading.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
		logging.Debug("Config", "Loaded configuration file %s", path)
	}

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		// SKYLIFT_AUTH_CLIENT_ID -> auth_client_id
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the client cannot run with.
func (c Config) Validate() error {
	if c.CallbackPort < 1 || c.CallbackPort > 65535 {
		return fmt.Errorf("callback_port %d out of range", c.CallbackPort)
	}
	if c.CallbackTimeout <= 0 {
		return fmt.Errorf("callback_timeout must be positive, got %s", c.CallbackTimeout)
	}
	for name, v := range map[string]string{
		"api_url":           c.APIURL,
		"auth_url":          c.AuthURL,
		"auth_realm":        c.AuthRealm,
		"auth_client_id":    c.AuthClientID,
		"auth_redirect_uri": c.AuthRedirectURI,
	} {
		if v == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

// AuthorizationEndpoint returns the browser-facing authorization endpoint
// for the configured realm.
func (c Config) AuthorizationEndpoint() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/auth",
		strings.TrimSuffix(c.AuthURL, "/"), c.AuthRealm)
}

// TokenEndpoint returns the token endpoint for the configured realm.
func (c Config) TokenEndpoint() string {
	return fmt.Sprintf("%s/realms/%s/protocol/openid-connect/token",
		strings.TrimSuffix(c.AuthURL, "/"), c.AuthRealm)
}
