package cmd

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// statusCheckTimeout bounds the optional identity provider probe.
const statusCheckTimeout = 10 * time.Second

// Status-specific flags
var statusCheck bool

// authStatusCmd represents the auth status command
var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the authentication configuration",
	Long: `Show the effective authentication configuration.

This displays the identity provider, realm, client and callback settings
this invocation would use. With --check, the identity provider's discovery
document is fetched to verify the realm is reachable.

Credentials are held in memory per invocation, so there is no stored
session to report; use 'skylift auth login' to verify the flow itself.

Examples:
  skylift auth status                  # Show configuration
  skylift auth status --check          # Also probe the identity provider`,
	RunE: runAuthStatus,
}

func init() {
	authStatusCmd.Flags().BoolVar(&statusCheck, "check", false,
		"Probe the identity provider's discovery endpoint")
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	authPrintln("Identity Provider")
	authPrint("  Server:        %s\n", cfg.AuthURL)
	authPrint("  Realm:         %s\n", cfg.AuthRealm)
	authPrint("  Client:        %s\n", cfg.AuthClientID)
	authPrintln("")
	authPrintln("Callback Listener")
	authPrint("  Redirect URI:  %s\n", cfg.AuthRedirectURI)
	authPrint("  Local port:    %d\n", cfg.CallbackPort)
	authPrint("  Timeout:       %s\n", cfg.CallbackTimeout)

	if !statusCheck {
		return nil
	}

	authPrintln("")
	discoveryURL := fmt.Sprintf("%s/realms/%s/.well-known/openid-configuration",
		cfg.AuthURL, cfg.AuthRealm)

	ctx, cancel := context.WithTimeout(cmd.Context(), statusCheckTimeout)
	defer cancel()

	if err := probeDiscovery(ctx, discoveryURL); err != nil {
		authPrint("  Provider:      %s (%v)\n", text.FgRed.Sprint("Unreachable"), err)
		return fmt.Errorf("identity provider check failed: %w", err)
	}
	authPrint("  Provider:      %s\n", text.FgGreen.Sprint("Reachable"))
	return nil
}

// probeDiscovery fetches the realm's OpenID discovery document.
func probeDiscovery(ctx context.Context, url string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("discovery endpoint returned status %d", resp.StatusCode)
	}
	return nil
}
