package cmd

import (
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"skylift/internal/oauth"
)

// Login-specific flags
var loginNoBrowser bool

// authLoginCmd represents the auth login command
var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Run the browser-based login flow",
	Long: `Run the OAuth browser-based login flow end to end.

This opens your browser (unless --no-browser is given), waits for the
redirect on the local callback port, and exchanges the authorization code
for tokens. Because skylift never persists credentials, this command is a
verification of the flow and your configuration; commands that need the
platform authenticate themselves.

Examples:
  skylift auth login                   # Login with browser auto-launch
  skylift auth login --no-browser      # Print the URL to open manually`,
	RunE: runAuthLogin,
}

func init() {
	authLoginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false,
		"Print the authorization URL instead of opening a browser")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if loginNoBrowser {
		cfg.OpenBrowser = false
	}

	var s *spinner.Spinner
	client := oauth.NewClient(cfg, oauth.WithAuthPrompt(func(authURL string) {
		authPrintln("Open the following URL to authenticate:")
		authPrintln("  " + authURL)
		if !authQuiet {
			s = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			s.Suffix = " Waiting for browser authentication..."
			s.Start()
		}
	}))

	err = client.Login(cmd.Context())
	if s != nil {
		s.Stop()
	}
	if err != nil {
		return err
	}

	cred := client.Credential()
	authPrint("%s Login successful\n", text.FgGreen.Sprint("✓"))
	authPrint("  Access token expires:  %s\n", formatCredExpiry(cred.AccessExpiresIn, cred.AccessExpiresAt))
	if cred.RefreshToken != "" {
		authPrint("  Refresh token expires: %s\n", formatCredExpiry(cred.RefreshExpiresIn, cred.RefreshExpiresAt))
	} else {
		authPrint("  Refresh token:         %s\n", text.FgYellow.Sprint("not issued"))
	}
	return nil
}

// formatCredExpiry renders an expiry pair for status output.
func formatCredExpiry(expiresIn int64, expiresAt time.Time) string {
	if expiresIn == 0 {
		return "never"
	}
	return oauth.FormatExpiry(expiresAt)
}
