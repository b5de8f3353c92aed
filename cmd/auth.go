package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// authQuiet suppresses progress output for scripted use.
var authQuiet bool

// authCmd represents the auth command group
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication for skylift",
	Long: `Manage authentication for skylift CLI commands.

skylift holds credentials in memory only, so each invocation that needs
the platform runs its own login or refresh. The auth subcommands let you
verify the flow and inspect the authentication configuration without
touching any platform resources.

Examples:
  skylift auth login                   # Run the browser login end to end
  skylift auth login --no-browser      # Print the URL instead of opening it
  skylift auth status                  # Show the authentication configuration
  skylift auth status --check          # Also probe the identity provider`,
}

// authPrint prints output only if the --quiet flag is not set.
// Use this for progress messages and non-essential output.
func authPrint(format string, args ...any) {
	if !authQuiet {
		fmt.Printf(format, args...)
	}
}

// authPrintln prints a line only if the --quiet flag is not set.
func authPrintln(msg string) {
	if !authQuiet {
		fmt.Println(msg)
	}
}

func init() {
	authCmd.PersistentFlags().BoolVarP(&authQuiet, "quiet", "q", false,
		"Suppress progress output")

	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
