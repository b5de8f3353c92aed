package cmd

import (
	"errors"
	"os"

	"github.com/spf13/cobra"

	"skylift/internal/config"
	"skylift/internal/oauth"
	"skylift/pkg/logging"
)

// Exit codes for CLI commands, chosen so scripts can distinguish
// authentication problems from ordinary failures.
const (
	// ExitCodeSuccess indicates successful execution.
	ExitCodeSuccess = 0
	// ExitCodeError indicates a general error (command failed, invalid arguments).
	ExitCodeError = 1
	// ExitCodeAuthRequired indicates a full re-authentication is required.
	ExitCodeAuthRequired = 2
	// ExitCodeAuthFailed indicates the interactive login flow failed.
	ExitCodeAuthFailed = 3
)

// cfgFile is the optional configuration file path (--config).
var cfgFile string

// rootCmd represents the base command for the skylift application.
var rootCmd = &cobra.Command{
	Use:   "skylift",
	Short: "Interact with skylift model deployments",
	Long: `skylift is the command-line client for the skylift platform.

It authenticates against the platform's identity provider with a
browser-based OAuth login, then lets you inspect your use cases and
invoke their deployed models. Credentials are held in memory for the
duration of a single invocation and are never written to disk.`,
	SilenceUsage: true,
}

// SetVersion sets the version for the root command. Called from the main
// package to inject the build-time version.
func SetVersion(v string) {
	rootCmd.Version = v
}

// GetVersion returns the current version of the application.
func GetVersion() string {
	return rootCmd.Version
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "skylift version %s\n" .Version}}`)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(getExitCode(err))
	}
}

// getExitCode maps error types to semantic exit codes.
func getExitCode(err error) int {
	if errors.Is(err, oauth.ErrReauthenticationRequired) {
		return ExitCodeAuthRequired
	}

	var loginErr *oauth.LoginError
	if errors.As(err, &loginErr) {
		return ExitCodeAuthFailed
	}

	return ExitCodeError
}

// loadConfig loads the effective configuration and initializes logging
// from it. Every command that talks to the platform goes through here.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return config.Config{}, err
	}

	logging.Init(logging.ParseLevel(cfg.LogLevel), os.Stderr)

	return cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "",
		"config file (YAML; environment variables take precedence)")

	rootCmd.AddCommand(newVersionCmd())
}
