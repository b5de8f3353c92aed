package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"skylift/internal/api"
	"skylift/internal/oauth"
)

// Get-specific flags
var getParams []string

// getCmd represents the get command
var getCmd = &cobra.Command{
	Use:   "get <path>",
	Short: "Perform an authenticated GET against the platform API",
	Long: `Perform an authenticated GET request against the platform API.

The path is relative to the configured API base URL. If no valid
credential is held, the browser login flow runs first.

Examples:
  skylift get use_cases/mine
  skylift get use_cases/mine --param page=2 --param size=50`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().StringArrayVar(&getParams, "param", nil,
		"Query parameter as key=value (repeatable)")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	query, err := parseParams(getParams)
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.APIURL, oauth.NewClient(cfg))

	body, err := client.Get(cmd.Context(), args[0], query, nil)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatJSON(body))
	return nil
}

// parseParams converts repeated key=value flags into query values.
func parseParams(params []string) (url.Values, error) {
	if len(params) == 0 {
		return nil, nil
	}
	query := url.Values{}
	for _, p := range params {
		key, value, found := strings.Cut(p, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid --param %q, expected key=value", p)
		}
		query.Add(key, value)
	}
	return query, nil
}

// formatJSON pretty-prints a JSON body, falling back to the raw text when
// the body is not JSON.
func formatJSON(body []byte) string {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return string(body)
	}
	return buf.String()
}
