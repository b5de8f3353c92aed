package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"skylift/internal/api"
	"skylift/internal/oauth"
)

// Infer-specific flags
var inferPayload string

// usecaseCmd represents the usecase command
var usecaseCmd = &cobra.Command{
	Use:   "usecase <id>",
	Short: "Show one of your use cases",
	Long: `Show one of your use cases and its deployment.

Examples:
  skylift usecase uc-123
  skylift usecase infer uc-123 --payload '{"inputs": [...]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runUsecase,
}

// usecaseInferCmd represents the usecase infer command
var usecaseInferCmd = &cobra.Command{
	Use:   "infer <id>",
	Short: "Invoke a use case's deployed model",
	Long: `Invoke the model deployed for a use case.

The use case is resolved to its deployment's inference endpoint, the
JSON payload is POSTed there, and the raw model response is printed.

Examples:
  skylift usecase infer uc-123 --payload '{"inputs": [{"name": "features", "data": [1, 2, 3]}]}'`,
	Args: cobra.ExactArgs(1),
	RunE: runUsecaseInfer,
}

func init() {
	usecaseInferCmd.Flags().StringVar(&inferPayload, "payload", "",
		"JSON inference payload: inline, a file path, or '-' for stdin (required)")
	_ = usecaseInferCmd.MarkFlagRequired("payload")

	usecaseCmd.AddCommand(usecaseInferCmd)
	rootCmd.AddCommand(usecaseCmd)
}

func runUsecase(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.APIURL, oauth.NewClient(cfg))

	uc, err := client.FetchUseCase(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Name:         %s\n", uc.Name)
	fmt.Fprintf(out, "Description:  %s\n", uc.Description)

	deploymentID := uc.DeploymentID()
	if deploymentID == "" {
		fmt.Fprintf(out, "Deployment:   %s\n", text.FgYellow.Sprint("none"))
		return nil
	}
	fmt.Fprintf(out, "Deployment:   %s\n", deploymentID)

	inf, err := client.FetchInference(cmd.Context(), deploymentID)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Inference:    %s\n", inf.URL(cfg.InferenceURL))
	return nil
}

// decodePayload resolves the --payload flag to a JSON value. "-" reads from
// the given reader (stdin), an existing file path reads that file, anything
// else is treated as inline JSON. Non-JSON input is rejected before any
// network traffic happens.
func decodePayload(raw string, stdin io.Reader) (any, error) {
	data := []byte(raw)
	switch {
	case raw == "-":
		var err error
		if data, err = io.ReadAll(stdin); err != nil {
			return nil, fmt.Errorf("failed to read payload from stdin: %w", err)
		}
	default:
		if _, err := os.Stat(raw); err == nil {
			var readErr error
			if data, readErr = os.ReadFile(raw); readErr != nil {
				return nil, fmt.Errorf("failed to read payload file: %w", readErr)
			}
		}
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("invalid --payload, expected JSON: %w", err)
	}
	return payload, nil
}

func runUsecaseInfer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	payload, err := decodePayload(inferPayload, cmd.InOrStdin())
	if err != nil {
		return err
	}

	client := api.NewClient(cfg.APIURL, oauth.NewClient(cfg))

	uc, err := client.FetchUseCase(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	deploymentID := uc.DeploymentID()
	if deploymentID == "" {
		return fmt.Errorf("use case %s has no deployment to invoke", args[0])
	}

	inf, err := client.FetchInference(cmd.Context(), deploymentID)
	if err != nil {
		return err
	}

	body, err := client.RunInference(cmd.Context(), inf, cfg.InferenceURL, cfg.InferenceHost, payload)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), formatJSON(body))
	return nil
}
