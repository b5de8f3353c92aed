package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"skylift/pkg/logging"
)

// Inference describes the serving endpoint of a deployment, as reported by
// the resource API.
type Inference struct {
	Name      string `json:"name"`
	Namespace string `json:"namespace"`
}

// URL returns the invocation URL for this inference service under the given
// inference base URL.
func (i *Inference) URL(baseURL string) string {
	return fmt.Sprintf("%s/%s/infer", strings.TrimSuffix(baseURL, "/"), i.Name)
}

// HostHeader returns the infHost header value that routes the request to
// this service behind the shared inference gateway.
func (i *Inference) HostHeader(hostSuffix string) string {
	return fmt.Sprintf("%s.%s.%s", i.Name, i.Namespace, hostSuffix)
}

// FetchInference resolves the inference endpoint of a deployment.
func (c *Client) FetchInference(ctx context.Context, deploymentID string) (*Inference, error) {
	body, err := c.Get(ctx, fmt.Sprintf("deployments/mine/%s/deployment/inference", deploymentID), nil, nil)
	if err != nil {
		return nil, err
	}

	var inf Inference
	if err := json.Unmarshal(body, &inf); err != nil {
		return nil, fmt.Errorf("failed to parse inference response: %w", err)
	}
	if inf.Name == "" {
		return nil, fmt.Errorf("inference response has no service name")
	}
	return &inf, nil
}

// RunInference sends a JSON payload to the deployment's inference endpoint.
// The request is authenticated with the same credential as API requests and
// routed with the gateway's infHost header. The raw response body is
// returned for the caller to interpret.
func (c *Client) RunInference(ctx context.Context, inf *Inference, baseURL, hostSuffix string, payload any) ([]byte, error) {
	if err := c.auth.EnsureAuthenticated(ctx); err != nil {
		return nil, err
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to encode inference payload: %w", err)
	}

	endpoint := inf.URL(baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create inference request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.auth.AccessToken())
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("infHost", inf.HostHeader(hostSuffix))

	logging.Debug("API", "POST %s (infHost=%s)", endpoint, inf.HostHeader(hostSuffix))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("inference request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read inference response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		logging.Debug("API", "Inference failed: status=%d body=%s", resp.StatusCode, string(body))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	return body, nil
}
