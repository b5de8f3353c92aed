package api

import (
	"context"
	"encoding/json"
	"fmt"
)

// UseCase is a deployed model use case owned by the authenticated user.
type UseCase struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// DeploymentDetails carries the identifier of the backing deployment,
	// needed to resolve the inference endpoint.
	DeploymentDetails struct {
		DeploymentID string `json:"deployment_id"`
	} `json:"deployment_details"`
}

// DeploymentID returns the identifier of the deployment backing this use
// case, or "" when none is attached.
func (u *UseCase) DeploymentID() string {
	return u.DeploymentDetails.DeploymentID
}

// FetchUseCase retrieves one of the user's use cases by id.
func (c *Client) FetchUseCase(ctx context.Context, id string) (*UseCase, error) {
	body, err := c.Get(ctx, fmt.Sprintf("use_cases/mine/%s", id), nil, nil)
	if err != nil {
		return nil, err
	}

	var uc UseCase
	if err := json.Unmarshal(body, &uc); err != nil {
		return nil, fmt.Errorf("failed to parse use case response: %w", err)
	}
	return &uc, nil
}
