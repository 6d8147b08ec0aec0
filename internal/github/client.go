// MIT License
//
// Copyright (c) 2025 Mike Lane
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package github

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v66/github"

	"github.com/mikelane/deploysweep/internal/deployment"
	"github.com/mikelane/deploysweep/internal/platform"
)

const (
	listTimeout   = 30 * time.Second
	deleteTimeout = 60 * time.Second
)

// Client implements platform.Client against the GitHub Deployments API
// using go-github. Project identifiers are repository names under the
// configured owner.
type Client struct {
	client *github.Client
	owner  string
}

// NewClient creates a GitHub client with the provided token and
// repository owner
func NewClient(token, owner string) *Client {
	var httpClient *http.Client
	if token != "" {
		httpClient = github.NewClient(nil).Client()
		httpClient.Transport = &github.BasicAuthTransport{
			Username: "token",
			Password: token,
		}
	}

	return &Client{
		client: github.NewClient(httpClient),
		owner:  owner,
	}
}

// ListDeployments retrieves every deployment for the repository and
// resolves each one's lifecycle state from its latest deployment
// status.
func (c *Client) ListDeployments(ctx context.Context, projectID string) ([]deployment.Deployment, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	all := []deployment.Deployment{}
	opts := &github.DeploymentsListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}

	for {
		deployments, resp, err := c.client.Repositories.ListDeployments(ctx, c.owner, projectID, opts)
		if err != nil {
			return nil, &platform.TransportError{Op: "list deployments", Err: err}
		}

		for _, d := range deployments {
			converted, err := c.convert(ctx, projectID, d)
			if err != nil {
				return nil, err
			}
			all = append(all, converted)
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// DeleteDeployment removes a deployment. The id is the composite
// "repo/number" form this adapter hands out in ListDeployments.
func (c *Client) DeleteDeployment(ctx context.Context, deploymentID string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	repo, number, err := splitID(deploymentID)
	if err != nil {
		return &platform.DeleteError{
			DeploymentID: deploymentID,
			Kind:         platform.DeletePermission,
			Err:          err,
		}
	}

	resp, err := c.client.Repositories.DeleteDeployment(ctx, c.owner, repo, number)
	if err != nil {
		return c.classifyDeleteError(deploymentID, resp, err)
	}
	return nil
}

// convert maps a GitHub deployment onto the domain model. The id is
// "repo/number" so the delete path can recover the repository, and the
// state comes from the most recent deployment status.
func (c *Client) convert(ctx context.Context, repo string, d *github.Deployment) (deployment.Deployment, error) {
	state, err := c.latestState(ctx, repo, d.GetID())
	if err != nil {
		return deployment.Deployment{}, err
	}

	return deployment.Deployment{
		ID:        joinID(repo, d.GetID()),
		ProjectID: repo,
		State:     state,
		CreatedAt: d.GetCreatedAt().Time,
		Source:    deployment.SourceStructured,
	}, nil
}

// latestState resolves a deployment's state from its newest status.
// A deployment with no status yet is queued.
func (c *Client) latestState(ctx context.Context, repo string, id int64) (deployment.State, error) {
	statuses, _, err := c.client.Repositories.ListDeploymentStatuses(ctx, c.owner, repo, id,
		&github.ListOptions{PerPage: 1})
	if err != nil {
		return deployment.StateUnknown, &platform.TransportError{Op: "list deployment statuses", Err: err}
	}
	if len(statuses) == 0 {
		return deployment.StateQueued, nil
	}
	return convertState(statuses[0].GetState()), nil
}

// convertState maps GitHub deployment status states onto the shared
// enum.
func convertState(state string) deployment.State {
	switch state {
	case "queued", "pending":
		return deployment.StateQueued
	case "in_progress":
		return deployment.StateBuilding
	case "success":
		return deployment.StateReady
	case "error", "failure":
		return deployment.StateError
	case "inactive":
		return deployment.StateCanceled
	default:
		return deployment.StateUnknown
	}
}

// classifyDeleteError maps a go-github delete failure onto the shared
// taxonomy: 404 is already gone, 429 and 5xx are transient, remaining
// 4xx (including the 422 GitHub returns for active deployments) are
// non-retryable.
func (c *Client) classifyDeleteError(deploymentID string, resp *github.Response, err error) error {
	kind := platform.DeleteTransient
	statusCode := 0

	if resp != nil {
		statusCode = resp.StatusCode
		switch {
		case statusCode == http.StatusNotFound:
			kind = platform.DeleteNotFound
		case statusCode == http.StatusTooManyRequests || statusCode >= 500:
			kind = platform.DeleteTransient
		case statusCode >= 400:
			kind = platform.DeletePermission
		}
	}

	return &platform.DeleteError{
		DeploymentID: deploymentID,
		Kind:         kind,
		StatusCode:   statusCode,
		Err:          err,
	}
}

// joinID builds the composite identifier this adapter exposes.
func joinID(repo string, number int64) string {
	return fmt.Sprintf("%s/%d", repo, number)
}

// splitID parses the composite identifier back into its parts.
func splitID(id string) (string, int64, error) {
	idx := strings.LastIndex(id, "/")
	if idx <= 0 || idx == len(id)-1 {
		return "", 0, fmt.Errorf("malformed deployment id %q", id)
	}

	number, err := strconv.ParseInt(id[idx+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("malformed deployment id %q: %w", id, err)
	}
	return id[:idx], number, nil
}
