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

package vercel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mikelane/deploysweep/internal/deployment"
	"github.com/mikelane/deploysweep/internal/platform"
)

const (
	defaultBaseURL = "https://api.vercel.com"

	// listLimit caps how many deployments one listing call returns;
	// stale QUEUED/BUILDING records are always at the new end
	listLimit = 100

	listTimeout   = 30 * time.Second
	deleteTimeout = 60 * time.Second
)

// Client implements platform.Client against the Vercel REST API
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a Vercel API client authenticated with the
// provided token. The token is sent as a bearer credential and never
// logged.
func NewClient(token string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		token:      token,
		httpClient: &http.Client{},
	}
}

// listResponse mirrors the GET /v6/deployments payload
type listResponse struct {
	Deployments []listDeployment `json:"deployments"`
}

type listDeployment struct {
	UID       string `json:"uid"`
	State     string `json:"state"`
	CreatedAt int64  `json:"createdAt"` // unix milliseconds
}

// ListDeployments retrieves the project's deployments via
// GET /v6/deployments. A body that cannot be decoded into the
// structured schema is returned as *platform.MalformedResponseError
// carrying the raw payload.
func (c *Client) ListDeployments(ctx context.Context, projectID string) ([]deployment.Deployment, error) {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v6/deployments?projectId=%s&limit=%d",
		c.baseURL, url.QueryEscape(projectID), listLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &platform.TransportError{Op: "list deployments", Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &platform.TransportError{Op: "list deployments", Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &platform.TransportError{Op: "list deployments", Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &platform.TransportError{
			Op:  "list deployments",
			Err: fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var parsed listResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, &platform.MalformedResponseError{
			Op:  "list deployments",
			Raw: string(body),
			Err: err,
		}
	}
	if parsed.Deployments == nil {
		// decoded fine but the expected field is absent; the schema
		// moved under us
		return nil, &platform.MalformedResponseError{
			Op:  "list deployments",
			Raw: string(body),
			Err: fmt.Errorf("response carries no deployments field"),
		}
	}

	out := make([]deployment.Deployment, 0, len(parsed.Deployments))
	for _, d := range parsed.Deployments {
		out = append(out, deployment.Deployment{
			ID:        d.UID,
			ProjectID: projectID,
			State:     deployment.ParseState(d.State),
			CreatedAt: time.UnixMilli(d.CreatedAt),
			Source:    deployment.SourceStructured,
		})
	}
	return out, nil
}

// DeleteDeployment removes one deployment via
// DELETE /v13/deployments/{id}. The returned *platform.DeleteError
// classifies the failure: 404 means already gone, 429 and 5xx are
// transient, remaining 4xx are permission failures.
func (c *Client) DeleteDeployment(ctx context.Context, deploymentID string) error {
	ctx, cancel := context.WithTimeout(ctx, deleteTimeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/v13/deployments/%s", c.baseURL, url.PathEscape(deploymentID))

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return &platform.DeleteError{
			DeploymentID: deploymentID,
			Kind:         platform.DeletePermission,
			Err:          err,
		}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// covers network failures and the per-call timeout
		return &platform.DeleteError{
			DeploymentID: deploymentID,
			Kind:         platform.DeleteTransient,
			Err:          err,
		}
	}
	defer resp.Body.Close() //nolint:errcheck
	_, _ = io.Copy(io.Discard, resp.Body)

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return &platform.DeleteError{
			DeploymentID: deploymentID,
			Kind:         platform.DeleteNotFound,
			StatusCode:   resp.StatusCode,
			Err:          fmt.Errorf("deployment not found"),
		}
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return &platform.DeleteError{
			DeploymentID: deploymentID,
			Kind:         platform.DeleteTransient,
			StatusCode:   resp.StatusCode,
			Err:          fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	default:
		return &platform.DeleteError{
			DeploymentID: deploymentID,
			Kind:         platform.DeletePermission,
			StatusCode:   resp.StatusCode,
			Err:          fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}
}
