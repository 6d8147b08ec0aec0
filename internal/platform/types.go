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

package platform

import (
	"context"

	"github.com/mikelane/deploysweep/internal/deployment"
)

// Client interface defines the contract for interacting with a remote
// deployment platform
type Client interface {
	// ListDeployments returns every known deployment for the project.
	// Errors are *TransportError when the call could not be completed
	// and *MalformedResponseError when a response arrived but could not
	// be decoded into the structured schema.
	ListDeployments(ctx context.Context, projectID string) ([]deployment.Deployment, error)
	// DeleteDeployment removes a deployment by id. Failures are
	// reported as *DeleteError carrying a retryability classification.
	DeleteDeployment(ctx context.Context, deploymentID string) error
}
