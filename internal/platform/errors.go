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

import "fmt"

// TransportError indicates a remote call could not be completed at all
// (network failure, auth rejection, timeout). At the listing step it
// fails the whole project without any cleanup attempt; the run
// continues with the remaining projects.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// MalformedResponseError indicates a response was received but could
// not be decoded into the structured deployment schema. Raw carries
// the payload so the heuristic parser can attempt recovery when
// aggressive cleanup is enabled.
type MalformedResponseError struct {
	Op  string
	Raw string
	Err error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("%s: malformed response: %v", e.Op, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// DeleteKind classifies a failed delete call
type DeleteKind int

const (
	// DeleteTransient covers network failures, timeouts, rate limits
	// and 5xx responses; another attempt may succeed
	DeleteTransient DeleteKind = iota
	// DeleteNotFound means the deployment is already gone; callers
	// treat this as success
	DeleteNotFound
	// DeletePermission covers auth and other 4xx responses; retrying
	// cannot help
	DeletePermission
)

// String returns the log-friendly name of the classification.
func (k DeleteKind) String() string {
	switch k {
	case DeleteTransient:
		return "transient"
	case DeleteNotFound:
		return "not-found"
	case DeletePermission:
		return "permission"
	default:
		return "unknown"
	}
}

// DeleteError is a failed DeleteDeployment call
type DeleteError struct {
	DeploymentID string
	Kind         DeleteKind
	// StatusCode is the HTTP status when one was received, zero otherwise
	StatusCode int
	Err        error
}

func (e *DeleteError) Error() string {
	return fmt.Sprintf("delete %s: %s: %v", e.DeploymentID, e.Kind, e.Err)
}

func (e *DeleteError) Unwrap() error {
	return e.Err
}

// Retryable reports whether another delete attempt may succeed.
func (e *DeleteError) Retryable() bool {
	return e.Kind == DeleteTransient
}
