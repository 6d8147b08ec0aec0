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

package deployment

import (
	"time"

	"github.com/google/uuid"
)

// Outcome is the final disposition of one deployment within a cleanup run
type Outcome string

const (
	// OutcomeDeleted indicates the deployment was removed (or was
	// already gone when the delete call arrived)
	OutcomeDeleted Outcome = "DELETED"
	// OutcomeSkippedNewest indicates the deployment was stale but kept
	// because it is the project's newest
	OutcomeSkippedNewest Outcome = "SKIPPED_NEWEST"
	// OutcomeSkippedState indicates the deployment was in a terminal or
	// unknown state and was never a deletion candidate
	OutcomeSkippedState Outcome = "SKIPPED_STATE"
	// OutcomeFailed indicates the delete call failed with a
	// non-retryable error
	OutcomeFailed Outcome = "FAILED"
	// OutcomeRetriedThenFailed indicates every retry attempt was
	// exhausted without success
	OutcomeRetriedThenFailed Outcome = "RETRIED_THEN_FAILED"
)

// Result records the outcome for a single deployment
type Result struct {
	DeploymentID string
	Outcome      Outcome
	// Attempts is the number of delete calls issued; zero for skips
	Attempts int
	// Err holds the final error for FAILED and RETRIED_THEN_FAILED
	Err error
}

// ProjectResult is the per-project outcome of one cleanup run.
// Deployments preserves the order decisions were made in.
type ProjectResult struct {
	ProjectID   string
	Deployments []Result
	// Err is non-nil when the whole project failed before any delete
	// was attempted (transport failure, unusable listing)
	Err error
}

// Failed reports whether the project ended in failure.
func (p ProjectResult) Failed() bool {
	return p.Err != nil
}

// Count returns how many deployments ended with the given outcome.
func (p ProjectResult) Count(outcome Outcome) int {
	n := 0
	for _, d := range p.Deployments {
		if d.Outcome == outcome {
			n++
		}
	}
	return n
}

// Run is the whole invocation: one result per configured project, in
// the configured order. A Run is rebuilt from scratch on every
// invocation and never persisted.
type Run struct {
	ID        uuid.UUID
	StartedAt time.Time
	Projects  []ProjectResult
}

// NewRun creates an empty run with a fresh identifier and one result
// slot per project.
func NewRun(projectCount int) *Run {
	return &Run{
		ID:        uuid.New(),
		StartedAt: time.Now(),
		Projects:  make([]ProjectResult, projectCount),
	}
}

// Failed reports the run-level status: failure if any project failed
// or any deployment ended FAILED or RETRIED_THEN_FAILED. Skipped
// deployments never fail a run.
func (r *Run) Failed() bool {
	for _, p := range r.Projects {
		if p.Failed() {
			return true
		}
		for _, d := range p.Deployments {
			if d.Outcome == OutcomeFailed || d.Outcome == OutcomeRetriedThenFailed {
				return true
			}
		}
	}
	return false
}
