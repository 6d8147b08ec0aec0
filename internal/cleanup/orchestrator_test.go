/*
Copyright (c) 2025 Mike Lane

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in all
copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
SOFTWARE.
*/

package cleanup

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikelane/deploysweep/internal/deployment"
	"github.com/mikelane/deploysweep/internal/platform"
)

// fakeClient is a scriptable platform.Client for orchestrator tests
type fakeClient struct {
	mu sync.Mutex

	listResults map[string]listResult
	// deleteResults is consumed per deployment id, one error per call;
	// exhausted scripts return nil
	deleteResults map[string][]error
	deleteCalls   map[string]int
}

type listResult struct {
	deps []deployment.Deployment
	err  error
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		listResults:   make(map[string]listResult),
		deleteResults: make(map[string][]error),
		deleteCalls:   make(map[string]int),
	}
}

func (f *fakeClient) ListDeployments(ctx context.Context, projectID string) ([]deployment.Deployment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.listResults[projectID]
	return r.deps, r.err
}

func (f *fakeClient) DeleteDeployment(ctx context.Context, deploymentID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	calls := f.deleteCalls[deploymentID]
	f.deleteCalls[deploymentID] = calls + 1

	script := f.deleteResults[deploymentID]
	if calls < len(script) {
		return script[calls]
	}
	return nil
}

func (f *fakeClient) deletes(deploymentID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.deleteCalls[deploymentID]
}

func (f *fakeClient) totalDeletes() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.deleteCalls {
		total += n
	}
	return total
}

func dep(id, project string, state deployment.State, t int64) deployment.Deployment {
	return deployment.Deployment{
		ID:        id,
		ProjectID: project,
		State:     state,
		CreatedAt: time.Unix(t, 0),
		Source:    deployment.SourceStructured,
	}
}

func newOrchestrator(client platform.Client, opts Options) *Orchestrator {
	opts.Retry = RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
	}
	return New(client, zap.NewNop(), opts)
}

func outcomeOf(t *testing.T, p deployment.ProjectResult, id string) deployment.Result {
	t.Helper()
	for _, d := range p.Deployments {
		if d.DeploymentID == id {
			return d
		}
	}
	t.Fatalf("no result recorded for deployment %q", id)
	return deployment.Result{}
}

func TestRunKeepNewestPolicy(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{deps: []deployment.Deployment{
		dep("a", "app", deployment.StateReady, 10),
		dep("b", "app", deployment.StateBuilding, 20),
		dep("c", "app", deployment.StateQueued, 30),
	}}

	run := newOrchestrator(client, Options{Projects: []string{"app"}}).Run(context.Background())

	require.Len(t, run.Projects, 1)
	p := run.Projects[0]
	require.NoError(t, p.Err)

	assert.Equal(t, deployment.OutcomeSkippedState, outcomeOf(t, p, "a").Outcome)
	assert.Equal(t, deployment.OutcomeDeleted, outcomeOf(t, p, "b").Outcome)
	assert.Equal(t, deployment.OutcomeSkippedNewest, outcomeOf(t, p, "c").Outcome)

	assert.Equal(t, 1, client.deletes("b"))
	assert.Equal(t, 0, client.deletes("c"))
	assert.False(t, run.Failed())
}

func TestRunMalformedWithoutAggressiveFailsProject(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{err: &platform.MalformedResponseError{
		Op:  "list deployments",
		Raw: "https://app-x.vercel.app  Building",
		Err: errors.New("invalid character 'h'"),
	}}

	run := newOrchestrator(client, Options{Projects: []string{"app"}}).Run(context.Background())

	require.Len(t, run.Projects, 1)
	assert.True(t, run.Projects[0].Failed())
	assert.Equal(t, 0, client.totalDeletes(), "no delete may be attempted for a failed project")
	assert.True(t, run.Failed())
}

func TestRunMalformedWithAggressiveUsesHeuristic(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{err: &platform.MalformedResponseError{
		Op: "list deployments",
		Raw: "  2m  https://app-new.vercel.app  ● Building\n" +
			"  3h  https://app-old.vercel.app  ● Queued",
		Err: errors.New("invalid character ' '"),
	}}

	run := newOrchestrator(client, Options{Projects: []string{"app"}, Aggressive: true}).Run(context.Background())

	require.Len(t, run.Projects, 1)
	p := run.Projects[0]
	require.NoError(t, p.Err)

	assert.Equal(t, deployment.OutcomeSkippedNewest, outcomeOf(t, p, "https://app-new.vercel.app").Outcome)
	assert.Equal(t, deployment.OutcomeDeleted, outcomeOf(t, p, "https://app-old.vercel.app").Outcome)
	assert.False(t, run.Failed())
}

func TestRunHeuristicRecoversNothing(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{err: &platform.MalformedResponseError{
		Op:  "list deployments",
		Raw: "no deployments here",
		Err: errors.New("unexpected end of JSON input"),
	}}

	run := newOrchestrator(client, Options{Projects: []string{"app"}, Aggressive: true}).Run(context.Background())

	require.Len(t, run.Projects, 1)
	assert.NoError(t, run.Projects[0].Err)
	assert.Empty(t, run.Projects[0].Deployments)
	assert.Equal(t, 0, client.totalDeletes())
	assert.False(t, run.Failed())
}

func TestRunTransportFailureDoesNotAbortRun(t *testing.T) {
	client := newFakeClient()
	client.listResults["down"] = listResult{err: &platform.TransportError{
		Op:  "list deployments",
		Err: errors.New("connection refused"),
	}}
	client.listResults["up"] = listResult{deps: []deployment.Deployment{
		dep("a", "up", deployment.StateQueued, 10),
		dep("b", "up", deployment.StateBuilding, 20),
	}}

	run := newOrchestrator(client, Options{Projects: []string{"down", "up"}}).Run(context.Background())

	require.Len(t, run.Projects, 2)
	assert.True(t, run.Projects[0].Failed())
	require.NoError(t, run.Projects[1].Err)
	assert.Equal(t, deployment.OutcomeDeleted, outcomeOf(t, run.Projects[1], "a").Outcome)
	assert.Equal(t, 1, client.deletes("a"), "the healthy project's deletions must still happen")
	assert.True(t, run.Failed(), "exit status must reflect the failed project")
}

func TestRunRetriesTransientDeleteFailures(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{deps: []deployment.Deployment{
		dep("a", "app", deployment.StateQueued, 10),
		dep("b", "app", deployment.StateBuilding, 20),
	}}
	client.deleteResults["a"] = []error{
		&platform.DeleteError{DeploymentID: "a", Kind: platform.DeleteTransient, Err: errors.New("502")},
		&platform.DeleteError{DeploymentID: "a", Kind: platform.DeleteTransient, Err: errors.New("503")},
		// third attempt succeeds
	}

	run := newOrchestrator(client, Options{Projects: []string{"app"}}).Run(context.Background())

	result := outcomeOf(t, run.Projects[0], "a")
	assert.Equal(t, deployment.OutcomeDeleted, result.Outcome)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, 3, client.deletes("a"))
	assert.False(t, run.Failed())
}

func TestRunExhaustedRetriesFailTheRun(t *testing.T) {
	transient := &platform.DeleteError{DeploymentID: "a", Kind: platform.DeleteTransient, Err: errors.New("502")}

	client := newFakeClient()
	client.listResults["app"] = listResult{deps: []deployment.Deployment{
		dep("a", "app", deployment.StateQueued, 10),
		dep("b", "app", deployment.StateBuilding, 20),
	}}
	client.deleteResults["a"] = []error{transient, transient, transient}

	run := newOrchestrator(client, Options{Projects: []string{"app"}}).Run(context.Background())

	result := outcomeOf(t, run.Projects[0], "a")
	assert.Equal(t, deployment.OutcomeRetriedThenFailed, result.Outcome)
	assert.Equal(t, 3, result.Attempts)
	assert.True(t, run.Failed())
}

func TestRunPermissionFailureIsNotRetried(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{deps: []deployment.Deployment{
		dep("a", "app", deployment.StateQueued, 10),
		dep("b", "app", deployment.StateBuilding, 20),
	}}
	client.deleteResults["a"] = []error{
		&platform.DeleteError{DeploymentID: "a", Kind: platform.DeletePermission, Err: errors.New("403")},
	}

	run := newOrchestrator(client, Options{Projects: []string{"app"}}).Run(context.Background())

	result := outcomeOf(t, run.Projects[0], "a")
	assert.Equal(t, deployment.OutcomeFailed, result.Outcome)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, 1, client.deletes("a"))
	assert.True(t, run.Failed())
}

func TestRunAlreadyGoneIsSuccess(t *testing.T) {
	client := newFakeClient()
	client.listResults["app"] = listResult{deps: []deployment.Deployment{
		dep("a", "app", deployment.StateQueued, 10),
		dep("b", "app", deployment.StateBuilding, 20),
	}}
	client.deleteResults["a"] = []error{
		&platform.DeleteError{DeploymentID: "a", Kind: platform.DeleteNotFound, Err: errors.New("404")},
	}

	run := newOrchestrator(client, Options{Projects: []string{"app"}}).Run(context.Background())

	result := outcomeOf(t, run.Projects[0], "a")
	assert.Equal(t, deployment.OutcomeDeleted, result.Outcome)
	assert.Equal(t, 1, result.Attempts)
	assert.False(t, run.Failed())
}

func TestRunCancellationStopsNewProjects(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newFakeClient()
	client.listResults["app"] = listResult{deps: []deployment.Deployment{
		dep("a", "app", deployment.StateQueued, 10),
	}}

	run := newOrchestrator(client, Options{Projects: []string{"app", "other"}, Concurrency: 1}).Run(ctx)

	require.Len(t, run.Projects, 2)
	for _, p := range run.Projects {
		assert.True(t, p.Failed(), "project %q must be reported failed after cancellation", p.ProjectID)
		assert.ErrorIs(t, p.Err, context.Canceled)
	}
	assert.Equal(t, 0, client.totalDeletes(), "no workflow may start after cancellation")
}

func TestRunProcessesProjectsInConfiguredOrder(t *testing.T) {
	client := newFakeClient()
	projects := []string{"one", "two", "three"}
	for _, p := range projects {
		client.listResults[p] = listResult{deps: []deployment.Deployment{
			dep(p+"-a", p, deployment.StateQueued, 10),
			dep(p+"-b", p, deployment.StateBuilding, 20),
		}}
	}

	run := newOrchestrator(client, Options{Projects: projects, Concurrency: 3}).Run(context.Background())

	require.Len(t, run.Projects, 3)
	for i, p := range projects {
		assert.Equal(t, p, run.Projects[i].ProjectID, "results must preserve configured project order")
	}
}
