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
	"time"

	"go.uber.org/zap"

	"github.com/mikelane/deploysweep/internal/deployment"
	"github.com/mikelane/deploysweep/internal/heuristic"
	"github.com/mikelane/deploysweep/internal/platform"
	"github.com/mikelane/deploysweep/internal/selection"
)

// maxConcurrency bounds the project worker pool to respect remote rate
// limits.
const maxConcurrency = 4

// Options configures a cleanup run
type Options struct {
	// Projects is the ordered list of project identifiers to process
	Projects []string
	// Aggressive enables heuristic text parsing when the structured
	// listing cannot be decoded
	Aggressive bool
	// Concurrency is the number of projects processed in parallel,
	// clamped to [1, 4]
	Concurrency int
	// DeletePause is the courtesy delay between delete calls within a
	// project, to stay under remote rate limits. Tests set it to zero.
	DeletePause time.Duration
	// Retry overrides the delete retry schedule; the zero value uses
	// DefaultRetryConfig
	Retry RetryConfig
}

// Orchestrator drives the per-project cleanup workflow and aggregates
// results across all configured projects. It owns the Run and every
// intermediate deployment list; nothing is shared across project
// workflows or kept after the run ends.
type Orchestrator struct {
	client platform.Client
	parser *heuristic.Parser
	logger *zap.Logger
	opts   Options
}

// New creates an orchestrator for one cleanup run.
func New(client platform.Client, logger *zap.Logger, opts Options) *Orchestrator {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Concurrency > maxConcurrency {
		opts.Concurrency = maxConcurrency
	}
	if opts.Retry.MaxAttempts == 0 {
		opts.Retry = DefaultRetryConfig()
	}

	return &Orchestrator{
		client: client,
		parser: heuristic.NewParser(time.Now()),
		logger: logger,
		opts:   opts,
	}
}

// Run processes every configured project and returns the aggregated
// result. A project's failure never aborts the run. On cancellation no
// new project workflow starts; in-flight calls finish or time out and
// the partial results are reported.
func (o *Orchestrator) Run(ctx context.Context) *deployment.Run {
	run := deployment.NewRun(len(o.opts.Projects))

	sem := make(chan struct{}, o.opts.Concurrency)
	var wg sync.WaitGroup

	for i, projectID := range o.opts.Projects {
		if err := ctx.Err(); err != nil {
			run.Projects[i] = deployment.ProjectResult{ProjectID: projectID, Err: err}
			continue
		}

		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			run.Projects[i] = deployment.ProjectResult{ProjectID: projectID, Err: ctx.Err()}
			continue
		}

		wg.Add(1)
		go func(i int, projectID string) {
			defer wg.Done()
			defer func() { <-sem }()
			// each workflow writes only its own slot
			run.Projects[i] = o.cleanupProject(ctx, projectID)
		}(i, projectID)
	}

	wg.Wait()
	o.report(run)
	return run
}

// cleanupProject runs the fetch → normalize → select → delete workflow
// for one project.
func (o *Orchestrator) cleanupProject(ctx context.Context, projectID string) deployment.ProjectResult {
	result := deployment.ProjectResult{ProjectID: projectID}
	logger := o.logger.With(zap.String("project", projectID))

	deps, err := o.client.ListDeployments(ctx, projectID)
	if err != nil {
		var malformed *platform.MalformedResponseError
		if !errors.As(err, &malformed) {
			logger.Error("listing deployments failed", zap.Error(err))
			result.Err = err
			return result
		}

		if !o.opts.Aggressive {
			logger.Error("unstructured output, aggressive mode disabled", zap.Error(malformed.Err))
			result.Err = err
			return result
		}

		logger.Warn("structured listing unavailable, falling back to heuristic parsing",
			zap.Error(malformed.Err))
		deps = o.parser.Parse(projectID, malformed.Raw)
		if len(deps) == 0 {
			logger.Warn("heuristic parsing recovered no deployments")
		}
	}

	selected := selection.Select(deps)
	newest, _ := selection.Newest(deps)

	for _, d := range deps {
		switch {
		case selected[d.ID]:
			result.Deployments = append(result.Deployments, o.deleteWithRetry(ctx, logger, d))
			o.pause(ctx)
		case d.State.Stale() && d.ID == newest.ID:
			logger.Debug("keeping newest stale deployment",
				zap.String("deployment", d.ID),
				zap.String("state", string(d.State)))
			result.Deployments = append(result.Deployments, deployment.Result{
				DeploymentID: d.ID,
				Outcome:      deployment.OutcomeSkippedNewest,
			})
		default:
			logger.Debug("skipping deployment by state",
				zap.String("deployment", d.ID),
				zap.String("state", string(d.State)),
				zap.String("source", string(d.Source)))
			result.Deployments = append(result.Deployments, deployment.Result{
				DeploymentID: d.ID,
				Outcome:      deployment.OutcomeSkippedState,
			})
		}
	}

	return result
}

// deleteWithRetry issues the delete call under the retry schedule and
// maps the final machine state onto an outcome.
func (o *Orchestrator) deleteWithRetry(ctx context.Context, logger *zap.Logger, d deployment.Deployment) deployment.Result {
	attempt := 0
	state, attempts, err := executeWithRetry(ctx, o.opts.Retry, func() error {
		attempt++
		if attempt > 1 {
			logger.Debug("retrying delete",
				zap.String("deployment", d.ID),
				zap.Int("attempt", attempt))
		}
		return o.client.DeleteDeployment(ctx, d.ID)
	})

	result := deployment.Result{DeploymentID: d.ID, Attempts: attempts}

	switch state {
	case succeeded:
		result.Outcome = deployment.OutcomeDeleted
		var del *platform.DeleteError
		if errors.As(err, &del) && del.Kind == platform.DeleteNotFound {
			logger.Debug("deployment already gone", zap.String("deployment", d.ID))
		} else {
			logger.Debug("deleted deployment",
				zap.String("deployment", d.ID),
				zap.Int("attempts", attempts))
		}
	case failedRetryable:
		result.Outcome = deployment.OutcomeRetriedThenFailed
		result.Err = err
		logger.Error("delete failed after exhausting retries",
			zap.String("deployment", d.ID),
			zap.Int("attempts", attempts),
			zap.Error(err))
	default:
		result.Outcome = deployment.OutcomeFailed
		result.Err = err
		logger.Error("delete failed",
			zap.String("deployment", d.ID),
			zap.Error(err))
	}

	return result
}

// pause waits the configured courtesy delay between delete calls.
func (o *Orchestrator) pause(ctx context.Context) {
	if o.opts.DeletePause <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(o.opts.DeletePause):
	}
}

// report emits the outcome log: one line per deployment and a summary
// per project, then the run totals. This always runs so partial
// progress stays visible whatever the overall result.
func (o *Orchestrator) report(run *deployment.Run) {
	var deleted, failed, skipped int

	for _, p := range run.Projects {
		if p.Failed() {
			o.logger.Error("project failed",
				zap.String("project", p.ProjectID),
				zap.Error(p.Err))
			continue
		}

		for _, d := range p.Deployments {
			o.logger.Info("deployment outcome",
				zap.String("project", p.ProjectID),
				zap.String("deployment", d.DeploymentID),
				zap.String("outcome", string(d.Outcome)),
				zap.Int("attempts", d.Attempts))
		}

		deleted += p.Count(deployment.OutcomeDeleted)
		failed += p.Count(deployment.OutcomeFailed) + p.Count(deployment.OutcomeRetriedThenFailed)
		skipped += p.Count(deployment.OutcomeSkippedNewest) + p.Count(deployment.OutcomeSkippedState)

		o.logger.Info("project summary",
			zap.String("project", p.ProjectID),
			zap.Int("deployments", len(p.Deployments)),
			zap.Int("deleted", p.Count(deployment.OutcomeDeleted)),
			zap.Int("kept_newest", p.Count(deployment.OutcomeSkippedNewest)),
			zap.Int("skipped_state", p.Count(deployment.OutcomeSkippedState)))
	}

	o.logger.Info("run complete",
		zap.String("run", run.ID.String()),
		zap.Int("projects", len(run.Projects)),
		zap.Int("deleted", deleted),
		zap.Int("failed", failed),
		zap.Int("skipped", skipped),
		zap.Bool("success", !run.Failed()),
		zap.Duration("elapsed", time.Since(run.StartedAt)))
}
