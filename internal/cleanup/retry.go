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
	"time"

	"github.com/mikelane/deploysweep/internal/platform"
)

// RetryConfig defines the retry behavior for delete calls
type RetryConfig struct {
	// MaxAttempts is the total number of calls, the first included
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

// DefaultRetryConfig returns the retry schedule used for deletions:
// three attempts total, exponential backoff from a fixed base.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     10 * time.Second,
	}
}

// backoffFor returns the delay before the attempt following attempt
// (1-based). Exponential in the attempt number, capped at MaxBackoff.
func (c RetryConfig) backoffFor(attempt int) time.Duration {
	multiplier := 1 << uint(attempt-1) // 2^(attempt-1)
	backoff := time.Duration(float64(c.InitialBackoff) * float64(multiplier))
	if backoff > c.MaxBackoff {
		backoff = c.MaxBackoff
	}
	return backoff
}

// attemptState is the retry state machine's position after one call:
// each attempt either succeeds, fails retryably (back to attempting)
// or fails terminally.
type attemptState int

const (
	succeeded attemptState = iota
	failedRetryable
	failedTerminal
)

// classify maps one delete call's result onto the state machine.
// A not-found error counts as success: the deployment is already gone.
func classify(err error) attemptState {
	if err == nil {
		return succeeded
	}

	var del *platform.DeleteError
	if errors.As(err, &del) {
		if del.Kind == platform.DeleteNotFound {
			return succeeded
		}
		if del.Retryable() {
			return failedRetryable
		}
	}

	return failedTerminal
}

// executeWithRetry runs op until it leaves the retryable state or the
// attempt budget is spent. It returns the final state, the number of
// attempts made, and the last error observed (which may be non-nil
// even on success, for the already-gone case).
func executeWithRetry(ctx context.Context, cfg RetryConfig, op func() error) (attemptState, int, error) {
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return failedTerminal, attempt - 1, err
		}

		lastErr = op()
		state := classify(lastErr)
		if state != failedRetryable {
			return state, attempt, lastErr
		}
		if attempt == cfg.MaxAttempts {
			return failedRetryable, attempt, lastErr
		}

		select {
		case <-ctx.Done():
			return failedTerminal, attempt, ctx.Err()
		case <-time.After(cfg.backoffFor(attempt)):
		}
	}

	return failedRetryable, cfg.MaxAttempts, lastErr
}
