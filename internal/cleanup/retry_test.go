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
	"testing"
	"time"

	"github.com/mikelane/deploysweep/internal/platform"
)

func transientErr() error {
	return &platform.DeleteError{DeploymentID: "d", Kind: platform.DeleteTransient, Err: errors.New("boom")}
}

func permissionErr() error {
	return &platform.DeleteError{DeploymentID: "d", Kind: platform.DeletePermission, Err: errors.New("forbidden")}
}

func notFoundErr() error {
	return &platform.DeleteError{DeploymentID: "d", Kind: platform.DeleteNotFound, Err: errors.New("gone")}
}

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     10 * time.Millisecond,
	}
}

func TestExecuteWithRetry(t *testing.T) {
	tests := []struct {
		name         string
		results      []error
		wantState    attemptState
		wantAttempts int
	}{
		{
			name:         "succeeds on first attempt",
			results:      []error{nil},
			wantState:    succeeded,
			wantAttempts: 1,
		},
		{
			name:         "retries transient failures then succeeds",
			results:      []error{transientErr(), transientErr(), nil},
			wantState:    succeeded,
			wantAttempts: 3,
		},
		{
			name:         "exhausts the attempt budget",
			results:      []error{transientErr(), transientErr(), transientErr()},
			wantState:    failedRetryable,
			wantAttempts: 3,
		},
		{
			name:         "does not retry permission failures",
			results:      []error{permissionErr()},
			wantState:    failedTerminal,
			wantAttempts: 1,
		},
		{
			name:         "not found counts as success",
			results:      []error{notFoundErr()},
			wantState:    succeeded,
			wantAttempts: 1,
		},
		{
			name:         "unclassified errors are terminal",
			results:      []error{errors.New("unexpected")},
			wantState:    failedTerminal,
			wantAttempts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			state, attempts, _ := executeWithRetry(context.Background(), testRetryConfig(), func() error {
				err := tt.results[calls]
				calls++
				return err
			})

			if state != tt.wantState {
				t.Errorf("executeWithRetry() state = %v, want %v", state, tt.wantState)
			}
			if attempts != tt.wantAttempts {
				t.Errorf("executeWithRetry() attempts = %d, want %d", attempts, tt.wantAttempts)
			}
			if calls != tt.wantAttempts {
				t.Errorf("executeWithRetry() made %d calls, want %d", calls, tt.wantAttempts)
			}
		})
	}
}

func TestExecuteWithRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	calls := 0
	state, _, err := executeWithRetry(ctx, testRetryConfig(), func() error {
		calls++
		cancel() // cancel while the first backoff is pending
		return transientErr()
	})

	if state != failedTerminal {
		t.Errorf("state = %v, want %v", state, failedTerminal)
	}
	if calls != 1 {
		t.Errorf("made %d calls after cancellation, want 1", calls)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestBackoffSchedule(t *testing.T) {
	cfg := RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     300 * time.Millisecond,
	}

	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{attempt: 1, want: 100 * time.Millisecond},
		{attempt: 2, want: 200 * time.Millisecond},
		{attempt: 3, want: 300 * time.Millisecond}, // capped
		{attempt: 4, want: 300 * time.Millisecond}, // capped
	}

	for _, tt := range tests {
		if got := cfg.backoffFor(tt.attempt); got != tt.want {
			t.Errorf("backoffFor(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}
